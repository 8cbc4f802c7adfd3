package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mustafabch/website/internal/dataset"
	"github.com/mustafabch/website/internal/engine"
	"github.com/mustafabch/website/internal/middleware"
	"github.com/mustafabch/website/internal/requestctx"
)

// Content answers a load-more or grid search request with the next batch of
// cards followed by an out-of-band update of the section's button.
func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	sec, err := engine.ParseSection(chi.URLParam(r, "section"))
	if err != nil {
		middleware.WriteError(w, r, http.StatusNotFound, "unknown section")
		return
	}
	q := r.URL.Query()
	offset := 0
	if raw := q.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			middleware.WriteError(w, r, http.StatusBadRequest, "invalid offset")
			return
		}
	}
	lang := middleware.Lang(r, h.bundle)

	frag, err := h.pipeline.Engine().Batch(r.Context(), engine.BatchRequest{
		Section:  sec,
		Offset:   offset,
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Lang:     lang,
		Page:     currentPage(r),
	})
	if errors.Is(err, dataset.ErrUnavailable) {
		// nothing to swap; the grid and its button stay as they are
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrUnknownSection) {
			status = http.StatusNotFound
		}
		requestctx.Logger(r.Context()).Error("content batch", zap.String("section", string(sec)), zap.Error(err))
		middleware.WriteError(w, r, status, "content unavailable")
		return
	}
	cards, err := h.pipeline.Fragment(string(frag.HTML), lang)
	if err != nil {
		requestctx.Logger(r.Context()).Error("content fragment", zap.Error(err))
		middleware.WriteError(w, r, http.StatusInternalServerError, "content unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if frag.Count > 0 {
		w.Header().Set("HX-Trigger", ContentUpdatedEvent)
	}
	_, _ = w.Write([]byte(cards))
	_, _ = w.Write([]byte(frag.Button))
}

// Search answers the sidebar dropdown with title matches for q.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	html, err := h.pipeline.Engine().Search(r.Context(), currentPage(r), q.Get("q"), q.Get("class"))
	if err != nil {
		requestctx.Logger(r.Context()).Error("blog search", zap.Error(err))
		middleware.WriteError(w, r, http.StatusInternalServerError, "search unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(html))
}
