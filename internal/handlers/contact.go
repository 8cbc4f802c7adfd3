package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/mustafabch/website/internal/contact"
	"github.com/mustafabch/website/internal/middleware"
	"github.com/mustafabch/website/internal/requestctx"
)

const maxFormBytes = 64 << 10

type fieldResponse struct {
	Field string             `json:"field"`
	State contact.FieldState `json:"state"`
	Class string             `json:"class,omitempty"`
}

// Submit validates and relays the contact form and answers with the feedback
// banner. Field states travel in an HX-Trigger payload so every control can
// reflect them; a successful send also raises the reset event.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	lang := middleware.Lang(r, h.bundle)

	out, err := h.contact.Submit(r.Context(), clientKey(r), lang, r.PostForm)
	if out.Feedback == "" {
		requestctx.Logger(r.Context()).Error("contact feedback", zap.Error(err))
		middleware.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if err != nil && !errors.Is(err, contact.ErrInvalid) && !errors.Is(err, contact.ErrRateLimited) {
		requestctx.Logger(r.Context()).Debug("contact submit", zap.Error(err))
	}

	events := map[string]any{}
	if out.Reset {
		events[contact.SentEvent] = map[string]string{"id": out.ID}
	}
	if len(out.States) > 0 {
		events[contact.FieldEvent] = h.fieldStates(out.States)
	}
	if len(events) > 0 {
		if b, err := json.Marshal(events); err == nil {
			w.Header().Set("HX-Trigger", string(b))
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(out.Status)
	_, _ = w.Write([]byte(out.Feedback))
}

// Validate reports the state of the field named by the field query
// parameter.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	name := r.URL.Query().Get("field")
	if name == "" {
		middleware.WriteError(w, r, http.StatusBadRequest, "missing field")
		return
	}
	state := h.contact.ValidateOne(name, r.PostForm.Get(name))
	resp := fieldResponse{Field: name, State: state, Class: state.Class()}

	b, err := json.Marshal(map[string][]fieldResponse{contact.FieldEvent: {resp}})
	if err == nil {
		w.Header().Set("HX-Trigger", string(b))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(resp)
}

// fieldStates lists states in schema order.
func (h *Handler) fieldStates(states map[string]contact.FieldState) []fieldResponse {
	out := make([]fieldResponse, 0, len(states))
	for _, f := range h.contact.Schema() {
		if st, ok := states[f.Name]; ok {
			out = append(out, fieldResponse{Field: f.Name, State: st, Class: st.Class()})
		}
	}
	return out
}

// clientKey identifies the submitter for rate limiting. RealIP has already
// replaced RemoteAddr with the forwarded address when one is present.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
