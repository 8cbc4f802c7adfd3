package handlers

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mustafabch/website/internal/middleware"
	"github.com/mustafabch/website/internal/requestctx"
	"github.com/mustafabch/website/internal/site"
	"github.com/mustafabch/website/internal/ui"
)

// Page renders .html files through the pipeline. Other files fall through to
// the static handler. Directory paths resolve to their index.html and the bare
// root redirects to the home page of the request language.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	lang := middleware.Lang(r, h.bundle)
	clean := path.Clean("/" + r.URL.Path)
	if clean == "/" {
		if _, err := fs.Stat(h.root, "index.html"); err != nil {
			http.Redirect(w, r, "/"+lang+"/index.html", http.StatusFound)
			return
		}
	}

	name := pageName(clean, r.URL.Path)
	if path.Ext(name) != ".html" {
		h.static.ServeHTTP(w, r)
		return
	}

	status := http.StatusOK
	src, err := fs.ReadFile(h.root, name)
	if errors.Is(err, fs.ErrNotExist) {
		status = http.StatusNotFound
		name = strings.TrimPrefix(h.site.NotFoundURL(lang), "/")
		src, err = fs.ReadFile(h.root, name)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			middleware.WriteError(w, r, http.StatusNotFound, "not found")
			return
		}
		requestctx.Logger(r.Context()).Error("read page", zap.String("page", name), zap.Error(err))
		middleware.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	page := absoluteURL(r, "/"+name)
	res, err := h.pipeline.Render(r.Context(), bytes.NewReader(src), site.Request{
		URL:   page,
		Lang:  lang,
		Theme: ui.ThemeFromRequest(r),
	})
	if err != nil {
		requestctx.Logger(r.Context()).Error("render page", zap.String("page", name), zap.Error(err))
		middleware.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if res.Redirect != "" {
		if middleware.IsHTMX(r.Context()) {
			w.Header().Set("HX-Redirect", res.Redirect)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, res.Redirect, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Length", strconv.Itoa(len(res.HTML)))
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(res.HTML)
}

// pageName maps a cleaned request path onto a file name in the site tree.
func pageName(clean, raw string) string {
	name := strings.TrimPrefix(clean, "/")
	if name == "" || strings.HasSuffix(raw, "/") {
		return path.Join(name, "index.html")
	}
	return name
}

// absoluteURL is the page URL the pipeline resolves links and datasets
// against. The query of r is kept.
func absoluteURL(r *http.Request, p string) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd == "https" || fwd == "http" {
		scheme = fwd
	}
	return &url.URL{Scheme: scheme, Host: r.Host, Path: p, RawQuery: r.URL.RawQuery}
}

// currentPage is the page an htmx request was issued from, falling back to
// the request itself.
func currentPage(r *http.Request) *url.URL {
	if raw := r.Header.Get("HX-Current-URL"); raw != "" {
		if u, err := url.Parse(raw); err == nil && u.Path != "" {
			if u.Host == "" {
				u.Scheme, u.Host = absoluteURL(r, "/").Scheme, r.Host
			}
			return u
		}
	}
	return absoluteURL(r, r.URL.Path)
}
