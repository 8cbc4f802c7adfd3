// Package handlers exposes the site over HTTP: rendered pages, htmx fragment
// endpoints, the contact endpoints and the static tree.
package handlers

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/mustafabch/website/internal/config"
	"github.com/mustafabch/website/internal/contact"
	"github.com/mustafabch/website/internal/engine"
	"github.com/mustafabch/website/internal/i18n"
	"github.com/mustafabch/website/internal/middleware"
	"github.com/mustafabch/website/internal/observability"
	"github.com/mustafabch/website/internal/site"
)

const (
	ThemeTogglePath = "/theme/toggle"
	LangSwitchPath  = "/lang/{code}"

	// ContentUpdatedEvent is raised through HX-Trigger after every batch so
	// client widgets can refresh.
	ContentUpdatedEvent = "content:updated"
	// ThemeChangedEvent carries the new theme after a toggle.
	ThemeChangedEvent = "theme:changed"
)

// Deps are the collaborators the router serves.
type Deps struct {
	Site     config.SiteFile
	Root     fs.FS
	Pipeline *site.Pipeline
	Contact  *contact.Manager
	Bundle   *i18n.Bundle
	Logger   *zap.Logger
	// CORSOrigins restricts cross-origin reads of /data/*. Empty allows any
	// origin.
	CORSOrigins []string
}

// Handler holds the per-route handlers.
type Handler struct {
	site     config.SiteFile
	root     fs.FS
	pipeline *site.Pipeline
	contact  *contact.Manager
	bundle   *i18n.Bundle
	static   http.Handler
}

// New returns the handler set without routing.
func New(d Deps) *Handler {
	return &Handler{
		site:     d.Site,
		root:     d.Root,
		pipeline: d.Pipeline,
		contact:  d.Contact,
		bundle:   d.Bundle,
		static:   middleware.AssetsWithCache(d.Root, middleware.Revalidate),
	}
}

// NewRouter wires every route and the middleware stack.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := New(d)

	r := chi.NewRouter()
	r.Use(chiMid.RequestID)
	r.Use(chiMid.RealIP)
	r.Use(observability.InjectLoggerMiddleware(logger))
	r.Use(observability.TraceMiddleware)
	r.Use(observability.RequestLoggerMiddleware)
	r.Use(observability.RecoveryMiddleware(logger))
	r.Use(middleware.HTMX)
	r.Use(middleware.Locale(d.Bundle))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get(engine.ContentPath+"{section}", h.Content)
	r.Get(engine.SearchPath, h.Search)
	if h.contact != nil {
		r.Post(contact.SubmitPath, h.Submit)
		r.Post(contact.ValidatePath, h.Validate)
	}
	r.Post(ThemeTogglePath, h.ToggleTheme)
	r.Get(LangSwitchPath, h.SwitchLanguage)

	dataCORS := cors.New(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		MaxAge:         600,
	})
	r.With(dataCORS.Handler).Handle("/data/*", h.static)
	r.Handle("/assets/*", middleware.AssetsWithCache(d.Root, middleware.LongCache))
	r.Handle("/components/*", h.static)

	r.Get("/*", h.Page)
	r.Head("/*", h.Page)
	return r
}
