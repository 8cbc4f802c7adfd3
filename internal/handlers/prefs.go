package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mustafabch/website/internal/middleware"
	"github.com/mustafabch/website/internal/nav"
	"github.com/mustafabch/website/internal/ui"
)

const langCookieMaxAge = 365 * 24 * time.Hour

// ToggleTheme flips the theme cookie. The client applies the returned theme
// from the ThemeChangedEvent trigger.
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	next := ui.ThemeFromRequest(r).Toggle()
	ui.SetThemeCookie(w, next)
	if b, err := json.Marshal(map[string]string{ThemeChangedEvent: string(next)}); err == nil {
		w.Header().Set("HX-Trigger", string(b))
	}
	w.WriteHeader(http.StatusNoContent)
}

// SwitchLanguage redirects to the current page in another language and
// remembers the choice. The page is taken from the from query parameter, then
// the Referer. Only same-site paths are followed.
func (h *Handler) SwitchLanguage(w http.ResponseWriter, r *http.Request) {
	code := strings.ToLower(chi.URLParam(r, "code"))
	if !h.bundle.IsSupported(code) {
		middleware.WriteError(w, r, http.StatusNotFound, "unsupported language")
		return
	}
	from, id := sourcePage(r)
	target := nav.SwitchLanguage(from, code)
	if id != "" {
		target += "?id=" + url.QueryEscape(id)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.LangCookie,
		Value:    code,
		Path:     "/",
		MaxAge:   int(langCookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	if middleware.IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// sourcePage returns the path and id parameter of the page the switch was
// requested from.
func sourcePage(r *http.Request) (string, string) {
	raw := r.URL.Query().Get("from")
	if raw == "" {
		raw = r.Referer()
	}
	u, err := url.Parse(raw)
	if err != nil || !strings.HasPrefix(u.Path, "/") {
		return "/", ""
	}
	if u.Host != "" && !strings.EqualFold(u.Host, r.Host) {
		return "/", ""
	}
	return u.Path, u.Query().Get("id")
}
