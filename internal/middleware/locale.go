package middleware

import (
	"net/http"
	"strings"

	"github.com/mustafabch/website/internal/i18n"
	"github.com/mustafabch/website/internal/requestctx"
)

// LangCookie remembers an explicit language choice.
const LangCookie = "hl"

// Locale resolves the page language and stores it in the request context.
// Precedence: the first path segment, the lang query parameter, the hl
// cookie, then Accept-Language.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := ResolveLang(bundle, r)
			w.Header().Add("Vary", "Accept-Language")
			w.Header().Set("Content-Language", lang)
			ctx := requestctx.WithLang(r.Context(), lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveLang applies the Locale precedence to r without touching the context.
func ResolveLang(bundle *i18n.Bundle, r *http.Request) string {
	seg := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)[0]
	if bundle.IsSupported(seg) {
		return strings.ToLower(seg)
	}
	if q := r.URL.Query().Get("lang"); q != "" && bundle.IsSupported(q) {
		return strings.ToLower(q)
	}
	if c, err := r.Cookie(LangCookie); err == nil && bundle.IsSupported(c.Value) {
		return strings.ToLower(c.Value)
	}
	return bundle.Resolve(r.Header.Get("Accept-Language"))
}

// Lang returns the language stored by Locale, or the bundle fallback.
func Lang(r *http.Request, bundle *i18n.Bundle) string {
	if l := requestctx.Lang(r.Context()); l != "" {
		return l
	}
	return bundle.Fallback()
}
