package ui

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mustafabch/website/internal/i18n"
)

// Theme is the persisted colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	ThemeCookie = "theme"
	themeMaxAge = 365 * 24 * time.Hour
)

const (
	StickyOffset      = 80
	ProgressThreshold = 100

	headerSelector    = ".header-main"
	progressSelector  = "#progress"
	preloaderSelector = ".loader-wrapper"
)

// ParseTheme maps anything other than "light" to dark.
func ParseTheme(v string) Theme {
	if strings.EqualFold(strings.TrimSpace(v), string(ThemeLight)) {
		return ThemeLight
	}
	return ThemeDark
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// ThemeFromRequest reads the theme cookie. A missing cookie is dark.
func ThemeFromRequest(r *http.Request) Theme {
	c, err := r.Cookie(ThemeCookie)
	if err != nil {
		return ThemeDark
	}
	return ParseTheme(c.Value)
}

// SetThemeCookie persists t for a year.
func SetThemeCookie(w http.ResponseWriter, t Theme) {
	http.SetCookie(w, &http.Cookie{
		Name:     ThemeCookie,
		Value:    string(t),
		Path:     "/",
		MaxAge:   int(themeMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// State is the per-request chrome input.
type State struct {
	Lang  string
	Theme Theme
}

// Controller applies the chrome state and the action registry to a page.
type Controller struct {
	actions *Registry
}

func NewController(actions *Registry) *Controller {
	if actions == nil {
		actions = DefaultRegistry()
	}
	return &Controller{actions: actions}
}

// Registry returns the action registry.
func (c *Controller) Registry() *Registry { return c.actions }

// Apply writes language, direction and theme onto <html>, stamps the scroll
// thresholds and rewrites the page's click hooks.
func (c *Controller) Apply(doc *goquery.Document, st State) {
	root := doc.Find("html").First()
	if st.Lang != "" {
		root.SetAttr("lang", st.Lang)
		root.SetAttr("dir", i18n.Dir(st.Lang))
	}
	if st.Theme == ThemeLight {
		root.SetAttr("data-theme", string(ThemeLight))
	} else {
		root.RemoveAttr("data-theme")
	}

	doc.Find(headerSelector).SetAttr("data-sticky-offset", strconv.Itoa(StickyOffset))
	doc.Find(progressSelector).SetAttr("data-progress-threshold", strconv.Itoa(ProgressThreshold))

	c.actions.Apply(doc)
}

// RemovePreloader drops the loading overlay and reports whether one existed.
func RemovePreloader(doc *goquery.Document) bool {
	sel := doc.Find(preloaderSelector)
	if sel.Length() == 0 {
		return false
	}
	sel.Remove()
	return true
}
