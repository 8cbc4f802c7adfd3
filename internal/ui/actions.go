// Package ui stamps the page chrome: delegated click actions, theme, text
// direction, scroll thresholds and the preloader.
package ui

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ActionAttr names the attribute read by the single delegated click listener.
const ActionAttr = "data-action"

const (
	ActionToggleSubmenu    = "toggle-submenu"
	ActionToggleMobileMenu = "toggle-mobile-menu"
	ActionCloseMobileMenu  = "close-mobile-menu"
	ActionToggleLanguages  = "toggle-language-menu"
	ActionAccordion        = "accordion"
	ActionScrollTop        = "scroll-top"
	ActionThemeToggle      = "theme-toggle"
	ActionDismissOutside   = "dismiss-outside"
)

// Rule binds an action, and optional extra attributes, to a selector.
type Rule struct {
	Selector string
	Action   string
	Attrs    map[string]string
}

// Registry holds the page actions. Legacy inline handlers are rewritten to
// their registered action.
type Registry struct {
	rules  []Rule
	legacy map[string]string
}

var inlineCall = regexp.MustCompile(`^\s*(?:return\s+)?([A-Za-z_$][\w$]*)\s*\(`)

func NewRegistry() *Registry {
	return &Registry{legacy: map[string]string{}}
}

// Register adds r. An empty selector or action is rejected.
func (reg *Registry) Register(r Rule) error {
	if strings.TrimSpace(r.Selector) == "" || strings.TrimSpace(r.Action) == "" {
		return fmt.Errorf("ui: rule needs a selector and an action: %+v", r)
	}
	reg.rules = append(reg.rules, r)
	return nil
}

// Legacy maps an inline handler function name to an action.
func (reg *Registry) Legacy(fn, action string) {
	reg.legacy[fn] = action
}

// Actions lists every action the registry can stamp, sorted.
func (reg *Registry) Actions() []string {
	var out []string
	for _, r := range reg.rules {
		out = append(out, r.Action)
	}
	for _, a := range reg.legacy {
		out = append(out, a)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Apply stamps every rule and rewrites recognised onclick handlers. Elements
// that already carry an action keep it. It returns the number of elements
// stamped.
func (reg *Registry) Apply(doc *goquery.Document) int {
	n := 0
	doc.Find("[onclick]").Each(func(_ int, s *goquery.Selection) {
		m := inlineCall.FindStringSubmatch(s.AttrOr("onclick", ""))
		if m == nil {
			return
		}
		action, ok := reg.legacy[m[1]]
		if !ok {
			return
		}
		s.RemoveAttr("onclick")
		s.SetAttr(ActionAttr, action)
		n++
	})
	for _, r := range reg.rules {
		doc.Find(r.Selector).Each(func(_ int, s *goquery.Selection) {
			if _, ok := s.Attr(ActionAttr); ok {
				return
			}
			s.SetAttr(ActionAttr, r.Action)
			for k, v := range r.Attrs {
				s.SetAttr(k, v)
			}
			n++
		})
	}
	return n
}

// DefaultRegistry returns the actions of the site chrome.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Legacy("toggleSubMenu", ActionToggleSubmenu)
	reg.Legacy("toggleMobileMenu", ActionToggleMobileMenu)
	for _, r := range []Rule{
		{Selector: ".menu-bar-btn", Action: ActionToggleMobileMenu, Attrs: map[string]string{"data-target": ".nft-mobile-menu"}},
		{Selector: ".close-menu, .mobile-menu-overlay", Action: ActionCloseMobileMenu, Attrs: map[string]string{"data-target": ".nft-mobile-menu"}},
		{Selector: ".flag-selector-btn", Action: ActionToggleLanguages, Attrs: map[string]string{"data-target": ".language-selector"}},
		{Selector: ".language-selector", Action: ActionDismissOutside, Attrs: map[string]string{"data-dismiss-class": "open"}},
		{Selector: ".accordion-header", Action: ActionAccordion, Attrs: map[string]string{"data-group": ".accordion-list"}},
		{Selector: "#progress", Action: ActionScrollTop},
		{Selector: "#themeToggleBtn", Action: ActionThemeToggle, Attrs: map[string]string{
			"hx-post": "/theme/toggle",
			"hx-swap": "none",
		}},
	} {
		_ = reg.Register(r)
	}
	return reg
}
