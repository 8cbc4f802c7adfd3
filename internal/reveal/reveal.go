// Package reveal stamps the scroll-entrance animation state onto markup. The
// client bundle reads the data-reveal and data-anim attributes and plays each
// entrance once.
package reveal

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/mustafabch/website/internal/lifecycle"
)

const (
	revealStart  = "top 85%"
	sectionStart = "top 90%"
	endClip      = "inset(0 0 0 0)"
)

// Registry remembers which elements have been bound.
type Registry struct {
	mu   sync.Mutex
	seen map[*html.Node]struct{}
}

func NewRegistry() *Registry {
	return &Registry{seen: make(map[*html.Node]struct{})}
}

// Claim marks n as bound and reports whether it was unbound before.
func (r *Registry) Claim(n *html.Node) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[n]; ok {
		return false
	}
	r.seen[n] = struct{}{}
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// StartClip returns the clip-path an element enters from. Left and right swap
// under right-to-left layouts; unknown directions use the left-to-right start.
func StartClip(direction string, rtl bool) string {
	switch direction {
	case "top":
		return "inset(0 0 100% 0)"
	case "bottom":
		return "inset(100% 0 0 0)"
	case "left":
		if rtl {
			return "inset(0 0 0 100%)"
		}
		return "inset(0 100% 0 0)"
	case "right":
		if rtl {
			return "inset(0 100% 0 0)"
		}
		return "inset(0 0 0 100%)"
	default:
		return "inset(0 100% 0 0)"
	}
}

// Animator binds entrances for one document.
type Animator struct {
	registry *Registry
	rtl      bool
}

// New returns an Animator for doc. Direction is read from the root element.
func New(doc *goquery.Document) *Animator {
	dir, _ := doc.Find("html").First().Attr("dir")
	return &Animator{registry: NewRegistry(), rtl: strings.EqualFold(dir, "rtl")}
}

// NewWithDirection is New for fragments that carry no root element.
func NewWithDirection(rtl bool) *Animator {
	return &Animator{registry: NewRegistry(), rtl: rtl}
}

// Registry exposes the bound-element set.
func (a *Animator) Registry() *Registry { return a.registry }

// Run binds every unbound animated element under root.
func (a *Animator) Run(root *goquery.Selection) {
	a.bindReveals(root)
	a.bindTitles(root)
	a.bindSkewUp(root)
	a.bindSections(root)
	a.bindCounters(root)
	a.bindRadials(root)
}

// OnContentUpdated binds reveal containers inside newly rendered content.
func (a *Animator) OnContentUpdated(_ context.Context, ev lifecycle.ContentUpdated) {
	if ev.Selection == nil {
		return
	}
	a.bindReveals(ev.Selection)
}

// within selects root's matching elements including root itself.
func within(root *goquery.Selection, selector string) *goquery.Selection {
	return root.Filter(selector).AddSelection(root.Find(selector))
}

func (a *Animator) claimAll(root *goquery.Selection, selector string, bind func(*goquery.Selection)) {
	within(root, selector).Each(func(_ int, el *goquery.Selection) {
		if a.registry.Claim(el.Get(0)) {
			bind(el)
		}
	})
}

func (a *Animator) bindReveals(root *goquery.Selection) {
	a.claimAll(root, ".vre-reveal-container", func(el *goquery.Selection) {
		direction := el.AttrOr("data-entrance", el.AttrOr("data-direction", "left"))
		el.SetAttr("data-reveal", "clip")
		el.SetAttr("data-reveal-from", StartClip(direction, a.rtl))
		el.SetAttr("data-reveal-to", endClip)
		el.SetAttr("data-reveal-start", revealStart)
		el.SetAttr("data-reveal-once", "true")

		el.Find(".vre-reveal-image").First().SetAttr("data-reveal-initial", `{"scale":1.3,"filter":"brightness(0.8)"}`)
		overlay := el.Find(".vre-content-overlay").First()
		if overlay.Length() > 0 {
			overlay.SetAttr("data-reveal-initial", `{"autoAlpha":0}`)
			overlay.Find("h5").First().SetAttr("data-reveal-initial", `{"autoAlpha":0,"y":30}`)
		}
	})
}

func (a *Animator) bindTitles(root *goquery.Selection) {
	x := 50
	if a.rtl {
		x = -50
	}
	a.claimAll(root, ".split-collab", func(el *goquery.Selection) {
		el.SetAttr("data-anim", "split-words")
		el.SetAttr("data-anim-x", strconv.Itoa(x))
		el.SetAttr("data-anim-start", revealStart)
		el.SetAttr("data-anim-once", "true")
	})
}

func (a *Animator) bindSkewUp(root *goquery.Selection) {
	skew := -5
	if a.rtl {
		skew = 5
	}
	a.claimAll(root, ".skew-up", func(el *goquery.Selection) {
		el.SetAttr("data-anim", "skew-up")
		el.SetAttr("data-anim-skew", strconv.Itoa(skew))
		el.SetAttr("data-anim-start", revealStart)
		el.SetAttr("data-anim-once", "true")
	})
}

func (a *Animator) bindSections(root *goquery.Selection) {
	a.claimAll(root, ".vre-slide-up-gsap", func(el *goquery.Selection) {
		el.SetAttr("data-anim", "slide-up")
		el.SetAttr("data-anim-start", sectionStart)
		el.SetAttr("data-anim-once", "true")
	})
}

// bindCounters uses the counted class as its marker so counters stay bound
// across fragments rendered by separate requests.
func (a *Animator) bindCounters(root *goquery.Selection) {
	within(root, ".counter").Each(func(_ int, el *goquery.Selection) {
		if el.HasClass("counted") {
			return
		}
		el.AddClass("counted")
		el.SetAttr("data-anim", "counter")
		el.SetAttr("data-anim-to", strings.TrimSpace(el.Text()))
		el.SetAttr("data-anim-start", revealStart)
		el.SetAttr("data-anim-once", "true")
	})
}
