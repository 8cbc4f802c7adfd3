package widgets

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mustafabch/website/internal/lifecycle"
	"github.com/mustafabch/website/internal/requestctx"
)

// Manager mounts widgets for one document.
type Manager struct {
	caps Capabilities
	doc  *goquery.Document
	rtl  bool
}

// NewManager binds resolved capabilities to doc.
func NewManager(caps Capabilities, doc *goquery.Document) *Manager {
	dir, _ := doc.Find("html").First().Attr("dir")
	return &Manager{caps: caps, doc: doc, rtl: strings.EqualFold(dir, "rtl")}
}

// MountAll mounts every slider preset, grid filter and the lightbox present
// on the page. Missing markup is skipped.
func (m *Manager) MountAll(ctx context.Context) {
	for _, p := range Presets {
		m.mountSlider(ctx, p, m.doc.Find(p.Selector).First())
	}
	for _, sel := range GridSelectors {
		m.mountGrid(ctx, m.doc.Find(sel).First())
	}
	m.mountLightbox(ctx)
}

// OnSliderReady mounts the preset whose container wraps freshly rendered
// slides. Unrecognised containers get the portfolio preset.
func (m *Manager) OnSliderReady(ctx context.Context, ev lifecycle.SliderReady) {
	if ev.Selection == nil {
		return
	}
	for _, p := range Presets {
		if host := ev.Selection.Closest(p.Selector); host.Length() > 0 {
			m.mountSlider(ctx, p, host.First())
			return
		}
	}
	m.mountSlider(ctx, PortfolioSlider, ev.Selection.Closest(".swiper").First())
}

// OnContentUpdated re-mounts grid filters that are already mounted, keeping
// their active filter, and refreshes the lightbox.
func (m *Manager) OnContentUpdated(ctx context.Context, ev lifecycle.ContentUpdated) {
	for _, sel := range GridSelectors {
		grid := m.doc.Find(sel).First()
		if _, mounted := grid.Attr(FilterAttr); mounted {
			m.mountGrid(ctx, grid)
		}
	}
	if ev.Section == lifecycle.SectionGallery || ev.Section == lifecycle.SectionWorks {
		m.mountLightbox(ctx)
	}
}

func (m *Manager) mountSlider(ctx context.Context, p SliderPreset, el *goquery.Selection) {
	if el.Length() == 0 || el.HasClass("swiper-initialized") {
		return
	}
	if _, mounted := el.Attr(SliderAttr); mounted {
		return
	}
	m.report(ctx, "slider", p.Name, m.caps.Slider.Mount(el, p.Config(m.rtl)))
}

func (m *Manager) mountGrid(ctx context.Context, grid *goquery.Selection) {
	if grid.Length() == 0 {
		return
	}
	cfg := defaultFilter()
	if active := activeFilter(grid); active != "" {
		cfg.Load = &FilterLoad{Filter: active}
	}
	m.report(ctx, "grid-filter", grid.AttrOr("id", ""), m.caps.GridFilter.Mount(grid, cfg))
}

func activeFilter(grid *goquery.Selection) string {
	raw, ok := grid.Attr(FilterAttr)
	if !ok {
		return ""
	}
	var cfg FilterConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil || cfg.Load == nil {
		return ""
	}
	return cfg.Load.Filter
}

func (m *Manager) mountLightbox(ctx context.Context) {
	if m.doc.Find(LightboxSelector).Length() == 0 {
		return
	}
	m.report(ctx, "lightbox", LightboxSelector, m.caps.Lightbox.Mount(m.doc.Find("body").First(), defaultLightbox()))
}

func (m *Manager) report(ctx context.Context, kind, target string, err error) {
	if err == nil || errors.Is(err, ErrNotConfigured) {
		return
	}
	requestctx.Logger(ctx).Warn("widget mount failed",
		zap.String("widget", kind),
		zap.String("target", target),
		zap.Error(err),
	)
}
