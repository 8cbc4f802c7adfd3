// Package widgets mounts slider, lightbox and grid-filter configuration onto
// page markup. The client libraries themselves are opaque: each is reached
// through a capability resolved once at startup.
package widgets

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned by capabilities that were absent at startup.
var ErrNotConfigured = errors.New("widgets: capability not configured")

type Slider interface {
	Mount(sel *goquery.Selection, cfg SliderConfig) error
}

type Lightbox interface {
	Mount(sel *goquery.Selection, cfg LightboxConfig) error
}

type GridFilter interface {
	Mount(sel *goquery.Selection, cfg FilterConfig) error
}

// Capabilities is the set of widget integrations available to the renderer.
type Capabilities struct {
	Slider     Slider
	Lightbox   Lightbox
	GridFilter GridFilter
}

// NotConfigured stands in for a missing capability.
type NotConfigured struct {
	Name string
}

func (n NotConfigured) mount() error { return fmt.Errorf("%w: %s", ErrNotConfigured, n.Name) }

type notConfiguredSlider struct{ NotConfigured }

func (n notConfiguredSlider) Mount(*goquery.Selection, SliderConfig) error { return n.mount() }

type notConfiguredLightbox struct{ NotConfigured }

func (n notConfiguredLightbox) Mount(*goquery.Selection, LightboxConfig) error { return n.mount() }

type notConfiguredFilter struct{ NotConfigured }

func (n notConfiguredFilter) Mount(*goquery.Selection, FilterConfig) error { return n.mount() }

// Resolve fills absent capabilities with NotConfigured stand-ins and logs
// each absence once.
func Resolve(c Capabilities, logger *zap.Logger) Capabilities {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c.Slider == nil {
		logger.Info("widget capability not configured", zap.String("capability", "slider"))
		c.Slider = notConfiguredSlider{NotConfigured{Name: "slider"}}
	}
	if c.Lightbox == nil {
		logger.Info("widget capability not configured", zap.String("capability", "lightbox"))
		c.Lightbox = notConfiguredLightbox{NotConfigured{Name: "lightbox"}}
	}
	if c.GridFilter == nil {
		logger.Info("widget capability not configured", zap.String("capability", "grid-filter"))
		c.GridFilter = notConfiguredFilter{NotConfigured{Name: "grid-filter"}}
	}
	return c
}

// Defaults returns the attribute-based capabilities read by the static bundle.
func Defaults() Capabilities {
	return Capabilities{
		Slider:     AttrSlider{},
		Lightbox:   AttrLightbox{},
		GridFilter: AttrGridFilter{},
	}
}

const (
	SliderAttr   = "data-swiper"
	LightboxAttr = "data-glightbox"
	FilterAttr   = "data-mixitup"
)

// AttrSlider writes the slider config as JSON into data-swiper.
type AttrSlider struct{}

func (AttrSlider) Mount(sel *goquery.Selection, cfg SliderConfig) error {
	return setJSON(sel, SliderAttr, cfg)
}

// AttrLightbox writes the lightbox config as JSON into data-glightbox.
type AttrLightbox struct{}

func (AttrLightbox) Mount(sel *goquery.Selection, cfg LightboxConfig) error {
	return setJSON(sel, LightboxAttr, cfg)
}

// AttrGridFilter writes the grid filter config as JSON into data-mixitup and
// marks the grid ready.
type AttrGridFilter struct{}

func (AttrGridFilter) Mount(sel *goquery.Selection, cfg FilterConfig) error {
	if err := setJSON(sel, FilterAttr, cfg); err != nil {
		return err
	}
	sel.AddClass("mixitup-ready")
	return nil
}

func setJSON(sel *goquery.Selection, attr string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("widgets: encode %s: %w", attr, err)
	}
	sel.SetAttr(attr, string(b))
	return nil
}
