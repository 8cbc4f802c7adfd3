// Package dynamic fills the testimonial and client sliders from their
// datasets.
package dynamic

import (
	"context"
	"html/template"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mustafabch/website/internal/content"
	"github.com/mustafabch/website/internal/dataset"
	"github.com/mustafabch/website/internal/lifecycle"
	"github.com/mustafabch/website/internal/render"
	"github.com/mustafabch/website/internal/requestctx"
)

const (
	TestimonialsSelector = `[data-dynamic="testimonials"]`
	ClientsSelector      = `[data-dynamic="clients"]`
	wrapperSelector      = ".swiper-wrapper"
)

// Loader renders dataset-backed slider sections.
type Loader struct {
	fetcher  *dataset.Fetcher
	renderer *render.Renderer
}

func New(f *dataset.Fetcher, r *render.Renderer) *Loader {
	return &Loader{fetcher: f, renderer: r}
}

// Page is the document being rendered.
type Page struct {
	Doc *goquery.Document
	URL *url.URL
	Bus lifecycle.Publisher
}

// Init fills every dynamic section present on the page. A section whose
// dataset cannot be loaded keeps its static markup.
func (l *Loader) Init(ctx context.Context, p Page) {
	bus := p.Bus
	if bus == nil {
		bus = lifecycle.Discard
	}
	if wrapper := p.Doc.Find(TestimonialsSelector).First().Find(wrapperSelector).First(); wrapper.Length() > 0 {
		items, err := dataset.Load[content.Testimonial](ctx, l.fetcher, p.URL, content.TestimonialsFile)
		if err != nil {
			logSkip(ctx, content.TestimonialsFile, err)
		} else {
			l.fill(ctx, bus, wrapper, content.TestimonialsFile, func() (template.HTML, error) {
				return l.renderer.TestimonialSlides(items)
			})
		}
	}
	if wrapper := p.Doc.Find(ClientsSelector).First().Find(wrapperSelector).First(); wrapper.Length() > 0 {
		items, err := dataset.Load[content.Client](ctx, l.fetcher, p.URL, content.ClientsFile)
		if err != nil {
			logSkip(ctx, content.ClientsFile, err)
		} else {
			l.fill(ctx, bus, wrapper, content.ClientsFile, func() (template.HTML, error) {
				return l.renderer.ClientSlides(items)
			})
		}
	}
}

func (l *Loader) fill(ctx context.Context, bus lifecycle.Publisher, wrapper *goquery.Selection, name string, build func() (template.HTML, error)) {
	slides, err := build()
	if err != nil {
		logSkip(ctx, name, err)
		return
	}
	wrapper.SetHtml(string(slides))
	bus.ContentUpdated(ctx, lifecycle.ContentUpdated{Section: lifecycle.SectionDynamic, Selection: wrapper.Children()})
	bus.SliderReady(ctx, lifecycle.SliderReady{Section: lifecycle.SectionDynamic, Selection: wrapper})
}

func logSkip(ctx context.Context, name string, err error) {
	requestctx.Logger(ctx).Warn("dynamic section skipped", zap.String("dataset", name), zap.Error(err))
}
