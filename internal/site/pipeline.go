// Package site runs a page through every render stage: fragment injection,
// chrome, content, details, dynamic sliders, contact wiring, breadcrumbs,
// widgets, animations and lazy media.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"slices"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mustafabch/website/internal/components"
	"github.com/mustafabch/website/internal/config"
	"github.com/mustafabch/website/internal/contact"
	"github.com/mustafabch/website/internal/content"
	"github.com/mustafabch/website/internal/dataset"
	"github.com/mustafabch/website/internal/details"
	"github.com/mustafabch/website/internal/dynamic"
	"github.com/mustafabch/website/internal/engine"
	"github.com/mustafabch/website/internal/i18n"
	"github.com/mustafabch/website/internal/lifecycle"
	"github.com/mustafabch/website/internal/nav"
	"github.com/mustafabch/website/internal/observability"
	"github.com/mustafabch/website/internal/render"
	"github.com/mustafabch/website/internal/requestctx"
	"github.com/mustafabch/website/internal/reveal"
	"github.com/mustafabch/website/internal/ui"
	"github.com/mustafabch/website/internal/widgets"
)

// Deps are the collaborators a Pipeline is assembled from.
type Deps struct {
	Site      config.SiteFile
	Fetcher   *dataset.Fetcher
	Renderer  *render.Renderer
	Contact   *contact.Manager
	Widgets   widgets.Capabilities
	Actions   *ui.Registry
	Logger    *zap.Logger
	Transport dataset.Transport
}

// Pipeline renders full pages.
type Pipeline struct {
	site        config.SiteFile
	fetcher     *dataset.Fetcher
	components  *components.Loader
	chrome      *ui.Controller
	engine      *engine.Engine
	details     *details.Manager
	dynamic     *dynamic.Loader
	contact     *contact.Manager
	breadcrumbs *nav.Breadcrumbs
	widgets     widgets.Capabilities
}

// New assembles a Pipeline. Widget capabilities are resolved here, once.
func New(d Deps) *Pipeline {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := d.Transport
	if transport == nil {
		transport = d.Fetcher.Transport()
	}
	return &Pipeline{
		site:       d.Site,
		fetcher:    d.Fetcher,
		components: components.New(transport, logger),
		chrome:     ui.NewController(d.Actions),
		engine: engine.New(d.Fetcher, d.Renderer, engine.Options{
			BatchSize:       d.Site.BatchSize,
			HomeSliderCount: d.Site.HomeSliderCount,
		}),
		details:     details.New(d.Fetcher, d.Renderer, d.Site.Brand),
		dynamic:     dynamic.New(d.Fetcher, d.Renderer),
		contact:     d.Contact,
		breadcrumbs: nav.NewBreadcrumbs(d.Site, d.Renderer.Bundle()),
		widgets:     widgets.Resolve(d.Widgets, logger),
	}
}

// Engine exposes the content engine for the fragment endpoints.
func (p *Pipeline) Engine() *engine.Engine { return p.engine }

// Request is the per-page render input.
type Request struct {
	URL   *url.URL
	Lang  string
	Theme ui.Theme
}

// Result is either a rendered page or a redirect.
type Result struct {
	HTML     []byte
	Redirect string
}

// Render parses src and runs it through every stage.
func (p *Pipeline) Render(ctx context.Context, src io.Reader, req Request) (Result, error) {
	ctx, span := observability.Tracer().Start(ctx, "site.render", trace.WithAttributes(
		attribute.String("url.path", req.URL.Path),
		attribute.String("site.lang", req.Lang),
	))
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(src)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("site: parse page: %w", err)
	}
	res, err := p.RenderDocument(ctx, doc, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

// RenderDocument runs the stages on an already parsed document.
func (p *Pipeline) RenderDocument(ctx context.Context, doc *goquery.Document, req Request) (Result, error) {
	lang := req.Lang
	if lang == "" {
		lang = p.site.DefaultLanguage
	}
	bus := lifecycle.NewBus()
	chrome := &chromeStage{controller: p.chrome, state: ui.State{Lang: lang, Theme: req.Theme}, page: req.URL}
	if err := bus.Subscribe(chrome); err != nil {
		return Result{}, err
	}

	if err := p.components.Load(ctx, doc, req.URL, bus); err != nil {
		return Result{}, err
	}

	animator := reveal.New(doc)
	mounter := widgets.NewManager(p.widgets, doc)
	for _, l := range []any{animator, mounter} {
		if err := bus.Subscribe(l); err != nil {
			return Result{}, err
		}
	}

	p.prefetch(ctx, doc, req.URL)

	if err := p.engine.Init(ctx, engine.Page{Doc: doc, URL: req.URL, Lang: lang, Bus: bus}); err != nil {
		return Result{}, fmt.Errorf("site: content: %w", err)
	}
	err := p.details.Init(ctx, details.Page{Doc: doc, URL: req.URL, Lang: lang, Bus: bus})
	if errors.Is(err, details.ErrNotFound) {
		return Result{Redirect: p.site.NotFoundURL(lang)}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("site: details: %w", err)
	}
	p.dynamic.Init(ctx, dynamic.Page{Doc: doc, URL: req.URL, Bus: bus})

	if p.contact != nil {
		p.contact.Stamp(doc, lang)
	}
	p.breadcrumbs.Apply(doc, req.URL, lang)
	mounter.MountAll(ctx)
	animator.Run(doc.Selection)
	reveal.Lazy(doc.Selection)
	if path.Base(req.URL.Path) == caseStudyPage {
		ui.AddReadingBar(doc)
	}
	ui.RemovePreloader(doc)

	html, err := doc.Html()
	if err != nil {
		return Result{}, fmt.Errorf("site: serialize: %w", err)
	}
	return Result{HTML: []byte(html)}, nil
}

// prefetch warms the dataset cache for every collection the page's stages
// will read, in parallel. Stages then mutate the document one at a time.
func (p *Pipeline) prefetch(ctx context.Context, doc *goquery.Document, page *url.URL) {
	if p.fetcher.Cache() == nil {
		return
	}
	names := Needed(doc, page)
	if len(names) < 2 {
		return
	}
	var g errgroup.Group
	for _, name := range names {
		name := name
		g.Go(func() error {
			_, _ = p.fetcher.Fetch(ctx, page, name)
			return nil
		})
	}
	_ = g.Wait()
	requestctx.Logger(ctx).Debug("datasets prefetched", zap.Strings("datasets", names))
}

// Needed lists the datasets the page's markup asks for.
func Needed(doc *goquery.Document, page *url.URL) []string {
	present := func(sel string) bool { return doc.Find(sel).Length() > 0 }
	var names []string
	add := func(name string) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	if present("#blog-grid, #featured-post-container, .sidebar-search-form") {
		add(content.BlogFile)
	}
	if present("#works-grid, #home-portfolio-wrapper") {
		add(content.WorksFile)
	}
	if present("#case-studies-grid") {
		add(content.CaseStudiesFile)
	}
	if page.Query().Get("id") != "" {
		switch details.KindOf(page.Path) {
		case details.KindWork:
			add(content.WorksFile)
		case details.KindCaseStudy:
			add(content.CaseStudiesFile)
		case details.KindBlog:
			add(content.BlogFile)
		}
	}
	if present(dynamic.TestimonialsSelector) {
		add(content.TestimonialsFile)
	}
	if present(dynamic.ClientsSelector) {
		add(content.ClientsFile)
	}
	return names
}

// Fragment binds animations on a partial response and serializes it.
func (p *Pipeline) Fragment(fragment, lang string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString("<body>" + fragment + "</body>"))
	if err != nil {
		return "", fmt.Errorf("site: parse fragment: %w", err)
	}
	body := doc.Find("body")
	reveal.NewWithDirection(i18n.Dir(lang) == "rtl").Run(body)
	reveal.Lazy(body)
	return body.Html()
}
