package site

import (
	"bytes"
	"context"
	"io/fs"
	"net/url"
	"testing"
	"testing/fstest"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mustafabch/website/internal/config"
	"github.com/mustafabch/website/internal/content"
	"github.com/mustafabch/website/internal/contact"
	"github.com/mustafabch/website/internal/dataset"
	"github.com/mustafabch/website/internal/i18n"
	"github.com/mustafabch/website/internal/lifecycle"
	"github.com/mustafabch/website/internal/render"
	"github.com/mustafabch/website/internal/testutil"
	"github.com/mustafabch/website/internal/ui"
	"github.com/mustafabch/website/internal/widgets"
)

type nopRelay struct{}

func (nopRelay) Send(context.Context, contact.Submission) error { return nil }

func newPipeline(t *testing.T) (*Pipeline, fs.FS) {
	t.Helper()
	return newPipelineWith(t, nil)
}

func newPipelineWith(t *testing.T, extra fstest.MapFS) (*Pipeline, fs.FS) {
	t.Helper()
	fsys := testutil.SitePages(extra)
	bundle, err := i18n.Default("ar", []string{"ar", "en", "fr"})
	require.NoError(t, err)
	r, err := render.New(bundle)
	require.NoError(t, err)
	f := dataset.NewFetcher(dataset.NewFSTransport(fsys), dataset.WithCache(dataset.NewCache(time.Minute)))
	return New(Deps{
		Site:     config.DefaultSiteFile(),
		Fetcher:  f,
		Renderer: r,
		Contact:  contact.New(nopRelay{}, r, contact.Options{}),
		Widgets:  widgets.Defaults(),
	}), fsys
}

func renderPage(t *testing.T, p *Pipeline, fsys fs.FS, rawURL, lang string) (Result, *goquery.Document) {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	src, err := fs.ReadFile(fsys, u.Path[1:])
	require.NoError(t, err)
	res, err := p.Render(context.Background(), bytes.NewReader(src), Request{URL: u, Lang: lang, Theme: ui.ThemeDark})
	require.NoError(t, err)
	if res.Redirect != "" {
		return res, nil
	}
	return res, testutil.ParseHTML(t, res.HTML)
}

func TestRenderHome(t *testing.T) {
	p, fsys := newPipeline(t)
	_, doc := renderPage(t, p, fsys, "http://site.test/ar/index.html", "ar")

	html := doc.Find("html")
	require.Equal(t, "ar", html.AttrOr("lang", ""))
	require.Equal(t, "rtl", html.AttrOr("dir", ""))
	require.Zero(t, doc.Find(".loader-wrapper").Length())

	require.Equal(t, "true", doc.Find(`[data-component="/components/header.html"]`).AttrOr("data-loaded", ""))
	require.Equal(t, "display: none;", doc.Find(`[data-component="/components/missing.html"]`).AttrOr("style", ""))
	require.Equal(t, "/ar/index.html", doc.Find(".main-menu a.active").AttrOr("href", ""))
	require.Equal(t, "/en/index.html", doc.Find(`[data-lang="en"]`).AttrOr("href", ""))
	require.Equal(t, "80", doc.Find(".header-main").AttrOr("data-sticky-offset", ""))

	require.Equal(t, 4, doc.Find("#home-portfolio-wrapper .swiper-slide").Length())
	_, mounted := doc.Find(".portfolio-slider").Attr(widgets.SliderAttr)
	require.True(t, mounted)
	require.Equal(t, 2, doc.Find(`[data-dynamic="testimonials"] .swiper-slide`).Length())
	require.Equal(t, 2, doc.Find(`[data-dynamic="clients"] .swiper-slide`).Length())
	_, mounted = doc.Find(".clients-slider").Attr(widgets.SliderAttr)
	require.True(t, mounted)

	require.Equal(t, "split-words", doc.Find(".split-collab").AttrOr("data-anim", ""))
}

func TestRenderBlogSearchParam(t *testing.T) {
	p, fsys := newPipeline(t)
	_, doc := renderPage(t, p, fsys, "http://site.test/ar/blog/blog.html?search=brand", "ar")

	require.Equal(t, 3, doc.Find("#blog-grid .mix").Length())
	require.Equal(t, "brand", doc.Find("#blog-search-input").AttrOr("value", ""))
	require.Equal(t, "/ar/blog/blog.html", doc.Find("body").AttrOr("data-replace-url", ""))
	require.True(t, doc.Find("#blog-grid").HasClass("mixitup-ready"))
	require.NotZero(t, doc.Find("#featured-post-container").Children().Length())
}

func TestRenderDetailsNotFoundRedirects(t *testing.T) {
	p, fsys := newPipeline(t)
	res, _ := renderPage(t, p, fsys, "http://site.test/ar/portfolio/project-details.html?id=99", "ar")
	require.Equal(t, "/ar/pages/404.html", res.Redirect)
	require.Nil(t, res.HTML)

	res, doc := renderPage(t, p, fsys, "http://site.test/ar/portfolio/project-details.html?id=2", "ar")
	require.Empty(t, res.Redirect)
	require.Equal(t, "Pulse Reel", doc.Find(`[data-bind="title"]`).Text())
	require.Equal(t, "Pulse Reel - Graphixy", doc.Find("title").Text())
}

func TestRenderContactPage(t *testing.T) {
	p, fsys := newPipeline(t)
	_, doc := renderPage(t, p, fsys, "http://site.test/en/contact.html", "en")

	require.Equal(t, "/contact?lang=en", doc.Find("#contact-form").AttrOr("hx-post", ""))
	require.Equal(t, "Contact Us", doc.Find("#breadcrumb-page-title").Text())
	require.Equal(t, "ltr", doc.Find("html").AttrOr("dir", ""))
}

func TestNeeded(t *testing.T) {
	blog := testutil.ParseString(t, testutil.BlogPage)
	u, _ := url.Parse("/ar/blog/blog.html")
	require.Equal(t, []string{content.BlogFile}, Needed(blog, u))

	home := testutil.ParseString(t, testutil.HomePage)
	u, _ = url.Parse("/ar/index.html")
	require.Equal(t, []string{content.WorksFile, content.TestimonialsFile, content.ClientsFile}, Needed(home, u))

	project := testutil.ParseString(t, testutil.ProjectPage)
	u, _ = url.Parse("/ar/portfolio/project-details.html?id=1")
	require.Equal(t, []string{content.WorksFile}, Needed(project, u))
}

func TestFragmentBindsReveal(t *testing.T) {
	p, _ := newPipeline(t)
	out, err := p.Fragment(`<div class="vre-reveal-container" data-direction="top"></div>`, "en")
	require.NoError(t, err)
	require.Contains(t, out, `data-reveal-from="inset(0 0 100% 0)"`)
}

const caseStudyMarkup = `<!DOCTYPE html><html><head><title>Case</title></head><body>
<h1 data-bind="title"></h1>
<section class="cs-hero lazy-bg" data-bg="/img/hero.jpg"></section>
<img id="shot" src="/img/shot.jpg">
<div class="radial-progress" data-percent="25"><svg><circle class="progress-circle"></circle></svg><span class="radial-value">0%</span></div>
</body></html>`

func TestRenderCaseStudyMedia(t *testing.T) {
	p, fsys := newPipelineWith(t, fstest.MapFS{
		"ar/case-study/case-study.html": {Data: []byte(caseStudyMarkup)},
	})
	_, doc := renderPage(t, p, fsys, "http://site.test/ar/case-study/case-study.html?id=1", "ar")

	require.Equal(t, "lazy", doc.Find("#shot").AttrOr("loading", ""))
	require.Equal(t, "background-image: url('/img/hero.jpg');", doc.Find(".cs-hero").AttrOr("style", ""))
	require.Equal(t, "330", doc.Find(".progress-circle").AttrOr("stroke-dashoffset", ""))
	require.Equal(t, "25%", doc.Find(".radial-value").Text())
	require.Equal(t, 1, doc.Find("#"+ui.ReadingBarID).Length())

	_, home := renderPage(t, p, fsys, "http://site.test/ar/index.html", "ar")
	require.Zero(t, home.Find("#"+ui.ReadingBarID).Length())
}

func TestFragmentMarksImagesLazy(t *testing.T) {
	p, _ := newPipeline(t)
	out, err := p.Fragment(`<div class="card"><img src="/img/a.jpg"></div>`, "ar")
	require.NoError(t, err)
	require.Contains(t, out, `loading="lazy"`)
}

func TestChromeStageRunsOnComponentsLoaded(t *testing.T) {
	doc := testutil.ParseString(t, `<html><body><div id="slot"></div></body></html>`)
	u, err := url.Parse("http://site.test/en/blog/blog.html")
	require.NoError(t, err)

	stage := &chromeStage{controller: ui.NewController(nil), state: ui.State{Lang: "en", Theme: ui.ThemeLight}, page: u}
	bus := lifecycle.NewBus()
	require.NoError(t, bus.Subscribe(stage))

	doc.Find("#slot").SetHtml(`<header class="header-main"><nav class="main-menu"><a href="/en/blog/blog.html">Blog</a></nav></header>`)
	bus.ComponentsLoaded(context.Background(), doc)

	require.True(t, stage.applied)
	require.Equal(t, "ltr", doc.Find("html").AttrOr("dir", ""))
	require.Equal(t, "light", doc.Find("html").AttrOr("data-theme", ""))
	require.Equal(t, "80", doc.Find(".header-main").AttrOr("data-sticky-offset", ""), "injected chrome is covered")
	require.True(t, doc.Find(".main-menu a").HasClass("active"))

	doc.Find("html").SetAttr("dir", "rtl")
	bus.ComponentsLoaded(context.Background(), doc)
	require.Equal(t, "rtl", doc.Find("html").AttrOr("dir", ""), "the stage applies once")
}
