// Package engine fills the listing grids, the featured post, the sidebar
// search and the home portfolio slider, and serves the follow-up batches
// requested by the load-more controls.
package engine

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/mustafabch/website/internal/content"
	"github.com/mustafabch/website/internal/dataset"
	"github.com/mustafabch/website/internal/lifecycle"
	"github.com/mustafabch/website/internal/links"
	"github.com/mustafabch/website/internal/render"
)

const (
	defaultBatchSize = 6
	defaultHomeCount = 4

	ContentPath = "/_content/"
	SearchPath  = "/_search/blog"
)

// ErrUnknownSection is returned for section names outside blog, works and cases.
var ErrUnknownSection = errors.New("engine: unknown section")

type section struct {
	name   lifecycle.Section
	grid   string
	button string
	file   string
}

var sections = map[lifecycle.Section]section{
	lifecycle.SectionBlog:  {name: lifecycle.SectionBlog, grid: "blog-grid", button: "load-more-blog", file: content.BlogFile},
	lifecycle.SectionWorks: {name: lifecycle.SectionWorks, grid: "works-grid", button: "load-more-works", file: content.WorksFile},
	lifecycle.SectionCases: {name: lifecycle.SectionCases, grid: "case-studies-grid", button: "load-more-cases", file: content.CaseStudiesFile},
}

// Engine renders dataset-backed sections into pages and fragments.
type Engine struct {
	fetcher   *dataset.Fetcher
	renderer  *render.Renderer
	batchSize int
	homeCount int
}

// Options tunes batch sizes.
type Options struct {
	BatchSize       int
	HomeSliderCount int
}

func New(f *dataset.Fetcher, r *render.Renderer, opts Options) *Engine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.HomeSliderCount <= 0 {
		opts.HomeSliderCount = defaultHomeCount
	}
	return &Engine{
		fetcher:   f,
		renderer:  r,
		batchSize: opts.BatchSize,
		homeCount: opts.HomeSliderCount,
	}
}

// Page is the document being rendered together with its request context.
type Page struct {
	Doc  *goquery.Document
	URL  *url.URL
	Lang string
	Bus  lifecycle.Publisher
}

func (p Page) bus() lifecycle.Publisher {
	if p.Bus == nil {
		return lifecycle.Discard
	}
	return p.Bus
}

type collections struct {
	blog  []content.BlogPost
	works []content.Work
	cases []content.CaseStudy

	// unavailable datasets, set per file so concurrent loads never share a field
	blogDown, worksDown, casesDown bool
}

// unavailable reports whether the dataset behind file failed to load, as
// opposed to loading with no records.
func (c collections) unavailable(file string) bool {
	switch file {
	case content.BlogFile:
		return c.blogDown
	case content.WorksFile:
		return c.worksDown
	case content.CaseStudiesFile:
		return c.casesDown
	}
	return false
}

// filters narrows the blog grid.
type filters struct {
	query    string
	category string
}

func load[T any](ctx context.Context, f *dataset.Fetcher, page *url.URL, name string, dst *[]T, down *bool) func() error {
	return func() error {
		items, err := dataset.Load[T](ctx, f, page, name)
		if err != nil {
			// a failed dataset only skips its own sections
			*down = true
			return nil
		}
		*dst = items
		return nil
	}
}

// Init detects which sections the page carries, loads only the datasets they
// need in parallel and renders the first batch of each.
func (e *Engine) Init(ctx context.Context, p Page) error {
	doc := p.Doc
	present := func(sel string) bool { return doc.Find(sel).Length() > 0 }

	hasBlog := present("#blog-grid")
	hasWorks := present("#works-grid")
	hasCases := present("#case-studies-grid")
	hasFeatured := present("#featured-post-container")
	hasSidebar := present(".sidebar-search-form")
	hasHome := present("#home-portfolio-wrapper")

	var data collections
	var g errgroup.Group
	if hasBlog || hasFeatured || hasSidebar {
		g.Go(load(ctx, e.fetcher, p.URL, content.BlogFile, &data.blog, &data.blogDown))
	}
	if hasWorks || hasHome {
		g.Go(load(ctx, e.fetcher, p.URL, content.WorksFile, &data.works, &data.worksDown))
	}
	if hasCases {
		g.Go(load(ctx, e.fetcher, p.URL, content.CaseStudiesFile, &data.cases, &data.casesDown))
	}
	_ = g.Wait()

	if hasFeatured {
		if err := e.renderFeatured(ctx, p, data.blog); err != nil {
			return err
		}
	}

	gridSearch := false
	if hasBlog {
		f := filters{category: links.QueryParam(p.URL, "category")}
		input := doc.Find("#blog-search-input").First()
		if input.Length() > 0 {
			gridSearch = true
			if q := links.QueryParam(p.URL, "search"); q != "" {
				f.query = q
				input.SetAttr("value", q)
				doc.Find("body").SetAttr("data-replace-url", stripParam(p.URL, "search"))
			}
		}
		if err := e.initSection(ctx, p, sections[lifecycle.SectionBlog], data, f); err != nil {
			return err
		}
		if gridSearch {
			wireGridSearch(input, p.Lang, f.category)
		}
	}
	if hasSidebar && !gridSearch {
		wireDropdownSearch(doc, p.Lang)
	}
	if hasWorks {
		if err := e.initSection(ctx, p, sections[lifecycle.SectionWorks], data, filters{}); err != nil {
			return err
		}
	}
	if hasCases {
		if err := e.initSection(ctx, p, sections[lifecycle.SectionCases], data, filters{}); err != nil {
			return err
		}
	}
	if hasHome && !data.worksDown {
		if err := e.renderHome(ctx, p, data.works); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) renderFeatured(ctx context.Context, p Page, posts []content.BlogPost) error {
	if len(posts) == 0 {
		return nil
	}
	featured := posts[0]
	for _, post := range posts {
		if post.IsFeatured() {
			featured = post
			break
		}
	}
	html, err := e.renderer.FeaturedPost(p.Lang, featured)
	if err != nil {
		return err
	}
	container := p.Doc.Find("#featured-post-container").First()
	container.SetHtml(string(html))
	p.bus().ContentUpdated(ctx, lifecycle.ContentUpdated{Section: lifecycle.SectionFeatured, Selection: container.Children()})
	return nil
}

func (e *Engine) renderHome(ctx context.Context, p Page, works []content.Work) error {
	wrapper := p.Doc.Find("#home-portfolio-wrapper").First()
	home := works
	if len(home) > e.homeCount {
		home = home[:e.homeCount]
	}
	html, err := e.renderer.HomeSlides(p.Lang, home)
	if err != nil {
		return err
	}
	wrapper.SetHtml(string(html))
	p.bus().SliderReady(ctx, lifecycle.SliderReady{Section: lifecycle.SectionHome, Selection: wrapper})
	return nil
}

// view is one section's filtered collection bound to its card renderer.
type view struct {
	total int
	next  func(lang string, c *content.Cursor, size int) (template.HTML, int, error)
}

func newView[T any](items []T, card func(string, []T) (template.HTML, error)) view {
	return view{
		total: len(items),
		next: func(lang string, c *content.Cursor, size int) (template.HTML, int, error) {
			batch := NextBatch(items, c, size)
			if len(batch) == 0 {
				return "", 0, nil
			}
			html, err := card(lang, batch)
			return html, len(batch), err
		},
	}
}

func (e *Engine) view(sec section, data collections, f filters, uncategorized string) view {
	switch sec.name {
	case lifecycle.SectionBlog:
		items := FilterCategory(Filter(data.blog, f.query), f.category, uncategorized)
		return newView(items, e.renderer.BlogCards)
	case lifecycle.SectionWorks:
		return newView(Filter(data.works, f.query), e.renderer.WorkCards)
	default:
		return newView(Filter(data.cases, f.query), e.renderer.CaseStudyCards)
	}
}

// initSection renders the first batch of sec. A section whose dataset is
// unavailable keeps its markup as authored.
func (e *Engine) initSection(ctx context.Context, p Page, sec section, data collections, f filters) error {
	if data.unavailable(sec.file) {
		return nil
	}
	container := p.Doc.Find("#" + sec.grid).First()
	v := e.view(sec, data, f, e.renderer.Bundle().T(p.Lang, "blog.uncategorized"))
	var cursor content.Cursor

	html, n, err := v.next(p.Lang, &cursor, e.batchSize)
	if err != nil {
		return fmt.Errorf("engine: render %s: %w", sec.name, err)
	}
	if n == 0 {
		placeholder, err := e.renderer.NoResults(p.Lang)
		if err != nil {
			return err
		}
		container.SetHtml(string(placeholder))
	} else {
		before := container.Children().Length()
		container.AppendHtml(string(html))
		added := container.Children().Slice(before, container.Children().Length())
		p.bus().ContentUpdated(ctx, lifecycle.ContentUpdated{Section: sec.name, Selection: added})
	}

	btn := p.Doc.Find("#" + sec.button).First()
	if btn.Length() > 0 {
		more := n > 0 && HasMore(cursor, v.total)
		btn.SetAttr("hx-get", batchURL(sec.name, cursor.Index, p.Lang, f))
		btn.SetAttr("hx-target", "#"+sec.grid)
		btn.SetAttr("hx-swap", "beforeend")
		btn.SetAttr("hx-indicator", "this")
		btn.SetAttr("data-loading-text", e.renderer.Bundle().T(p.Lang, "loadmore.loading"))
		setDisplay(btn, more)
	}
	return nil
}

func batchURL(name lifecycle.Section, offset int, lang string, f filters) string {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	if lang != "" {
		q.Set("lang", lang)
	}
	if f.query != "" {
		q.Set("q", f.query)
	}
	if f.category != "" {
		q.Set("category", f.category)
	}
	return ContentPath + string(name) + "?" + q.Encode()
}

func stripParam(u *url.URL, name string) string {
	if u == nil {
		return "/"
	}
	q := u.Query()
	q.Del(name)
	out := url.URL{Path: u.Path, RawQuery: q.Encode()}
	if out.Path == "" {
		out.Path = "/"
	}
	return out.String()
}

func setDisplay(s *goquery.Selection, visible bool) {
	if visible {
		s.SetAttr("style", "display: inline-block;")
		return
	}
	s.SetAttr("style", "display: none;")
}

func wireGridSearch(input *goquery.Selection, lang, category string) {
	q := url.Values{}
	q.Set("offset", "0")
	if lang != "" {
		q.Set("lang", lang)
	}
	if category != "" {
		q.Set("category", category)
	}
	input.SetAttr("name", "q")
	input.SetAttr("hx-get", ContentPath+string(lifecycle.SectionBlog)+"?"+q.Encode())
	input.SetAttr("hx-trigger", "input changed delay:250ms, search")
	input.SetAttr("hx-target", "#blog-grid")
	input.SetAttr("hx-swap", "innerHTML")
}

func wireDropdownSearch(doc *goquery.Document, lang string) {
	input := doc.Find(".sidebar-search-input").First()
	if input.Length() == 0 {
		return
	}
	dropdown := doc.Find("#sidebar-search-results").First()
	q := url.Values{}
	if lang != "" {
		q.Set("lang", lang)
	}
	if class, ok := dropdown.Attr("class"); ok && class != "" {
		q.Set("class", class)
	}
	input.SetAttr("name", "q")
	input.SetAttr("autocomplete", "off")
	input.SetAttr("hx-get", SearchPath+"?"+q.Encode())
	input.SetAttr("hx-trigger", "input changed delay:200ms")
	input.SetAttr("hx-target", "#sidebar-search-results")
	input.SetAttr("hx-swap", "outerHTML")
	if dropdown.Length() > 0 {
		dropdown.SetAttr("style", "display: none;")
	}
	doc.Find(".sidebar-search-form").First().
		SetAttr("data-action", "dismiss-outside").
		SetAttr("data-dismiss-target", "#sidebar-search-results")
}
