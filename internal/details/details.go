// Package details renders item detail pages: it binds the requested record
// into the page markup and fills the navigation, related and sidebar widgets.
package details

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mustafabch/website/internal/calendar"
	"github.com/mustafabch/website/internal/content"
	"github.com/mustafabch/website/internal/dataset"
	"github.com/mustafabch/website/internal/lifecycle"
	"github.com/mustafabch/website/internal/links"
	"github.com/mustafabch/website/internal/render"
	"github.com/mustafabch/website/internal/requestctx"
	"github.com/mustafabch/website/internal/seo"
)

// ErrNotFound means the page asked for a record that cannot be shown. The
// caller answers with a single redirect to the not-found page.
var ErrNotFound = errors.New("details: not found")

// Kind selects the dataset behind a detail page.
type Kind int

const (
	KindNone Kind = iota
	KindWork
	KindCaseStudy
	KindBlog
)

// KindOf classifies a request path by its page-kind marker.
func KindOf(path string) Kind {
	switch {
	case strings.Contains(path, "project-details"):
		return KindWork
	case strings.Contains(path, "case-study"):
		return KindCaseStudy
	case strings.Contains(path, "blog-details"):
		return KindBlog
	default:
		return KindNone
	}
}

func (k Kind) String() string {
	switch k {
	case KindWork:
		return "work"
	case KindCaseStudy:
		return "case-study"
	case KindBlog:
		return "blog"
	default:
		return "none"
	}
}

const (
	relatedLimit          = 3
	relatedLimitCaseStudy = 2
	recentLimit           = 3
	listSeparator         = " • "
)

// Manager binds detail records into pages.
type Manager struct {
	fetcher  *dataset.Fetcher
	renderer *render.Renderer
	brand    string
}

func New(f *dataset.Fetcher, r *render.Renderer, brand string) *Manager {
	return &Manager{fetcher: f, renderer: r, brand: brand}
}

// Page is the detail document being rendered.
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

// Init renders the record named by the page's id parameter. Pages without an
// id are left untouched. ErrNotFound is returned when the kind is unknown, the
// dataset is unavailable or the id is missing; the document is not modified
// in that case.
func (m *Manager) Init(ctx context.Context, p Page) error {
	id := links.QueryParam(p.URL, "id")
	if id == "" {
		return nil
	}
	kind := KindOf(p.URL.Path)
	switch kind {
	case KindWork:
		item, all, err := dataset.GetItemByID[content.Work](ctx, m.fetcher, p.URL, content.WorksFile, id)
		if err != nil {
			return notFound(ctx, kind, id, err)
		}
		return m.render(ctx, p, kind, item, entities(all))
	case KindCaseStudy:
		item, all, err := dataset.GetItemByID[content.CaseStudy](ctx, m.fetcher, p.URL, content.CaseStudiesFile, id)
		if err != nil {
			return notFound(ctx, kind, id, err)
		}
		return m.render(ctx, p, kind, item, entities(all))
	case KindBlog:
		item, all, err := dataset.GetItemByID[content.BlogPost](ctx, m.fetcher, p.URL, content.BlogFile, id)
		if err != nil {
			return notFound(ctx, kind, id, err)
		}
		if err := m.render(ctx, p, kind, item, entities(all)); err != nil {
			return err
		}
		return m.renderSidebar(p, all)
	default:
		return notFound(ctx, kind, id, nil)
	}
}

func notFound(ctx context.Context, kind Kind, id string, cause error) error {
	fields := []zap.Field{zap.Stringer("kind", kind), zap.String("id", id)}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	requestctx.Logger(ctx).Info("detail record not found", fields...)
	if cause != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrNotFound, kind, id, cause)
	}
	return fmt.Errorf("%w: unknown page kind for id %q", ErrNotFound, id)
}

func entities[T content.Entity](items []T) []content.Entity {
	out := make([]content.Entity, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

func (m *Manager) render(ctx context.Context, p Page, kind Kind, item content.Entity, all []content.Entity) error {
	m.applyMeta(p, kind, item)
	if err := m.bind(p.Doc, item); err != nil {
		return err
	}
	renderNavigation(p.Doc, item, all)

	if kind == KindBlog || kind == KindCaseStudy {
		if err := m.renderRelated(ctx, p, item, all, kind == KindCaseStudy); err != nil {
			return err
		}
	}
	if gallery, ok := item.Raw().Strings("gallery"); ok && len(gallery) > 0 {
		if err := m.renderGallery(ctx, p, gallery); err != nil {
			return err
		}
	}
	p.Doc.Find("body").AddClass("details-loaded")
	return nil
}

func (m *Manager) applyMeta(p Page, kind Kind, item content.Entity) {
	title := item.EntityTitle()
	if m.brand != "" {
		title += " - " + m.brand
	}
	meta := seo.Meta{
		Title: title,
		OG:    seo.OpenGraph{Title: item.EntityTitle(), Image: item.EntityImage(), Type: "article"},
	}
	if excerpt := item.Raw().String("excerpt"); excerpt != "" {
		meta.Description = excerpt
		meta.OG.Description = excerpt
	}
	seo.Apply(p.Doc, meta)

	switch kind {
	case KindBlog:
		seo.InjectJSONLD(p.Doc, seo.Article(item.EntityTitle(), p.URL.String(), item.EntityImage(), m.brand, isoDate(item.Raw().String("date"))))
	default:
		seo.InjectJSONLD(p.Doc, seo.CreativeWork(item.EntityTitle(), p.URL.String(), item.EntityImage(), item.Raw().String("client")))
	}
}

func isoDate(s string) string {
	at, err := calendar.ParseAny(s)
	if err != nil {
		return ""
	}
	return at.Format("2006-01-02")
}

// bind writes record fields into every [data-bind] element whose key holds a
// truthy value.
func (m *Manager) bind(doc *goquery.Document, item content.Entity) error {
	fields := item.Raw()
	var bindErr error
	doc.Find("[data-bind]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		key, _ := el.Attr("data-bind")
		if !fields.Present(key) {
			return true
		}
		tag := goquery.NodeName(el)
		switch {
		case tag == "img":
			el.SetAttr("src", fields.String(key))
			el.SetAttr("alt", item.EntityTitle())
		case tag == "a" && key == "link":
			el.SetAttr("href", fields.String(key))
		default:
			if values, ok := fields.Strings(key); ok {
				if key == "technologies" {
					html, err := m.renderer.TechTags(values)
					if err != nil {
						bindErr = err
						return false
					}
					el.SetHtml(string(html))
				} else {
					el.SetText(strings.Join(values, listSeparator))
				}
				return true
			}
			if key == "body" {
				html, err := render.Markdown(fields.String(key))
				if err != nil {
					bindErr = err
					return false
				}
				el.SetHtml(string(html))
				return true
			}
			el.SetText(fields.String(key))
		}
		return true
	})
	if bindErr != nil {
		return bindErr
	}

	if img := item.EntityImage(); img != "" {
		hero := doc.Find(".details-hero-bg").First()
		if hero.Length() > 0 {
			hero.SetAttr("style", appendStyle(hero.AttrOr("style", ""), `background-image: url("`+cssURL(img)+`")`))
		}
	}
	return nil
}

func cssURL(s string) string {
	return strings.NewReplacer(`"`, "%22", `\`, "%5C", "\n", "", "\r", "").Replace(s)
}

func appendStyle(existing, decl string) string {
	existing = strings.TrimSpace(existing)
	if existing != "" && !strings.HasSuffix(existing, ";") {
		existing += ";"
	}
	if existing != "" {
		existing += " "
	}
	return existing + decl + ";"
}

func renderNavigation(doc *goquery.Document, item content.Entity, all []content.Entity) {
	_, idx, _ := content.FindByID(all, item.EntityID())
	var prev, next content.Entity
	if idx > 0 {
		prev = all[idx-1]
	}
	if idx >= 0 && idx+1 < len(all) {
		next = all[idx+1]
	}
	updateNav(doc, "nav-prev", prev)
	updateNav(doc, "nav-next", next)
}

func updateNav(doc *goquery.Document, prefix string, target content.Entity) {
	link := doc.Find("#" + prefix + "-link").First()
	if link.Length() == 0 {
		return
	}
	if target == nil {
		link.SetAttr("style", "display: none;")
		return
	}
	link.SetAttr("href", "?id="+url.QueryEscape(target.EntityID()))
	link.SetAttr("style", "display: flex;")
	doc.Find("#" + prefix + "-title").First().SetText(target.EntityTitle())
}

func (m *Manager) renderRelated(ctx context.Context, p Page, item content.Entity, all []content.Entity, caseStudy bool) error {
	container := p.Doc.Find("#related-posts-container").First()
	if container.Length() == 0 {
		return nil
	}
	limit := relatedLimit
	if caseStudy {
		limit = relatedLimitCaseStudy
	}
	related := Related(item, all, limit)
	if len(related) == 0 {
		p.Doc.Find(".related-section-title").First().Remove()
		container.Empty()
		return nil
	}
	html, err := m.renderer.RelatedCards(related, caseStudy)
	if err != nil {
		return err
	}
	container.SetHtml(string(html))
	p.bus().ContentUpdated(ctx, lifecycle.ContentUpdated{Section: lifecycle.SectionRelated, Selection: container.Children()})
	return nil
}

// Related returns up to limit entries sharing item's category, excluding item,
// in dataset order.
func Related(item content.Entity, all []content.Entity, limit int) []content.Entity {
	var out []content.Entity
	for _, other := range all {
		if len(out) == limit {
			break
		}
		if other.EntityCategory() == item.EntityCategory() && other.EntityID() != item.EntityID() {
			out = append(out, other)
		}
	}
	return out
}

func (m *Manager) renderGallery(ctx context.Context, p Page, images []string) error {
	container := p.Doc.Find("#project-gallery-container").First()
	if container.Length() == 0 {
		return nil
	}
	html, err := m.renderer.Gallery(p.Lang, images)
	if err != nil {
		return err
	}
	container.SetHtml(string(html))
	p.bus().ContentUpdated(ctx, lifecycle.ContentUpdated{Section: lifecycle.SectionGallery, Selection: container})
	return nil
}
