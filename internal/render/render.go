// Package render turns site records into HTML fragments. Every field is
// escaped by html/template; labels come from the i18n bundle.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/mustafabch/website/internal/content"
	"github.com/mustafabch/website/internal/i18n"
	"github.com/mustafabch/website/internal/links"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PlaceholderImage is used by home slides that carry no image at all.
const PlaceholderImage = "https://placehold.co/600x700"

// Renderer executes the embedded fragment templates.
type Renderer struct {
	tmpl   *template.Template
	bundle *i18n.Bundle
}

func New(bundle *i18n.Bundle) (*Renderer, error) {
	if bundle == nil {
		return nil, fmt.Errorf("render: nil bundle")
	}
	funcs := template.FuncMap{
		"resolve":   links.Resolve,
		"t":         bundle.T,
		"homeImage": homeImage,
	}
	tmpl, err := template.New("fragments").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, bundle: bundle}, nil
}

// Bundle returns the translation bundle the renderer labels with.
func (r *Renderer) Bundle() *i18n.Bundle { return r.bundle }

func homeImage(w content.Work) string {
	switch {
	case w.HomeImage != "":
		return w.HomeImage
	case w.Image != "":
		return w.Image
	default:
		return PlaceholderImage
	}
}

type itemData[T any] struct {
	Lang string
	Item T
}

type listData[T any] struct {
	Lang  string
	Items []T
}

func (r *Renderer) exec(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func each[T any](r *Renderer, name, lang string, items []T) (template.HTML, error) {
	var buf bytes.Buffer
	for _, it := range items {
		if err := r.tmpl.ExecuteTemplate(&buf, name, itemData[T]{Lang: lang, Item: it}); err != nil {
			return "", fmt.Errorf("render %s: %w", name, err)
		}
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) BlogCards(lang string, posts []content.BlogPost) (template.HTML, error) {
	return each(r, "blog-card", lang, posts)
}

func (r *Renderer) WorkCards(lang string, works []content.Work) (template.HTML, error) {
	return each(r, "work-card", lang, works)
}

func (r *Renderer) CaseStudyCards(lang string, cases []content.CaseStudy) (template.HTML, error) {
	return each(r, "case-study-card", lang, cases)
}

// HomeSlides renders swiper slides for the home portfolio slider.
func (r *Renderer) HomeSlides(lang string, works []content.Work) (template.HTML, error) {
	return each(r, "home-slide", lang, works)
}

func (r *Renderer) FeaturedPost(lang string, post content.BlogPost) (template.HTML, error) {
	return r.exec("featured-post", itemData[content.BlogPost]{Lang: lang, Item: post})
}

// NoResults is the placeholder shown when a grid's first batch is empty.
func (r *Renderer) NoResults(lang string) (template.HTML, error) {
	return r.exec("no-results", listData[struct{}]{Lang: lang})
}

type dropdownData struct {
	Class string
	Items []content.BlogPost
}

// SearchDropdown renders the sidebar results element with title-only links.
// It is hidden when posts is empty.
func (r *Renderer) SearchDropdown(class string, posts []content.BlogPost) (template.HTML, error) {
	return r.exec("search-dropdown", dropdownData{Class: class, Items: posts})
}

type relatedData struct {
	Item      content.Entity
	CaseStudy bool
}

// RelatedCards renders the related-items strip. Case studies use the wide
// two-column card, everything else the blog card.
func (r *Renderer) RelatedCards(items []content.Entity, caseStudy bool) (template.HTML, error) {
	var buf bytes.Buffer
	for _, it := range items {
		if err := r.tmpl.ExecuteTemplate(&buf, "related-card", relatedData{Item: it, CaseStudy: caseStudy}); err != nil {
			return "", fmt.Errorf("render related-card: %w", err)
		}
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) Gallery(lang string, images []string) (template.HTML, error) {
	return r.exec("gallery", listData[string]{Lang: lang, Items: images})
}

// CategoryCount is one row of the blog category widget.
type CategoryCount struct {
	Name  string
	Count int
}

func (r *Renderer) CategoryList(lang string, cats []CategoryCount) (template.HTML, error) {
	return r.exec("category-list", listData[CategoryCount]{Lang: lang, Items: cats})
}

func (r *Renderer) RecentPosts(lang string, posts []content.BlogPost) (template.HTML, error) {
	return r.exec("recent-posts", listData[content.BlogPost]{Lang: lang, Items: posts})
}

func (r *Renderer) TechTags(tags []string) (template.HTML, error) {
	return r.exec("tech-tags", listData[string]{Items: tags})
}

func (r *Renderer) TestimonialSlides(items []content.Testimonial) (template.HTML, error) {
	return each(r, "testimonial-slide", "", items)
}

func (r *Renderer) ClientSlides(items []content.Client) (template.HTML, error) {
	return each(r, "client-slide", "", items)
}

// LoadMore describes a "load more" control.
type LoadMore struct {
	Lang    string
	ID      string
	Class   string
	Target  string
	URL     string
	Label   string
	Visible bool
	OOB     bool
}

func (r *Renderer) LoadMoreButton(b LoadMore) (template.HTML, error) {
	if b.Label == "" {
		b.Label = r.bundle.T(b.Lang, "loadmore.label")
	}
	return r.exec("load-more", b)
}

// Feedback describes the contact form result banner.
type Feedback struct {
	Success  bool
	Message  string
	AutoHide int
	OOB      bool
}

func (r *Renderer) Feedback(f Feedback) (template.HTML, error) {
	return r.exec("feedback", f)
}
