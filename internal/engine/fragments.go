package engine

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/mustafabch/website/internal/content"
	"github.com/mustafabch/website/internal/dataset"
	"github.com/mustafabch/website/internal/lifecycle"
	"github.com/mustafabch/website/internal/render"
)

// BatchRequest asks for the batch that starts at Offset.
type BatchRequest struct {
	Section  lifecycle.Section
	Offset   int
	Query    string
	Category string
	Lang     string
	// Page is the URL of the page that issued the request; dataset
	// candidates resolve against it.
	Page *url.URL
}

// Fragment is the swap payload for a batch request.
type Fragment struct {
	HTML   template.HTML
	Button template.HTML
	Count  int
	More   bool
}

// ParseSection maps a path segment onto a pageable section.
func ParseSection(name string) (lifecycle.Section, error) {
	sec, ok := sections[lifecycle.Section(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	return sec.name, nil
}

// collections loads the dataset behind sec. The error is dataset.ErrUnavailable
// when the collection could not be loaded at all.
func (e *Engine) collections(ctx context.Context, sec section, page *url.URL) (collections, error) {
	var data collections
	var err error
	switch sec.name {
	case lifecycle.SectionBlog:
		data.blog, err = dataset.Load[content.BlogPost](ctx, e.fetcher, page, sec.file)
	case lifecycle.SectionWorks:
		data.works, err = dataset.Load[content.Work](ctx, e.fetcher, page, sec.file)
	case lifecycle.SectionCases:
		data.cases, err = dataset.Load[content.CaseStudy](ctx, e.fetcher, page, sec.file)
	}
	return data, err
}

// Batch renders the next batch of a section. A request at offset zero that
// matches nothing yields the no-results placeholder. Button always carries an
// out-of-band update of the section's load-more control. When the dataset is
// unavailable the error wraps dataset.ErrUnavailable and nothing is rendered.
func (e *Engine) Batch(ctx context.Context, req BatchRequest) (Fragment, error) {
	sec, ok := sections[req.Section]
	if !ok {
		return Fragment{}, fmt.Errorf("%w: %q", ErrUnknownSection, req.Section)
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	data, err := e.collections(ctx, sec, req.Page)
	if err != nil {
		return Fragment{}, fmt.Errorf("engine: %s: %w", sec.name, err)
	}
	f := filters{query: strings.TrimSpace(req.Query), category: req.Category}
	v := e.view(sec, data, f, e.renderer.Bundle().T(req.Lang, "blog.uncategorized"))

	cursor := content.Cursor{Index: req.Offset, Loaded: req.Offset > 0}
	html, n, err := v.next(req.Lang, &cursor, e.batchSize)
	if err != nil {
		return Fragment{}, fmt.Errorf("engine: render %s: %w", sec.name, err)
	}
	if n == 0 && req.Offset == 0 {
		html, err = e.renderer.NoResults(req.Lang)
		if err != nil {
			return Fragment{}, err
		}
	}
	more := n > 0 && HasMore(cursor, v.total)
	button, err := e.renderer.LoadMoreButton(render.LoadMore{
		Lang:    req.Lang,
		ID:      sec.button,
		Target:  sec.grid,
		URL:     batchURL(sec.name, cursor.Index, req.Lang, f),
		Visible: more,
		OOB:     true,
	})
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{HTML: html, Button: button, Count: n, More: more}, nil
}

// Search renders the sidebar dropdown for query. The dropdown element is
// returned whole so it can replace itself; it is hidden when nothing matches
// or the blog dataset is unavailable.
func (e *Engine) Search(ctx context.Context, page *url.URL, query, class string) (template.HTML, error) {
	var matches []content.BlogPost
	switch posts, err := dataset.Load[content.BlogPost](ctx, e.fetcher, page, content.BlogFile); {
	case errors.Is(err, dataset.ErrUnavailable):
	case err != nil:
		return "", err
	default:
		matches = FilterTitles(posts, query)
	}
	return e.renderer.SearchDropdown(class, matches)
}
