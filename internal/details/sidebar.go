package details

import (
	"github.com/mustafabch/website/internal/calendar"
	"github.com/mustafabch/website/internal/content"
	"github.com/mustafabch/website/internal/render"
)

// TallyCategories counts posts per category in first-seen order. Posts without
// a category are counted under uncategorized.
func TallyCategories(posts []content.BlogPost, uncategorized string) []render.CategoryCount {
	var out []render.CategoryCount
	index := make(map[string]int)
	for _, post := range posts {
		cat := post.Category
		if cat == "" {
			cat = uncategorized
		}
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, render.CategoryCount{Name: cat})
		}
		out[i].Count++
	}
	return out
}

// RecentPosts returns the n newest posts. Unparseable dates count as newest.
func RecentPosts(posts []content.BlogPost, n int) []content.BlogPost {
	sorted := calendar.SortDescending(posts, func(p content.BlogPost) string { return p.Date })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func (m *Manager) renderSidebar(p Page, posts []content.BlogPost) error {
	if list := p.Doc.Find("#blog-categories-list").First(); list.Length() > 0 {
		counts := TallyCategories(posts, m.renderer.Bundle().T(p.Lang, "blog.uncategorized"))
		html, err := m.renderer.CategoryList(p.Lang, counts)
		if err != nil {
			return err
		}
		list.SetHtml(string(html))
	}
	if recent := p.Doc.Find("#blog-recent-posts").First(); recent.Length() > 0 {
		html, err := m.renderer.RecentPosts(p.Lang, RecentPosts(posts, recentLimit))
		if err != nil {
			return err
		}
		recent.SetHtml(string(html))
	}
	return nil
}
