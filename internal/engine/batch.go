package engine

import (
	"strings"

	"github.com/mustafabch/website/internal/content"
)

// Filter keeps items whose title or category contains query, ignoring case.
// An empty query returns items unchanged.
func Filter[T content.Entity](items []T, query string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.EntityTitle()), q) ||
			strings.Contains(strings.ToLower(it.EntityCategory()), q) {
			out = append(out, it)
		}
	}
	return out
}

// FilterTitles keeps items whose title contains query, ignoring case. An
// empty query matches nothing.
func FilterTitles[T content.Entity](items []T, query string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []T
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.EntityTitle()), q) {
			out = append(out, it)
		}
	}
	return out
}

// FilterCategory keeps items in category. uncategorized names the bucket that
// collects items without a category.
func FilterCategory[T content.Entity](items []T, category, uncategorized string) []T {
	if category == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		cat := it.EntityCategory()
		if cat == category || (cat == "" && category == uncategorized) {
			out = append(out, it)
		}
	}
	return out
}

// NextBatch returns the next min(size, remaining) items after the cursor and
// advances it.
func NextBatch[T any](items []T, cursor *content.Cursor, size int) []T {
	start := cursor.Index
	if start < 0 {
		start = 0
	}
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if size <= 0 || end > len(items) {
		end = len(items)
	}
	cursor.Index = end
	cursor.Loaded = true
	return items[start:end]
}

// HasMore reports whether the load-more control should stay visible.
func HasMore(cursor content.Cursor, total int) bool {
	return cursor.Index < total
}
