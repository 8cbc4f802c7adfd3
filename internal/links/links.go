// Package links holds the URL helpers shared by the renderers: query lookup,
// slug generation and detail-link resolution.
package links

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWord       = regexp.MustCompile(`[^\w\-]+`)
)

// QueryParam returns the first value of name in u's query, or "".
func QueryParam(u *url.URL, name string) string {
	if u == nil {
		return ""
	}
	return u.Query().Get(name)
}

// Slugify lower-cases and trims text, joins whitespace runs with "-" and drops
// everything that is not an ASCII word character or "-".
func Slugify(text string) string {
	if text == "" {
		return ""
	}
	s := strings.TrimSpace(strings.ToLower(text))
	s = whitespaceRun.ReplaceAllString(s, "-")
	return nonWord.ReplaceAllString(s, "")
}

// Resolve builds the detail link for an entity. An empty link (or the "#"
// placeholder) yields "#"; a link that already carries an id parameter is
// returned unchanged.
func Resolve(link, id string) string {
	if link == "" || link == "#" {
		return "#"
	}
	if strings.Contains(link, "?id=") || strings.Contains(link, "&id=") {
		return link
	}
	return link + "?id=" + id
}
