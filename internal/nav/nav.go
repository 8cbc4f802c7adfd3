// Package nav marks the active menu entry, points the language switcher at
// the translated page and fills the breadcrumb trail.
package nav

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	menuLinks    = ".main-menu a, .nft-mobile-menu a"
	parentMenus  = ".submenu, .submenu-wrapper, .has-mega-menu"
	servicesPart = "/services/"
	langAttr     = "data-lang"
)

var langSegment = regexp.MustCompile(`/(ar|en|fr)/`)

// MarkActive adds the active class to menu links pointing at page, their list
// items and the list item of any enclosing submenu. It returns the number of
// links marked.
func MarkActive(doc *goquery.Document, page *url.URL) int {
	current := normalize(page.Path)
	inServices := strings.Contains(current, servicesPart)
	marked := 0
	doc.Find(menuLinks).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok || href == "" || href == "#" || strings.HasPrefix(strings.ToLower(href), "javascript") {
			return
		}
		target := normalize(linkPath(page, href))
		if target != current && !(inServices && strings.Contains(target, servicesPart)) {
			return
		}
		link.AddClass("active")
		link.Closest("li").AddClass("active")
		if menu := link.Closest(parentMenus); menu.Length() > 0 {
			menu.Closest("li").AddClass("active")
		}
		marked++
	})
	return marked
}

// linkPath resolves href against the page and keeps only its path when it
// stays on the same host.
func linkPath(page *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	abs := page.ResolveReference(ref)
	if page.Host != "" && abs.Host != page.Host {
		return abs.String()
	}
	return abs.Path
}

func normalize(p string) string {
	return strings.ToLower(strings.TrimSuffix(p, "/"))
}

// SwitchLanguage returns the path of the same page in lang. A path already in
// lang is returned unchanged; a path without a language segment maps to
// /{lang}/{filename}.
func SwitchLanguage(p, lang string) string {
	if strings.Contains(p, "/"+lang+"/") {
		return p
	}
	if langSegment.MatchString(p) {
		loc := langSegment.FindStringIndex(p)
		return p[:loc[0]] + "/" + lang + "/" + p[loc[1]:]
	}
	name := path.Base(p)
	if name == "/" || name == "." || strings.HasSuffix(p, "/") {
		name = "index.html"
	}
	return "/" + lang + "/" + name
}

// LanguageOf returns the language segment of p, or "" when there is none.
func LanguageOf(p string) string {
	m := langSegment.FindStringSubmatch(p)
	if m == nil {
		return ""
	}
	return m[1]
}

// LanguageLinks points every [data-lang] anchor at the translated page and
// returns the number of anchors rewritten.
func LanguageLinks(doc *goquery.Document, page *url.URL) int {
	n := 0
	doc.Find("[" + langAttr + "]").Each(func(_ int, s *goquery.Selection) {
		lang := strings.ToLower(strings.TrimSpace(s.AttrOr(langAttr, "")))
		if lang == "" {
			return
		}
		target := SwitchLanguage(page.Path, lang)
		if q := page.Query(); q.Has("id") {
			target += "?id=" + url.QueryEscape(q.Get("id"))
		}
		s.SetAttr("href", target)
		s.SetAttr("hreflang", lang)
		n++
	})
	return n
}
