// Package seo builds page metadata and schema.org payloads and writes them
// into a document head.
package seo

import (
	"html"

	"github.com/PuerkitoBio/goquery"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
}

// Apply sets the title and upserts description, canonical and Open Graph
// tags. Empty values leave existing markup alone.
func Apply(doc *goquery.Document, m Meta) {
	head := ensureHead(doc)
	if m.Title != "" {
		title := head.Find("title").First()
		if title.Length() == 0 {
			head.AppendHtml("<title></title>")
			title = head.Find("title").First()
		}
		title.SetText(m.Title)
	}
	upsertMeta(head, "name", "description", m.Description)
	upsertMeta(head, "property", "og:title", m.OG.Title)
	upsertMeta(head, "property", "og:description", m.OG.Description)
	upsertMeta(head, "property", "og:image", m.OG.Image)
	upsertMeta(head, "property", "og:type", m.OG.Type)
	if m.Canonical != "" {
		link := head.Find(`link[rel="canonical"]`).First()
		if link.Length() == 0 {
			head.AppendHtml(`<link rel="canonical">`)
			link = head.Find(`link[rel="canonical"]`).First()
		}
		link.SetAttr("href", m.Canonical)
	}
}

// InjectJSONLD appends a JSON-LD script block to the head.
func InjectJSONLD(doc *goquery.Document, payload map[string]any) {
	body := JSON(payload)
	if body == "" {
		return
	}
	ensureHead(doc).AppendHtml(`<script type="application/ld+json">` + body + `</script>`)
}

func ensureHead(doc *goquery.Document) *goquery.Selection {
	head := doc.Find("head").First()
	if head.Length() == 0 {
		doc.Find("html").First().PrependHtml("<head></head>")
		head = doc.Find("head").First()
	}
	return head
}

func upsertMeta(head *goquery.Selection, attr, key, value string) {
	if value == "" {
		return
	}
	sel := head.Find(`meta[` + attr + `="` + key + `"]`).First()
	if sel.Length() == 0 {
		head.AppendHtml(`<meta ` + attr + `="` + html.EscapeString(key) + `">`)
		sel = head.Find(`meta[` + attr + `="` + key + `"]`).First()
	}
	sel.SetAttr("content", value)
}
