package testutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses the provided HTML payload into a goquery document for assertions.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// ParseString is ParseHTML for string payloads.
func ParseString(t testing.TB, body string) *goquery.Document {
	t.Helper()
	return ParseHTML(t, []byte(body))
}

// Render serialises the whole document.
func Render(t testing.TB, doc *goquery.Document) string {
	t.Helper()

	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	return strings.TrimSpace(out)
}
