package ui

import "github.com/PuerkitoBio/goquery"

// ReadingBarID names the fixed reading progress bar on long-form pages.
const ReadingBarID = "reading-progress"

const readingBar = `<div id="` + ReadingBarID + `" class="reading-progress" data-anim="reading-progress" aria-hidden="true" ` +
	`style="position: fixed; top: 0; left: 0; height: 4px; width: 0%; background-color: var(--brand-accent-1); z-index: 9999; transition: width 0.1s ease;"></div>`

// AddReadingBar appends the reading progress bar to the body. The client
// widens it with the scroll position. It reports whether a bar was added.
func AddReadingBar(doc *goquery.Document) bool {
	if doc.Find("#"+ReadingBarID).Length() > 0 {
		return false
	}
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return false
	}
	body.AppendHtml(readingBar)
	return true
}
