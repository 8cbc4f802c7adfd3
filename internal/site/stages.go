package site

import (
	"context"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/mustafabch/website/internal/nav"
	"github.com/mustafabch/website/internal/ui"
)

// caseStudyPage is the long-form page that carries the reading progress bar.
const caseStudyPage = "case-study.html"

// chromeStage applies the page chrome once the components are in: the header,
// the menus and the language switcher arrive as component fragments.
type chromeStage struct {
	controller *ui.Controller
	state      ui.State
	page       *url.URL
	applied    bool
}

func (s *chromeStage) OnComponentsLoaded(_ context.Context, doc *goquery.Document) {
	if s.applied {
		return
	}
	s.applied = true
	s.controller.Apply(doc, s.state)
	nav.MarkActive(doc, s.page)
	nav.LanguageLinks(doc, s.page)
}
