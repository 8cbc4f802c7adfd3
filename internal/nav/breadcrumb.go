package nav

import (
	"net/url"
	"path"

	"github.com/PuerkitoBio/goquery"

	"github.com/mustafabch/website/internal/config"
	"github.com/mustafabch/website/internal/i18n"
	"github.com/mustafabch/website/internal/seo"
)

const (
	breadcrumbTitle = "#breadcrumb-page-title"
	breadcrumbLink  = "#breadcrumb-current-link"
)

// Breadcrumbs fills the breadcrumb component from the site file.
type Breadcrumbs struct {
	site   config.SiteFile
	bundle *i18n.Bundle
}

func NewBreadcrumbs(site config.SiteFile, bundle *i18n.Bundle) *Breadcrumbs {
	return &Breadcrumbs{site: site, bundle: bundle}
}

// Apply writes the title and trail label for page when both breadcrumb
// elements exist and the page has a configured entry. It reports whether the
// trail was written.
func (b *Breadcrumbs) Apply(doc *goquery.Document, page *url.URL, lang string) bool {
	title := doc.Find(breadcrumbTitle).First()
	link := doc.Find(breadcrumbLink).First()
	if title.Length() == 0 || link.Length() == 0 {
		return false
	}
	crumb, ok := b.site.Breadcrumb(lang, path.Base(page.Path))
	if !ok {
		return false
	}
	title.SetText(crumb.Title)
	link.SetText(crumb.Link)
	link.SetAttr("href", "#")

	home := &url.URL{Scheme: page.Scheme, Host: page.Host, Path: "/" + lang + "/index.html"}
	current := &url.URL{Scheme: page.Scheme, Host: page.Host, Path: page.Path}
	seo.InjectJSONLD(doc, seo.BreadcrumbList([]seo.BreadcrumbItem{
		{Name: b.bundle.T(lang, "breadcrumb.home"), Item: home.String()},
		{Name: crumb.Link, Item: current.String()},
	}))
	return true
}
