package details

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/mustafabch/website/internal/content"
	"github.com/mustafabch/website/internal/dataset"
	"github.com/mustafabch/website/internal/i18n"
	"github.com/mustafabch/website/internal/lifecycle"
	"github.com/mustafabch/website/internal/render"
	"github.com/mustafabch/website/internal/testutil"
)

const detailMarkup = `<html><head><title>Loading</title></head><body>
<section class="details-hero-bg" style="min-height: 300px"></section>
<h1 data-bind="title"></h1>
<img data-bind="image" src="">
<a data-bind="link" href="#">visit</a>
<span data-bind="client"></span>
<span data-bind="year"></span>
<div data-bind="technologies"></div>
<p data-bind="tools"></p>
<p data-bind="missing">keep</p>
<article data-bind="body"></article>
<a id="nav-prev-link" href="#"><span id="nav-prev-title"></span></a>
<a id="nav-next-link" href="#"><span id="nav-next-title"></span></a>
<h3 class="related-section-title">Related</h3>
<div id="related-posts-container"><p>stale</p></div>
<div id="project-gallery-container"></div>
<ul id="blog-categories-list"></ul>
<div id="blog-recent-posts"></div>
</body></html>`

type recorder struct{ sections []lifecycle.Section }

func (r *recorder) OnContentUpdated(_ context.Context, ev lifecycle.ContentUpdated) {
	r.sections = append(r.sections, ev.Section)
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	bundle, err := i18n.Default("ar", []string{"ar", "en", "fr"})
	require.NoError(t, err)
	r, err := render.New(bundle)
	require.NoError(t, err)
	f := dataset.NewFetcher(dataset.NewFSTransport(testutil.SiteFS(nil)))
	return New(f, r, "Graphixy")
}

func initDetail(t *testing.T, rawURL string) (*goquery.Document, *recorder, error) {
	t.Helper()
	return initDetailLang(t, rawURL, "ar")
}

func initDetailLang(t *testing.T, rawURL, lang string) (*goquery.Document, *recorder, error) {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	doc := testutil.ParseString(t, detailMarkup)
	rec := &recorder{}
	bus := lifecycle.NewBus()
	require.NoError(t, bus.Subscribe(rec))
	err = newManager(t).Init(context.Background(), Page{Doc: doc, URL: u, Lang: lang, Bus: bus})
	return doc, rec, err
}

func TestKindOf(t *testing.T) {
	require.Equal(t, KindWork, KindOf("/ar/portfolio/project-details.html"))
	require.Equal(t, KindCaseStudy, KindOf("/en/case-study/case-study.html"))
	require.Equal(t, KindBlog, KindOf("/fr/blog/blog-details.html"))
	require.Equal(t, KindNone, KindOf("/ar/about.html"))
}

func TestInitWorkBindsFields(t *testing.T) {
	doc, rec, err := initDetail(t, "http://site.test/ar/portfolio/project-details.html?id=1")
	require.NoError(t, err)

	require.Equal(t, "Nova Identity - Graphixy", doc.Find("title").Text())
	require.Equal(t, "Nova Identity", doc.Find("h1").Text())
	src, _ := doc.Find(`img[data-bind="image"]`).Attr("src")
	alt, _ := doc.Find(`img[data-bind="image"]`).Attr("alt")
	require.Equal(t, "/img/w1.jpg", src)
	require.Equal(t, "Nova Identity", alt)
	href, _ := doc.Find(`a[data-bind="link"]`).Attr("href")
	require.Equal(t, "/ar/portfolio/project-details.html", href)
	require.Equal(t, "2024", doc.Find(`[data-bind="year"]`).Text())
	require.Equal(t, 2, doc.Find(`[data-bind="technologies"] span.tech-tag`).Length())
	require.Equal(t, "Pen • Paper", doc.Find(`[data-bind="tools"]`).Text())
	require.Equal(t, "keep", doc.Find(`[data-bind="missing"]`).Text())

	style, _ := doc.Find(".details-hero-bg").Attr("style")
	require.Equal(t, `min-height: 300px; background-image: url("/img/w1.jpg");`, style)
	require.True(t, doc.Find("body").HasClass("details-loaded"))

	prevStyle, _ := doc.Find("#nav-prev-link").Attr("style")
	require.Contains(t, prevStyle, "none")
	nextHref, _ := doc.Find("#nav-next-link").Attr("href")
	require.Equal(t, "?id=2", nextHref)
	require.Equal(t, "Pulse Reel", doc.Find("#nav-next-title").Text())

	require.Equal(t, 2, doc.Find("#project-gallery-container a.glightbox").Length())
	require.Equal(t, "stale", doc.Find("#related-posts-container p").Text(), "works have no related strip")
	require.Equal(t, []lifecycle.Section{lifecycle.SectionGallery}, rec.sections)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc.Find(`script[type="application/ld+json"]`).Text()), &payload))
	require.Equal(t, "CreativeWork", payload["@type"])
}

func TestInitBlogSidebarAndRelated(t *testing.T) {
	doc, rec, err := initDetail(t, "http://site.test/ar/blog/blog-details.html?id=1")
	require.NoError(t, err)

	titles := doc.Find("#related-posts-container h4 a").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	require.Equal(t, []string{"Logo Design Myths", "Brand Voice"}, titles)
	require.Equal(t, 2, doc.Find("#related-posts-container .col-lg-4").Length())

	cats := doc.Find("#blog-categories-list li a").Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimSpace(s.Contents().First().Text())
	})
	want := []string{"Branding", "Motion", "غير مصنف", "Design"}
	if diff := cmp.Diff(want, cats); diff != "" {
		t.Fatalf("category order mismatch (-want +got):\n%s", diff)
	}

	recent := doc.Find("#blog-recent-posts h5 a").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	require.Equal(t, []string{"Color Theory", "Brand Strategy 101", "Brand Voice"}, recent)

	body := doc.Find(`article[data-bind="body"]`)
	require.Equal(t, 1, body.Find("h2#intro").Length())
	require.Equal(t, 0, body.Find("script").Length())

	require.Equal(t, []lifecycle.Section{lifecycle.SectionRelated}, rec.sections)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc.Find(`script[type="application/ld+json"]`).Text()), &payload))
	require.Equal(t, "Article", payload["@type"])
	require.Equal(t, "2025-12-15", payload["datePublished"])
}

func TestInitBlogSidebarOnEnglishPage(t *testing.T) {
	for _, lang := range []string{"en", "fr"} {
		doc, _, err := initDetailLang(t, "http://site.test/"+lang+"/blog/blog-details.html?id=1", lang)
		require.NoError(t, err)

		recent := doc.Find("#blog-recent-posts h5 a").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
		require.Equal(t, []string{"Color Theory", "Brand Strategy 101", "Brand Voice"}, recent, lang)

		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(doc.Find(`script[type="application/ld+json"]`).Text()), &payload))
		require.Equal(t, "2025-12-15", payload["datePublished"], lang)
	}
}

func TestInitCaseStudyWithoutRelated(t *testing.T) {
	doc, rec, err := initDetail(t, "http://site.test/ar/case-study/case-study.html?id=4")
	require.NoError(t, err)

	require.Equal(t, 0, doc.Find(".related-section-title").Length())
	require.Equal(t, 0, doc.Find("#related-posts-container").Children().Length())
	require.Empty(t, rec.sections)
}

func TestInitCaseStudyRelatedLimit(t *testing.T) {
	doc, _, err := initDetail(t, "http://site.test/ar/case-study/case-study.html?id=1")
	require.NoError(t, err)
	require.Equal(t, 2, doc.Find("#related-posts-container .col-lg-6").Length())
}

func TestInitNotFound(t *testing.T) {
	for _, raw := range []string{
		"http://site.test/ar/blog/blog-details.html?id=99",
		"http://site.test/ar/about.html?id=1",
	} {
		doc, rec, err := initDetail(t, raw)
		require.ErrorIs(t, err, ErrNotFound, raw)
		require.Equal(t, "Loading", doc.Find("title").Text())
		require.False(t, doc.Find("body").HasClass("details-loaded"))
		require.Empty(t, rec.sections)
	}
}

func TestInitWithoutIDIsNoop(t *testing.T) {
	doc, _, err := initDetail(t, "http://site.test/ar/blog/blog-details.html")
	require.NoError(t, err)
	require.Equal(t, "Loading", doc.Find("title").Text())
}

func TestTallyCategoriesSumsToTotal(t *testing.T) {
	var recs []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(testutil.BlogJSON), &recs))
	posts, err := content.Decode[content.BlogPost](recs)
	require.NoError(t, err)

	total := 0
	for _, c := range TallyCategories(posts, "Uncategorized") {
		total += c.Count
	}
	require.Equal(t, len(posts), total)

	recent := RecentPosts(posts, 10)
	require.Len(t, recent, len(posts))
	require.Equal(t, "4", recent[0].EntityID())
}
