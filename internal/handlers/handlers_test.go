package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mustafabch/website/internal/config"
	"github.com/mustafabch/website/internal/contact"
	"github.com/mustafabch/website/internal/dataset"
	"github.com/mustafabch/website/internal/i18n"
	"github.com/mustafabch/website/internal/middleware"
	"github.com/mustafabch/website/internal/render"
	"github.com/mustafabch/website/internal/site"
	"github.com/mustafabch/website/internal/testutil"
	"github.com/mustafabch/website/internal/ui"
	"github.com/mustafabch/website/internal/widgets"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingRelay struct {
	mu   sync.Mutex
	sent []contact.Submission
}

func (r *recordingRelay) Send(_ context.Context, s contact.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, s)
	return nil
}

func newServer(t *testing.T) (http.Handler, *recordingRelay) {
	t.Helper()
	return newServerWith(t, nil)
}

func newServerWith(t *testing.T, extra fstest.MapFS) (http.Handler, *recordingRelay) {
	t.Helper()
	fsys := testutil.SitePages(extra)
	bundle, err := i18n.Default("ar", []string{"ar", "en", "fr"})
	require.NoError(t, err)
	renderer, err := render.New(bundle)
	require.NoError(t, err)

	relay := &recordingRelay{}
	siteFile := config.DefaultSiteFile()
	cm := contact.New(relay, renderer, contact.Options{})
	p := site.New(site.Deps{
		Site:     siteFile,
		Fetcher:  dataset.NewFetcher(dataset.NewFSTransport(fsys)),
		Renderer: renderer,
		Contact:  cm,
		Widgets:  widgets.Defaults(),
	})
	return NewRouter(Deps{
		Site:     siteFile,
		Root:     fsys,
		Pipeline: p,
		Contact:  cm,
		Bundle:   bundle,
	}), relay
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h, _ := newServer(t)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestPageRendersThroughPipeline(t *testing.T) {
	h, _ := newServer(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/ar/index.html", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "ar", rec.Header().Get("Content-Language"))
	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, "rtl", doc.Find("html").AttrOr("dir", ""))
	require.Zero(t, doc.Find(".loader-wrapper").Length())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/ar/", nil))
	require.Equal(t, http.StatusOK, rec.Code, "directories serve their index")
}

func TestPageThemeCookie(t *testing.T) {
	h, _ := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/ar/index.html", nil)
	req.AddCookie(&http.Cookie{Name: ui.ThemeCookie, Value: "light"})
	doc := testutil.ParseHTML(t, serve(h, req).Body.Bytes())
	require.Equal(t, "light", doc.Find("html").AttrOr("data-theme", ""))
}

func TestRootRedirectsToLanguageHome(t *testing.T) {
	h, _ := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rec := serve(h, req)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/en/index.html", rec.Header().Get("Location"))
}

func TestDetailsNotFoundRedirects(t *testing.T) {
	h, _ := newServer(t)
	target := "/ar/portfolio/project-details.html?id=99"

	rec := serve(h, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/ar/pages/404.html", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("HX-Request", "true")
	rec = serve(h, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "/ar/pages/404.html", rec.Header().Get("HX-Redirect"))
}

func TestMissingPageServesNotFoundPage(t *testing.T) {
	h, _ := newServer(t)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/ar/nope.html", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "<h1>404</h1>")

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/fr/nope.html", nil))
	require.Equal(t, http.StatusNotFound, rec.Code, "no localized 404 page")
}

func TestContentBatch(t *testing.T) {
	h, _ := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/_content/blog?offset=0&lang=ar", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Current-URL", "http://site.test/ar/blog/blog.html")
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, ContentUpdatedEvent, rec.Header().Get("HX-Trigger"))

	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, 6, doc.Find(".mix").Length())
	btn := doc.Find("#load-more-blog")
	require.Equal(t, "true", btn.AttrOr("hx-swap-oob", ""))
	require.Contains(t, btn.AttrOr("hx-get", ""), "offset=6")
	require.Contains(t, btn.AttrOr("style", ""), "inline-block")

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/_content/blog?offset=6&lang=ar", nil))
	doc = testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, 1, doc.Find(".mix").Length())
	require.Contains(t, doc.Find("#load-more-blog").AttrOr("style", ""), "none")
}

func TestContentSearchFilter(t *testing.T) {
	h, _ := newServer(t)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/_content/blog?offset=0&lang=ar&q=brand", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, 3, doc.Find(".mix").Length())
	require.Contains(t, doc.Find("#load-more-blog").AttrOr("style", ""), "none")
}

func TestContentUnavailableDatasetSwapsNothing(t *testing.T) {
	h, _ := newServerWith(t, fstest.MapFS{"data/blog.json": nil})

	req := httptest.NewRequest(http.MethodGet, "/_content/blog?offset=0&lang=en", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(h, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Empty(t, rec.Header().Get("HX-Trigger"))
}

func TestContentUnknownSection(t *testing.T) {
	h, _ := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/_content/team", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(h, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"unknown section"}`, rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/_content/blog?offset=-1", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchDropdown(t *testing.T) {
	h, _ := newServer(t)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/_search/blog?q=brand&class=search-dd", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	dd := doc.Find("#sidebar-search-results")
	require.Equal(t, "search-dd", dd.AttrOr("class", ""))
	require.Equal(t, "display: block;", dd.AttrOr("style", ""))
	require.Equal(t, 2, dd.Find("a").Length())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/_search/blog?q=zzz", nil))
	doc = testutil.ParseHTML(t, rec.Body.Bytes())
	require.Equal(t, "display: none;", doc.Find("#sidebar-search-results").AttrOr("style", ""))
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return req
}

func TestContactSubmit(t *testing.T) {
	h, relay := newServer(t)
	form := url.Values{
		contact.FieldName:    {"Sara"},
		contact.FieldEmail:   {"sara@example.com"},
		contact.FieldMessage: {"Hello"},
	}

	rec := serve(h, postForm("/contact?lang=en", form))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "alert-success")
	require.Contains(t, rec.Body.String(), "Your message was sent!")

	var events map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &events))
	require.Contains(t, events, contact.SentEvent)
	require.Len(t, relay.sent, 1)
	require.Equal(t, "en", relay.sent[0].Lang)
}

func TestContactSubmitInvalid(t *testing.T) {
	h, relay := newServer(t)
	form := url.Values{contact.FieldName: {"Sara"}, contact.FieldEmail: {"nope"}}

	rec := serve(h, postForm("/contact?lang=en", form))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "alert-danger")

	var events map[string][]fieldResponse
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &events))
	states := events[contact.FieldEvent]
	require.Equal(t, []fieldResponse{
		{Field: contact.FieldName, State: contact.StateValid, Class: "is-valid"},
		{Field: contact.FieldEmail, State: contact.StateInvalid, Class: "is-invalid"},
		{Field: contact.FieldPhone, State: contact.StateNeutral},
		{Field: contact.FieldSubject, State: contact.StateNeutral},
		{Field: contact.FieldMessage, State: contact.StateInvalid, Class: "is-invalid"},
	}, states)
	require.Empty(t, relay.sent)
}

func TestContactValidateField(t *testing.T) {
	h, _ := newServer(t)
	rec := serve(h, postForm("/contact/validate?field=user_email", url.Values{"user_email": {"bad"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"field":"user_email","state":"invalid","class":"is-invalid"}`, rec.Body.String())
	require.Contains(t, rec.Header().Get("HX-Trigger"), contact.FieldEvent)

	rec = serve(h, postForm("/contact/validate", url.Values{}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThemeToggle(t *testing.T) {
	h, _ := newServer(t)

	rec := serve(h, httptest.NewRequest(http.MethodPost, ThemeTogglePath, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, ui.ThemeCookie, cookies[0].Name)
	require.Equal(t, "light", cookies[0].Value)
	require.JSONEq(t, `{"theme:changed":"light"}`, rec.Header().Get("HX-Trigger"))

	req := httptest.NewRequest(http.MethodPost, ThemeTogglePath, nil)
	req.AddCookie(&http.Cookie{Name: ui.ThemeCookie, Value: "light"})
	rec = serve(h, req)
	require.Equal(t, "dark", rec.Result().Cookies()[0].Value)
}

func TestSwitchLanguage(t *testing.T) {
	h, _ := newServer(t)

	from := url.QueryEscape("/ar/portfolio/project-details.html?id=2")
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/lang/en?from="+from, nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/en/portfolio/project-details.html?id=2", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, middleware.LangCookie, cookies[0].Name)
	require.Equal(t, "en", cookies[0].Value)

	req := httptest.NewRequest(http.MethodGet, "/lang/fr", nil)
	req.Header.Set("Referer", "http://elsewhere.test/ar/about.html")
	rec = serve(h, req)
	require.Equal(t, "/fr/index.html", rec.Header().Get("Location"), "foreign referers are ignored")

	req = httptest.NewRequest(http.MethodGet, "/lang/fr", nil)
	req.Header.Set("Referer", "http://"+req.Host+"/ar/about.html")
	rec = serve(h, req)
	require.Equal(t, "/fr/about.html", rec.Header().Get("Location"))

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/lang/de", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDataCORSAndCaching(t *testing.T) {
	h, _ := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/data/blog.json", nil)
	req.Header.Set("Origin", "https://partner.example.com")
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, middleware.Revalidate, rec.Header().Get("Cache-Control"))
	require.NotEmpty(t, rec.Header().Get("ETag"))

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, middleware.LongCache, rec.Header().Get("Cache-Control"))
}
