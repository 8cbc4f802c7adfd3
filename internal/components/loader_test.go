package components

import (
	"context"
	"net/url"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mustafabch/website/internal/dataset"
	"github.com/mustafabch/website/internal/lifecycle"
	"github.com/mustafabch/website/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type readyCounter struct{ n atomic.Int32 }

func (c *readyCounter) OnComponentsLoaded(context.Context, *goquery.Document) { c.n.Add(1) }

func load(t *testing.T, fsys fstest.MapFS, markup string, logger *zap.Logger) (*goquery.Document, *readyCounter) {
	t.Helper()
	doc := testutil.ParseString(t, markup)
	page, err := url.Parse("http://site.test/ar/blog/index.html")
	require.NoError(t, err)

	counter := &readyCounter{}
	bus := lifecycle.NewBus()
	require.NoError(t, bus.Subscribe(counter))

	l := New(dataset.NewFSTransport(fsys), logger)
	require.NoError(t, l.Load(context.Background(), doc, page, bus))
	return doc, counter
}

func TestLoadInjectsAndHidesFailures(t *testing.T) {
	fsys := fstest.MapFS{
		"components/header.html": {Data: []byte(`<nav class="main-menu"><a href="/ar/">Home</a></nav><script src="/js/menu.js" defer></script><script>window.ready = true;</script>`)},
	}
	core, logs := observer.New(zap.WarnLevel)
	markup := `<html><body>
<div id="header" data-component="/components/header.html">old</div>
<div id="footer" data-component="../../components/footer.html"></div>
</body></html>`

	doc, counter := load(t, fsys, markup, zap.New(core))

	header := doc.Find("#header")
	loaded, _ := header.Attr("data-loaded")
	require.Equal(t, "true", loaded)
	require.Equal(t, 1, header.Find("nav.main-menu a").Length())
	require.NotContains(t, header.Text(), "old")

	scripts := header.Find("script")
	require.Equal(t, 2, scripts.Length())
	src, _ := scripts.Eq(0).Attr("src")
	require.Equal(t, "/js/menu.js", src)
	_, deferred := scripts.Eq(0).Attr("defer")
	require.True(t, deferred)
	require.Equal(t, "window.ready = true;", scripts.Eq(1).Text())

	style, _ := doc.Find("#footer").Attr("style")
	require.Equal(t, "display: none;", style)
	_, footerLoaded := doc.Find("#footer").Attr("data-loaded")
	require.False(t, footerLoaded)

	require.Equal(t, int32(1), counter.n.Load())
	require.Equal(t, 1, logs.FilterMessage("component unavailable").Len())
}

func TestLoadWithoutPlaceholdersStillSignals(t *testing.T) {
	_, counter := load(t, fstest.MapFS{}, `<html><body><p>plain</p></body></html>`, nil)
	require.Equal(t, int32(1), counter.n.Load())
}

func TestLoadParsesInTableContext(t *testing.T) {
	fsys := fstest.MapFS{"rows.html": {Data: []byte(`<tr><td>cell</td></tr>`)}}
	doc, _ := load(t, fsys, `<html><body><table><tbody data-component="/rows.html"></tbody></table></body></html>`, nil)
	require.Equal(t, "cell", doc.Find("tbody td").Text())
}

func TestLoadCancelled(t *testing.T) {
	doc := testutil.ParseString(t, `<html><body><div data-component="/a.html"></div></body></html>`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	counter := &readyCounter{}
	bus := lifecycle.NewBus()
	require.NoError(t, bus.Subscribe(counter))

	err := New(dataset.NewFSTransport(fstest.MapFS{}), nil).Load(ctx, doc, nil, bus)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, int32(1), counter.n.Load())
}

func TestResolve(t *testing.T) {
	page, _ := url.Parse("http://site.test/ar/blog/index.html")

	got, err := Resolve(page, "../../components/footer.html")
	require.NoError(t, err)
	require.Equal(t, "/components/footer.html", got.String())

	_, err = Resolve(page, "https://evil.test/x.html")
	require.Error(t, err)

	_, err = Resolve(page, "  ")
	require.Error(t, err)
}
