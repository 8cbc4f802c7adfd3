package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mustafabch/website/internal/content"
)

var fixedClock = func() time.Time { return time.UnixMilli(1700000000000) }

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestCandidates(t *testing.T) {
	f := NewFetcher(nil, WithClock(fixedClock))

	got := f.Candidates(mustURL(t, "https://example.com/a/b/c/page.html?id=3"), "blog.json")
	require.Len(t, got, 3)
	require.Equal(t, "/data/blog.json?v=1700000000000", got[0].String())
	require.Equal(t, "/a/data/blog.json?v=1700000000000", got[1].String())
	require.Equal(t, "/data/blog.json?v=1700000000000", got[2].String())

	got = f.Candidates(nil, "works.json")
	require.Equal(t, "/data/works.json", got[0].Path)
}

func TestFetchFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"data/blog.json": {Data: []byte(`[{"id":1,"title":"First"},{"id":"2","title":"Second"}]`)},
	}
	f := NewFetcher(NewFSTransport(fsys))

	records, err := f.Fetch(context.Background(), mustURL(t, "/ar/blog/blog-details.html"), content.BlogFile)
	require.NoError(t, err)
	require.Len(t, records, 2)

	posts, err := Load[content.BlogPost](context.Background(), f, mustURL(t, "/ar/blog/"), content.BlogFile)
	require.NoError(t, err)
	require.Equal(t, "Second", posts[1].Title)
}

func TestFetchFallsBackAcrossCandidates(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.Path+"?v="+r.URL.Query().Get("v"))
		mu.Unlock()
		switch r.URL.Path {
		case "/data/works.json":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>not here</html>"))
		case "/a/data/works.json":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(`[{"id":7,"title":"Found"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tr, err := NewHTTPTransport(srv.URL, srv.Client(), time.Second)
	require.NoError(t, err)
	f := NewFetcher(tr, WithClock(fixedClock))

	works, err := Load[content.Work](context.Background(), f, mustURL(t, "/a/b/c/page.html"), content.WorksFile)
	require.NoError(t, err)
	require.Len(t, works, 1)
	require.Equal(t, "Found", works[0].Title)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{
		"/data/works.json?v=1700000000000",
		"/a/data/works.json?v=1700000000000",
	}, seen)
}

func TestFetchUnavailableLogsWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := NewFetcher(NewFSTransport(fstest.MapFS{}), WithLogger(zap.New(core)))

	records, err := f.Fetch(context.Background(), mustURL(t, "/"), content.ClientsFile)
	require.ErrorIs(t, err, ErrUnavailable)
	require.Nil(t, records)

	entries := logs.FilterMessage("dataset unavailable").All()
	require.Len(t, entries, 1)
	require.Equal(t, content.ClientsFile, entries[0].ContextMap()["dataset"])
}

func TestLoadKeepsRecordsWithLooseTypes(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fsys := fstest.MapFS{
		"data/blog.json":    {Data: []byte(`[{"read-time":"5 min"},{"read-time":5}]`)},
		"data/works.json":   {Data: []byte(`[{"id":1,"title":"Kept"},{"id":[2]},{"id":{"x":1}}]`)},
		"data/clients.json": {Data: []byte(`[{"name":["x"]}]`)},
	}
	f := NewFetcher(NewFSTransport(fsys), WithLogger(zap.New(core)))
	page := mustURL(t, "/en/blog/")

	posts, err := Load[content.BlogPost](context.Background(), f, page, content.BlogFile)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, "5", posts[1].ReadTime.String())

	works, err := Load[content.Work](context.Background(), f, page, content.WorksFile)
	require.NoError(t, err)
	require.Len(t, works, 1)
	require.Equal(t, 1, logs.FilterMessage("dataset records skipped").Len())

	_, err = Load[content.Client](context.Background(), f, page, content.ClientsFile)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchRejectsNonArrayJSON(t *testing.T) {
	fsys := fstest.MapFS{"data/blog.json": {Data: []byte(`{"posts":[]}`)}}
	f := NewFetcher(NewFSTransport(fsys))
	_, err := f.Fetch(context.Background(), mustURL(t, "/"), content.BlogFile)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPTransportTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	tr, err := NewHTTPTransport(srv.URL, srv.Client(), 50*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	_, err = tr.Get(context.Background(), &url.URL{Path: "/data/blog.json"})
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded) || time.Since(start) < time.Second)
}

func TestNewHTTPTransportRequiresAbsoluteOrigin(t *testing.T) {
	_, err := NewHTTPTransport("/relative", nil, 0)
	require.Error(t, err)
}

type countingTransport struct {
	Transport
	calls atomic.Int32
}

func (c *countingTransport) Get(ctx context.Context, ref *url.URL) (Response, error) {
	c.calls.Add(1)
	return c.Transport.Get(ctx, ref)
}

func TestFetchUsesCache(t *testing.T) {
	tr := &countingTransport{Transport: NewFSTransport(fstest.MapFS{
		"data/clients.json": {Data: []byte(`[{"name":"Acme","logo":"a.png"}]`)},
	})}
	cache := NewCache(time.Minute)
	f := NewFetcher(tr, WithCache(cache))

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), mustURL(t, "/"), content.ClientsFile)
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, tr.calls.Load())

	cache.Invalidate(content.ClientsFile)
	_, err := f.Fetch(context.Background(), mustURL(t, "/"), content.ClientsFile)
	require.NoError(t, err)
	require.EqualValues(t, 2, tr.calls.Load())
}

func TestCacheExpires(t *testing.T) {
	cache := NewCache(time.Minute)
	now := time.Now()
	cache.now = func() time.Time { return now }
	cache.put("blog.json", []json.RawMessage{json.RawMessage(`{}`)})

	_, ok := cache.get("blog.json")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.get("blog.json")
	require.False(t, ok)

	var nilCache *Cache
	_, ok = nilCache.get("blog.json")
	require.False(t, ok)
}

func TestGetItemByID(t *testing.T) {
	fsys := fstest.MapFS{
		"data/case-studies.json": {Data: []byte(`[{"id":1,"title":"One"},{"id":2,"title":"Two"}]`)},
	}
	f := NewFetcher(NewFSTransport(fsys))
	page := mustURL(t, "/ar/case-study/case-study.html?id=2")

	item, all, err := GetItemByID[content.CaseStudy](context.Background(), f, page, content.CaseStudiesFile, "2")
	require.NoError(t, err)
	require.Equal(t, "Two", item.Title)
	require.Len(t, all, 2)

	_, all, err = GetItemByID[content.CaseStudy](context.Background(), f, page, content.CaseStudiesFile, "9")
	require.ErrorIs(t, err, ErrNoSuchItem)
	require.Len(t, all, 2)

	_, _, err = GetItemByID[content.CaseStudy](context.Background(), f, page, content.WorksFile, "1")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestWatcherInvalidatesOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "blog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	cache := NewCache(time.Hour)
	cache.put("blog.json", []json.RawMessage{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := Watch(ctx, dir, cache, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1}]`), 0o644))
	require.Eventually(t, func() bool {
		_, ok := cache.get("blog.json")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Close())
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	w, err := Watch(ctx, t.TempDir(), NewCache(time.Minute), zap.NewNop())
	require.NoError(t, err)

	cancel()
	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
