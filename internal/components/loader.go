// Package components injects shared HTML fragments (header, footer, sidebars)
// into their [data-component] placeholders.
package components

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/mustafabch/website/internal/dataset"
	"github.com/mustafabch/website/internal/lifecycle"
	"github.com/mustafabch/website/internal/requestctx"
)

const (
	// Attr names the fragment path on a placeholder.
	Attr = "data-component"

	maxParallel = 8
)

// Loader fetches fragments through a dataset transport.
type Loader struct {
	transport dataset.Transport
	logger    *zap.Logger
}

func New(t dataset.Transport, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{transport: t, logger: logger}
}

type result struct {
	nodes []*html.Node
	err   error
}

// Load fills every placeholder in doc. Fragments are fetched in parallel and
// injected once all have settled; a placeholder whose fragment fails is
// hidden. ComponentsLoaded is published exactly once, also when the page has
// no placeholders. Load returns ctx's error if the context ends first.
func (l *Loader) Load(ctx context.Context, doc *goquery.Document, page *url.URL, bus lifecycle.Publisher) error {
	if bus == nil {
		bus = lifecycle.Discard
	}
	var once sync.Once
	done := func() { once.Do(func() { bus.ComponentsLoaded(ctx, doc) }) }
	defer done()

	placeholders := doc.Find("[" + Attr + "]")
	results := make([]result, placeholders.Length())

	var g errgroup.Group
	g.SetLimit(maxParallel)
	placeholders.Each(func(i int, el *goquery.Selection) {
		ref, _ := el.Attr(Attr)
		node := el.Get(0)
		g.Go(func() error {
			nodes, err := l.fetch(ctx, page, ref, node)
			results[i] = result{nodes: nodes, err: err}
			return nil
		})
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	logger := l.loggerFor(ctx)
	placeholders.Each(func(i int, el *goquery.Selection) {
		ref, _ := el.Attr(Attr)
		res := results[i]
		if res.err != nil {
			logger.Warn("component unavailable", zap.String("component", ref), zap.Error(res.err))
			el.SetAttr("style", "display: none;")
			return
		}
		inject(el.Get(0), res.nodes)
		el.SetAttr("data-loaded", "true")
		RebuildScripts(el.Get(0))
	})
	return nil
}

func (l *Loader) loggerFor(ctx context.Context) *zap.Logger {
	if logger := requestctx.Logger(ctx); logger != requestctx.NoopLogger() {
		return logger
	}
	return l.logger
}

// fetch retrieves and parses one fragment in the placeholder's context. It
// only reads the placeholder node, so it is safe to run concurrently.
func (l *Loader) fetch(ctx context.Context, page *url.URL, ref string, holder *html.Node) ([]*html.Node, error) {
	target, err := Resolve(page, ref)
	if err != nil {
		return nil, err
	}
	resp, err := l.transport.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("components: %s: status %d", target.Path, resp.Status)
	}
	nodes, err := html.ParseFragment(bytes.NewReader(resp.Body), &html.Node{
		Type:     html.ElementNode,
		Data:     holder.Data,
		DataAtom: holder.DataAtom,
	})
	if err != nil {
		return nil, fmt.Errorf("components: parse %s: %w", target.Path, err)
	}
	return nodes, nil
}

// Resolve turns a placeholder reference into a site path relative to page.
func Resolve(page *url.URL, ref string) (*url.URL, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("components: empty %s", Attr)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("components: parse %q: %w", ref, err)
	}
	base := page
	if base == nil {
		base = &url.URL{Path: "/"}
	}
	out := base.ResolveReference(rel)
	if rel.IsAbs() && out.Host != base.Host {
		return nil, fmt.Errorf("components: %q is not on this site", ref)
	}
	out.Scheme, out.Host, out.User = "", "", nil
	return out, nil
}

func inject(parent *html.Node, nodes []*html.Node) {
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		parent.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
}

// RebuildScripts replaces every script under root with a fresh element that
// carries the same attributes and inline text.
func RebuildScripts(root *html.Node) {
	var scripts []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Script {
			scripts = append(scripts, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	for _, old := range scripts {
		fresh := &html.Node{
			Type:     html.ElementNode,
			Data:     "script",
			DataAtom: atom.Script,
			Attr:     append([]html.Attribute(nil), old.Attr...),
		}
		var text strings.Builder
		for c := old.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				text.WriteString(c.Data)
			}
		}
		if text.Len() > 0 {
			fresh.AppendChild(&html.Node{Type: html.TextNode, Data: text.String()})
		}
		old.Parent.InsertBefore(fresh, old)
		old.Parent.RemoveChild(old)
	}
}
