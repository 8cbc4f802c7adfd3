// Package dataset loads the JSON collections that back the site's dynamic
// sections. A fetch tries a fixed list of candidate locations relative to the
// page being rendered and settles on the first one that yields JSON.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mustafabch/website/internal/content"
	"github.com/mustafabch/website/internal/requestctx"
)

var (
	// ErrUnavailable is returned when no candidate produced a JSON collection.
	ErrUnavailable = errors.New("dataset: unavailable")
	// ErrNoSuchItem is returned by GetItemByID when the collection loaded but
	// holds no record with the requested id.
	ErrNoSuchItem = errors.New("dataset: no such item")
)

var candidatePrefixes = []string{"/data/", "../../data/", "../../../data/"}

// Fetcher resolves and loads datasets through a Transport.
type Fetcher struct {
	transport Transport
	cache     *Cache
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithCache enables the TTL cache.
func WithCache(c *Cache) Option {
	return func(f *Fetcher) { f.cache = c }
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithClock overrides the clock used for cache-busting parameters.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

func NewFetcher(t Transport, opts ...Option) *Fetcher {
	f := &Fetcher{
		transport: t,
		logger:    zap.NewNop(),
		tracer:    otel.Tracer("github.com/mustafabch/website/internal/dataset"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Cache exposes the fetcher's cache, nil when caching is disabled.
func (f *Fetcher) Cache() *Cache { return f.cache }

// Transport exposes the underlying transport for fragment loading.
func (f *Fetcher) Transport() Transport { return f.transport }

// Candidates lists the locations tried for name, in order, resolved against
// page and stamped with a cache-busting v parameter.
func (f *Fetcher) Candidates(page *url.URL, name string) []*url.URL {
	base := page
	if base == nil {
		base = &url.URL{Path: "/"}
	}
	stamp := strconv.FormatInt(f.now().UnixMilli(), 10)
	out := make([]*url.URL, 0, len(candidatePrefixes))
	for _, prefix := range candidatePrefixes {
		ref := &url.URL{Path: prefix + name, RawQuery: "v=" + stamp}
		resolved := base.ResolveReference(ref)
		resolved.Scheme, resolved.Host, resolved.User = "", "", nil
		out = append(out, resolved)
	}
	return out
}

// Fetch loads name as a JSON array. It never panics; every failure collapses
// into ErrUnavailable after a warning is logged.
func (f *Fetcher) Fetch(ctx context.Context, page *url.URL, name string) ([]json.RawMessage, error) {
	if records, ok := f.cache.get(name); ok {
		return records, nil
	}

	ctx, span := f.tracer.Start(ctx, "dataset.fetch", trace.WithAttributes(attribute.String("dataset.name", name)))
	defer span.End()

	logger := f.loggerFor(ctx)

	var attempts []string
	for _, candidate := range f.Candidates(page, name) {
		records, err := f.attempt(ctx, candidate)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", candidate.Path, err))
			continue
		}
		span.SetAttributes(
			attribute.String("dataset.candidate", candidate.Path),
			attribute.Int("dataset.records", len(records)),
		)
		span.SetStatus(codes.Ok, "")
		f.cache.put(name, records)
		return records, nil
	}

	span.SetStatus(codes.Error, "unavailable")
	logger.Warn("dataset unavailable",
		zap.String("dataset", name),
		zap.Strings("attempts", attempts),
	)
	return nil, ErrUnavailable
}

func (f *Fetcher) loggerFor(ctx context.Context) *zap.Logger {
	if logger := requestctx.Logger(ctx); logger != requestctx.NoopLogger() {
		return logger
	}
	return f.logger
}

func (f *Fetcher) attempt(ctx context.Context, ref *url.URL) ([]json.RawMessage, error) {
	resp, err := f.transport.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("status %d", resp.Status)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(resp.Body, &records); err != nil {
		if isJSON(resp.ContentType) {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return nil, fmt.Errorf("content type %q: %w", resp.ContentType, err)
	}
	return records, nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// Load fetches name and decodes it into T. Undecodable records are logged and
// skipped; the collection is unavailable only when none of them decode.
func Load[T any](ctx context.Context, f *Fetcher, page *url.URL, name string) ([]T, error) {
	records, err := f.Fetch(ctx, page, name)
	if err != nil {
		return nil, err
	}
	items, err := content.Decode[T](records)
	if err != nil {
		if len(items) == 0 {
			f.loggerFor(ctx).Warn("dataset decode failed", zap.String("dataset", name), zap.Error(err))
			return nil, ErrUnavailable
		}
		f.loggerFor(ctx).Warn("dataset records skipped",
			zap.String("dataset", name),
			zap.Int("kept", len(items)),
			zap.Int("total", len(records)),
			zap.Error(err),
		)
	}
	return items, nil
}

// GetItemByID loads name and returns the record whose id matches id by
// string form, together with the full collection.
func GetItemByID[T content.Entity](ctx context.Context, f *Fetcher, page *url.URL, name, id string) (T, []T, error) {
	var zero T
	items, err := Load[T](ctx, f, page, name)
	if err != nil {
		return zero, nil, err
	}
	item, _, ok := content.FindByID(items, id)
	if !ok {
		return zero, items, ErrNoSuchItem
	}
	return item, items, nil
}
