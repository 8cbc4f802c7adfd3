package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 8 << 20
)

// Response is the subset of an HTTP response the fetcher inspects.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Transport retrieves a site-relative resource. ref carries an absolute path
// and may carry a query string.
type Transport interface {
	Get(ctx context.Context, ref *url.URL) (Response, error)
}

// HTTPTransport reads resources from a remote origin.
type HTTPTransport struct {
	origin  *url.URL
	client  *http.Client
	timeout time.Duration
}

// NewHTTPTransport builds a transport for origin. A zero timeout selects the
// five second default; it bounds each request independently.
func NewHTTPTransport(origin string, client *http.Client, timeout time.Duration) (*HTTPTransport, error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return nil, fmt.Errorf("dataset: parse origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("dataset: origin %q must be absolute", origin)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPTransport{origin: u, client: client, timeout: timeout}, nil
}

func (t *HTTPTransport) Get(ctx context.Context, ref *url.URL) (Response, error) {
	target := *t.origin
	target.Path = strings.TrimRight(t.origin.Path, "/") + ref.Path
	target.RawQuery = ref.RawQuery

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	resp, err := t.client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("dataset: read %s: %w", target.Path, err)
	}
	return Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// FSTransport serves resources from a site tree. Missing files answer 404 and
// the content type follows the file extension.
type FSTransport struct {
	fsys fs.FS
}

func NewFSTransport(fsys fs.FS) *FSTransport {
	return &FSTransport{fsys: fsys}
}

func (t *FSTransport) Get(ctx context.Context, ref *url.URL) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	name := strings.TrimPrefix(path.Clean("/"+ref.Path), "/")
	if name == "" || !fs.ValidPath(name) {
		return Response{Status: http.StatusNotFound}, nil
	}
	body, err := fs.ReadFile(t.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return Response{Status: http.StatusNotFound}, nil
	}
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			// directories and unreadable entries behave like a missing page
			return Response{Status: http.StatusNotFound}, nil
		}
		return Response{}, err
	}
	ctype := mime.TypeByExtension(path.Ext(name))
	if ctype == "" {
		ctype = http.DetectContentType(body)
	}
	return Response{Status: http.StatusOK, ContentType: ctype, Body: body}, nil
}
