package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"
)

const (
	// LongCache suits fingerprinted or rarely changing assets.
	LongCache = "public, max-age=604800, stale-while-revalidate=86400"
	// Revalidate forces a conditional request every time.
	Revalidate = "no-cache"
)

type etagEntry struct {
	modTime time.Time
	size    int64
	tag     string
}

type assets struct {
	fsys         fs.FS
	files        http.Handler
	cacheControl string

	mu    sync.Mutex
	etags map[string]etagEntry
}

// AssetsWithCache wraps a file server over fsys and applies Cache-Control,
// Vary and ETag handling. ETags are content hashes recomputed when a file's
// size or modification time changes.
func AssetsWithCache(fsys fs.FS, cacheControl string) http.Handler {
	return &assets{
		fsys:         fsys,
		files:        http.FileServer(http.FS(fsys)),
		cacheControl: cacheControl,
		etags:        map[string]etagEntry{},
	}
}

func (a *assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Vary", "Accept-Encoding")
	w.Header().Set("Cache-Control", a.cacheControl)
	if et := a.etag(r.URL.Path); et != "" {
		w.Header().Set("ETag", et)
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	a.files.ServeHTTP(w, r)
}

func (a *assets) etag(urlPath string) string {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		return ""
	}
	info, err := fs.Stat(a.fsys, name)
	if err != nil || info.IsDir() {
		return ""
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.etags[name]; ok && e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
		return e.tag
	}
	tag, err := fileETag(a.fsys, name)
	if err != nil {
		return ""
	}
	a.etags[name] = etagEntry{modTime: info.ModTime(), size: info.Size(), tag: tag}
	return tag
}

func fileETag(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}
