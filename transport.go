package goapicache

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strings"

	"golang.org/x/sync/singleflight"
)

// CacheTransport implements http.RoundTripper and layers response caching
// over an API client. GET responses are served from the cache while fresh;
// successful mutating requests invalidate the resource group they touch.
//
// Concurrent GETs for the same request signature are coalesced into a single
// upstream call. That deduplication lives here, not in the cache: the cache
// itself never tracks in-flight fetches.
type CacheTransport struct {
	Wrapped http.RoundTripper

	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// RoundTrip implements http.RoundTripper.
//
// The process follows these steps:
// 1. Mutating requests are forwarded; a 2xx response triggers invalidation
// 2. GETs check the cache and return a fresh entry without a network call
// 3. Cache misses are coalesced per request signature and forwarded
// 4. 2xx GET responses are stored under the TTL policy for their path.
func (t *CacheTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		// handled below
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		resp, err := t.Wrapped.RoundTrip(r)
		if err != nil {
			return resp, err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			t.invalidateAfterWrite(r)
		}

		return resp, nil
	default:
		return t.Wrapped.RoundTrip(r)
	}

	path := r.URL.Path
	params := r.URL.Query()

	if raw, ok := Lookup[[]byte](t.cache, path, params); ok {
		t.logger.DebugContext(ctx, "cache hit", "url", r.URL.String())
		return http.ReadResponse(bufio.NewReader(bytes.NewReader(raw)), r)
	}

	t.logger.DebugContext(ctx, "cache miss", "url", r.URL.String())

	v, err, shared := t.group.Do(Key(path, params), func() (any, error) {
		resp, err := t.Wrapped.RoundTrip(r)
		if err != nil {
			return nil, err
		}

		raw, dumpErr := httputil.DumpResponse(resp, true)
		if dumpErr != nil {
			return nil, dumpErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			t.logger.DebugContext(ctx, "caching response", "url", r.URL.String())
			t.cache.Set(path, raw, params)
		}

		return raw, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		t.logger.DebugContext(ctx, "request coalesced", "url", r.URL.String())
	}

	return http.ReadResponse(bufio.NewReader(bytes.NewReader(v.([]byte))), r)
}

// invalidateAfterWrite drops the cache entries made stale by a successful
// mutation. A path carrying an id segment after its resource marker
// invalidates that item plus its group; otherwise the whole group goes.
// Paths matching no configured marker fall back to invalidating the path
// itself.
func (t *CacheTransport) invalidateAfterWrite(r *http.Request) {
	ctx := r.Context()
	path := r.URL.Path
	m := t.cache.Markers()

	for _, marker := range []string{m.Items, m.Favorites, m.Users, m.Categories, m.Featured} {
		if marker == "" || !strings.Contains(path, marker) {
			continue
		}

		if id := itemID(path, marker); id != "" {
			t.logger.DebugContext(ctx, "invalidating item", "marker", marker, "id", id)
			t.cache.InvalidateItem(marker, id)
		} else {
			t.logger.DebugContext(ctx, "invalidating resource group", "marker", marker)
			t.cache.InvalidateResourceGroup(marker)
		}

		return
	}

	t.logger.DebugContext(ctx, "invalidating path", "path", path)
	t.cache.Invalidate(path)
}

// itemID returns the path segment directly after the marker, or "" when the
// path addresses the collection itself.
func itemID(path, marker string) string {
	idx := strings.Index(path, marker)
	rest := strings.TrimPrefix(path[idx+len(marker):], "/")
	if rest == "" {
		return ""
	}

	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}

	return rest
}

// New creates a transport middleware that adds response caching to an HTTP
// RoundTripper, backed by the given cache.
//
// If the logger is nil, a no-op logger writing to io.Discard will be used.
func New(cache *Cache, logger *slog.Logger) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(rt http.RoundTripper) http.RoundTripper {
		return &CacheTransport{Wrapped: rt, cache: cache, logger: logger}
	}
}
