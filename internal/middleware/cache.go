package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/altera-oes/backend/internal/config"
)

const (
	cacheHeader     = "X-Cache"
	defaultCacheTTL = 30 * time.Second
)

// contentHeaders are the only response headers a cache entry keeps. CORS,
// request id and the rest belong to the live request and are set by the
// middleware chain on every hit.
var contentHeaders = []string{
	echo.HeaderContentType,
	echo.HeaderContentEncoding,
	"Content-Language",
	"ETag",
	echo.HeaderLastModified,
}

func contentHeadersOf(src http.Header) http.Header {
	dst := make(http.Header, len(contentHeaders))
	for _, k := range contentHeaders {
		if vals := src.Values(k); len(vals) > 0 {
			dst[k] = append([]string(nil), vals...)
		}
	}
	return dst
}

// bodyRecorder tees the response body into a bounded buffer.
type bodyRecorder struct {
	http.ResponseWriter
	status  int
	buf     bytes.Buffer
	written int64
	limit   int64
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	if room := r.limit - int64(r.buf.Len()); r.limit <= 0 || room >= int64(len(b)) {
		r.buf.Write(b)
	} else if room > 0 {
		r.buf.Write(b[:room])
	}
	r.written += int64(len(b))
	return r.ResponseWriter.Write(b)
}

// overflowed reports whether the body outgrew the buffer.
func (r *bodyRecorder) overflowed() bool { return r.limit > 0 && r.written > r.limit }

// cachedResponse is what a cache entry holds in Redis.
type cachedResponse struct {
	Status int         `json:"s"`
	Header http.Header `json:"h"`
	Body   []byte      `json:"b"`
}

// cacheKey hashes the route (and, with the default strategy, the query
// string) under cfg.Prefix so that a purge can match prefix:*.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	material := c.Request().Method + " " + c.Path()
	if !strings.EqualFold(cfg.KeyStrategy, "route") {
		material += "?" + c.Request().URL.RawQuery
	}
	sum := sha1.Sum([]byte(material))
	return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

func replay(c echo.Context, raw []byte) bool {
	var entry cachedResponse
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Status == 0 {
		return false
	}
	h := c.Response().Header()
	for k, vals := range contentHeadersOf(entry.Header) {
		h[k] = vals
	}
	h.Set(cacheHeader, "HIT")
	c.Response().WriteHeader(entry.Status)
	_, _ = c.Response().Write(entry.Body)
	return true
}

// NewRedisCache caches 200 responses of the methods listed in cfg. With
// caching disabled or a nil client the returned middleware does nothing.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil && replay(c, raw) {
				return nil
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
			c.Response().Writer = rec
			c.Response().Header().Set(cacheHeader, "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflowed() {
				return nil
			}

			raw, err := json.Marshal(cachedResponse{
				Status: rec.status,
				Header: contentHeadersOf(c.Response().Header()),
				Body:   rec.buf.Bytes(),
			})
			if err == nil {
				// the request context may already be cancelled once the client has its answer
				_ = rdb.SetEx(context.WithoutCancel(ctx), key, raw, ttl).Err()
			}
			return nil
		}
	}
}

// CachePurger drops every entry written by NewRedisCache under one prefix.
// Writers call Purge after changing data that cached responses expose.
type CachePurger struct {
	rdb    *redis.Client
	prefix string
}

// NewCachePurger returns a purger; with a nil client Purge is a no-op.
func NewCachePurger(cfg config.CacheConfig, rdb *redis.Client) *CachePurger {
	if !cfg.Enabled {
		rdb = nil
	}
	return &CachePurger{rdb: rdb, prefix: cfg.Prefix}
}

// Purge deletes all keys of the cache prefix.
func (p *CachePurger) Purge(ctx context.Context) error {
	if p == nil || p.rdb == nil {
		return nil
	}
	var keys []string
	iter := p.rdb.Scan(ctx, 0, p.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := p.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache purge: %w", err)
	}
	return nil
}
