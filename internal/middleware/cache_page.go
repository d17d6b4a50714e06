package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/pkg/logger"
)

type cachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// CachePage serves GET requests from store for ttl. The key is prefix plus
// the request URI, so every page number is cached separately while all
// viewers share an entry. Only 200 responses are stored. Cache failures
// fall through to the handler.
func CachePage(store cache.Cache, ttl time.Duration, prefix string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}
			ctx := req.Context()
			key := prefix + req.URL.RequestURI()

			raw, ok, err := store.Get(ctx, key)
			if err != nil {
				logger.Warn("page cache read failed", zap.String("key", key), zap.Error(err))
			}
			if ok {
				var page cachedPage
				if err := json.Unmarshal(raw, &page); err == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(page.Status, page.ContentType, page.Body)
				}
				logger.Warn("dropping corrupt page cache entry", zap.String("key", key))
			}

			res := c.Response()
			rec := &recorder{ResponseWriter: res.Writer}
			res.Writer = rec
			err = next(c)
			res.Writer = rec.ResponseWriter
			if err != nil || res.Status != http.StatusOK {
				return err
			}

			page, err := json.Marshal(cachedPage{
				Status:      res.Status,
				ContentType: res.Header().Get(echo.HeaderContentType),
				Body:        rec.body.Bytes(),
			})
			if err != nil {
				logger.Warn("page cache encode failed", zap.Error(err))
				return nil
			}
			if err := store.Set(ctx, key, page, ttl); err != nil {
				logger.Warn("page cache write failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}

// recorder tees the response body into a buffer.
type recorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *recorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("response does not support hijacking")
}
