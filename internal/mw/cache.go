package mw

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
	expires time.Time
}

// recordingWriter copies the response body while it is written.
type recordingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// cacheKey ignores the order of query parameters.
func cacheKey(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.Query().Encode()
}

// Cache keeps successful anonymous GET responses in memory and tells clients
// how long they may reuse them. Requests that carry credentials always reach
// the handler.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || c.GetHeader("Authorization") != "" {
			c.Next()
			return
		}

		key := cacheKey(c.Request)
		if v, found := store.Get(key); found {
			hit := v.(cachedResponse)
			header := c.Writer.Header()
			for k, vals := range hit.headers {
				header[k] = vals
			}
			remaining := max(time.Until(hit.expires), 0)
			header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(remaining.Seconds())))
			header.Set("X-Cache", "HIT")
			c.Writer.WriteHeader(hit.status)
			c.Writer.Write(hit.body)
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(ttl.Seconds())))
		rec := &recordingWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := rec.Status()
		if status < 200 || status >= 300 {
			return
		}
		headers := rec.Header().Clone()
		headers.Del("X-Cache")
		headers.Del("Cache-Control")
		store.Set(key, cachedResponse{
			status:  status,
			headers: headers,
			body:    rec.body.Bytes(),
			expires: time.Now().Add(ttl),
		}, ttl)
	}
}
