package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHeader     = "X-Cache"
)

// WithResponseMeta gives each request a metadata map that handlers may fill and pass
// to response.JSON. Processing time is added once the handler chain returns.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
		meta := ExtractMeta(c)
		if _, exists := meta["processing_time_ms"]; !exists {
			meta["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
}

// SetCacheHit records whether the payload came from cache, in the meta map and the X-Cache header.
func SetCacheHit(c *gin.Context, hit bool) {
	ExtractMeta(c)["cache_hit"] = hit
	status := "MISS"
	if hit {
		status = "HIT"
	}
	c.Header(cacheHeader, status)
}

// ExtractMeta returns the metadata map stored on the context, creating it when missing.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
