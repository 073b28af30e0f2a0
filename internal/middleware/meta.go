package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-karyawan/internal/models"
	"github.com/noah-isme/absensi-karyawan/pkg/middleware/requestid"
)

const (
	responseMetaKey  = "response_meta"
	requestStartKey  = "request_start"
	metaWarningsKey  = "warnings"
	metaProcessingMs = "processing_time_ms"
	metaRequestIDKey = "request_id"
)

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// AddWarnings attaches data-quality warnings to the response metadata.
func AddWarnings(c *gin.Context, warnings []models.DataQualityWarning) {
	if len(warnings) == 0 {
		return
	}
	meta := ensureMeta(c)
	existing, _ := meta[metaWarningsKey].([]models.DataQualityWarning)
	meta[metaWarningsKey] = append(existing, warnings...)
}

// ExtractMeta returns a copy of the metadata gathered so far, stamped with
// the request id and elapsed time.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta := make(map[string]interface{})
	for k, v := range ensureMeta(c) {
		meta[k] = v
	}
	if start, ok := c.Get(requestStartKey); ok {
		if t, ok := start.(time.Time); ok {
			meta[metaProcessingMs] = time.Since(t).Milliseconds()
		}
	}
	if id := requestid.Value(c); id != "" {
		meta[metaRequestIDKey] = id
	}
	return meta
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
