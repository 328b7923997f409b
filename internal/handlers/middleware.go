package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"hotel_ops/internal/metrics"

	"github.com/gin-gonic/gin"
)

const (
	deviceIDHeader = "X-Device-ID"
	deviceIDKey    = "deviceId"
	maxDeviceIDLen = 128
)

// deviceIDMiddleware reads the optional X-Device-ID header and stores it in
// the Gin context. It identifies the calling installation; it is not auth.
func (h *Handler) deviceIDMiddleware(c *gin.Context) {
	header := c.Request.Header.Values(deviceIDHeader)
	if len(header) == 0 {
		c.Next()
		return
	}

	id := strings.TrimSpace(strings.Join(header, ""))
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "empty X-Device-ID header",
		})
		return
	}
	if len(id) > maxDeviceIDLen || strings.ContainsAny(id, " \t/") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "invalid X-Device-ID header",
		})
		return
	}

	c.Set(deviceIDKey, id)
	c.Next()
}

// callerDevice returns the device id set by deviceIDMiddleware, if any.
func callerDevice(c *gin.Context) string {
	return c.GetString(deviceIDKey)
}

func (h *Handler) metricsMiddleware(c *gin.Context) {
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	metrics.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status()/100)+"xx").Inc()
}
