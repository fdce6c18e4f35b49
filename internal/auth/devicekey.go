package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// deviceKeyCtxKey is the Gin context key holding the device API key.
const deviceKeyCtxKey = "device_api_key"

// apiKeyHeaderName is the header sensors use to present their shared secret.
const apiKeyHeaderName = "X-Api-Key"

// DeviceKeyMiddleware extracts the device's shared secret from the request
// header and stores it for the handler. Whether the key is actually valid
// for the claimed sensor is decided later by the ingestion pipeline; this
// middleware only rejects requests that carry no key at all.
func DeviceKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey, ok := c.Request.Header[http.CanonicalHeaderKey(apiKeyHeaderName)]
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "API_KEY_MISSING",
				"message": "API Key not provided",
			})
			return
		}

		if len(apiKey) == 0 || strings.TrimSpace(apiKey[0]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "API_KEY_INVALID",
				"message": "Invalid API Key",
			})
			return
		}

		c.Set(deviceKeyCtxKey, apiKey[0])
		c.Next()
	}
}

// DeviceKey returns the device API key from the request context.
func DeviceKey(c *gin.Context) string {
	v, _ := c.Get(deviceKeyCtxKey)
	s, _ := v.(string)
	return s
}
