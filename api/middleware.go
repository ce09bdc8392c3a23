package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/YuminosukeSato/nameml/pkg/log"
)

// RequestLogger logs one line per request. Server errors are logged at
// error level, client errors at warn level.
func RequestLogger(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			log.HTTPMethodKey, c.Request.Method,
			log.HTTPPathKey, c.FullPath(),
			log.HTTPStatusKey, status,
			log.HTTPRemoteAddrKey, c.ClientIP(),
			log.DurationMsKey, float64(time.Since(start).Microseconds()) / 1000,
		}
		if len(c.Errors) > 0 {
			fields = append(fields, log.ErrAttrKey, c.Errors.Last().Err)
		}
		switch {
		case status >= 500:
			logger.Error("Request failed", fields...)
		case status >= 400:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request served", fields...)
		}
	}
}
