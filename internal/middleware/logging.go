package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/John-Sie/YangBeiKTV/internal/metrics"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

// Logging 访问日志，同时记录 API 指标
func Logging(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordAPIRequest(c.Request.Method, endpoint, status, latency)

		fields := []logger.Field{
			logger.String("request_id", GetRequestID(c)),
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.String("query", c.Request.URL.RawQuery),
			logger.Int("status", status),
			logger.String("ip", c.ClientIP()),
			logger.Int64("latency_ms", latency.Milliseconds()),
		}
		if uid := GetUserID(c); uid != "" {
			fields = append(fields, logger.String("user_id", uid))
		}

		switch {
		case status >= 500:
			if len(c.Errors) > 0 {
				fields = append(fields, logger.String("error", c.Errors.String()))
			}
			log.Error("HTTP request failed with server error", fields...)
		case status >= 400:
			log.Warn("HTTP request failed with client error", fields...)
		default:
			log.Info("HTTP request completed", fields...)
		}
	}
}
