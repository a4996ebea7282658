package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/John-Sie/YangBeiKTV/pkg/errors"
	"github.com/John-Sie/YangBeiKTV/pkg/httputil"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

// Recovery 捕获 panic 并返回 500
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered",
					logger.String("request_id", GetRequestID(c)),
					logger.String("method", c.Request.Method),
					logger.String("path", c.Request.URL.Path),
					logger.String("ip", c.ClientIP()),
					logger.String("panic", fmt.Sprintf("%v", err)),
					logger.String("stack", string(debug.Stack())),
				)
				httputil.AbortWithError(c, apperrors.ErrInternal)
			}
		}()

		c.Next()
	}
}
