package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 上下文键；登记表处理器写入，访问日志读取
const (
	CtxRequestID      = "request_id"
	CtxRegisterFilter = "register_filter"
	CtxEditID         = "edit_id"
)

// RequestID 沿用客户端传入的 X-Request-ID，否则生成一个
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(CtxRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Logger 访问日志，带上会话、登录用户以及登记表的筛选和编辑标识
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := append(make([]zap.Field, 0, 12),
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(CtxRequestID)),
		)
		fields = appendTag(fields, c, "user_id", CtxUserID)
		fields = appendTag(fields, c, "session_id", CtxSessionID)
		fields = appendTag(fields, c, "register_filter", CtxRegisterFilter)
		fields = appendTag(fields, c, "edit_id", CtxEditID)
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("Server error", fields...)
		case status >= 400:
			logger.Warn("Client error", fields...)
		default:
			logger.Info("Request", fields...)
		}
	}
}

func appendTag(fields []zap.Field, c *gin.Context, name, key string) []zap.Field {
	if v := c.GetString(key); v != "" {
		return append(fields, zap.String(name, v))
	}
	return fields
}
