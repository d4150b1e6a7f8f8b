package httpapi

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

const requestIDKey = "request_id"

// RequestID injects a unique X-Request-Id header into every request/response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-Id", id)
		c.Request = c.Request.WithContext(logger.WithRequest(c.Request.Context(), id))
		c.Next()
	}
}

func requestContext(c *gin.Context) context.Context {
	return c.Request.Context()
}

// Recovery recovers from panics, logs the stack and answers 500.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error(requestContext(c), "Panic recovered: %v %s %s\n%s",
					err, c.Request.Method, c.Request.URL.Path, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, Internal().ToResponse())
			}
		}()
		c.Next()
	}
}

// RequestLogger logs every request with method, path, status and latency.
// Health checks are skipped.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}
		const format = "%s %s %d %s %s"
		args := []any{c.Request.Method, path, status, latency, c.ClientIP()}

		switch {
		case status >= 500:
			log.Error(requestContext(c), format, args...)
		case status >= 400:
			log.Warn(requestContext(c), format, args...)
		default:
			log.Info(requestContext(c), format, args...)
		}
	}
}

// BodySizeLimit caps request bodies at limit bytes. Requests that declare a
// larger Content-Length are refused before any of the body is read.
func BodySizeLimit(limit int64, onTooLarge func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			onTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
