package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ntroshin/orderflow/internal/domain/repository"
)

// IdempotencyKeyHeader carries the caller-chosen execution guard key.
const IdempotencyKeyHeader = "Idempotency-Key"

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotent makes a mutating route replay-safe. A repeated key returns the
// stored response of the first execution; a key whose first execution is
// still in flight gets a conflict. Requests without a key run unguarded.
func Idempotent(store repository.IdempotencyStore, ttl time.Duration, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		caller := callerIdentity(c)
		route := c.Request.Method + " " + c.FullPath()

		record, created, err := store.Reserve(c.Request.Context(), caller, route, key, ttl)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if !created {
			if record.Completed() {
				c.Data(*record.ResponseStatus, "application/json", record.ResponseBody)
				c.Abort()
				return
			}
			c.AbortWithStatus(http.StatusConflict)
			return
		}

		writer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		// Server errors stay retryable, the reservation expires on its own.
		if status >= http.StatusInternalServerError {
			return
		}
		if err := store.Complete(c.Request.Context(), caller, route, key, status, writer.body.Bytes()); err != nil {
			// The reservation stays in flight and keeps answering 409
			// until the TTL releases it; the client already has its
			// response, so all we can do is leave a trace.
			logger.Error("idempotency capture failed",
				slog.String("caller", caller),
				slog.String("route", route),
				slog.String("error", err.Error()))
		}
	}
}

func callerIdentity(c *gin.Context) string {
	if val, ok := c.Get(ApproverIDContextKey); ok {
		if id, ok := val.(int64); ok {
			return "approver:" + strconv.FormatInt(id, 10)
		}
	}
	if val, ok := c.Get(UserIDContextKey); ok {
		if id, ok := val.(int64); ok {
			return "user:" + strconv.FormatInt(id, 10)
		}
	}
	return "anon:" + c.ClientIP()
}
