// Package middleware provides HTTP middleware for the contract draft API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DraftIDParam is the route parameter holding a draft session ID
const DraftIDParam = "id"

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
}

// TracingWithConfig returns the otelgin middleware, which runs the rest of
// the chain inside a server span.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return otelgin.Middleware(cfg.ServiceName)
}

// SpanEnricher adds request attributes to the current span and marks it
// failed on error responses. Place it after TracingWithConfig and RequestID.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			// Only well-formed IDs reach span attributes
			if id, err := uuid.Parse(c.Param(DraftIDParam)); err == nil {
				span.SetAttributes(attribute.String("draft_session_id", id.String()))
			}
		}

		c.Next()

		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, spanErrorMessage(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}

func spanErrorMessage(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Server Error"
	case status == http.StatusNotFound:
		return "Not Found"
	case status == http.StatusUnprocessableEntity:
		return "Validation Failed"
	default:
		return "Client Error"
	}
}
