package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxRequestIDLength caps the request ID copied onto spans
const maxRequestIDLength = 128

// Tracing starts a server span per request and, once the handlers have run,
// tags it with the request ID, the authenticated user and the :id route
// parameter. A nil provider uses the global one.
func Tracing(service string, provider trace.TracerProvider) gin.HandlersChain {
	var opts []otelgin.Option
	if provider != nil {
		opts = append(opts, otelgin.WithTracerProvider(provider))
	}
	return gin.HandlersChain{otelgin.Middleware(service, opts...), enrichSpan}
}

func enrichSpan(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	if id := requestID(c); id != "" {
		if len(id) > maxRequestIDLength {
			id = id[:maxRequestIDLength]
		}
		span.SetAttributes(attribute.String("request_id", id))
	}
	if userID := GetUserID(c); userID != "" {
		span.SetAttributes(attribute.String("user_id", userID))
	}
	if id := c.Param("id"); id != "" {
		span.SetAttributes(attribute.String("resource_id", id))
	}
}
