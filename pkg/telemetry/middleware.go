package telemetry

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader is returned on traced responses so clients can quote it in support requests
const TraceIDHeader = "X-Trace-ID"

const httpTracerName = "cult/http"

// TracingOption tunes TracingMiddleware
type TracingOption func(*tracingConfig)

type tracingConfig struct {
	skipRoutes map[string]struct{}
}

// WithoutTracing leaves the given routes untraced, e.g. health checks
func WithoutTracing(routes ...string) TracingOption {
	return func(cfg *tracingConfig) {
		for _, r := range routes {
			cfg.skipRoutes[r] = struct{}{}
		}
	}
}

// TracingMiddleware opens a server span named after the matched route and
// continues any trace the caller propagated.
func TracingMiddleware(opts ...TracingOption) gin.HandlerFunc {
	cfg := &tracingConfig{skipRoutes: make(map[string]struct{})}
	for _, opt := range opts {
		opt(cfg)
	}
	tracer := otel.Tracer(httpTracerName)

	return func(c *gin.Context) {
		route := c.FullPath()
		if _, skip := cfg.skipRoutes[route]; skip {
			c.Next()
			return
		}

		// unmatched paths share one span name to keep cardinality bounded
		spanName := c.Request.Method + " " + route
		if route == "" {
			spanName = c.Request.Method + " unmatched"
		}

		parent := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(parent, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethod(c.Request.Method),
				semconv.HTTPRoute(route),
				semconv.UserAgentOriginal(c.Request.UserAgent()),
				attribute.String("http.client_ip", c.ClientIP()),
			),
		)
		defer span.End()

		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Header(TraceIDHeader, sc.TraceID().String())
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCode(status))
		if id := c.GetString("request_id"); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		for _, e := range c.Errors {
			span.RecordError(e.Err)
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
