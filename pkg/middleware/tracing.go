package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/sociojustice/pkg/tracing"
)

// TracingMiddleware 为每个请求创建 server span，沿用请求头中的上游 trace.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}

		parent := tracing.Extract(c.Request.Context(), c.Request.Header)

		ctx, span := tracing.StartSpan(parent, c.Request.Method+" "+name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", name),
				attribute.String("http.target", c.Request.URL.Path),
				attribute.String("http.user_agent", c.Request.UserAgent()),
				attribute.String("http.client_ip", c.ClientIP()),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		statusCode := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", statusCode))

		if id := GetIdentity(c); id != nil {
			span.SetAttributes(attribute.String("enduser.id", id.UserID))
		}

		// 4xx 属于调用方问题，span 保持未设置状态
		if statusCode >= 500 {
			msg := c.Errors.String()
			if msg == "" {
				msg = "server error"
			}

			span.SetStatus(codes.Error, msg)
		}
	}
}
