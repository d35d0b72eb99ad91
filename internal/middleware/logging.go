package middleware

import (
	"log/slog"
	"time"

	"bullpen/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ContextMiddleware stamps a request id on every request and injects it into
// the request context, so the context-aware logger picks it up even in the
// engine and repository layers. The user id is stamped later, by AuthRequired,
// once the token has been verified.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)
		c.Locals("requestID", rid)
		ctx = observability.WithRequestID(ctx, rid)

		if tid, ok := c.Locals("traceID").(string); ok {
			ctx = observability.WithTraceID(ctx, tid)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger returns a Fiber middleware for logging requests using slog.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
		}

		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
			slog.ErrorContext(c.UserContext(), "request failed", fields...)
		} else {
			slog.InfoContext(c.UserContext(), "request processed", fields...)
		}

		return err
	}
}
