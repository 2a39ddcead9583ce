package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SentryConfig holds Sentry-specific configuration
type SentryConfig struct {
	DSN          string
	Environment  string
	Release      string
	SampleRate   float64
	FlushTimeout time.Duration
}

// InitSentry initializes the Sentry SDK. An empty DSN leaves Sentry disabled.
func InitSentry(config SentryConfig) (bool, error) {
	if config.DSN == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      config.Environment,
		Release:          config.Release,
		SampleRate:       config.SampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	return true, nil
}

// FlushSentry flushes any buffered events to Sentry
func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}

// RecoverWithSentry converts panics into 500 responses and reports them to
// Sentry when enabled
func RecoverWithSentry(logger *zap.Logger, sentryEnabled bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		var hub *sentry.Hub
		if sentryEnabled {
			hub = sentry.CurrentHub().Clone()
			setSentryRequestContext(hub, c)
		}

		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()

			var panicErr error
			switch v := r.(type) {
			case error:
				panicErr = v
			default:
				panicErr = fmt.Errorf("%v", v)
			}

			logger.Error("panic recovered",
				zap.Error(panicErr),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.String("stack", string(stack)),
				zap.String("request_id", GetRequestID(c)),
			)

			if hub != nil {
				hub.Scope().SetExtra("stack_trace", string(stack))
				hub.Scope().SetLevel(sentry.LevelFatal)
				if eventID := hub.RecoverWithContext(c.Context(), r); eventID != nil {
					logger.Info("panic reported to Sentry", zap.String("event_id", string(*eventID)))
				}
				hub.Flush(2 * time.Second)
			}

			err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":      "Internal Server Error",
				"message":    "An unexpected error occurred",
				"request_id": GetRequestID(c),
			})
		}()

		return c.Next()
	}
}

// CaptureError reports a non-panic server error to Sentry
func CaptureError(c *fiber.Ctx, err error) {
	hub := sentry.CurrentHub().Clone()
	setSentryRequestContext(hub, c)
	hub.CaptureException(err)
}

// setSentryRequestContext sets request context on a Sentry hub from Fiber context
func setSentryRequestContext(hub *sentry.Hub, c *fiber.Ctx) {
	headers := make(map[string]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := string(key)
		// Don't include credentials
		if k != fiber.HeaderAuthorization && k != fiber.HeaderCookie {
			headers[k] = string(value)
		}
	})

	hub.Scope().SetTag("request_id", GetRequestID(c))
	hub.Scope().SetContext("Request", map[string]interface{}{
		"url":         c.OriginalURL(),
		"method":      c.Method(),
		"headers":     headers,
		"remote_addr": c.IP(),
	})
}
