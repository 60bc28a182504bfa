package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTPRecorder receives one observation per finished request.
type HTTPRecorder interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// Logger logs every request and, when recorder is non-nil, feeds it to the
// metrics. Errors are rendered here so the logged status is the final one.
func Logger(logger *slog.Logger, recorder HTTPRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		latency := time.Since(start)
		status := c.Response().StatusCode()

		logLevel := slog.LevelInfo
		if status >= 500 {
			logLevel = slog.LevelError
		} else if status >= 400 {
			logLevel = slog.LevelWarn
		}

		logger.Log(c.UserContext(), logLevel, "http request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.String("ip", c.IP()),
			slog.String("user_agent", c.Get("User-Agent")),
		)

		if recorder != nil {
			recorder.ObserveHTTP(c.Method(), c.Route().Path, status, latency)
		}

		return nil
	}
}
