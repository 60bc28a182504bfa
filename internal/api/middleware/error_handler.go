package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/audit"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

// StageRequest tags unhandled request failures in the error log.
const StageRequest = "request"

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ErrorHandler renders every error as {"detail": ...}. Client errors go to
// the response only; server errors are also written to slog and the error
// log, and their message is surfaced after a fixed prefix.
func ErrorHandler(logger *slog.Logger, auditLogger audit.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// fasthttp rejects bodies above BodyLimit before any handler runs
		if errors.Is(err, fiber.ErrRequestEntityTooLarge) {
			err = domain.ErrImageTooLarge
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse{Detail: fiberErr.Message})
		}

		var appErr *domain.AppError
		if errors.As(err, &appErr) && appErr.IsClientError() {
			return c.Status(appErr.StatusCode).JSON(ErrorResponse{Detail: appErr.Message})
		}

		ctx := c.UserContext()
		logger.ErrorContext(ctx, "unhandled error",
			slog.Any("error", err),
			slog.Any("chain", audit.ErrorChain(err)),
			slog.String("path", c.Path()),
			slog.String("request_id", audit.RequestIDFrom(ctx)),
		)
		auditLogger.LogError(ctx, StageRequest, err)

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Detail: "Internal server error: " + err.Error(),
		})
	}
}
