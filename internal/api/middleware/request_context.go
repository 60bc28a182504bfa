package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/audit"
)

// RequestContext copies the request id set by the requestid middleware into
// the user context so services and log lines can pick it up.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.GetRespHeader(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.New().String()
			c.Set(fiber.HeaderXRequestID, id)
		}

		c.SetUserContext(audit.WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}
