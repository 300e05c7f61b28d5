package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sahilchouksey/examace-vault/utils/response"
)

// ErrorBoundary is the fiber ErrorHandler. Errors raised by fiber itself
// (unknown route, wrong method, body too large) keep their status; anything
// else, including recovered panics, replaces the response with the generic
// error panel that links back to the home page.
func ErrorBoundary(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusNotFound:
				return response.NotFound(c, "Page not found")
			case fiber.StatusMethodNotAllowed, fiber.StatusRequestEntityTooLarge, fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
				return response.Error(c, fe.Code, fe.Message, response.CodeBadRequest)
			}
		}

		log.Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("request_id", RequestID(c)).
			Msg("unhandled error")
		return response.Panel(c, fiber.StatusInternalServerError, RequestID(c))
	}
}

// NotFound is mounted last and answers every unknown route
func NotFound(c *fiber.Ctx) error {
	return response.NotFound(c, "Page not found")
}
