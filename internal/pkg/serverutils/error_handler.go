package serverutils

import (
	"errors"

	"kisansetu-be/pkg/advisory"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error from the service layer onto an HTTP status.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	var validationErr *ValidationError

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, advisory.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, advisory.ErrEmptyRecording):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, advisory.ErrInferenceUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns any error returned down the chain into the JSON envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err)
		message := err.Error()
		if code == fiber.StatusInternalServerError {
			message = "Internal server error"
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
