package helpers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error taxonomy shared by the module packages. Handlers translate these to
// HTTP statuses; anything unrecognized surfaces as a generic server error.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrRateLimited      = errors.New("rate limited")
	ErrAlreadyConnected = errors.New("already connected")
	ErrEmptyContent     = errors.New("empty content")
	ErrEmptyMessage     = errors.New("empty message")
)

// StatusForError maps a taxonomy error to its HTTP status.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, ErrInvalidOperation),
		errors.Is(err, ErrAlreadyConnected),
		errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrEmptyMessage):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
