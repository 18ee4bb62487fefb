package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Domain errors surfaced to API callers. All of them are recoverable and map
// to a 4xx response; anything else bubbles up as a 500.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrTransactionNotFound = errors.New("points transaction not found")
	ErrAlreadyCheckedIn    = errors.New("student already checked in")
	ErrNotCheckedIn        = errors.New("student not checked in")
	ErrSessionExpired      = errors.New("session QR code expired")
	ErrEventNotFound       = errors.New("event not found")
	ErrAlreadyParticipated = errors.New("student already participated")
	ErrItemNotFound        = errors.New("store item not found")
	ErrItemUnavailable     = errors.New("store item unavailable")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInsufficientBalance = errors.New("insufficient point balance")
	ErrReportNotFound      = errors.New("weekly report not found")
	ErrReportExists        = errors.New("report already submitted for this week")
	ErrReportReviewed      = errors.New("report already reviewed")
)

// StatusCode maps a domain error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrStudentNotFound),
		errors.Is(err, ErrTransactionNotFound),
		errors.Is(err, ErrEventNotFound),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrReportNotFound),
		errors.Is(err, ErrNotCheckedIn):
		return fiber.StatusNotFound
	case errors.Is(err, ErrAlreadyCheckedIn),
		errors.Is(err, ErrAlreadyParticipated),
		errors.Is(err, ErrReportExists),
		errors.Is(err, ErrReportReviewed):
		return fiber.StatusConflict
	case errors.Is(err, ErrSessionExpired):
		return fiber.StatusGone
	case errors.Is(err, ErrItemUnavailable),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInsufficientBalance):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorResponse writes the standard error JSON for a domain error.
func ErrorResponse(c *fiber.Ctx, err error) error {
	code := StatusCode(err)
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		msg = "Internal Server Error"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
