package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/climate-probability/internal/geocode"
	"github.com/i474232898/climate-probability/internal/weather"
)

// toHTTPError maps domain errors to fiber errors.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, weather.ErrInvalidDateRange),
		errors.Is(err, weather.ErrInvalidLocation),
		errors.Is(err, geocode.ErrEmptyQuery):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, geocode.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, "location not found")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to process request")
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
