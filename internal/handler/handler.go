package handler

import (
	"errors"
	"net/http"

	"shpfusion-api/internal/service"

	"github.com/labstack/echo/v4"
)

// fail writes the {success:false, message} error shape every endpoint uses.
func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// writeServiceError maps service errors onto HTTP statuses. Anything
// unrecognized is a 500 with a generic message; the real cause is logged by
// the echo error handler.
func writeServiceError(c echo.Context, err error, fallback string) error {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		return fail(c, http.StatusBadRequest, validation.Message)
	case errors.Is(err, service.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, service.ErrNoReferenceFile):
		return fail(c, http.StatusNotFound, "No file found for this order")
	case errors.Is(err, service.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, service.ErrUserNotFound):
		return fail(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrOrderAlreadyPaid):
		return fail(c, http.StatusBadRequest, "Order is already paid")
	case errors.Is(err, service.ErrProviderUnavailable):
		return fail(c, http.StatusServiceUnavailable, "Payment service temporarily unavailable")
	case errors.Is(err, service.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrEmailTaken):
		return fail(c, http.StatusBadRequest, "An account with this email already exists. Please login.")
	case errors.Is(err, service.ErrTokenInvalid):
		return fail(c, http.StatusBadRequest, "Invalid token")
	case errors.Is(err, service.ErrTokenExpired):
		return fail(c, http.StatusBadRequest, "Invalid or expired reset token")
	case errors.Is(err, service.ErrRateLimited):
		return fail(c, http.StatusTooManyRequests, "Too many password reset attempts. Please try again after 1 hour.")
	case errors.Is(err, service.ErrAlreadySubscribed):
		return fail(c, http.StatusBadRequest, "Email already subscribed")
	default:
		return fail(c, http.StatusInternalServerError, fallback)
	}
}
