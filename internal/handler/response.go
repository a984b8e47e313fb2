package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"afrigo/internal/repository"
	"afrigo/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidOriginLocation),
		errors.Is(err, service.ErrInvalidDestLocation),
		errors.Is(err, service.ErrInvalidServiceType),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidScheduledTime),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidRatingConfig),
		errors.Is(err, service.ErrInvalidDiscount):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrRideNotAvailable),
		errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, service.ErrRideNotCancellable),
		errors.Is(err, service.ErrRideNotCompleted),
		errors.Is(err, service.ErrAlreadyReferred),
		errors.Is(err, service.ErrNotNewUser),
		errors.Is(err, service.ErrOwnReferralCode),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotRideDriver),
		errors.Is(err, service.ErrNotRideClient),
		errors.Is(err, service.ErrAccountSuspended):
		return http.StatusForbidden

	// Payment required-style failures
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusPaymentRequired

	// Promo eligibility failures
	case errors.Is(err, service.ErrPromoNotActive),
		errors.Is(err, service.ErrPromoNotStarted),
		errors.Is(err, service.ErrPromoExpired),
		errors.Is(err, service.ErrPromoExhausted),
		errors.Is(err, service.ErrPromoAlreadyUsed),
		errors.Is(err, service.ErrPromoMinAmount),
		errors.Is(err, service.ErrPromoServiceType):
		return http.StatusUnprocessableEntity

	// Settlement failures that need reconciliation
	case errors.Is(err, service.ErrSettlementFailed):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
