package handlers

import (
	"errors"
	"net/http"

	"jamii/internal/domain"
	"jamii/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string, canRetry *bool) {
	if code == "" {
		code = http.StatusText(status)
	}
	payload := gin.H{
		"error": message,
		"code":  code,
	}
	if canRetry != nil {
		payload["can_retry"] = *canRetry
	}
	if reqID := middleware.GetRequestID(c); reqID != "" {
		payload["request_id"] = reqID
	}
	c.JSON(status, payload)
}

// RespondDomainError maps domain errors to HTTP responses. Payment
// declines and transport failures carry a can_retry flag so clients can
// decide whether to offer a fresh attempt.
func RespondDomainError(c *gin.Context, err error) {
	var decline domain.GatewayDeclineError
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsAlreadySettled(err):
		respondError(c, http.StatusConflict, "already_settled", err.Error(), nil)
	case domain.IsAmountMismatch(err):
		respondError(c, http.StatusBadRequest, "amount_mismatch", err.Error(), nil)
	case errors.As(err, &decline):
		respondError(c, http.StatusPaymentRequired, "gateway_declined", decline.Error(), &decline.CanRetry)
	case domain.IsGatewayTransport(err):
		canRetry := true
		respondError(c, http.StatusBadGateway, "gateway_unreachable",
			"could not reach the payment gateway, please try again", &canRetry)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}
