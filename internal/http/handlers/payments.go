package handlers

import (
	"io"
	"net/http"
	"strconv"

	"jamii/internal/http/middleware"
	"jamii/internal/mpesa"
	"jamii/internal/repositories"
	"jamii/internal/services"
	"jamii/internal/utils"

	"github.com/gin-gonic/gin"
)

// PaymentHandler wires the settlement endpoints to their services. The
// gateway is an injected dependency so the simulator and the live client
// are interchangeable per deployment.
type PaymentHandler struct {
	Gateway mpesa.Gateway
}

func (h PaymentHandler) service(c *gin.Context) services.PaymentService {
	return services.PaymentService{
		PaymentRepo: repositories.PaymentRepository{},
		LevyRepo:    repositories.LevyRepository{},
		Ledger:      repositories.LedgerWriter{},
		Gateway:     h.Gateway,
		RequestID:   middleware.GetRequestID(c),
	}
}

// POST /api/payments/mpesa/initiate
func (h PaymentHandler) Initiate(c *gin.Context) {
	var req services.InitiateInput
	if !BindJSONOrError(c, &req) {
		return
	}

	rc := middleware.GetRequestContext(c)
	out, err := h.service(c).Initiate(c.Request.Context(), rc, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"payment_id":          out.PaymentID,
		"checkout_request_id": out.CheckoutRequestID,
		"message":             out.Message,
	})
}

// GET /api/payments/mpesa/:id/status
func (h PaymentHandler) Status(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid payment id", err)
		return
	}

	rc := middleware.GetRequestContext(c)
	out, err := h.service(c).Status(c.Request.Context(), rc, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// POST /api/payments/mpesa/callback
//
// Public, gateway-originated. Always acknowledges with success: a nack
// only triggers redelivery, and the poll path recovers any outcome a
// failed ingest missed. Internal failures are logged for follow-up.
func (h PaymentHandler) Callback(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		raw = nil
	}

	svc := services.CallbackService{
		PaymentRepo: repositories.PaymentRepository{},
		Ledger:      repositories.LedgerWriter{},
		Gateway:     h.Gateway,
		RequestID:   middleware.GetRequestID(c),
	}
	if err := svc.Ingest(raw); err != nil {
		utils.LogEvent(middleware.GetRequestID(c), "callback", "ingest", "internal failure: "+err.Error())
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}
