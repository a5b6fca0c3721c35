package services

import (
	"fmt"
	"strconv"

	"jamii/internal/domain"
	"jamii/internal/domain/models"
	"jamii/internal/mpesa"
	"jamii/internal/repositories"
	"jamii/internal/utils"
)

// CallbackService ingests the gateway's async outcome notification.
// Delivery is at-least-once and unauthenticated; every branch that
// cannot apply an outcome logs and moves on, because the handler always
// acknowledges the gateway regardless (a rejected ack would only trigger
// redelivery storms, and the poll path can recover the outcome anyway).
type CallbackService struct {
	PaymentRepo repositories.PaymentRepository
	Ledger      repositories.LedgerWriter
	Gateway     mpesa.Gateway
	RequestID   string
}

// Ingest applies a callback to the ledger. A non-nil error means an
// internal failure the operator should see; the HTTP ack is unaffected.
func (s CallbackService) Ingest(raw []byte) error {
	if !s.Gateway.ValidateCallback(raw) {
		utils.LogEvent(s.RequestID, "callback", "ingest", "discarded malformed payload")
		return nil
	}

	data, err := s.Gateway.ParseCallback(raw)
	if err != nil {
		utils.LogEvent(s.RequestID, "callback", "ingest", "parse failed: "+err.Error())
		return nil
	}

	p, err := s.PaymentRepo.GetByCheckoutID(data.CheckoutRequestID)
	if err != nil {
		if domain.IsNotFound(err) {
			// cannot apply an outcome to an attempt we never made
			utils.LogEvent(s.RequestID, "callback", "ingest", "unknown checkout_request_id="+data.CheckoutRequestID)
			return nil
		}
		return err
	}

	if models.IsTerminalPaymentStatus(p.Status) {
		// redelivery of an outcome already settled
		utils.LogEvent(s.RequestID, "callback", "ingest",
			fmt.Sprintf("payment_id=%d already %s, skipping", p.ID, p.Status))
		return nil
	}

	outcome := repositories.Outcome{Success: data.ResultCode == mpesa.CodeSuccess}
	if outcome.Success {
		outcome.ReceiptNumber = data.ReceiptNumber
		outcome.TransactionDate = data.TransactionDate
	} else {
		outcome.FailureCode = strconv.Itoa(data.ResultCode)
		outcome.FailureDescription = data.ResultDescription
		if outcome.FailureDescription == "" {
			outcome.FailureDescription = mpesa.Describe(data.ResultCode)
		}
	}

	if err := s.Ledger.Settle(p.ID, outcome); err != nil {
		return err
	}

	utils.LogEvent(s.RequestID, "callback", "ingest",
		fmt.Sprintf("payment_id=%d settled result_code=%d", p.ID, data.ResultCode))
	return nil
}
