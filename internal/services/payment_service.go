package services

import (
	"context"
	"fmt"
	"strconv"

	"jamii/internal/domain"
	"jamii/internal/domain/models"
	"jamii/internal/mpesa"
	"jamii/internal/repositories"
	"jamii/internal/utils"

	"github.com/google/uuid"
)

// PaymentService initiates STK pushes and reconciles their outcome on
// client polls. The poll path and the callback path converge on the same
// LedgerWriter.Settle, so either may observe the outcome first.
type PaymentService struct {
	PaymentRepo repositories.PaymentRepository
	LevyRepo    repositories.LevyRepository
	Ledger      repositories.LedgerWriter
	Gateway     mpesa.Gateway
	RequestID   string
}

type InitiateInput struct {
	LevyID int64   `json:"levy_id"`
	Phone  string  `json:"phone"`
	Amount float64 `json:"amount"`
}

type InitiateOutput struct {
	PaymentID         int64  `json:"payment_id"`
	CheckoutRequestID string `json:"checkout_request_id,omitempty"`
	Message           string `json:"message"`
}

type StatusOutput struct {
	Status   string `json:"status"`
	Receipt  string `json:"receipt,omitempty"`
	Message  string `json:"message"`
	CanRetry bool   `json:"can_retry,omitempty"`
}

// Initiate validates the levy is still payable, records the attempt, and
// sends the push. A repeated initiation for the same levy creates a new
// independent attempt row; nothing here re-invokes the gateway on its own.
func (s PaymentService) Initiate(ctx context.Context, rc domain.RequestContext, in InitiateInput) (InitiateOutput, error) {
	phone := utils.NormalizePhone(in.Phone)
	if phone == "" {
		return InitiateOutput{}, domain.ValidationError{Field: "phone", Msg: "not a valid Kenyan MSISDN"}
	}
	if in.LevyID <= 0 {
		return InitiateOutput{}, domain.ValidationError{Field: "levy_id", Msg: "id is required"}
	}
	if in.Amount <= 0 {
		return InitiateOutput{}, domain.ValidationError{Field: "amount", Msg: "must be greater than zero"}
	}

	levy, err := s.LevyRepo.GetForResident(in.LevyID, rc)
	if err != nil {
		return InitiateOutput{}, err
	}
	if levy.Status != models.LevyPending {
		return InitiateOutput{}, domain.AlreadySettledError{Resource: "levy"}
	}
	if !utils.AmountsMatch(in.Amount, levy.Amount) {
		return InitiateOutput{}, domain.AmountMismatchError{Requested: in.Amount, Due: levy.Amount}
	}

	p := models.PaymentRequest{
		CommunityID: rc.CommunityID,
		LevyID:      levy.ID,
		UserID:      rc.UserID,
		Phone:       phone,
		Amount:      levy.Amount,
		PaymentRef:  uuid.NewString(),
		AccountRef:  fmt.Sprintf("JAMII-%d-%d-%d", rc.CommunityID, levy.UnitID, levy.ID),
	}
	if err := s.PaymentRepo.Create(&p); err != nil {
		return InitiateOutput{}, err
	}
	utils.LogEvent(s.RequestID, "payment", "initiate",
		fmt.Sprintf("payment_id=%d levy_id=%d amount=%s", p.ID, levy.ID, utils.FormatMoney(levy.Amount)))

	desc := levy.Description
	if desc == "" {
		desc = "Community levy"
	}

	res, err := s.Gateway.InitiateSTKPush(ctx, phone, levy.Amount, p.AccountRef, desc)
	if err != nil {
		// transport failure: the attempt is recorded as failed and stays
		// retryable; the caller never sees a bare 500 for this
		if aerr := s.PaymentRepo.AttachCheckout(p.ID, "", "", err.Error(), models.PaymentFailed); aerr != nil {
			utils.LogEvent(s.RequestID, "payment", "initiate", "record transport failure: "+aerr.Error())
		}
		return InitiateOutput{}, err
	}

	if !res.Success {
		if aerr := s.PaymentRepo.AttachCheckout(p.ID, res.CheckoutRequestID, res.ResponseCode, res.ResponseDescription, models.PaymentFailed); aerr != nil {
			utils.LogEvent(s.RequestID, "payment", "initiate", "record decline: "+aerr.Error())
		}
		return InitiateOutput{}, domain.GatewayDeclineError{
			Code:        res.ResponseCode,
			Description: res.ResponseDescription,
			CanRetry:    retryableFromStored(res.ResponseCode),
		}
	}

	if err := s.PaymentRepo.AttachCheckout(p.ID, res.CheckoutRequestID, res.ResponseCode, res.ResponseDescription, models.PaymentPending); err != nil {
		return InitiateOutput{}, err
	}

	return InitiateOutput{
		PaymentID:         p.ID,
		CheckoutRequestID: res.CheckoutRequestID,
		Message:           "Payment request sent. Enter your M-PESA PIN on your phone to complete.",
	}, nil
}

// Status serves a client poll. A terminal row answers from the ledger;
// an in-flight row triggers an active gateway query, and a determined
// outcome settles through the same path the callback uses.
func (s PaymentService) Status(ctx context.Context, rc domain.RequestContext, paymentID int64) (StatusOutput, error) {
	p, err := s.PaymentRepo.GetScoped(paymentID, rc)
	if err != nil {
		return StatusOutput{}, err
	}

	if models.IsTerminalPaymentStatus(p.Status) {
		return statusFromPayment(p), nil
	}

	if p.CheckoutRequestID == "" {
		// the push never got a checkout id; nothing to query yet
		return pendingStatus(), nil
	}

	st, err := s.Gateway.QueryStatus(ctx, p.CheckoutRequestID)
	if err != nil {
		// unreachable gateway is not a failed payment; report pending and
		// let the client poll again
		utils.LogEvent(s.RequestID, "payment", "status", fmt.Sprintf("payment_id=%d query error: %v", p.ID, err))
		return pendingStatus(), nil
	}

	if st.ResultCode == mpesa.CodeStillProcessing {
		return pendingStatus(), nil
	}

	outcome := repositories.Outcome{Success: st.ResultCode == mpesa.CodeSuccess}
	if !outcome.Success {
		outcome.FailureCode = strconv.Itoa(st.ResultCode)
		outcome.FailureDescription = st.ResultDescription
		if outcome.FailureDescription == "" {
			outcome.FailureDescription = mpesa.Describe(st.ResultCode)
		}
	}

	if err := s.Ledger.Settle(p.ID, outcome); err != nil {
		return StatusOutput{}, err
	}
	utils.LogEvent(s.RequestID, "payment", "status",
		fmt.Sprintf("payment_id=%d settled via poll result_code=%d", p.ID, st.ResultCode))

	// re-read: the callback may have won the race with richer data
	p, err = s.PaymentRepo.GetScoped(paymentID, rc)
	if err != nil {
		return StatusOutput{}, err
	}
	return statusFromPayment(p), nil
}

func statusFromPayment(p models.PaymentRequest) StatusOutput {
	switch p.Status {
	case models.PaymentCompleted:
		receipt := p.MpesaReceipt
		if receipt == "" {
			receipt = p.PaymentRef
		}
		return StatusOutput{
			Status:  models.PaymentCompleted,
			Receipt: receipt,
			Message: "Payment received",
		}
	case models.PaymentFailed:
		msg := p.ResponseDescription
		if msg == "" {
			msg = "Payment failed"
		}
		return StatusOutput{
			Status:   models.PaymentFailed,
			Message:  msg,
			CanRetry: retryableFromStored(p.ResponseCode),
		}
	default:
		return pendingStatus()
	}
}

func pendingStatus() StatusOutput {
	return StatusOutput{
		Status:  models.PaymentPending,
		Message: "Payment is being processed. Check again shortly.",
	}
}

// retryableFromStored maps a stored gateway code back through the
// taxonomy. Non-numeric codes (transport failures) stay retryable.
func retryableFromStored(code string) bool {
	n, err := strconv.Atoi(utils.TrimOrEmpty(code))
	if err != nil {
		return true
	}
	return mpesa.IsRetryable(n)
}
