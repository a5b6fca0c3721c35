package models

import "time"

// PaymentRequest statuses. Terminal statuses never transition again;
// the ledger enforces this with a conditional write.
const (
	PaymentInitiated = "initiated"
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// PaymentRequest is one attempt to collect an M-PESA payment for one levy.
// CheckoutRequestID stays empty until the gateway accepts the push; at most
// one row ever holds a given checkout id.
type PaymentRequest struct {
	ID                  int64      `json:"id"`
	CommunityID         int64      `json:"community_id"`
	LevyID              int64      `json:"levy_id"`
	UserID              int64      `json:"user_id"`
	Phone               string     `json:"phone"`
	Amount              float64    `json:"amount"`
	PaymentRef          string     `json:"payment_ref"`
	AccountRef          string     `json:"account_ref"`
	CheckoutRequestID   string     `json:"checkout_request_id"`
	Status              string     `json:"status"`
	ResponseCode        string     `json:"response_code"`
	ResponseDescription string     `json:"response_description"`
	MpesaReceipt        string     `json:"mpesa_receipt"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// IsTerminalPaymentStatus reports whether no further transition is allowed.
func IsTerminalPaymentStatus(status string) bool {
	return status == PaymentCompleted || status == PaymentFailed
}
