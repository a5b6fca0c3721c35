package mpesa

import "context"

// InitiateResult is the gateway's answer to an STK push request.
// Success=false means the gateway explicitly declined; transport or
// config failures are reported through the error return instead.
type InitiateResult struct {
	Success             bool
	CheckoutRequestID   string
	ResponseCode        string
	ResponseDescription string
}

// StatusResult is the gateway's answer to a status query for a push
// already in flight. ResultCode CodeStillProcessing means no outcome yet.
type StatusResult struct {
	ResultCode        int
	ResultDescription string
}

// CallbackData is the parsed content of the gateway's async notification.
type CallbackData struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDescription string
	ReceiptNumber     string
	TransactionDate   string
}

// Gateway is the capability boundary to the payment gateway. Two
// implementations exist: the live Daraja client and a deterministic
// simulator; deployment config selects one.
type Gateway interface {
	InitiateSTKPush(ctx context.Context, phone string, amount float64, accountRef, description string) (InitiateResult, error)
	QueryStatus(ctx context.Context, checkoutRequestID string) (StatusResult, error)
	ValidateCallback(raw []byte) bool
	ParseCallback(raw []byte) (CallbackData, error)
}
