package mpesa

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Simulator is the non-production Gateway. It is deterministic: the last
// two digits of the phone number pick the scripted outcome, so tests and
// sandbox deployments can exercise every settlement path without the
// real gateway.
//
//	..11  push declined outright (ResponseCode "1")
//	..32  push accepted, outcome: cancelled by user (1032)
//	..37  push accepted, stays "still processing" (1037) forever
//	else  push accepted, outcome: success with a synthetic receipt
type Simulator struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]simSession
}

type simSession struct {
	phone   string
	receipt string
}

func NewSimulator() *Simulator {
	return &Simulator{sessions: make(map[string]simSession)}
}

func (s *Simulator) InitiateSTKPush(ctx context.Context, phone string, amount float64, accountRef, description string) (InitiateResult, error) {
	if err := ctx.Err(); err != nil {
		return InitiateResult{}, err
	}

	if strings.HasSuffix(phone, "11") {
		return InitiateResult{
			Success:             false,
			ResponseCode:        "1",
			ResponseDescription: "Simulated decline: subscriber not reachable",
		}, nil
	}

	s.mu.Lock()
	s.seq++
	checkoutID := fmt.Sprintf("ws_CO_SIM%06d", s.seq)
	s.sessions[checkoutID] = simSession{
		phone:   phone,
		receipt: fmt.Sprintf("SIM%06d", s.seq),
	}
	s.mu.Unlock()

	return InitiateResult{
		Success:             true,
		CheckoutRequestID:   checkoutID,
		ResponseCode:        "0",
		ResponseDescription: "Success. Request accepted for processing",
	}, nil
}

func (s *Simulator) QueryStatus(ctx context.Context, checkoutRequestID string) (StatusResult, error) {
	if err := ctx.Err(); err != nil {
		return StatusResult{}, err
	}

	s.mu.Lock()
	sess, ok := s.sessions[checkoutRequestID]
	s.mu.Unlock()
	if !ok {
		return StatusResult{ResultCode: CodeStillProcessing, ResultDescription: Describe(CodeStillProcessing)}, nil
	}

	code := CodeSuccess
	switch {
	case strings.HasSuffix(sess.phone, "32"):
		code = CodeUserCancelled
	case strings.HasSuffix(sess.phone, "37"):
		code = CodeStillProcessing
	}
	return StatusResult{ResultCode: code, ResultDescription: Describe(code)}, nil
}

func (s *Simulator) ValidateCallback(raw []byte) bool {
	return ValidateCallbackPayload(raw)
}

func (s *Simulator) ParseCallback(raw []byte) (CallbackData, error) {
	return ParseCallbackPayload(raw)
}

// CallbackPayload renders the JSON body the gateway would POST for the
// outcome scripted on the session's phone number. Useful in tests and in
// sandbox mode where no real gateway ever calls back.
func (s *Simulator) CallbackPayload(checkoutRequestID string) []byte {
	s.mu.Lock()
	sess, ok := s.sessions[checkoutRequestID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	if strings.HasSuffix(sess.phone, "32") {
		return []byte(fmt.Sprintf(`{"Body":{"stkCallback":{"MerchantRequestID":"sim","CheckoutRequestID":%q,"ResultCode":1032,"ResultDesc":"Request cancelled by user"}}}`, checkoutRequestID))
	}
	if strings.HasSuffix(sess.phone, "37") {
		// no callback ever arrives for a stuck session
		return nil
	}

	return []byte(fmt.Sprintf(`{"Body":{"stkCallback":{"MerchantRequestID":"sim","CheckoutRequestID":%q,"ResultCode":0,"ResultDesc":"The service request is processed successfully.","CallbackMetadata":{"Item":[{"Name":"Amount","Value":1},{"Name":"MpesaReceiptNumber","Value":%q},{"Name":"TransactionDate","Value":20250901120000},{"Name":"PhoneNumber","Value":%s}]}}}}`,
		checkoutRequestID, sess.receipt, sess.phone))
}
