package mpesa

import (
	"encoding/json"
	"fmt"
	"strconv"

	"jamii/internal/domain"
)

// Wire shape of the async STK callback:
//
//	{"Body":{"stkCallback":{"MerchantRequestID":"...","CheckoutRequestID":"...",
//	  "ResultCode":0,"ResultDesc":"...","CallbackMetadata":{"Item":[
//	    {"Name":"Amount","Value":500},
//	    {"Name":"MpesaReceiptNumber","Value":"ABC123"},
//	    {"Name":"TransactionDate","Value":20250901101500},
//	    {"Name":"PhoneNumber","Value":254700000000}]}}}}
//
// CallbackMetadata is only present on success.
type callbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string `json:"Name"`
					Value any    `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// ValidateCallbackPayload checks the payload is a well-formed stkCallback
// envelope carrying a checkout id. Signature-level validation is not part
// of the Daraja contract; callers rely on the checkout-id lookup instead.
func ValidateCallbackPayload(raw []byte) bool {
	var env callbackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false
	}
	return env.Body.StkCallback.CheckoutRequestID != ""
}

// ParseCallbackPayload extracts the outcome fields from a callback body.
func ParseCallbackPayload(raw []byte) (CallbackData, error) {
	var env callbackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return CallbackData{}, domain.ValidationError{Field: "callback", Msg: "malformed payload", Err: err}
	}

	cb := env.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		return CallbackData{}, domain.ValidationError{Field: "callback", Msg: "missing CheckoutRequestID"}
	}

	out := CallbackData{
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDescription: cb.ResultDesc,
	}

	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			if s, ok := item.Value.(string); ok {
				out.ReceiptNumber = s
			}
		case "TransactionDate":
			out.TransactionDate = metadataString(item.Value)
		}
	}

	return out, nil
}

// metadataString renders a metadata value that may arrive as string or number.
func metadataString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatInt(int64(val), 10)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
