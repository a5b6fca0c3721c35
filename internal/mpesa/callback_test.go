package mpesa

import "testing"

const successCallback = `{"Body":{"stkCallback":{
	"MerchantRequestID":"29115-34620561-1",
	"CheckoutRequestID":"ws_CO_191220191020363925",
	"ResultCode":0,
	"ResultDesc":"The service request is processed successfully.",
	"CallbackMetadata":{"Item":[
		{"Name":"Amount","Value":500.00},
		{"Name":"MpesaReceiptNumber","Value":"ABC123"},
		{"Name":"TransactionDate","Value":20250901101500},
		{"Name":"PhoneNumber","Value":254700000000}
	]}}}}`

const cancelledCallback = `{"Body":{"stkCallback":{
	"MerchantRequestID":"29115-34620561-2",
	"CheckoutRequestID":"ws_CO_191220191020363926",
	"ResultCode":1032,
	"ResultDesc":"Request cancelled by user"}}}`

func TestParseCallbackSuccess(t *testing.T) {
	data, err := ParseCallbackPayload([]byte(successCallback))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if data.CheckoutRequestID != "ws_CO_191220191020363925" {
		t.Fatalf("wrong checkout id: %q", data.CheckoutRequestID)
	}
	if data.ResultCode != CodeSuccess {
		t.Fatalf("wrong result code: %d", data.ResultCode)
	}
	if data.ReceiptNumber != "ABC123" {
		t.Fatalf("wrong receipt: %q", data.ReceiptNumber)
	}
	if data.TransactionDate != "20250901101500" {
		t.Fatalf("wrong transaction date: %q", data.TransactionDate)
	}
}

func TestParseCallbackFailureHasNoMetadata(t *testing.T) {
	data, err := ParseCallbackPayload([]byte(cancelledCallback))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if data.ResultCode != CodeUserCancelled {
		t.Fatalf("wrong result code: %d", data.ResultCode)
	}
	if data.ReceiptNumber != "" {
		t.Fatalf("failure callback should carry no receipt, got %q", data.ReceiptNumber)
	}
}

func TestValidateCallbackPayload(t *testing.T) {
	if !ValidateCallbackPayload([]byte(successCallback)) {
		t.Fatalf("valid payload rejected")
	}
	if ValidateCallbackPayload([]byte(`not json`)) {
		t.Fatalf("garbage accepted")
	}
	if ValidateCallbackPayload([]byte(`{"Body":{"stkCallback":{"ResultCode":0}}}`)) {
		t.Fatalf("payload without checkout id accepted")
	}
}

func TestParseCallbackRejectsMissingCheckoutID(t *testing.T) {
	if _, err := ParseCallbackPayload([]byte(`{"Body":{}}`)); err == nil {
		t.Fatalf("expected error for missing checkout id")
	}
}
