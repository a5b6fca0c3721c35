package utils

import (
	"log"
	"strings"
)

// LogEvent writes one line per domain event. Grepping a request_id across
// the payment, callback and receipt modules reconstructs a settlement's
// path end to end. Messages carry identifiers only, never phone numbers
// or gateway credentials.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	if req == "" {
		req = "-"
	}
	log.Printf("[%s:%s] request_id=%s %s", strings.ToUpper(module), action, req, message)
}
