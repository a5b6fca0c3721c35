package mpesa

// Result codes the gateway reports on callbacks and status queries.
// 0 is success; CodeStillProcessing is a distinguished in-flight answer
// to a status query and must not be read as failure.
const (
	CodeSuccess           = 0
	CodeInsufficientFunds = 1
	CodeUserCancelled     = 1032
	CodeStillProcessing   = 1037
	CodeWrongPIN          = 2001
	CodeRequestInProgress = 1001
)

// IsRetryable classifies whether a fresh push for the same levy is worth
// offering after this failure code. Unknown codes default to retryable so
// a transient gateway hiccup never dead-ends a payable levy.
func IsRetryable(code int) bool {
	switch code {
	case CodeSuccess:
		return false
	case CodeInsufficientFunds, CodeUserCancelled, CodeStillProcessing, CodeWrongPIN, CodeRequestInProgress:
		return true
	default:
		return true
	}
}

// Describe returns a user-facing message for a result code.
func Describe(code int) string {
	switch code {
	case CodeSuccess:
		return "The payment was processed successfully"
	case CodeInsufficientFunds:
		return "The balance is insufficient for the transaction"
	case CodeUserCancelled:
		return "The request was cancelled by the user"
	case CodeStillProcessing:
		return "The request is still being processed"
	case CodeWrongPIN:
		return "Wrong PIN entered"
	case CodeRequestInProgress:
		return "Another transaction is already in progress for this subscriber"
	default:
		return "The payment could not be completed"
	}
}
