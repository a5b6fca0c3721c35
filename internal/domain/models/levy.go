package models

// Levy statuses.
const (
	LevyPending = "pending"
	LevyPaid    = "paid"
	LevyWaived  = "waived"
)

// Levy is an amount owed by a unit's resident (service charge, water,
// special assessment). A levy moves to paid only as a side effect of
// exactly one completed PaymentRequest.
type Levy struct {
	ID               int64   `json:"id"`
	CommunityID      int64   `json:"community_id"`
	UnitID           int64   `json:"unit_id"`
	Description      string  `json:"description"`
	Amount           float64 `json:"amount"`
	DueDate          string  `json:"due_date"`
	Status           string  `json:"status"`
	PaymentMethod    string  `json:"payment_method"`
	PaymentReference string  `json:"payment_reference"`
	PaymentDate      string  `json:"payment_date"`
}
