package domain

// Settlement describes how a transaction would be settled. The fields ride
// along on ledger entries for forward compatibility; no settlement is ever
// performed by the orchestrator.
type Settlement struct {
	Amount    float64 `json:"amount,omitempty"`
	Currency  string  `json:"currency,omitempty"`
	Method    string  `json:"method,omitempty"`
	Reference string  `json:"reference,omitempty"`
}
