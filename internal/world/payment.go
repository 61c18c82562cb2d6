package world

import "github.com/shopspring/decimal"

// PaymentStatus is the lifecycle state of a payment record.
type PaymentStatus string

const (
	PaymentNew       PaymentStatus = "new"
	PaymentCollected PaymentStatus = "collected"
)

// Payment is a received customer payment awaiting collection.
// ID equals the order id; MessageID links the inbox message announcing it.
type Payment struct {
	ID          string          `json:"id" yaml:"id"`
	MessageID   string          `json:"message_id" yaml:"message_id"`
	Status      PaymentStatus   `json:"status" yaml:"status"`
	Customer    string          `json:"customer" yaml:"customer"`
	Subject     string          `json:"subject" yaml:"subject"`
	OrderID     string          `json:"order_id" yaml:"order_id"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	CreatedAt   int64           `json:"created_at" yaml:"created_at"`
	CollectedAt *int64          `json:"collected_at,omitempty" yaml:"collected_at"`
}

// Collect flips the payment to collected. Returns false if it already was.
func (p *Payment) Collect(atMs int64) bool {
	if p.Status == PaymentCollected {
		return false
	}
	p.Status = PaymentCollected
	p.CollectedAt = stamp(atMs)
	return true
}
