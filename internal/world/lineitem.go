package world

import "github.com/shopspring/decimal"

// LineItemStatus mirrors the lifecycle tag of the document an item belongs to.
type LineItemStatus string

const (
	LineItemNew       LineItemStatus = "new"
	LineItemActive    LineItemStatus = "active"
	LineItemShipped   LineItemStatus = "shipped"
	LineItemClosed    LineItemStatus = "closed"
	LineItemPaid      LineItemStatus = "paid"
	LineItemFailed    LineItemStatus = "failed"
	LineItemCancelled LineItemStatus = "cancelled"
)

// LineItemTypeCustomerPO tags items requested on a customer purchase order.
const LineItemTypeCustomerPO = "customerPo"

// LineItem is one row of an order-like document.
// IsKnownProduct distinguishes catalog matches from free-text requests.
type LineItem struct {
	Type           string          `json:"type" yaml:"type"`
	Status         LineItemStatus  `json:"status" yaml:"status"`
	ProductID      string          `json:"product_id,omitempty" yaml:"product_id"`
	ProductName    string          `json:"product_name,omitempty" yaml:"product_name"`
	Quantity       int             `json:"quantity" yaml:"quantity"`
	Price          decimal.Decimal `json:"price" yaml:"price"`
	IsKnownProduct bool            `json:"is_known_product" yaml:"is_known_product"`
	Note           string          `json:"note,omitempty" yaml:"note"`
}

// Total returns quantity × price.
func (li LineItem) Total() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// SumLineItems sums Total over items.
func SumLineItems(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.Total())
	}
	return sum
}

// Product is a catalog entry.
type Product struct {
	ID    string          `json:"id" yaml:"id"`
	Name  string          `json:"name" yaml:"name"`
	Price decimal.Decimal `json:"price" yaml:"price"`
}
