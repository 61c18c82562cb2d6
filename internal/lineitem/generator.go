// Package lineitem generates the line items of customer purchase orders.
//
// Generate is a pure function of its inputs: the same strategy, catalog and
// RNG sequence always produce the same items in the same order. Every random
// draw goes through the injected rng.Func, in a fixed order documented on
// each strategy.
package lineitem

import (
	"log/slog"

	"github.com/roach88/inboxsim/internal/rng"
	"github.com/roach88/inboxsim/internal/world"
)

// Kind selects how items are produced.
type Kind string

const (
	KindNone            Kind = "none"
	KindKnownProducts   Kind = "known_products"
	KindUnknownProducts Kind = "unknown_products"
	KindMixed           Kind = "mixed"
	KindCustom          Kind = "custom"
)

// UnknownSpec describes a product that is not in the catalog.
type UnknownSpec struct {
	Name           string `json:"name" yaml:"name"`
	Quantity       Range  `json:"quantity" yaml:"quantity"`
	EstimatedPrice Range  `json:"estimated_price" yaml:"estimated_price"`
	Note           string `json:"note,omitempty" yaml:"note"`
}

// ItemTemplate is one explicit item of a custom strategy. Exactly one of
// Unknown, ProductID or Random is expected; an empty template picks at random.
type ItemTemplate struct {
	ProductID string       `json:"product_id,omitempty" yaml:"product_id"`
	Random    bool         `json:"random,omitempty" yaml:"random"`
	Quantity  Range        `json:"quantity" yaml:"quantity"`
	Unknown   *UnknownSpec `json:"unknown,omitempty" yaml:"unknown"`
	Note      string       `json:"note,omitempty" yaml:"note"`
}

// Strategy configures Generate.
type Strategy struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Count is how many catalog products to pick (known_products, mixed).
	Count Range `json:"count" yaml:"count"`

	// Quantity is the per-item quantity for catalog picks.
	Quantity Range `json:"quantity" yaml:"quantity"`

	// Unknown lists free-text products (unknown_products, mixed).
	// Empty uses DefaultUnknownProducts.
	Unknown []UnknownSpec `json:"unknown,omitempty" yaml:"unknown"`

	// Items are the explicit templates of a custom strategy.
	Items []ItemTemplate `json:"items,omitempty" yaml:"items"`

	// MinCatalog is the smallest catalog that catalog strategies accept.
	// Zero means 1.
	MinCatalog int `json:"min_catalog,omitempty" yaml:"min_catalog"`
}

// Defaults applied when a strategy leaves a range unset.
var (
	DefaultCount    = Between(1, 3)
	DefaultQuantity = Between(1, 10)
)

// DefaultUnknownProducts are the fictional items used when a strategy names
// none of its own.
var DefaultUnknownProducts = []UnknownSpec{
	{Name: "Custom bracket assembly", Quantity: Between(1, 4), EstimatedPrice: Between(40, 120), Note: "per attached sketch"},
	{Name: "Replacement gasket set", Quantity: Between(2, 12), EstimatedPrice: Between(5, 15)},
	{Name: "Extended service plan", Quantity: Scalar(1), EstimatedPrice: Between(150, 300), Note: "quote requested"},
}

// Generate produces line items for a strategy.
//
// Draw order:
//   - known_products: one draw for the count, then per pick one draw for the
//     product and one for the quantity.
//   - unknown_products: each UnknownSpec draws once for quantity and once for price.
//   - mixed: the known draws, then the unknown draws, then one draw per
//     Fisher-Yates swap.
//   - custom: per template, one draw to pick (random templates only) and one
//     for quantity; unknown templates draw quantity then price.
//
// Catalog strategies return no items, with a warning, when the catalog is
// smaller than MinCatalog.
func Generate(s Strategy, products []world.Product, f rng.Func) []world.LineItem {
	items := []world.LineItem{}

	if needsCatalog(s) && len(products) < minCatalog(s) {
		slog.Warn("catalog too small for line item strategy",
			"strategy", s.Kind,
			"available", len(products),
			"required", minCatalog(s),
		)
		return items
	}

	switch s.Kind {
	case KindKnownProducts:
		items = append(items, pickKnown(s, products, f)...)

	case KindUnknownProducts:
		items = append(items, fromUnknown(unknownSpecs(s), f)...)

	case KindMixed:
		items = append(items, pickKnown(s, products, f)...)
		items = append(items, fromUnknown(unknownSpecs(s), f)...)
		rng.Shuffle(f, len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	case KindCustom:
		items = append(items, fromTemplates(s.Items, products, f)...)

	case KindNone, "":
	default:
		slog.Warn("unknown line item strategy", "strategy", s.Kind)
	}

	return items
}

func needsCatalog(s Strategy) bool {
	switch s.Kind {
	case KindKnownProducts, KindMixed:
		return true
	case KindCustom:
		for _, t := range s.Items {
			if t.Unknown == nil {
				return true
			}
		}
	}
	return false
}

func minCatalog(s Strategy) int {
	if s.MinCatalog <= 0 {
		return 1
	}
	return s.MinCatalog
}

func unknownSpecs(s Strategy) []UnknownSpec {
	if len(s.Unknown) == 0 {
		return DefaultUnknownProducts
	}
	return s.Unknown
}

// pickKnown selects products without replacement via a partial Fisher-Yates.
func pickKnown(s Strategy, products []world.Product, f rng.Func) []world.LineItem {
	n := IntFromRange(s.Count.or(DefaultCount), f())
	if n > len(products) {
		n = len(products)
	}
	if n <= 0 {
		return nil
	}

	pool := make([]int, len(products))
	for i := range pool {
		pool[i] = i
	}

	out := make([]world.LineItem, 0, n)
	qty := s.Quantity.or(DefaultQuantity)
	for k := 0; k < n; k++ {
		j := k + int(f()*float64(len(pool)-k))
		if j >= len(pool) {
			j = len(pool) - 1
		}
		pool[k], pool[j] = pool[j], pool[k]
		out = append(out, knownItem(products[pool[k]], IntFromRange(qty, f()), ""))
	}
	return out
}

func fromUnknown(specs []UnknownSpec, f rng.Func) []world.LineItem {
	out := make([]world.LineItem, 0, len(specs))
	for _, spec := range specs {
		out = append(out, unknownItem(spec, f))
	}
	return out
}

func fromTemplates(templates []ItemTemplate, products []world.Product, f rng.Func) []world.LineItem {
	var out []world.LineItem
	for i, t := range templates {
		if t.Unknown != nil {
			item := unknownItem(*t.Unknown, f)
			if t.Note != "" {
				item.Note = t.Note
			}
			out = append(out, item)
			continue
		}

		var p world.Product
		if t.ProductID != "" && !t.Random {
			found, ok := findProduct(products, t.ProductID)
			if !ok {
				slog.Warn("custom line item references unknown product",
					"template", i,
					"product_id", t.ProductID,
				)
				continue
			}
			p = found
		} else {
			idx := int(f() * float64(len(products)))
			if idx >= len(products) {
				idx = len(products) - 1
			}
			p = products[idx]
		}
		out = append(out, knownItem(p, IntFromRange(t.Quantity.or(Scalar(1)), f()), t.Note))
	}
	return out
}

func findProduct(products []world.Product, id string) (world.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return world.Product{}, false
}

func knownItem(p world.Product, qty int, note string) world.LineItem {
	return world.LineItem{
		Type:           world.LineItemTypeCustomerPO,
		Status:         world.LineItemNew,
		ProductID:      p.ID,
		ProductName:    p.Name,
		Quantity:       qty,
		Price:          p.Price,
		IsKnownProduct: true,
		Note:           note,
	}
}

func unknownItem(spec UnknownSpec, f rng.Func) world.LineItem {
	qty := IntFromRange(spec.Quantity.or(Scalar(1)), f())
	price := DecimalFromRange(spec.EstimatedPrice, f())
	return world.LineItem{
		Type:           world.LineItemTypeCustomerPO,
		Status:         world.LineItemNew,
		ProductName:    spec.Name,
		Quantity:       qty,
		Price:          price,
		IsKnownProduct: false,
		Note:           spec.Note,
	}
}
