package lineitem

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/inboxsim/internal/rng"
	"github.com/roach88/inboxsim/internal/world"
)

func catalog() []world.Product {
	return []world.Product{
		{ID: "p1", Name: "Widget", Price: decimal.RequireFromString("10.00")},
		{ID: "p2", Name: "Gadget", Price: decimal.RequireFromString("25.50")},
		{ID: "p3", Name: "Doohickey", Price: decimal.RequireFromString("4.25")},
	}
}

func TestIntFromRange_InclusiveBounds(t *testing.T) {
	r := Between(1, 5)
	assert.Equal(t, 1, IntFromRange(r, 0))
	assert.Equal(t, 3, IntFromRange(r, 0.5))
	assert.Equal(t, 5, IntFromRange(r, 0.999999))
	assert.Equal(t, 5, IntFromRange(r, 1), "a sample of 1 is capped at max")

	assert.Equal(t, 4, IntFromRange(Scalar(3.6), 0.9), "scalars pass through rounded")
	assert.Equal(t, 2, IntFromRange(Between(2, 2), 0.7))
	assert.Equal(t, 2, IntFromRange(Between(1.5, 2.5), 0.99), "fractional bounds shrink to integers inside")
}

func TestRandomFromRange(t *testing.T) {
	assert.Equal(t, 7.0, RandomFromRange(Scalar(7), 0.9))
	assert.Equal(t, 15.0, RandomFromRange(Between(10, 20), 0.5))
	assert.Equal(t, 10.0, RandomFromRange(Between(20, 10), 0), "reversed bounds are swapped")
	assert.True(t, decimal.RequireFromString("12.5").Equal(DecimalFromRange(Between(10, 20), 0.25)))
}

func TestGenerate_None(t *testing.T) {
	items := Generate(Strategy{Kind: KindNone}, catalog(), rng.Constant(0.5))
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestGenerate_KnownProducts(t *testing.T) {
	s := Strategy{Kind: KindKnownProducts, Count: Scalar(2), Quantity: Between(1, 5)}
	items := Generate(s, catalog(), rng.Sequence(0.0, 0.5, 0.99, 0.0, 0.3))

	require.Len(t, items, 2)
	assert.Equal(t, "p2", items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "p1", items[1].ProductID)
	assert.Equal(t, 2, items[1].Quantity)
	for _, it := range items {
		assert.True(t, it.IsKnownProduct)
		assert.Equal(t, world.LineItemTypeCustomerPO, it.Type)
		assert.Equal(t, world.LineItemNew, it.Status)
	}
}

func TestGenerate_KnownProductsNeverRepeats(t *testing.T) {
	s := Strategy{Kind: KindKnownProducts, Count: Scalar(10)}
	items := Generate(s, catalog(), rng.New(7))

	require.Len(t, items, 3, "count is capped at the catalog size")
	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.ProductID], "picked %s twice", it.ProductID)
		seen[it.ProductID] = true
	}
}

func TestGenerate_UnknownProducts(t *testing.T) {
	spec := UnknownSpec{Name: "Bespoke thing", Quantity: Between(2, 4), EstimatedPrice: Between(10, 20), Note: "rush"}
	items := Generate(Strategy{Kind: KindUnknownProducts, Unknown: []UnknownSpec{spec}}, nil, rng.Sequence(0.5, 0.25))

	require.Len(t, items, 1)
	assert.False(t, items[0].IsKnownProduct)
	assert.Equal(t, "Bespoke thing", items[0].ProductName)
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, decimal.RequireFromString("12.50").Equal(items[0].Price))
	assert.Equal(t, "rush", items[0].Note)
}

func TestGenerate_UnknownDefaults(t *testing.T) {
	items := Generate(Strategy{Kind: KindUnknownProducts}, nil, rng.Constant(0))
	assert.Len(t, items, len(DefaultUnknownProducts))
}

func TestGenerate_Mixed(t *testing.T) {
	s := Strategy{
		Kind:    KindMixed,
		Count:   Scalar(1),
		Unknown: []UnknownSpec{{Name: "Mystery part", Quantity: Scalar(1), EstimatedPrice: Scalar(9)}},
	}
	first := Generate(s, catalog(), rng.New(3))
	second := Generate(s, catalog(), rng.New(3))

	require.Len(t, first, 2)
	assert.Equal(t, first, second)

	known := 0
	for _, it := range first {
		if it.IsKnownProduct {
			known++
		}
	}
	assert.Equal(t, 1, known)
}

func TestGenerate_Custom(t *testing.T) {
	spec := UnknownSpec{Name: "Mystery part", Quantity: Between(2, 4), EstimatedPrice: Between(10, 20)}
	s := Strategy{
		Kind: KindCustom,
		Items: []ItemTemplate{
			{ProductID: "p3", Quantity: Scalar(2)},
			{Unknown: &spec},
			{ProductID: "missing"},
			{Random: true, Quantity: Between(1, 3)},
		},
	}
	items := Generate(s, catalog(), rng.Sequence(0.1, 0.0, 0.5, 0.9, 0.5))

	require.Len(t, items, 3, "templates naming unknown products are skipped")
	assert.Equal(t, "p3", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)

	assert.False(t, items[1].IsKnownProduct)
	assert.Equal(t, 2, items[1].Quantity)
	assert.True(t, decimal.NewFromInt(15).Equal(items[1].Price))

	assert.Equal(t, "p3", items[2].ProductID)
	assert.Equal(t, 2, items[2].Quantity)
}

func TestGenerate_CatalogTooSmall(t *testing.T) {
	s := Strategy{Kind: KindKnownProducts, MinCatalog: 5}
	assert.Empty(t, Generate(s, catalog(), rng.Constant(0.5)))

	assert.Empty(t, Generate(Strategy{Kind: KindMixed}, nil, rng.Constant(0.5)))

	unknownOnly := Strategy{Kind: KindCustom, Items: []ItemTemplate{{Unknown: &UnknownSpec{Name: "x", Quantity: Scalar(1), EstimatedPrice: Scalar(1)}}}}
	assert.Len(t, Generate(unknownOnly, nil, rng.Constant(0.5)), 1, "custom strategies without catalog items need no catalog")
}

func TestGenerate_IsPure(t *testing.T) {
	s := Strategy{Kind: KindKnownProducts, Count: Between(1, 3), Quantity: Between(1, 10)}
	values := []float64{0.42, 0.17, 0.88, 0.05, 0.63, 0.31, 0.77}
	a := Generate(s, catalog(), rng.Sequence(values...))
	b := Generate(s, catalog(), rng.Sequence(values...))
	assert.Equal(t, a, b)
}

func TestRange_Decoding(t *testing.T) {
	var fromJSON struct {
		A Range `json:"a"`
		B Range `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 3, "b": [5, 1]}`), &fromJSON))
	assert.Equal(t, Scalar(3), fromJSON.A)
	assert.Equal(t, Between(1, 5), fromJSON.B)

	var fromYAML struct {
		A Range `yaml:"a"`
		B Range `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 2\nb: [1, 4]\n"), &fromYAML))
	assert.Equal(t, Scalar(2), fromYAML.A)
	assert.Equal(t, Between(1, 4), fromYAML.B)

	out, err := json.Marshal(Between(1, 4))
	require.NoError(t, err)
	assert.JSONEq(t, `[1, 4]`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`[1, 2, 3]`), &fromJSON.A))
}
