package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inboxsim/internal/lineitem"
	"github.com/roach88/inboxsim/internal/world"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cost, ok := cfg.Cost(world.ActionRead)
	require.True(t, ok)
	assert.Equal(t, ActionCost{Energy: 2, TimeMinutes: 2, XP: 6}, cost)

	cost, ok = cfg.Cost(world.ActionCollect)
	require.True(t, ok)
	assert.Equal(t, 15.0, cost.Energy)

	assert.Len(t, cfg.Products(), len(cfg.Catalog))
}

func TestParse_CUEOverridesDefaults(t *testing.T) {
	src := `
seed: 99
payment: {
	delay_ms:            1000
	success_probability: 1
}
inbox: costs: read: {energy: 3, time_minutes: 1, xp: 7}
orders: strategy: {
	kind:  "unknown_products"
	count: [2, 4]
}
`
	cfg, err := Parse([]byte(src), "test.cue")
	require.NoError(t, err)

	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, int64(1000), cfg.Payment.DelayMs)
	assert.Equal(t, 1.0, cfg.Payment.SuccessProbability)
	assert.Equal(t, int64(0), cfg.Payment.JitterMs, "unset fields keep defaults")

	assert.Equal(t, 3.0, cfg.Inbox.Costs[world.ActionRead].Energy)
	assert.Equal(t, 15.0, cfg.Inbox.Costs[world.ActionCollect].Energy, "other costs survive a partial override")

	assert.Equal(t, lineitem.KindUnknownProducts, cfg.Orders.Strategy.Kind)
	assert.Equal(t, lineitem.Between(2, 4), cfg.Orders.Strategy.Count)
	assert.Equal(t, lineitem.Between(1, 10), cfg.Orders.Strategy.Quantity)

	assert.Equal(t, 36000.0, cfg.Sleep.Multiplier)
}

func TestParse_JSONIsAccepted(t *testing.T) {
	cfg, err := Parse([]byte(`{"clock": {"frame_cap_ms": 50}, "payment": {"fixed_amount": 250}}`), "test.json")
	require.NoError(t, err)
	assert.Equal(t, int64(50), cfg.Clock.FrameCapMs)

	amount, ok := cfg.Payment.FixedAmountDecimal()
	require.True(t, ok)
	assert.Equal(t, "250", amount.String())
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown field", `payments: {delay_ms: 1}`},
		{"probability above one", `payment: success_probability: 1.5`},
		{"negative capacity", `inbox: capacity: -1`},
		{"unknown phase", `energy: phase_multipliers: dusk: 1`},
		{"partial cost", `inbox: costs: read: {energy: 3}`},
		{"bad strategy kind", `orders: strategy: kind: "everything"`},
		{"start minute out of range", `clock: start_minute: 1440`},
		{"syntax", `clock: {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.cue")
			assert.Error(t, err)
		})
	}
}

func TestValidate_CrossField(t *testing.T) {
	cfg := Default()
	cfg.Sleep.BonusWeights = cfg.Sleep.BonusWeights[:2]
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg = Default()
	cfg.Sleep.TargetExhausted = 99
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg = Default()
	cfg.Catalog = append(cfg.Catalog, cfg.Catalog[0])
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	_, err := Parse([]byte(`sleep: bonus_values: [1, 2]`), "x.cue")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.cue")
	require.NoError(t, os.WriteFile(path, []byte(`roller: enabled: true`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Roller.Enabled)

	_, err = Load(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}

func TestJSONSchema(t *testing.T) {
	data, err := json.Marshal(JSONSchema())
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "inboxsim configuration", schema["title"])
	assert.Equal(t, false, schema["additionalProperties"])
	assert.NotContains(t, schema, "required", "config files may omit any field")

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"seed", "clock", "inbox", "payment", "energy", "sleep", "orders", "roller", "catalog"} {
		assert.Contains(t, props, key)
	}

	strategy := props["orders"].(map[string]any)["properties"].(map[string]any)["strategy"].(map[string]any)
	count := strategy["properties"].(map[string]any)["count"].(map[string]any)
	assert.Len(t, count["oneOf"], 2)
}
