package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// Load reads the CUE or JSON file at path and returns the defaults with the
// file's values applied. Unknown fields and out-of-range values fail.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates data against the schema and decodes it over the defaults.
// filename is used in error positions only.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	file := ctx.CompileBytes(data, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return nil, fmt.Errorf("compile: %s", formatCUEError(err))
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(file)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate: %s", formatCUEError(err))
	}

	raw, err := unified.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("export: %s", formatCUEError(err))
	}

	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ErrInvalid wraps cross-field validation failures.
var ErrInvalid = errors.New("invalid config")

// Validate checks constraints that span fields.
func (c *Config) Validate() error {
	if len(c.Sleep.BonusValues) != len(c.Sleep.BonusWeights) {
		return fmt.Errorf("%w: sleep.bonus_values has %d entries, sleep.bonus_weights has %d",
			ErrInvalid, len(c.Sleep.BonusValues), len(c.Sleep.BonusWeights))
	}
	if c.Sleep.TargetExhausted > c.Sleep.TargetVoluntary {
		return fmt.Errorf("%w: sleep.target_exhausted (%v) exceeds sleep.target_voluntary (%v)",
			ErrInvalid, c.Sleep.TargetExhausted, c.Sleep.TargetVoluntary)
	}
	if c.Energy.MinPerMinute > c.Energy.MaxPerMinute {
		return fmt.Errorf("%w: energy.min_per_minute exceeds energy.max_per_minute", ErrInvalid)
	}
	if c.Sleep.MinRegenPerHour > c.Sleep.MaxRegenPerHour {
		return fmt.Errorf("%w: sleep.min_regen_per_hour exceeds sleep.max_regen_per_hour", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Catalog))
	for _, p := range c.Catalog {
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate catalog id %q", ErrInvalid, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// formatCUEError flattens a CUE error list into one line per error.
func formatCUEError(err error) string {
	return cueerrors.Details(err, nil)
}
