package lineitem

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Range is either a scalar (Min == Max) or an inclusive [Min, Max] interval.
//
// In JSON, CUE and YAML a Range is written as a number or a two-element
// list: `3` or `[1, 5]`.
type Range struct {
	Min float64
	Max float64
}

// Scalar returns a Range that always yields v.
func Scalar(v float64) Range { return Range{Min: v, Max: v} }

// Between returns the inclusive range [lo, hi], swapping reversed bounds.
func Between(lo, hi float64) Range {
	if hi < lo {
		lo, hi = hi, lo
	}
	return Range{Min: lo, Max: hi}
}

// IsScalar reports whether the range is a single value.
func (r Range) IsScalar() bool { return r.Min == r.Max }

// IsZero reports whether the range is unset.
func (r Range) IsZero() bool { return r.Min == 0 && r.Max == 0 }

func (r Range) or(d Range) Range {
	if r.IsZero() {
		return d
	}
	return r
}

// RandomFromRange maps a sample in [0,1) onto r.
// Scalars pass through unchanged; intervals interpolate linearly.
func RandomFromRange(r Range, sample float64) float64 {
	if r.IsScalar() {
		return r.Min
	}
	return r.Min + sample*(r.Max-r.Min)
}

// IntFromRange maps a sample onto the integers of r, both bounds inclusive.
//
// A scalar rounds to the nearest integer. An interval [lo, hi] yields
// lo + floor(sample * (hi - lo + 1)), capped at hi, so each integer in the
// interval is equally likely and sample 0 yields lo.
func IntFromRange(r Range, sample float64) int {
	if r.IsScalar() {
		return int(math.Round(r.Min))
	}
	lo := int(math.Ceil(r.Min))
	hi := int(math.Floor(r.Max))
	if hi < lo {
		return lo
	}
	v := lo + int(math.Floor(sample*float64(hi-lo+1)))
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// DecimalFromRange maps a sample onto r and rounds to cents.
func DecimalFromRange(r Range, sample float64) decimal.Decimal {
	return decimal.NewFromFloat(RandomFromRange(r, sample)).Round(2)
}

// MarshalJSON writes a scalar as a number and an interval as [min, max].
func (r Range) MarshalJSON() ([]byte, error) {
	if r.IsScalar() {
		return json.Marshal(r.Min)
	}
	return json.Marshal([2]float64{r.Min, r.Max})
}

// UnmarshalJSON accepts a number or a [min, max] list.
func (r *Range) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		*r = Scalar(scalar)
		return nil
	}
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("range: want number or [min, max]: %w", err)
	}
	return r.fromPair(pair)
}

// UnmarshalYAML accepts a number or a [min, max] sequence.
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var scalar float64
		if err := node.Decode(&scalar); err != nil {
			return fmt.Errorf("range: %w", err)
		}
		*r = Scalar(scalar)
		return nil
	}
	var pair []float64
	if err := node.Decode(&pair); err != nil {
		return fmt.Errorf("range: want number or [min, max]: %w", err)
	}
	return r.fromPair(pair)
}

func (r *Range) fromPair(pair []float64) error {
	switch len(pair) {
	case 1:
		*r = Scalar(pair[0])
	case 2:
		*r = Between(pair[0], pair[1])
	default:
		return fmt.Errorf("range: want 1 or 2 values, got %d", len(pair))
	}
	return nil
}
