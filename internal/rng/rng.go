// Package rng provides the injectable random source every stochastic part of
// the simulation draws from.
//
// Nothing in the simulation calls a global random function. Systems and the
// line-item generator take a Func, so a seeded source reproduces a run and a
// scripted sequence pins a test.
package rng

import "math/rand/v2"

// Func returns a sample in [0,1).
type Func func() float64

// New returns a deterministic Func seeded with seed.
func New(seed uint64) Func {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return r.Float64
}

// Sequence returns a Func that yields values in order and then cycles.
// Values are clamped into [0,1). An empty sequence always yields 0.
func Sequence(values ...float64) Func {
	i := 0
	return func() float64 {
		if len(values) == 0 {
			return 0
		}
		v := values[i%len(values)]
		i++
		return clampUnit(v)
	}
}

// Constant returns a Func that always yields v.
func Constant(v float64) Func {
	v = clampUnit(v)
	return func() float64 { return v }
}

// Chance reports whether a sample falls under probability p.
// p <= 0 never succeeds and p >= 1 always does.
func Chance(f Func, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return f() < p
}

// Weighted picks an index with probability proportional to weights.
// Non-positive weights are never picked. Returns -1 if no weight is positive.
func Weighted(f Func, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	target := f() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if target < w {
			return i
		}
		target -= w
	}
	return last
}

// Shuffle permutes n elements with Fisher-Yates using f.
func Shuffle(f Func, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(f() * float64(i+1))
		if j > i {
			j = i
		}
		swap(i, j)
	}
}

const maxBelowOne = 1 - 1e-12

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v >= 1 {
		return maxBelowOne
	}
	return v
}
