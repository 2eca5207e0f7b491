package external

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
)

// Rand is a deterministic generator seeded from product identity.
// The same parts always yield the same sequence.
type Rand struct {
	r *rand.Rand
}

// Seeded returns a generator keyed on parts (case-insensitive)
func Seeded(parts ...string) *Rand {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		h.Write([]byte{0})
	}
	sum := h.Sum64()
	return &Rand{r: rand.New(rand.NewPCG(sum, sum^0x9e3779b97f4a7c15))}
}

// Intn returns an int in [lo, hi)
func (g *Rand) Intn(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.r.IntN(hi-lo)
}

// Float returns a float in [lo, hi) rounded to the given number of decimals
func (g *Rand) Float(lo, hi float64, decimals int) float64 {
	v := lo + g.r.Float64()*(hi-lo)
	p := math.Pow(10, float64(decimals))
	return math.Floor(v*p) / p
}

// Chance reports true with probability p
func (g *Rand) Chance(p float64) bool {
	return g.r.Float64() < p
}

// Pick returns one of options
func (g *Rand) Pick(options ...string) string {
	return options[g.r.IntN(len(options))]
}
