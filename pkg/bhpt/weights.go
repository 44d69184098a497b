package bhpt

import "math"

// weigher computes the weight of an entry from its history. It is the
// injection point for alternative weight functions (the roadmap item is a
// learned, neural weight function); the distribution cache, dirty
// tracking and selector never depend on how a weigher arrives at w_e.
type weigher interface {
	weight(h *historyStore, e int) float64
}

// positionalWeigher implements the weight function specified for BHPT:
//
//	w_e = sum_{n=0}^{N-1} 2^(3n/2) * effective_s(n)
//	effective_s(n) = 1 if n == m (m >= 0) else history bit n
//
// coef[n] = 2^(3n/2) is precomputed once at construction.
type positionalWeigher struct {
	n    int
	m    int // -1 disables the MWSP override
	coef []float64
}

func newPositionalWeigher(n, m int) *positionalWeigher {
	coef := make([]float64, n)
	for i := range coef {
		coef[i] = math.Pow(2, 1.5*float64(i))
	}

	return &positionalWeigher{n: n, m: m, coef: coef}
}

func (w *positionalWeigher) weight(h *historyStore, e int) float64 {
	var total float64

	for n := 0; n < w.n; n++ {
		bit := h.bitAt(e, n)
		if n == w.m {
			bit = 1
		}

		if bit != 0 {
			total += w.coef[n]
		}
	}

	return total
}
