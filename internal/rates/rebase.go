package rates

import (
	"errors"
	"fmt"
	"math"

	"finboard/internal/core"
)

// ErrMissingReference means a quote cannot be re-based because it has no
// usable rate for the target currency.
var ErrMissingReference = errors.New("reference rate missing")

// Rebase converts q so that rates are expressed per unit of ref:
// rate[c] = q.Rates[c] / q.Rates[ref], and rate[ref] is exactly 1.
// Only supported currencies with positive finite rates are kept.
func Rebase(q Quote, ref core.CurrencyCode) (map[core.CurrencyCode]float64, error) {
	out := make(map[core.CurrencyCode]float64, len(q.Rates))

	var refRate float64
	switch {
	case q.Base == ref:
		refRate = 1
	default:
		r, ok := q.Rates[ref]
		if !ok || !usable(r) {
			return nil, fmt.Errorf("%w: %s in %s quote", ErrMissingReference, ref, q.Base)
		}
		refRate = r
	}

	for c, r := range q.Rates {
		if !c.IsValid() || !usable(r) {
			continue
		}
		out[c] = r / refRate
	}
	// The source base is implicitly 1 in its own quote.
	if q.Base != ref && q.Base.IsValid() {
		if _, listed := q.Rates[q.Base]; !listed {
			out[q.Base] = 1 / refRate
		}
	}
	out[ref] = 1
	return out, nil
}

func usable(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}
