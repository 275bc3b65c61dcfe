package rates

import "finboard/internal/core"

// fallbackRates are approximate rates per US dollar used when no fresh or
// stored table is available.
var fallbackRates = map[core.CurrencyCode]float64{
	core.USD: 1.0,
	core.EUR: 0.92,
	core.GBP: 0.79,
	core.CAD: 1.37,
	core.AUD: 1.50,
	core.ZAR: 18.50,
	core.BWP: 13.70,
	core.ZWG: 13.30,
	core.CNY: 7.25,
	core.JPY: 157.0,
	core.KES: 130.00,
	core.NGN: 1480.00,
	core.INR: 83.50,
	core.CHF: 0.89,
	core.NZD: 1.68,
}

// FallbackRates returns a copy of the built-in rate table.
func FallbackRates() map[core.CurrencyCode]float64 {
	out := make(map[core.CurrencyCode]float64, len(fallbackRates))
	for c, r := range fallbackRates {
		out[c] = r
	}
	return out
}
