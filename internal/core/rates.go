package core

import "time"

// Provenance tells where a rate table came from.
type Provenance string

const (
	// ProvenanceInitial marks a converter that has not loaded rates yet.
	ProvenanceInitial  Provenance = "initial"
	ProvenanceFetched  Provenance = "api"
	ProvenanceCached   Provenance = "cache"
	ProvenanceFallback Provenance = "fallback"
)

// RateTable maps a currency to how many units of it one reference unit buys.
type RateTable struct {
	Rates     map[CurrencyCode]float64 `json:"rates"`
	Timestamp int64                    `json:"timestamp"` // unix milliseconds
	Source    Provenance               `json:"source"`
}

// FetchedAt returns the table timestamp as a time.
func (t RateTable) FetchedAt() time.Time {
	return time.UnixMilli(t.Timestamp)
}

// Rate returns the multiplier for c and whether the table has one.
func (t RateTable) Rate(c CurrencyCode) (float64, bool) {
	r, ok := t.Rates[c]
	return r, ok
}

// Clone returns a copy that does not share the rates map.
func (t RateTable) Clone() RateTable {
	out := t
	out.Rates = make(map[CurrencyCode]float64, len(t.Rates))
	for c, r := range t.Rates {
		out.Rates[c] = r
	}
	return out
}
