package currency

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

// fractionDigits is fixed for display regardless of the currency's own
// minor unit.
const fractionDigits = 2

// Format renders a display amount with exactly two fraction digits, a
// thousands separator and the currency symbol, for example "$1,234.50" or
// "-€12.00". Codes unknown to the formatting tables are shown as USD.
func Format(d core.DisplayAmount) string {
	cur := money.GetCurrency(d.Currency.String())
	if cur == nil {
		cur = money.GetCurrency(core.ReferenceCurrency.String())
	}
	minor := decimal.NewFromFloat(d.Value).Round(fractionDigits).Shift(fractionDigits).IntPart()
	f := money.NewFormatter(fractionDigits, ".", ",", cur.Grapheme, cur.Template)
	return f.Format(minor)
}

// FormatRate renders an exchange rate with two fraction digits and no
// symbol.
func FormatRate(rate float64) string {
	return decimal.NewFromFloat(rate).StringFixed(fractionDigits)
}

// Symbol returns the display symbol for c, falling back to the reference
// currency's symbol.
func Symbol(c core.CurrencyCode) string {
	if cur := money.GetCurrency(c.String()); cur != nil {
		return cur.Grapheme
	}
	return money.GetCurrency(core.ReferenceCurrency.String()).Grapheme
}
