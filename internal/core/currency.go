package core

import (
	"errors"
	"fmt"
	"strings"
)

// CurrencyCode is an ISO 4217 code from the supported set.
type CurrencyCode string

const (
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	GBP CurrencyCode = "GBP"
	CAD CurrencyCode = "CAD"
	AUD CurrencyCode = "AUD"
	ZAR CurrencyCode = "ZAR"
	BWP CurrencyCode = "BWP"
	ZWG CurrencyCode = "ZWG"
	CNY CurrencyCode = "CNY"
	JPY CurrencyCode = "JPY"
	KES CurrencyCode = "KES"
	NGN CurrencyCode = "NGN"
	INR CurrencyCode = "INR"
	CHF CurrencyCode = "CHF"
	NZD CurrencyCode = "NZD"
)

// ReferenceCurrency is the unit every stored Amount is expressed in.
const ReferenceCurrency = USD

var ErrUnknownCurrency = errors.New("unsupported currency")

var supportedCurrencies = []CurrencyCode{
	USD, EUR, GBP, CAD, AUD,
	ZAR, BWP, ZWG, CNY, JPY,
	KES, NGN, INR, CHF, NZD,
}

// SupportedCurrencies returns the fixed set of selectable currencies.
func SupportedCurrencies() []CurrencyCode {
	return append([]CurrencyCode(nil), supportedCurrencies...)
}

func ParseCurrencyCode(s string) (CurrencyCode, error) {
	c := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
	}
	return c, nil
}

func (c CurrencyCode) IsValid() bool {
	for _, known := range supportedCurrencies {
		if c == known {
			return true
		}
	}
	return false
}

func (c CurrencyCode) String() string { return string(c) }
