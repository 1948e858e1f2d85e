package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a document does not name one.
const DefaultCurrency = "JPY"

var minorUnits = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"SGD": 2,
	"HKD": 2,
}

// MinorUnits returns the number of decimal places displayed for currency (2 when unknown).
func MinorUnits(currency string) int32 {
	if n, ok := minorUnits[strings.ToUpper(currency)]; ok {
		return n
	}
	return 2
}

// RoundForDisplay rounds half away from zero to the currency's minor units.
func RoundForDisplay(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(MinorUnits(currency))
}

// FormatAmount renders amount for display, e.g. "2,200 JPY" or "12.50 USD".
func FormatAmount(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	places := MinorUnits(currency)
	s := RoundForDisplay(amount, currency).StringFixed(places)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(currency))
	return b.String()
}
