package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "USD"

// TrialLabel is shown instead of a price while a subscription is in trial.
const TrialLabel = "Free (Trial)"

// FormatAmount formats an amount with two decimals and thousands separators.
// USD renders as "$1,234.50", other currencies as "1,234.50 EUR".
// This is a PURE function.
func FormatAmount(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	currency = strings.ToUpper(currency)

	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	s := groupThousands(whole) + "." + frac
	if currency == "USD" {
		s = "$" + s
	} else {
		s = s + " " + currency
	}
	if neg {
		s = "-" + s
	}
	return s
}

// PriceLabel returns the display price of a subscription in its current state.
func PriceLabel(s Subscription, currency string) string {
	if s.Status == StatusTrial {
		return TrialLabel
	}
	return FormatAmount(s.Price, currency)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	return groupThousands(digits[:len(digits)-3]) + "," + digits[len(digits)-3:]
}
