package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatUSD renders an amount as US dollars, e.g. "$1,234.50" or "-$50.00".
func FormatUSD(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}

// FormatSigned renders a transaction amount with an explicit sign for credits.
func FormatSigned(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + FormatUSD(d)
	}
	return FormatUSD(d)
}
