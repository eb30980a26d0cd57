package exporter

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney formats v with ',' thousands separators and zero decimals.
func FormatMoney(v float64) string {
	return moneyPrinter.Sprintf("%.0f", v)
}

// FormatAmount is FormatMoney for decimal amounts.
func FormatAmount(d decimal.Decimal) string {
	return FormatMoney(d.Round(0).InexactFloat64())
}

// moneyTick adapts FormatMoney to go-chart's value formatter signature.
func moneyTick(v interface{}) string {
	switch n := v.(type) {
	case float64:
		return FormatMoney(n)
	case int:
		return FormatMoney(float64(n))
	default:
		return ""
	}
}
