package ui

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// CurrencySuffix follows every formatted amount.
const CurrencySuffix = " ₺"

const (
	moneyPattern = "#.###,##"
	ratePattern  = "#.###,#"
)

// FormatMoney renders an amount the tr-TR way: dot thousands, comma decimals,
// two fraction digits and the lira suffix. Zero and non-finite values render
// as zero. Every amount shown on the page goes through here.
func FormatMoney(amount float64) string {
	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "0,00" + CurrencySuffix
	}
	return humanize.FormatFloat(moneyPattern, amount) + CurrencySuffix
}

// FormatMoneyPtr is FormatMoney for optional amounts; nil renders as zero.
func FormatMoneyPtr(amount *float64) string {
	if amount == nil {
		return FormatMoney(0)
	}
	return FormatMoney(*amount)
}

// ParseMoney reverses FormatMoney.
func ParseMoney(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(s, CurrencySuffix))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	return strconv.ParseFloat(s, 64)
}

// FormatRate renders a percentage with one decimal, e.g. "%21,0".
func FormatRate(rate float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = 0
	}
	return "%" + humanize.FormatFloat(ratePattern, rate)
}
