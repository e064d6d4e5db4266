package payroll

import (
	"github.com/shopspring/decimal"

	"payroll-engine/internal/params"
)

var hundredth = decimal.New(1, -2)

// round2 rounds half away from zero to two decimals; amounts here are never
// negative, so it matches half-up rounding.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// TotalTax returns the income tax owed on a cumulative base counted from zero,
// walking the tariff brackets in order.
func TotalTax(cumulativeBase decimal.Decimal, tariff []params.Bracket) decimal.Decimal {
	total := decimal.Zero
	if cumulativeBase.Sign() <= 0 {
		return total
	}

	remaining := cumulativeBase
	previous := decimal.Zero
	for _, b := range tariff {
		if b.UpTo == nil {
			return total.Add(remaining.Mul(b.Rate))
		}
		width := b.UpTo.Sub(previous)
		if remaining.LessThanOrEqual(width) {
			return total.Add(remaining.Mul(b.Rate))
		}
		total = total.Add(width.Mul(b.Rate))
		remaining = remaining.Sub(width)
		previous = *b.UpTo
	}
	return total
}

// CumulativeIncomeTax is the tax for this month under the cumulative method:
// T(previous + current) - T(previous).
func CumulativeIncomeTax(cumBasePrev, monthBase decimal.Decimal, tariff []params.Bracket) decimal.Decimal {
	return TotalTax(cumBasePrev.Add(monthBase), tariff).Sub(TotalTax(cumBasePrev, tariff))
}

// StampTax is the three-stage stamp tax figure.
type StampTax struct {
	Gross     decimal.Decimal
	Exemption decimal.Decimal
	Net       decimal.Decimal
}

// CalculateStampTax applies rate to gross and deducts exemption, an amount of
// tax rather than a base. The net amount never goes below zero.
func CalculateStampTax(gross, rate, exemption decimal.Decimal) StampTax {
	grossTax := gross.Mul(rate)
	net := decimal.Max(decimal.Zero, grossTax.Sub(exemption))
	return StampTax{
		Gross:     round2(grossTax),
		Exemption: round2(exemption),
		Net:       round2(net),
	}
}
