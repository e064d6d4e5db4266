package payroll

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"payroll-engine/internal/params"
)

// Employee types with their own contribution rules.
const (
	EmployeeNormal  = "normal_4a"
	EmployeeRetired = "emekli_sgdp"
)

const (
	maxSearchIterations = 50
	monthsPerYear       = 12
)

// The minimum-wage tax exemption is computed with the standard employee
// rates regardless of the employee type being paid.
var minWageDeductionRate = decimal.RequireFromString("0.15")

// Slip is one monthly pay slip. Amounts marshal as JSON strings.
type Slip struct {
	Month                int             `json:"month,omitempty"`
	Gross                decimal.Decimal `json:"gross"`
	PEK                  decimal.Decimal `json:"pek"`
	SGKEmployee          decimal.Decimal `json:"sgk_employee"`
	UnemploymentEmployee decimal.Decimal `json:"unemployment_employee"`
	IncomeTaxBaseMonth   decimal.Decimal `json:"income_tax_base_month"`
	CumTaxBasePrev       decimal.Decimal `json:"cum_tax_base_prev"`
	CumTaxBaseNew        decimal.Decimal `json:"cum_tax_base_new"`
	IncomeTaxGross       decimal.Decimal `json:"income_tax_gross"`
	IncomeTaxExemption   decimal.Decimal `json:"income_tax_exemption"`
	IncomeTaxNet         decimal.Decimal `json:"income_tax_net"`
	StampTaxGross        decimal.Decimal `json:"stamp_tax_gross"`
	StampTaxExemption    decimal.Decimal `json:"stamp_tax_exemption"`
	StampTaxNet          decimal.Decimal `json:"stamp_tax_net"`
	Net                  decimal.Decimal `json:"net"`
}

// ErrNegativeAmount is returned for negative salaries or cumulative bases.
var ErrNegativeAmount = errors.New("amount must not be negative")

// PaySlip computes the monthly slip for a gross salary given the cumulative
// income tax base carried from earlier months of the year.
func PaySlip(gross, cumTaxBasePrev decimal.Decimal, employeeType string, y *params.Year) (Slip, error) {
	if gross.IsNegative() || cumTaxBasePrev.IsNegative() {
		return Slip{}, ErrNegativeAmount
	}

	sgkRate, unempRate, err := ContributionRates(employeeType, y)
	if err != nil {
		return Slip{}, err
	}

	pek := decimal.Min(gross, y.SGKCeilingMonthly)
	sgk := pek.Mul(sgkRate)
	unemployment := pek.Mul(unempRate)

	// Stamp tax is not deducted from the income tax base.
	monthBase := gross.Sub(sgk).Sub(unemployment)
	cumNew := cumTaxBasePrev.Add(monthBase)

	incomeTaxGross := CumulativeIncomeTax(cumTaxBasePrev, monthBase, y.IncomeTaxTariff)

	minWageBase := y.MinWageGross.Mul(decimal.NewFromInt(1).Sub(minWageDeductionRate))
	incomeTaxExemption := CumulativeIncomeTax(cumTaxBasePrev, minWageBase, y.IncomeTaxTariff)
	incomeTaxNet := decimal.Max(decimal.Zero, incomeTaxGross.Sub(incomeTaxExemption))

	stamp := CalculateStampTax(gross, y.StampRate, y.MinWageGross.Mul(y.StampRate))

	net := gross.Sub(sgk).Sub(unemployment).Sub(incomeTaxNet).Sub(stamp.Net)

	return Slip{
		Gross:                round2(gross),
		PEK:                  round2(pek),
		SGKEmployee:          round2(sgk),
		UnemploymentEmployee: round2(unemployment),
		IncomeTaxBaseMonth:   round2(monthBase),
		CumTaxBasePrev:       round2(cumTaxBasePrev),
		CumTaxBaseNew:        round2(cumNew),
		IncomeTaxGross:       round2(incomeTaxGross),
		IncomeTaxExemption:   round2(incomeTaxExemption),
		IncomeTaxNet:         round2(incomeTaxNet),
		StampTaxGross:        stamp.Gross,
		StampTaxExemption:    stamp.Exemption,
		StampTaxNet:          stamp.Net,
		Net:                  round2(net),
	}, nil
}

// FindGross searches for the gross salary whose slip pays targetNet, to within
// one kuruş. When no candidate lands inside the tolerance the closest one wins.
func FindGross(targetNet, cumTaxBasePrev decimal.Decimal, employeeType string, y *params.Year) (decimal.Decimal, error) {
	if targetNet.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}

	low := targetNet
	high := targetNet.Mul(decimal.NewFromInt(3))
	if low.LessThan(y.MinWageGross) {
		low = y.MinWageGross
		if high.LessThan(y.MinWageGross) {
			high = y.MinWageGross.Mul(decimal.NewFromInt(2))
		}
	}

	two := decimal.NewFromInt(2)
	best := low
	bestDiff := decimal.NewFromInt(-1)

	for i := 0; i < maxSearchIterations; i++ {
		mid := round2(low.Add(high).Div(two))

		slip, err := PaySlip(mid, cumTaxBasePrev, employeeType, y)
		if err != nil {
			return decimal.Zero, err
		}

		diff := slip.Net.Sub(targetNet)
		if bestDiff.IsNegative() || diff.Abs().LessThan(bestDiff) {
			bestDiff = diff.Abs()
			best = mid
		}
		if diff.Abs().LessThanOrEqual(hundredth) {
			return mid, nil
		}

		if slip.Net.LessThan(targetNet) {
			low = mid
		} else {
			high = mid
		}
	}
	return best, nil
}

// Annual projects twelve months at a constant gross salary, carrying the
// cumulative income tax base from month to month.
func Annual(gross decimal.Decimal, employeeType string, y *params.Year) ([]Slip, error) {
	slips := make([]Slip, 0, monthsPerYear)
	cum := decimal.Zero
	for month := 1; month <= monthsPerYear; month++ {
		slip, err := PaySlip(gross, cum, employeeType, y)
		if err != nil {
			return nil, fmt.Errorf("month %d: %w", month, err)
		}
		slip.Month = month
		cum = slip.CumTaxBaseNew
		slips = append(slips, slip)
	}
	return slips, nil
}

// ContributionRates returns the employee's social security and unemployment
// insurance rates for the year.
func ContributionRates(employeeType string, y *params.Year) (sgk, unemployment decimal.Decimal, err error) {
	key, err := sgkRateKey(employeeType)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if sgk, err = y.Rate(employeeType, key); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if unemployment, err = y.Rate(employeeType, "unemployment_employee"); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return sgk, unemployment, nil
}

func sgkRateKey(employeeType string) (string, error) {
	switch employeeType {
	case EmployeeNormal:
		return "sgk_employee", nil
	case EmployeeRetired:
		return "sgdp_employee", nil
	}
	return "", fmt.Errorf("invalid employee type %q", employeeType)
}
