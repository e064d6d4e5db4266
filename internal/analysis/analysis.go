// Package analysis checks the figures of an existing payslip against the
// statutory parameters of the year and explains them.
package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"payroll-engine/internal/params"
	"payroll-engine/internal/payroll"
)

// Keys of the manually entered payslip figures.
const (
	KeyGross              = "gross"
	KeyNet                = "net"
	KeySGK                = "sgk"
	KeyUnemployment       = "unemp"
	KeyIncomeTax          = "gv"
	KeyStampTax           = "dv"
	KeySGKBase            = "sgk_base"
	KeyCumBase            = "cum"
	KeyIncomeTaxBase      = "gv_base"
	KeyIncomeTaxExemption = "gv_exemption"
	KeyStampTaxExemption  = "dv_exemption"
)

// Keys lists every accepted figure.
var Keys = []string{
	KeyGross, KeyNet, KeySGK, KeyUnemployment, KeyIncomeTax, KeyStampTax,
	KeySGKBase, KeyCumBase, KeyIncomeTaxBase, KeyIncomeTaxExemption, KeyStampTaxExemption,
}

var criticalKeys = []string{KeyGross, KeyNet, KeySGK, KeyIncomeTax}

var criticalLabels = map[string]string{
	KeyGross:     "Gross pay",
	KeyNet:       "Net pay",
	KeySGK:       "SGK premium",
	KeyIncomeTax: "Income tax",
}

var (
	// checkTolerance bounds the accepted gap for contributions and stamp tax.
	checkTolerance = decimal.NewFromInt(5)
	// netTolerance is wider: payslips often carry allowances the engine does not know.
	netTolerance     = decimal.NewFromInt(100)
	ceilingProximity = decimal.NewFromInt(100)
	hundred          = decimal.NewFromInt(100)
)

// ErrNoFields is returned when no figure was entered.
var ErrNoFields = errors.New("at least one field must be filled")

// Payslip holds the entered figures by key. Only positive amounts count.
type Payslip map[string]decimal.Decimal

// NewPayslip keeps the known keys with positive amounts.
func NewPayslip(values map[string]decimal.Decimal) Payslip {
	p := make(Payslip, len(values))
	for _, k := range Keys {
		if v, ok := values[k]; ok && v.IsPositive() {
			p[k] = v
		}
	}
	return p
}

func (p Payslip) get(key string) (decimal.Decimal, bool) {
	v, ok := p[key]
	return v, ok
}

// Bracket locates the cumulative income tax base in the tariff.
type Bracket struct {
	// Index is 1-based.
	Index           int              `json:"index"`
	Rate            decimal.Decimal  `json:"rate"`
	RemainingToNext *decimal.Decimal `json:"remaining_to_next,omitempty"`
	NextRate        *decimal.Decimal `json:"next_rate,omitempty"`
}

// Report is the outcome of an analysis.
type Report struct {
	Fields          map[string]string `json:"parsed_fields"`
	Explanations    []string          `json:"explanations"`
	Findings        []string          `json:"findings"`
	Warnings        []string          `json:"warnings"`
	Bracket         *Bracket          `json:"bracket,omitempty"`
	ExpectedNet     *decimal.Decimal  `json:"expected_net,omitempty"`
	ParseConfidence float64           `json:"parse_confidence"`
	MissingCritical []string          `json:"missing_critical"`
}

func (r *Report) explain(format string, args ...any) {
	r.Explanations = append(r.Explanations, fmt.Sprintf(format, args...))
}

func (r *Report) confirm(format string, args ...any) {
	r.Findings = append(r.Findings, fmt.Sprintf(format, args...))
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Analyze checks p for an employee of employeeType under the parameters y.
func Analyze(p Payslip, employeeType string, y *params.Year) (Report, error) {
	if len(p) == 0 {
		return Report{}, ErrNoFields
	}
	sgkRate, unempRate, err := payroll.ContributionRates(employeeType, y)
	if err != nil {
		return Report{}, err
	}

	r := Report{
		Fields:       make(map[string]string, len(p)),
		Explanations: []string{},
		Findings:     []string{},
		Warnings:     []string{},
	}
	for k, v := range p {
		r.Fields[k] = v.StringFixed(2)
	}

	summarize(&r, p)
	checkContributions(&r, p, y, sgkRate, unempRate)
	describeIncomeTax(&r, p)
	locateBracket(&r, p, y)
	checkStampTax(&r, p, y)
	verifyNet(&r, p, employeeType, y)
	assessCompleteness(&r, p)
	return r, nil
}

func summarize(r *Report, p Payslip) {
	gross, hasGross := p.get(KeyGross)
	net, hasNet := p.get(KeyNet)
	if hasGross {
		r.explain("Total gross pay is %s.", money(gross))
	}
	if hasNet {
		r.explain("Net pay is %s.", money(net))
	}
	if hasGross && hasNet {
		deductions := gross.Sub(net)
		r.explain("Deductions (tax and insurance) total %s, %s of gross pay.",
			money(deductions), rate(deductions.Div(gross)))
	}
}

// checkContributions compares the SGK and unemployment premiums with the
// statutory rates applied to the SGK base. Without an entered base, the base
// follows from gross pay and the ceiling.
func checkContributions(r *Report, p Payslip, y *params.Year, sgkRate, unempRate decimal.Decimal) {
	gross, hasGross := p.get(KeyGross)
	base, hasBase := p.get(KeySGKBase)
	if !hasBase && hasGross {
		base, hasBase = decimal.Min(gross, y.SGKCeilingMonthly), true
	}

	if hasGross {
		if entered, ok := p.get(KeySGKBase); ok && entered.LessThan(gross) &&
			entered.Sub(y.SGKCeilingMonthly).Abs().LessThan(ceilingProximity) {
			r.explain("Gross pay exceeds the SGK ceiling; the SGK base is capped at %s.", money(y.SGKCeilingMonthly))
		}
	}

	if sgk, ok := p.get(KeySGK); ok {
		r.explain("SGK premium (employee share) is %s.", money(sgk))
		if hasBase {
			expected := base.Mul(sgkRate).Round(2)
			diff := sgk.Sub(expected).Abs()
			if diff.LessThanOrEqual(checkTolerance) {
				r.confirm("SGK premium is correct (%s × %s = %s).", rate(sgkRate), money(base), money(expected))
			} else {
				r.warn("SGK premium does not match: payslip %s, expected %s (difference %s).",
					money(sgk), money(expected), money(diff))
			}
		}
	}

	if unemp, ok := p.get(KeyUnemployment); ok {
		r.explain("Unemployment insurance (employee share) is %s.", money(unemp))
		if hasBase {
			expected := base.Mul(unempRate).Round(2)
			diff := unemp.Sub(expected).Abs()
			if diff.LessThanOrEqual(checkTolerance) {
				r.confirm("Unemployment insurance is correct (%s × %s = %s).", rate(unempRate), money(base), money(expected))
			} else {
				r.warn("Unemployment insurance does not match: payslip %s, expected %s (difference %s).",
					money(unemp), money(expected), money(diff))
			}
		}
	}
}

func describeIncomeTax(r *Report, p Payslip) {
	tax, ok := p.get(KeyIncomeTax)
	if !ok {
		return
	}
	r.explain("Income tax is %s.", money(tax))
	if ex, ok := p.get(KeyIncomeTaxExemption); ok {
		r.explain("The minimum wage exemption of %s was deducted from it.", money(ex))
	}
	if base, ok := p.get(KeyIncomeTaxBase); ok {
		r.explain("Monthly income tax base is %s.", money(base))
	}
}

func locateBracket(r *Report, p Payslip, y *params.Year) {
	cum, ok := p.get(KeyCumBase)
	if !ok {
		return
	}
	b, ok := FindBracket(cum, y.IncomeTaxTariff)
	if !ok {
		return
	}
	r.Bracket = &b
	r.explain("Cumulative income tax base is %s: bracket %d (%s).", money(cum), b.Index, rate(b.Rate))
	if b.RemainingToNext != nil {
		r.explain("%s remains until the next bracket (%s).", money(*b.RemainingToNext), rate(*b.NextRate))
	}
	if b.Index >= 2 {
		r.explain("Income tax starts at the lowest rate each January and climbs as the cumulative base grows, so higher deductions late in the year are expected.")
	}
}

// FindBracket returns the tariff bracket containing the cumulative base cum.
func FindBracket(cum decimal.Decimal, tariff []params.Bracket) (Bracket, bool) {
	for i, b := range tariff {
		if b.UpTo != nil && cum.GreaterThan(*b.UpTo) {
			continue
		}
		out := Bracket{Index: i + 1, Rate: b.Rate}
		if b.UpTo != nil && i+1 < len(tariff) {
			remaining := b.UpTo.Sub(cum)
			next := tariff[i+1].Rate
			out.RemainingToNext, out.NextRate = &remaining, &next
		}
		return out, true
	}
	return Bracket{}, false
}

func checkStampTax(r *Report, p Payslip, y *params.Year) {
	stamp, ok := p.get(KeyStampTax)
	if !ok {
		return
	}
	r.explain("Stamp tax is %s.", money(stamp))

	exemption, hasExemption := p.get(KeyStampTaxExemption)
	if hasExemption {
		r.explain("The minimum wage stamp tax exemption is %s.", money(exemption))
	} else {
		exemption = y.MinWageGross.Mul(y.StampRate).Round(2)
	}

	gross, ok := p.get(KeyGross)
	if !ok {
		return
	}
	expected := decimal.Max(decimal.Zero, gross.Mul(y.StampRate).Round(2).Sub(exemption))
	diff := stamp.Sub(expected).Abs()
	if diff.LessThanOrEqual(checkTolerance) {
		r.confirm("Stamp tax looks correct (%s).", money(stamp))
	} else {
		r.warn("Stamp tax does not match: payslip %s, expected about %s (difference %s).",
			money(stamp), money(expected), money(diff))
	}
}

// verifyNet recomputes the slip from gross pay and compares the net amounts.
func verifyNet(r *Report, p Payslip, employeeType string, y *params.Year) {
	gross, hasGross := p.get(KeyGross)
	_, hasSGK := p.get(KeySGK)
	_, hasTax := p.get(KeyIncomeTax)
	if !hasGross || !hasSGK || !hasTax {
		return
	}

	cumPrev := decimal.Zero
	cum, hasCum := p.get(KeyCumBase)
	monthBase, hasBase := p.get(KeyIncomeTaxBase)
	if hasCum && hasBase && cum.GreaterThanOrEqual(monthBase) {
		cumPrev = cum.Sub(monthBase)
	}

	slip, err := payroll.PaySlip(gross, cumPrev, employeeType, y)
	if err != nil {
		r.warn("The verification calculation failed: %v.", err)
		return
	}
	r.ExpectedNet = &slip.Net

	net, ok := p.get(KeyNet)
	if !ok {
		return
	}
	diff := net.Sub(slip.Net).Abs()
	if diff.LessThanOrEqual(netTolerance) {
		r.confirm("Net pay agrees with our calculation (engine %s, payslip %s).", money(slip.Net), money(net))
	} else {
		r.warn("Net pay differs: payslip %s, engine %s (difference %s). "+
			"Allowances, bonuses, overtime, special deductions or a different SGK base can explain the gap.",
			money(net), money(slip.Net), money(diff))
	}
}

func assessCompleteness(r *Report, p Payslip) {
	var missing []string
	for _, k := range criticalKeys {
		if _, ok := p[k]; !ok {
			missing = append(missing, k)
		}
	}
	r.MissingCritical = append([]string{}, missing...)
	r.ParseConfidence = float64(len(criticalKeys)-len(missing)) / float64(len(criticalKeys))

	names := make([]string, len(missing))
	for i, k := range missing {
		names[i] = criticalLabels[k]
	}
	switch {
	case len(missing) == 0:
		r.confirm("All critical fields of the payslip were provided.")
	case r.ParseConfidence < 0.5:
		r.warn("The payslip is incomplete. Missing critical fields: %s.", strings.Join(names, ", "))
	default:
		r.explain("Most fields were provided. Missing: %s.", strings.Join(names, ", "))
	}
}

func money(d decimal.Decimal) string {
	return humanize.FormatFloat("#.###,##", d.InexactFloat64()) + " ₺"
}

func rate(fraction decimal.Decimal) string {
	return "%" + humanize.FormatFloat("#.###,#", fraction.Mul(hundred).InexactFloat64())
}
