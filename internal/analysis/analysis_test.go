package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"payroll-engine/internal/params"
	"payroll-engine/internal/payroll"
)

func loadYear(t *testing.T) *params.Year {
	t.Helper()
	y, err := params.NewRegistry("").Load(2026)
	if err != nil {
		t.Fatalf("load params: %v", err)
	}
	return y
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func contains(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func consistentSlip() Payslip {
	return NewPayslip(map[string]decimal.Decimal{
		KeyGross:        d("50000"),
		KeyNet:          d("40207.53"),
		KeySGK:          d("7000"),
		KeyUnemployment: d("500"),
		KeyIncomeTax:    d("2163.68"),
		KeyStampTax:     d("128.80"),
		KeySGKBase:      d("50000"),
	})
}

func TestConsistentPayslipHasNoWarnings(t *testing.T) {
	y := loadYear(t)

	r, err := Analyze(consistentSlip(), payroll.EmployeeNormal, y)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(r.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", r.Warnings)
	}
	for _, want := range []string{"SGK premium is correct", "Unemployment insurance is correct", "Stamp tax looks correct", "Net pay agrees", "All critical fields"} {
		if !contains(r.Findings, want) {
			t.Fatalf("expected finding %q in %v", want, r.Findings)
		}
	}
	if r.ParseConfidence != 1 {
		t.Fatalf("expected full confidence, got %v", r.ParseConfidence)
	}
	if len(r.MissingCritical) != 0 {
		t.Fatalf("expected no missing fields, got %v", r.MissingCritical)
	}

	slip, err := payroll.PaySlip(d("50000"), decimal.Zero, payroll.EmployeeNormal, y)
	if err != nil {
		t.Fatalf("pay slip: %v", err)
	}
	if r.ExpectedNet == nil || !r.ExpectedNet.Equal(slip.Net) {
		t.Fatalf("expected net %s, got %v", slip.Net, r.ExpectedNet)
	}
	if r.Fields[KeyGross] != "50000.00" {
		t.Fatalf("unexpected gross field %q", r.Fields[KeyGross])
	}
}

func TestMismatchedFiguresWarn(t *testing.T) {
	y := loadYear(t)
	p := consistentSlip()
	p[KeySGK] = d("6000")
	p[KeyStampTax] = d("300")
	p[KeyNet] = d("39000")

	r, err := Analyze(p, payroll.EmployeeNormal, y)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	for _, want := range []string{"SGK premium does not match", "Stamp tax does not match", "Net pay differs"} {
		if !contains(r.Warnings, want) {
			t.Fatalf("expected warning %q in %v", want, r.Warnings)
		}
	}
	if !contains(r.Warnings, "7.000,00 ₺") {
		t.Fatalf("expected the expected SGK premium in %v", r.Warnings)
	}
}

func TestSmallRoundingGapIsAccepted(t *testing.T) {
	y := loadYear(t)
	p := consistentSlip()
	p[KeySGK] = d("7004.99")

	r, err := Analyze(p, payroll.EmployeeNormal, y)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if contains(r.Warnings, "SGK") {
		t.Fatalf("expected gap within tolerance, got %v", r.Warnings)
	}
}

func TestSGKBaseFallsBackToGross(t *testing.T) {
	y := loadYear(t)
	p := consistentSlip()
	delete(p, KeySGKBase)

	r, err := Analyze(p, payroll.EmployeeNormal, y)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !contains(r.Findings, "SGK premium is correct") {
		t.Fatalf("expected SGK check from gross, got findings %v warnings %v", r.Findings, r.Warnings)
	}
}

func TestCeilingIsExplained(t *testing.T) {
	y := loadYear(t)
	p := NewPayslip(map[string]decimal.Decimal{
		KeyGross:   d("400000"),
		KeySGKBase: d("297270"),
		KeySGK:     d("41617.80"),
	})

	r, err := Analyze(p, payroll.EmployeeNormal, y)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !contains(r.Explanations, "exceeds the SGK ceiling") {
		t.Fatalf("expected ceiling explanation in %v", r.Explanations)
	}
	if !contains(r.Findings, "SGK premium is correct") {
		t.Fatalf("expected capped SGK premium to match, got %v", r.Warnings)
	}
}

func TestRetiredUsesSGDPRate(t *testing.T) {
	y := loadYear(t)
	p := NewPayslip(map[string]decimal.Decimal{
		KeyGross: d("40000"),
		KeySGK:   d("3000"),
	})

	r, err := Analyze(p, payroll.EmployeeRetired, y)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !contains(r.Findings, "SGK premium is correct") {
		t.Fatalf("expected 7.5%% premium to match, got %v", r.Warnings)
	}
}

func TestBracketLocation(t *testing.T) {
	y := loadYear(t)

	r, err := Analyze(NewPayslip(map[string]decimal.Decimal{KeyCumBase: d("200000")}), payroll.EmployeeNormal, y)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if r.Bracket == nil || r.Bracket.Index != 2 || !r.Bracket.Rate.Equal(d("0.20")) {
		t.Fatalf("expected bracket 2, got %+v", r.Bracket)
	}
	if !r.Bracket.RemainingToNext.Equal(d("150000")) || !r.Bracket.NextRate.Equal(d("0.27")) {
		t.Fatalf("unexpected next bracket %s at %s", r.Bracket.RemainingToNext, r.Bracket.NextRate)
	}
	if !contains(r.Explanations, "starts at the lowest rate") {
		t.Fatalf("expected climbing-bracket note in %v", r.Explanations)
	}
}

func TestFindBracket(t *testing.T) {
	y := loadYear(t)

	tests := []struct {
		cum       string
		index     int
		remaining string
	}{
		{"1", 1, "149999"},
		{"150000", 1, "0"},
		{"150000.01", 2, "199999.99"},
		{"5000000", 5, ""},
	}
	for _, tt := range tests {
		b, ok := FindBracket(d(tt.cum), y.IncomeTaxTariff)
		if !ok {
			t.Fatalf("%s: no bracket", tt.cum)
		}
		if b.Index != tt.index {
			t.Fatalf("%s: expected bracket %d, got %d", tt.cum, tt.index, b.Index)
		}
		if tt.remaining == "" {
			if b.RemainingToNext != nil || b.NextRate != nil {
				t.Fatalf("%s: expected top bracket, got %+v", tt.cum, b)
			}
			continue
		}
		if !b.RemainingToNext.Equal(d(tt.remaining)) {
			t.Fatalf("%s: expected %s remaining, got %s", tt.cum, tt.remaining, b.RemainingToNext)
		}
	}
}

func TestStampExemptionOverride(t *testing.T) {
	y := loadYear(t)
	p := NewPayslip(map[string]decimal.Decimal{
		KeyGross:             d("50000"),
		KeyStampTax:          d("379.50"),
		KeyStampTaxExemption: d("0.01"),
	})

	r, err := Analyze(p, payroll.EmployeeNormal, y)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !contains(r.Findings, "Stamp tax looks correct") {
		t.Fatalf("expected entered exemption to be used, got %v", r.Warnings)
	}
}

func TestConfidence(t *testing.T) {
	y := loadYear(t)

	r, err := Analyze(NewPayslip(map[string]decimal.Decimal{KeyGross: d("50000")}), payroll.EmployeeNormal, y)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if r.ParseConfidence != 0.25 {
		t.Fatalf("expected confidence 0.25, got %v", r.ParseConfidence)
	}
	if !contains(r.Warnings, "Net pay, SGK premium, Income tax") {
		t.Fatalf("expected missing-field warning in %v", r.Warnings)
	}
	if r.ExpectedNet != nil {
		t.Fatalf("expected no verification without SGK and income tax, got %s", r.ExpectedNet)
	}

	p := consistentSlip()
	delete(p, KeyIncomeTax)
	r, err = Analyze(p, payroll.EmployeeNormal, y)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if r.ParseConfidence != 0.75 || !contains(r.Explanations, "Missing: Income tax") {
		t.Fatalf("expected partial confidence note, got %v %v", r.ParseConfidence, r.Explanations)
	}
}

func TestEmptyPayslip(t *testing.T) {
	y := loadYear(t)

	p := NewPayslip(map[string]decimal.Decimal{KeyGross: decimal.Zero, KeyNet: d("-1"), "bonus": d("10")})
	if len(p) != 0 {
		t.Fatalf("expected only positive known fields, got %v", p)
	}
	if _, err := Analyze(p, payroll.EmployeeNormal, y); !errors.Is(err, ErrNoFields) {
		t.Fatalf("expected ErrNoFields, got %v", err)
	}
}

func TestUnknownEmployeeType(t *testing.T) {
	y := loadYear(t)

	if _, err := Analyze(consistentSlip(), "intern", y); err == nil {
		t.Fatal("expected error for unknown employee type")
	}
}
