package ui

import "payroll-engine/internal/model"

// Slot identifies one output location on the page.
type Slot string

// Headline slots.
const (
	SlotNet           Slot = "res_net"
	SlotGross         Slot = "res_gross"
	SlotDeduction     Slot = "res_deduction"
	SlotDeductionRate Slot = "res_deduction_rate"
)

// Breakdown table slots.
const (
	SlotTableGross             Slot = "tbl_gross"
	SlotTablePEK               Slot = "tbl_pek"
	SlotTableSGK               Slot = "tbl_sgk"
	SlotTableUnemployment      Slot = "tbl_unemp"
	SlotTableIncomeTaxBase     Slot = "tbl_gv_base"
	SlotTableCumulativeBase    Slot = "tbl_cum_base"
	SlotTableIncomeTaxGross    Slot = "tbl_gv_gross"
	SlotTableIncomeTaxExempt   Slot = "tbl_gv_exemption"
	SlotTableIncomeTaxNet      Slot = "tbl_gv_net"
	SlotTableStampTaxGross     Slot = "tbl_dv_gross"
	SlotTableStampTaxExemption Slot = "tbl_dv_exemption"
	SlotTableStampTaxNet       Slot = "tbl_dv_net"
)

// HeadlineSlots lists the summary slots in display order.
var HeadlineSlots = []Slot{SlotNet, SlotGross, SlotDeduction, SlotDeductionRate}

// TableRow binds one result field to its table slot.
type TableRow struct {
	Field model.Field
	Slot  Slot
	Label string
}

// TableRows is the breakdown table. Every result field except net, which has
// its own headline slot, appears exactly once.
var TableRows = []TableRow{
	{model.FieldGross, SlotTableGross, "Gross pay"},
	{model.FieldPEK, SlotTablePEK, "SGK base (PEK)"},
	{model.FieldSGKEmployee, SlotTableSGK, "SGK employee share"},
	{model.FieldUnemploymentEmployee, SlotTableUnemployment, "Unemployment share"},
	{model.FieldIncomeTaxBaseMonth, SlotTableIncomeTaxBase, "Income tax base"},
	{model.FieldCumTaxBaseNew, SlotTableCumulativeBase, "Cumulative tax base"},
	{model.FieldIncomeTaxGross, SlotTableIncomeTaxGross, "Income tax"},
	{model.FieldIncomeTaxExemption, SlotTableIncomeTaxExempt, "Income tax exemption"},
	{model.FieldIncomeTaxNet, SlotTableIncomeTaxNet, "Income tax payable"},
	{model.FieldStampTaxGross, SlotTableStampTaxGross, "Stamp tax"},
	{model.FieldStampTaxExemption, SlotTableStampTaxExemption, "Stamp tax exemption"},
	{model.FieldStampTaxNet, SlotTableStampTaxNet, "Stamp tax payable"},
}

// DerivedMetrics are computed from a result, never transmitted.
type DerivedMetrics struct {
	SocialTotal    float64
	TaxTotal       float64
	DeductionTotal float64
	// DeductionRate is a percentage of gross pay, 0 when gross is not positive.
	DeductionRate float64
}

// Derive computes the totals shown next to a result.
func Derive(r model.CalculationResult) DerivedMetrics {
	m := DerivedMetrics{
		SocialTotal: r.SGKEmployee + r.UnemploymentEmployee,
		TaxTotal:    r.IncomeTaxNet + r.StampTaxNet,
	}
	m.DeductionTotal = m.SocialTotal + m.TaxTotal
	if r.Gross > 0 {
		m.DeductionRate = m.DeductionTotal / r.Gross * 100
	}
	return m
}

// ResultRenderer writes a result into the page's display slots.
type ResultRenderer struct {
	out SlotWriter
}

func NewResultRenderer(out SlotWriter) *ResultRenderer {
	return &ResultRenderer{out: out}
}

// Render fills every headline and table slot and returns the derived metrics
// so the chart does not recompute them.
func (r *ResultRenderer) Render(res model.CalculationResult) DerivedMetrics {
	m := Derive(res)

	r.out.SetText(SlotNet, FormatMoney(res.Net))
	r.out.SetText(SlotGross, FormatMoney(res.Gross))
	r.out.SetText(SlotDeduction, FormatMoney(m.DeductionTotal))
	r.out.SetText(SlotDeductionRate, FormatRate(m.DeductionRate))

	for _, row := range TableRows {
		r.out.SetText(row.Slot, FormatMoney(res.Value(row.Field)))
	}
	return m
}
