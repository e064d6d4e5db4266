package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Field names a numeric quantity of a calculation result on the wire.
type Field string

const (
	FieldNet                  Field = "net"
	FieldGross                Field = "gross"
	FieldPEK                  Field = "pek"
	FieldSGKEmployee          Field = "sgk_employee"
	FieldUnemploymentEmployee Field = "unemployment_employee"
	FieldIncomeTaxBaseMonth   Field = "income_tax_base_month"
	FieldCumTaxBaseNew        Field = "cum_tax_base_new"
	FieldIncomeTaxGross       Field = "income_tax_gross"
	FieldIncomeTaxExemption   Field = "income_tax_exemption"
	FieldIncomeTaxNet         Field = "income_tax_net"
	FieldStampTaxGross        Field = "stamp_tax_gross"
	FieldStampTaxExemption    Field = "stamp_tax_exemption"
	FieldStampTaxNet          Field = "stamp_tax_net"
)

// ResultFields lists every field a CalculationResult must carry.
var ResultFields = []Field{
	FieldNet,
	FieldGross,
	FieldPEK,
	FieldSGKEmployee,
	FieldUnemploymentEmployee,
	FieldIncomeTaxBaseMonth,
	FieldCumTaxBaseNew,
	FieldIncomeTaxGross,
	FieldIncomeTaxExemption,
	FieldIncomeTaxNet,
	FieldStampTaxGross,
	FieldStampTaxExemption,
	FieldStampTaxNet,
}

// CalculationResult is one pay slip as seen by the presentation layer.
type CalculationResult struct {
	Net                  float64
	Gross                float64
	PEK                  float64
	SGKEmployee          float64
	UnemploymentEmployee float64
	IncomeTaxBaseMonth   float64
	CumTaxBaseNew        float64
	IncomeTaxGross       float64
	IncomeTaxExemption   float64
	IncomeTaxNet         float64
	StampTaxGross        float64
	StampTaxExemption    float64
	StampTaxNet          float64
}

func (r *CalculationResult) field(f Field) *float64 {
	switch f {
	case FieldNet:
		return &r.Net
	case FieldGross:
		return &r.Gross
	case FieldPEK:
		return &r.PEK
	case FieldSGKEmployee:
		return &r.SGKEmployee
	case FieldUnemploymentEmployee:
		return &r.UnemploymentEmployee
	case FieldIncomeTaxBaseMonth:
		return &r.IncomeTaxBaseMonth
	case FieldCumTaxBaseNew:
		return &r.CumTaxBaseNew
	case FieldIncomeTaxGross:
		return &r.IncomeTaxGross
	case FieldIncomeTaxExemption:
		return &r.IncomeTaxExemption
	case FieldIncomeTaxNet:
		return &r.IncomeTaxNet
	case FieldStampTaxGross:
		return &r.StampTaxGross
	case FieldStampTaxExemption:
		return &r.StampTaxExemption
	case FieldStampTaxNet:
		return &r.StampTaxNet
	}
	return nil
}

// Value returns the quantity stored under f, or 0 for an unknown field.
func (r CalculationResult) Value(f Field) float64 {
	if p := r.field(f); p != nil {
		return *p
	}
	return 0
}

// DataContractError reports a result payload that cannot be turned into a
// CalculationResult. Field is empty when the payload as a whole is unusable.
type DataContractError struct {
	Field  Field
	Reason string
}

func (e *DataContractError) Error() string {
	if e.Field == "" {
		return "result payload " + e.Reason
	}
	return fmt.Sprintf("field %q %s", e.Field, e.Reason)
}

// ParseCalculationResult validates a raw result object. Numbers may arrive as
// JSON numbers or numeric strings; missing, null and non-finite values are
// rejected.
func ParseCalculationResult(data []byte) (CalculationResult, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return CalculationResult{}, &DataContractError{Reason: "is not an object"}
	}
	if raw == nil {
		return CalculationResult{}, &DataContractError{Reason: "is missing"}
	}
	return resultFromMap(raw)
}

func resultFromMap(raw map[string]json.RawMessage) (CalculationResult, error) {
	var r CalculationResult
	for _, f := range ResultFields {
		v, ok := raw[string(f)]
		if !ok {
			return CalculationResult{}, &DataContractError{Field: f, Reason: "is missing"}
		}
		n, err := parseNumber(v)
		if err != nil {
			return CalculationResult{}, &DataContractError{Field: f, Reason: err.Error()}
		}
		*r.field(f) = n
	}
	return r, nil
}

// MonthResult is one month of an annual projection.
type MonthResult struct {
	Month  int
	Result CalculationResult
}

// ParseAnnual validates the payload of /calculate/annual.
func ParseAnnual(data []byte) ([]MonthResult, error) {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &DataContractError{Reason: "is not an array"}
	}
	out := make([]MonthResult, 0, len(rows))
	for i, row := range rows {
		res, err := resultFromMap(row)
		if err != nil {
			return nil, fmt.Errorf("month %d: %w", i+1, err)
		}
		month := i + 1
		if v, ok := row["month"]; ok {
			n, err := parseNumber(v)
			if err != nil {
				return nil, &DataContractError{Field: "month", Reason: err.Error()}
			}
			month = int(n)
		}
		out = append(out, MonthResult{Month: month, Result: res})
	}
	return out, nil
}

var errNull = errors.New("is null")

func parseNumber(v json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(v))
	if s == "" || s == "null" {
		return 0, errNull
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			return 0, fmt.Errorf("is not a string: %s", s)
		}
		s = strings.TrimSpace(str)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("is not numeric: %q", s)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("is not finite: %q", s)
	}
	return n, nil
}
