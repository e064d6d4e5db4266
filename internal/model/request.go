package model

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Form field names posted to the calculation service.
const (
	InputMode         = "mode"
	InputAmount       = "amount"
	InputCumBase      = "cum_base"
	InputEmployeeType = "employee_type"
	InputYear         = "year"
)

// CalculationRequest is the flat field map posted to /calculate.
type CalculationRequest map[string]string

// UnmarshalJSON accepts string and number values so that hand-written
// requests (`{"amount": 50000}`) decode the same as form posts.
func (r *CalculationRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(CalculationRequest, len(raw))
	for k, v := range raw {
		s := strings.TrimSpace(string(v))
		switch {
		case s == "null":
			continue
		case strings.HasPrefix(s, `"`):
			var str string
			if err := json.Unmarshal(v, &str); err != nil {
				return fmt.Errorf("field %q: %w", k, err)
			}
			out[k] = str
		case strings.HasPrefix(s, "{"), strings.HasPrefix(s, "["):
			return fmt.Errorf("field %q: nested values are not supported", k)
		default:
			out[k] = s
		}
	}
	*r = out
	return nil
}

// Get returns the trimmed value of a field, or def when it is absent or blank.
func (r CalculationRequest) Get(key, def string) string {
	v := strings.TrimSpace(r[key])
	if v == "" {
		return def
	}
	return v
}
