package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payroll-engine/internal/analysis"
	"payroll-engine/internal/model"
	"payroll-engine/internal/params"
	"payroll-engine/internal/payroll"
)

const (
	DefaultYear         = 2026
	DefaultEmployeeType = payroll.EmployeeNormal
)

// ValidationError marks a request the caller can fix. Handlers answer it with 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type input struct {
	mode         string
	amount       decimal.Decimal
	cumBase      decimal.Decimal
	employeeType string
	year         int
}

// Engine turns calculation requests into response envelopes.
type Engine struct {
	params *params.Registry
}

func New(reg *params.Registry) *Engine {
	return &Engine{params: reg}
}

// Process runs one gross-to-net or net-to-gross calculation.
func (e *Engine) Process(req model.CalculationRequest) (*model.CalculationResponse, error) {
	in, y, handler, err := e.prepare(req)
	if err != nil {
		return nil, err
	}

	out, err := handler.Apply(in, y)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(out.slip)
	if err != nil {
		return nil, fmt.Errorf("encode slip: %w", err)
	}

	resp := &model.CalculationResponse{
		Success:       true,
		Data:          data,
		CalculationID: uuid.New().String(),
	}
	if out.foundGross != nil {
		resp.FoundGross = out.foundGross.StringFixed(2)
	}
	return resp, nil
}

// ProcessAnnual projects twelve months. In net_to_gross mode the gross salary
// is searched first for the January slip and then held constant.
func (e *Engine) ProcessAnnual(req model.CalculationRequest) (*model.CalculationResponse, error) {
	in, y, handler, err := e.prepare(req)
	if err != nil {
		return nil, err
	}

	gross := in.amount
	var found *decimal.Decimal
	if in.mode == ModeNetToGross {
		out, err := handler.Apply(in, y)
		if err != nil {
			return nil, err
		}
		gross = out.slip.Gross
		found = out.foundGross
	}

	slips, err := payroll.Annual(gross, in.employeeType, y)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(slips)
	if err != nil {
		return nil, fmt.Errorf("encode slips: %w", err)
	}

	resp := &model.CalculationResponse{
		Success:       true,
		Data:          data,
		CalculationID: uuid.New().String(),
	}
	if found != nil {
		resp.FoundGross = found.StringFixed(2)
	}
	return resp, nil
}

// Analyze checks the figures of an existing payslip. The request carries the
// analysis keys ("gross", "net", "sgk", ...) next to employee_type and year.
func (e *Engine) Analyze(req model.CalculationRequest) (*model.CalculationResponse, error) {
	values := make(map[string]decimal.Decimal, len(analysis.Keys))
	for _, k := range analysis.Keys {
		raw := req.Get(k, "")
		if raw == "" {
			continue
		}
		v, err := parseAmount(raw)
		if err != nil {
			return nil, validationErrorf("invalid %s %q", k, raw)
		}
		values[k] = v
	}
	slip := analysis.NewPayslip(values)
	if len(slip) == 0 {
		return nil, &ValidationError{Message: analysis.ErrNoFields.Error()}
	}

	y, employeeType, err := e.yearFor(req)
	if err != nil {
		return nil, err
	}

	report, err := analysis.Analyze(slip, employeeType, y)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return &model.CalculationResponse{
		Success:       true,
		Data:          data,
		CalculationID: uuid.New().String(),
	}, nil
}

func (e *Engine) yearFor(req model.CalculationRequest) (*params.Year, string, error) {
	year := DefaultYear
	if rawYear := req.Get(model.InputYear, ""); rawYear != "" {
		var err error
		if year, err = strconv.Atoi(rawYear); err != nil {
			return nil, "", validationErrorf("invalid year %q", rawYear)
		}
	}
	y, err := e.params.Load(year)
	if err != nil {
		if errors.Is(err, params.ErrUnknownYear) {
			return nil, "", &ValidationError{Message: err.Error()}
		}
		return nil, "", err
	}
	employeeType := req.Get(model.InputEmployeeType, DefaultEmployeeType)
	if !y.HasEmployeeType(employeeType) {
		return nil, "", validationErrorf("invalid employee type %q", employeeType)
	}
	return y, employeeType, nil
}

// Params returns the parameter set for year as an envelope.
func (e *Engine) Params(year int) (*model.CalculationResponse, error) {
	y, err := e.params.Load(year)
	if err != nil {
		if errors.Is(err, params.ErrUnknownYear) {
			return nil, &ValidationError{Message: err.Error()}
		}
		return nil, err
	}
	data, err := json.Marshal(y)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	return &model.CalculationResponse{Success: true, Data: data}, nil
}

func (e *Engine) prepare(req model.CalculationRequest) (*input, *params.Year, modeHandler, error) {
	mode := req.Get(model.InputMode, "")
	handler, ok := getMode(mode)
	if !ok {
		return nil, nil, nil, &ValidationError{Message: "invalid mode"}
	}

	in, err := parseInput(req)
	if err != nil {
		return nil, nil, nil, err
	}
	in.mode = mode

	y, err := e.params.Load(in.year)
	if err != nil {
		if errors.Is(err, params.ErrUnknownYear) {
			return nil, nil, nil, &ValidationError{Message: err.Error()}
		}
		return nil, nil, nil, err
	}
	if !y.HasEmployeeType(in.employeeType) {
		return nil, nil, nil, validationErrorf("invalid employee type %q", in.employeeType)
	}

	if err := handler.Validate(in); err != nil {
		return nil, nil, nil, err
	}
	return in, y, handler, nil
}

func parseInput(req model.CalculationRequest) (*input, error) {
	raw := req.Get(model.InputAmount, "")
	if raw == "" {
		return nil, validationErrorf("amount is required")
	}
	amount, err := parseAmount(raw)
	if err != nil {
		return nil, validationErrorf("invalid amount %q", raw)
	}

	rawCum := req.Get(model.InputCumBase, "0")
	cumBase, err := parseAmount(rawCum)
	if err != nil || cumBase.IsNegative() {
		return nil, validationErrorf("invalid cumulative tax base %q", rawCum)
	}

	year := DefaultYear
	if rawYear := req.Get(model.InputYear, ""); rawYear != "" {
		year, err = strconv.Atoi(rawYear)
		if err != nil {
			return nil, validationErrorf("invalid year %q", rawYear)
		}
	}

	return &input{
		amount:       amount,
		cumBase:      cumBase,
		employeeType: req.Get(model.InputEmployeeType, DefaultEmployeeType),
		year:         year,
	}, nil
}

// dotGrouped matches tr-TR thousands grouping without decimals, "50.000".
var dotGrouped = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)

// parseAmount accepts "50000.25" as well as the tr-TR spellings "50.000,25"
// and "50.000". A dot followed by exactly three digits is always grouping.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case dotGrouped.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}
	return decimal.NewFromString(s)
}
