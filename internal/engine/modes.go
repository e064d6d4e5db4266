package engine

import (
	"github.com/shopspring/decimal"

	"payroll-engine/internal/params"
	"payroll-engine/internal/payroll"
)

// Calculation modes accepted in the request's mode field.
const (
	ModeGrossToNet = "gross_to_net"
	ModeNetToGross = "net_to_gross"
)

// modeHandler computes a pay slip for one calculation direction.
type modeHandler interface {
	Validate(in *input) error
	Apply(in *input, y *params.Year) (outcome, error)
}

type outcome struct {
	slip       payroll.Slip
	foundGross *decimal.Decimal
}

var modes = map[string]modeHandler{
	ModeGrossToNet: grossToNetHandler{},
	ModeNetToGross: netToGrossHandler{},
}

func getMode(name string) (modeHandler, bool) {
	h, ok := modes[name]
	return h, ok
}

type grossToNetHandler struct{}

func (grossToNetHandler) Validate(in *input) error {
	if in.amount.Sign() <= 0 {
		return validationErrorf("gross amount must be positive")
	}
	return nil
}

func (grossToNetHandler) Apply(in *input, y *params.Year) (outcome, error) {
	slip, err := payroll.PaySlip(in.amount, in.cumBase, in.employeeType, y)
	if err != nil {
		return outcome{}, err
	}
	return outcome{slip: slip}, nil
}

type netToGrossHandler struct{}

func (netToGrossHandler) Validate(in *input) error {
	if in.amount.Sign() <= 0 {
		return validationErrorf("target net amount must be positive")
	}
	return nil
}

func (netToGrossHandler) Apply(in *input, y *params.Year) (outcome, error) {
	gross, err := payroll.FindGross(in.amount, in.cumBase, in.employeeType, y)
	if err != nil {
		return outcome{}, err
	}
	// Recompute at the found gross so the slip carries every stage.
	slip, err := payroll.PaySlip(gross, in.cumBase, in.employeeType, y)
	if err != nil {
		return outcome{}, err
	}
	return outcome{slip: slip, foundGross: &gross}, nil
}
