package ui

import (
	"context"

	"payroll-engine/internal/model"
)

// ModeView is the part of the page showing the mode toggle.
type ModeView interface {
	// ResetModeControl puts the control for m back in its default look.
	ResetModeControl(m Mode)
	// ActivateModeControl marks the control for m as the active one.
	ActivateModeControl(m Mode)
	// SetModeField stores the canonical mode string in the hidden form field.
	SetModeField(value string)
	SetAmountLabel(label string)
}

// SubmitView is the part of the page touched by a submission.
type SubmitView interface {
	// SetSubmitBusy disables the submit control and shows the busy indicator,
	// or restores both.
	SetSubmitBusy(busy bool)
	ShowResultPanel()
	HideEmptyState()
	// ViewportWidth is the current page width in the page's own units.
	ViewportWidth() int
	ScrollToResults()
	// Alert blocks the operator with a notification.
	Alert(message string)
}

// SlotWriter sets the text of a display slot.
type SlotWriter interface {
	SetText(slot Slot, text string)
}

// Calculator delegates a calculation to the remote service. A non-nil error
// means no decodable answer arrived.
type Calculator interface {
	Calculate(ctx context.Context, req model.CalculationRequest) (*model.CalculationResponse, error)
}

// FormSnapshot is the flat name/value view of the form at submit time.
type FormSnapshot map[string]string
