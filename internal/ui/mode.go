package ui

import (
	"fmt"
	"sync"
)

// Mode is the calculation direction chosen by the operator.
type Mode int

const (
	GrossToNet Mode = iota
	NetToGross
)

// Modes lists every mode in control order.
var Modes = []Mode{GrossToNet, NetToGross}

func (m Mode) String() string {
	switch m {
	case GrossToNet:
		return "gross_to_net"
	case NetToGross:
		return "net_to_gross"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// AmountLabel is the caption of the amount field while m is active.
func (m Mode) AmountLabel() string {
	if m == NetToGross {
		return "Target net amount"
	}
	return "Gross amount"
}

func (m Mode) valid() bool {
	return m == GrossToNet || m == NetToGross
}

// ParseMode reads a canonical mode string.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if m.String() == s {
			return m, nil
		}
	}
	return GrossToNet, fmt.Errorf("unknown mode %q", s)
}

// ModeSelector keeps the visible toggle, the hidden form field and the amount
// caption in step.
type ModeSelector struct {
	view ModeView

	mu      sync.RWMutex
	current Mode
}

// NewModeSelector adopts initial as the mode the page already shows. The view
// is not touched until the first Select.
func NewModeSelector(view ModeView, initial Mode) *ModeSelector {
	if !initial.valid() {
		initial = GrossToNet
	}
	return &ModeSelector{view: view, current: initial}
}

// Select makes mode the active one. Every control is reset before the chosen
// one is activated, so repeated calls leave the same state.
func (s *ModeSelector) Select(mode Mode) {
	if !mode.valid() {
		return
	}

	s.mu.Lock()
	s.current = mode
	s.mu.Unlock()

	for _, m := range Modes {
		s.view.ResetModeControl(m)
	}
	s.view.ActivateModeControl(mode)
	s.view.SetModeField(mode.String())
	s.view.SetAmountLabel(mode.AmountLabel())
}

// Current returns the committed mode.
func (s *ModeSelector) Current() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
