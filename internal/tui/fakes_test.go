package tui

import (
	"context"
	"sync"

	"payroll-engine/internal/model"
	"payroll-engine/internal/ui"
)

const okData = `{
	"net": "790.00", "gross": "1000.00", "pek": "1000.00",
	"sgk_employee": "100.00", "unemployment_employee": "20.00",
	"income_tax_base_month": "880.00", "cum_tax_base_new": "880.00",
	"income_tax_gross": "132.00", "income_tax_exemption": "52.00", "income_tax_net": "80.00",
	"stamp_tax_gross": "12.00", "stamp_tax_exemption": "2.00", "stamp_tax_net": "10.00"
}`

type stubCalculator struct {
	mu       sync.Mutex
	resp     *model.CalculationResponse
	err      error
	requests []model.CalculationRequest
}

func (s *stubCalculator) Calculate(_ context.Context, req model.CalculationRequest) (*model.CalculationResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.resp, s.err
}

func okCalculator() *stubCalculator {
	return &stubCalculator{resp: &model.CalculationResponse{Success: true, Data: []byte(okData)}}
}

func newTestCore(calc ui.Calculator) *Core {
	return NewCore(calc, Options{InitialMode: ui.GrossToNet, NarrowWidth: 100})
}
