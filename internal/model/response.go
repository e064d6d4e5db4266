package model

import json "github.com/goccy/go-json"

// CalculationResponse is the envelope returned by every calculation endpoint.
// Data stays raw so the presentation side can validate it field by field.
type CalculationResponse struct {
	Success       bool            `json:"success"`
	Error         string          `json:"error,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
	CalculationID string          `json:"calculation_id,omitempty"`
	FoundGross    string          `json:"found_gross,omitempty"`
}

// Failure builds an unsuccessful envelope carrying message verbatim.
func Failure(message string) *CalculationResponse {
	return &CalculationResponse{Success: false, Error: message}
}
