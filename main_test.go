package main

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"payroll-engine/internal/analysis"
	"payroll-engine/internal/config"
	"payroll-engine/internal/engine"
	"payroll-engine/internal/model"
	"payroll-engine/internal/params"
)

func TestCommonRequestFallsBackToConfig(t *testing.T) {
	cfg = config.Default()
	calcEmployeeType, calcYear = "", 0
	t.Cleanup(func() { cfg = nil })

	req := commonRequest("50000")
	if req[model.InputEmployeeType] != "normal_4a" || req[model.InputYear] != "2026" {
		t.Fatalf("request = %v", req)
	}

	calcEmployeeType, calcYear = "emekli_sgdp", 2025
	t.Cleanup(func() { calcEmployeeType, calcYear = "", 0 })
	req = commonRequest("50000")
	if req[model.InputEmployeeType] != "emekli_sgdp" || req[model.InputYear] != "2025" {
		t.Fatalf("request = %v", req)
	}
}

func TestAnnualRequestIsAccepted(t *testing.T) {
	cfg = config.Default()
	calcEmployeeType, calcYear = "", 0
	t.Cleanup(func() { cfg = nil })

	resp, err := engine.New(params.NewRegistry("")).ProcessAnnual(annualRequest("60000"))
	if err != nil {
		t.Fatalf("process annual: %v", err)
	}
	months, err := model.ParseAnnual(resp.Data)
	if err != nil {
		t.Fatalf("parse annual: %v", err)
	}
	if len(months) != 12 || months[0].Result.Gross != 60000 {
		t.Fatalf("unexpected projection: %d months, first gross %v", len(months), months[0].Result.Gross)
	}
}

func TestAnnualTableTotals(t *testing.T) {
	months := make([]model.MonthResult, 12)
	for i := range months {
		months[i] = model.MonthResult{Month: i + 1, Result: model.CalculationResult{
			Gross: 1000, Net: 790, SGKEmployee: 100, UnemploymentEmployee: 20,
			IncomeTaxNet: 80, StampTaxNet: 10,
		}}
	}

	out := annualTable(months)
	for _, want := range []string{"120,00 ₺", "Annual net: 9.480,00 ₺", "Annual tax: 1.080,00 ₺"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestAnalyzeRequestIsAccepted(t *testing.T) {
	cfg = config.Default()
	calcEmployeeType, calcYear = "", 0
	t.Cleanup(func() { cfg = nil })

	gross, sgk, blank := "50.000", "7000", "  "
	req := analyzeRequest(map[string]*string{
		analysis.KeyGross: &gross,
		analysis.KeySGK:   &sgk,
		analysis.KeyNet:   &blank,
	})
	if _, ok := req[model.InputAmount]; ok {
		t.Fatalf("analysis request carries an amount: %v", req)
	}
	if _, ok := req[analysis.KeyNet]; ok || !hasFigures(req) {
		t.Fatalf("request = %v", req)
	}
	if hasFigures(analyzeRequest(map[string]*string{analysis.KeyNet: &blank})) {
		t.Fatal("blank figures should not count")
	}

	resp, err := engine.New(params.NewRegistry("")).Analyze(req)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var report analysis.Report
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}

	out := renderReport(report)
	for _, want := range []string{"Findings", "SGK premium is correct", "Completeness: 50%"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
