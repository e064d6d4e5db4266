package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"payroll-engine/internal/analysis"
	"payroll-engine/internal/client"
	"payroll-engine/internal/model"
	"payroll-engine/internal/ui"
)

// analyzeFlags maps flag names to payslip figure keys.
var analyzeFlags = []struct{ flag, key, usage string }{
	{"gross", analysis.KeyGross, "Gross pay"},
	{"net", analysis.KeyNet, "Net pay"},
	{"sgk", analysis.KeySGK, "SGK premium, employee share"},
	{"unemp", analysis.KeyUnemployment, "Unemployment insurance, employee share"},
	{"income-tax", analysis.KeyIncomeTax, "Income tax"},
	{"stamp-tax", analysis.KeyStampTax, "Stamp tax"},
	{"sgk-base", analysis.KeySGKBase, "SGK base"},
	{"cum-base", analysis.KeyCumBase, "Cumulative income tax base"},
	{"income-tax-base", analysis.KeyIncomeTaxBase, "Monthly income tax base"},
	{"income-tax-exemption", analysis.KeyIncomeTaxExemption, "Minimum wage income tax exemption"},
	{"stamp-tax-exemption", analysis.KeyStampTaxExemption, "Minimum wage stamp tax exemption"},
}

var analyzeValues = map[string]*string{}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Check the figures of an existing payslip",
	Example: `  payroll-engine analyze --gross 50.000 --net 40.207,52 --sgk 7000 --income-tax 2163,68
  payroll-engine analyze --cum-base 200000`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	for _, f := range analyzeFlags {
		analyzeValues[f.key] = analyzeCmd.Flags().String(f.flag, "", f.usage)
	}
	analyzeCmd.Flags().StringVar(&calcEmployeeType, "employee-type", "", "normal_4a or emekli_sgdp (default from config)")
	analyzeCmd.Flags().IntVar(&calcYear, "year", 0, "Parameter year (default from config)")
}

// analyzeRequest carries the entered figures plus employee type and year.
func analyzeRequest(values map[string]*string) model.CalculationRequest {
	req := commonRequest("")
	delete(req, model.InputAmount)
	for key, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			req[key] = strings.TrimSpace(*v)
		}
	}
	return req
}

func hasFigures(req model.CalculationRequest) bool {
	for _, k := range analysis.Keys {
		if _, ok := req[k]; ok {
			return true
		}
	}
	return false
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	req := analyzeRequest(analyzeValues)
	if !hasFigures(req) {
		return analysis.ErrNoFields
	}

	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return err
	}
	c := client.New(cfg.Client.Endpoint, client.WithTimeout(timeout), client.WithLogger(logger))
	defer c.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	resp, err := c.Analyze(ctx, req)
	if err != nil {
		logger.Warn("payslip analysis failed", zap.Error(err))
		return errors.New(ui.MsgTransport)
	}
	if !resp.Success {
		if resp.Error == "" {
			return errors.New(ui.MsgServerRejected)
		}
		return errors.New(resp.Error)
	}

	var report analysis.Report
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		return fmt.Errorf("invalid analysis report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
	return nil
}

var (
	reportHeading = lipgloss.NewStyle().Bold(true).MarginTop(1)
	reportOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	reportWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func renderReport(r analysis.Report) string {
	var b strings.Builder
	section := func(title string, lines []string, style lipgloss.Style, mark string) {
		if len(lines) == 0 {
			return
		}
		b.WriteString(reportHeading.Render(title))
		b.WriteByte('\n')
		for _, l := range lines {
			b.WriteString(style.Render(mark + " " + l))
			b.WriteByte('\n')
		}
	}
	section("Explanations", r.Explanations, lipgloss.NewStyle(), "•")
	section("Findings", r.Findings, reportOK, "✓")
	section("Warnings", r.Warnings, reportWarn, "!")

	if r.ExpectedNet != nil {
		fmt.Fprintf(&b, "\nExpected net: %s", ui.FormatMoney(r.ExpectedNet.InexactFloat64()))
	}
	fmt.Fprintf(&b, "\nCompleteness: %.0f%%", r.ParseConfidence*100)
	return b.String()
}
