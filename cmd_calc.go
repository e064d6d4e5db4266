package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"payroll-engine/internal/client"
	"payroll-engine/internal/engine"
	"payroll-engine/internal/model"
	"payroll-engine/internal/ui"
)

var (
	calcMode         string
	calcCumBase      string
	calcEmployeeType string
	calcYear         int
	calcWidth        int
)

var calcCmd = &cobra.Command{
	Use:   "calc AMOUNT",
	Short: "Calculate one payslip through the service",
	Example: `  payroll-engine calc 50000
  payroll-engine calc --mode net_to_gross "40.000,00"`,
	Args: cobra.ExactArgs(1),
	RunE: runCalc,
}

var annualCmd = &cobra.Command{
	Use:   "annual GROSS",
	Short: "Project twelve months of payslips for a fixed gross",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnual,
}

func init() {
	for _, c := range []*cobra.Command{calcCmd, annualCmd} {
		c.Flags().StringVar(&calcEmployeeType, "employee-type", "", "normal_4a or emekli_sgdp (default from config)")
		c.Flags().IntVar(&calcYear, "year", 0, "Parameter year (default from config)")
	}
	calcCmd.Flags().StringVar(&calcMode, "mode", "", "gross_to_net or net_to_gross (default from config)")
	calcCmd.Flags().StringVar(&calcCumBase, "cum-base", "0", "Cumulative income tax base before this month")
	calcCmd.Flags().IntVar(&calcWidth, "width", 80, "Chart width in columns")
}

func commonRequest(amount string) model.CalculationRequest {
	employeeType := calcEmployeeType
	if employeeType == "" {
		employeeType = cfg.UI.DefaultEmployeeType
	}
	year := calcYear
	if year == 0 {
		year = cfg.UI.DefaultYear
	}
	return model.CalculationRequest{
		model.InputAmount:       amount,
		model.InputEmployeeType: employeeType,
		model.InputYear:         strconv.Itoa(year),
	}
}

// annualRequest projects a fixed gross salary over the year.
func annualRequest(gross string) model.CalculationRequest {
	req := commonRequest(gross)
	req[model.InputMode] = engine.ModeGrossToNet
	return req
}

func runCalc(cmd *cobra.Command, args []string) error {
	mode := calcMode
	if mode == "" {
		mode = cfg.UI.DefaultMode
	}
	core, err := newCore(mode)
	if err != nil {
		return err
	}

	form := ui.FormSnapshot(commonRequest(args[0]))
	form[model.InputCumBase] = calcCumBase

	if err := core.Submit(cmd.Context(), form); err != nil {
		for _, msg := range core.Page.Alerts() {
			fmt.Fprintln(os.Stderr, msg)
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), core.Results(calcWidth))
	return nil
}

func runAnnual(cmd *cobra.Command, args []string) error {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return err
	}
	c := client.New(cfg.Client.Endpoint, client.WithTimeout(timeout), client.WithLogger(logger))
	defer c.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	resp, err := c.Annual(ctx, annualRequest(args[0]))
	if err != nil {
		logger.Warn("annual projection failed", zap.Error(err))
		return errors.New(ui.MsgTransport)
	}
	if !resp.Success {
		if resp.Error == "" {
			return errors.New(ui.MsgServerRejected)
		}
		return errors.New(resp.Error)
	}

	months, err := model.ParseAnnual(resp.Data)
	if err != nil {
		return fmt.Errorf("invalid calculation result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), annualTable(months))
	return nil
}

func annualTable(months []model.MonthResult) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Month", "Gross", "SGK + unemp.", "Income tax", "Stamp tax", "Net").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	var totalNet, totalTax float64
	for _, m := range months {
		r := m.Result
		t.Row(
			strconv.Itoa(m.Month),
			ui.FormatMoney(r.Gross),
			ui.FormatMoney(r.SGKEmployee+r.UnemploymentEmployee),
			ui.FormatMoney(r.IncomeTaxNet),
			ui.FormatMoney(r.StampTaxNet),
			ui.FormatMoney(r.Net),
		)
		totalNet += r.Net
		totalTax += r.IncomeTaxNet + r.StampTaxNet
	}
	return t.Render() + fmt.Sprintf("\nAnnual net: %s   Annual tax: %s", ui.FormatMoney(totalNet), ui.FormatMoney(totalTax))
}
