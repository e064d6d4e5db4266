package main

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"payroll-engine/internal/client"
	"payroll-engine/internal/tui"
	"payroll-engine/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive calculator page",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	core, err := newCore(cfg.UI.DefaultMode)
	if err != nil {
		return err
	}

	m := tui.NewModel(core, tui.FormDefaults{
		EmployeeType: cfg.UI.DefaultEmployeeType,
		Year:         strconv.Itoa(cfg.UI.DefaultYear),
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// newCore wires the presentation core to the configured service.
func newCore(mode string) (*tui.Core, error) {
	initial, err := ui.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}

	c := client.New(cfg.Client.Endpoint,
		client.WithTimeout(timeout),
		client.WithLogger(logger))

	return tui.NewCore(c, tui.Options{
		InitialMode:   initial,
		NarrowWidth:   cfg.UI.NarrowWidth,
		SubmitTimeout: timeout,
		Logger:        logger,
	}), nil
}
