package tui

import (
	"context"
	"time"

	"go.uber.org/zap"

	"payroll-engine/internal/ui"
)

// Core is the presentation core bound to one Page.
type Core struct {
	Page       *Page
	Modes      *ui.ModeSelector
	Charts     *ui.ChartManager
	Controller *ui.SubmissionController
}

// Options configures NewCore.
type Options struct {
	InitialMode   ui.Mode
	NarrowWidth   int
	SubmitTimeout time.Duration
	Logger        *zap.Logger
}

// NewCore builds a page and wires the mode selector, renderer, chart manager
// and submission controller to it.
func NewCore(calc ui.Calculator, opts Options) *Core {
	page := NewPage(opts.InitialMode)
	modes := ui.NewModeSelector(page, opts.InitialMode)
	charts := ui.NewChartManager(page)
	ctrl := ui.NewSubmissionController(modes, calc, page, ui.NewResultRenderer(page), charts,
		ui.WithLogger(opts.Logger),
		ui.WithSubmitTimeout(opts.SubmitTimeout),
		ui.WithNarrowWidth(opts.NarrowWidth),
	)
	return &Core{Page: page, Modes: modes, Charts: charts, Controller: ctrl}
}

// Submit runs one submission. The returned error is informational: the page
// has already been updated or alerted.
func (c *Core) Submit(ctx context.Context, form ui.FormSnapshot) error {
	return c.Controller.OnSubmit(ctx, form)
}

// Results renders the result panel, or the empty state, at the given width.
func (c *Core) Results(width int) string {
	return renderResults(c.Page.snapshot(), width)
}
