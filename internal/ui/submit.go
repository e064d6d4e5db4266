package ui

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"payroll-engine/internal/model"
)

var (
	// ErrBusy is returned for a submit that arrives while another is in flight.
	// Nothing on the page changes.
	ErrBusy = errors.New("a calculation is already in progress")

	ErrEmptyForm = errors.New("form has no fields")
)

// ApplicationError carries a failure reported by the service itself.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string { return "calculation rejected: " + e.Message }

// Notifications shown to the operator.
const (
	MsgTransport      = "Something went wrong. Is the server running?"
	MsgEmptyForm      = "Fill in the form before calculating."
	MsgServerRejected = "The server could not calculate this request."
	msgInvalidResult  = "Invalid calculation result: "
)

const (
	DefaultSubmitTimeout = 15 * time.Second
	// DefaultNarrowWidth is the width below which the result panel is
	// scrolled into view after a successful calculation.
	DefaultNarrowWidth = 1024
)

// SubmissionController runs the submit lifecycle: busy state, request,
// response handling and dispatch to the renderer and the chart.
type SubmissionController struct {
	modes    *ModeSelector
	calc     Calculator
	view     SubmitView
	renderer *ResultRenderer
	charts   *ChartManager

	log         *zap.Logger
	timeout     time.Duration
	narrowWidth int

	inFlight *semaphore.Weighted
	busy     atomic.Bool
}

type ControllerOption func(*SubmissionController)

func WithLogger(log *zap.Logger) ControllerOption {
	return func(c *SubmissionController) {
		if log != nil {
			c.log = log
		}
	}
}

// WithSubmitTimeout bounds the wait for one response.
func WithSubmitTimeout(d time.Duration) ControllerOption {
	return func(c *SubmissionController) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithNarrowWidth sets the viewport width below which results are scrolled into view.
func WithNarrowWidth(w int) ControllerOption {
	return func(c *SubmissionController) {
		if w > 0 {
			c.narrowWidth = w
		}
	}
}

func NewSubmissionController(modes *ModeSelector, calc Calculator, view SubmitView, renderer *ResultRenderer, charts *ChartManager, opts ...ControllerOption) *SubmissionController {
	c := &SubmissionController{
		modes:       modes,
		calc:        calc,
		view:        view,
		renderer:    renderer,
		charts:      charts,
		log:         zap.NewNop(),
		timeout:     DefaultSubmitTimeout,
		narrowWidth: DefaultNarrowWidth,
		inFlight:    semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Busy reports whether a submission is in flight.
func (c *SubmissionController) Busy() bool {
	return c.busy.Load()
}

// OnSubmit handles one submit of form. The page is updated only on success;
// every failure is reported through an alert and the returned error, and the
// submit control is restored on every path.
func (c *SubmissionController) OnSubmit(ctx context.Context, form FormSnapshot) error {
	if !c.inFlight.TryAcquire(1) {
		c.log.Debug("submit ignored while busy")
		return ErrBusy
	}
	defer c.inFlight.Release(1)
	c.busy.Store(true)
	defer c.busy.Store(false)

	c.view.SetSubmitBusy(true)
	defer c.view.SetSubmitBusy(false)

	req, err := c.buildRequest(form)
	if err != nil {
		c.view.Alert(MsgEmptyForm)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.log.Debug("submitting calculation", zap.String("mode", req[model.InputMode]))
	resp, err := c.calc.Calculate(ctx, req)
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		c.log.Warn("calculation transport failure", zap.Error(err))
		c.view.Alert(MsgTransport)
		return fmt.Errorf("calculate: %w", err)
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = MsgServerRejected
		}
		c.log.Info("calculation rejected", zap.String("error", resp.Error))
		c.view.Alert(msg)
		return &ApplicationError{Message: resp.Error}
	}

	result, err := model.ParseCalculationResult(resp.Data)
	if err != nil {
		c.log.Warn("calculation result violates the data contract",
			zap.String("calculation_id", resp.CalculationID),
			zap.Error(err))
		c.view.Alert(msgInvalidResult + err.Error())
		return err
	}

	c.present(result)
	return nil
}

func (c *SubmissionController) buildRequest(form FormSnapshot) (model.CalculationRequest, error) {
	if len(form) == 0 {
		return nil, ErrEmptyForm
	}
	req := make(model.CalculationRequest, len(form)+1)
	for k, v := range form {
		req[k] = v
	}
	req[model.InputMode] = c.modes.Current().String()
	return req, nil
}

func (c *SubmissionController) present(result model.CalculationResult) {
	metrics := c.renderer.Render(result)
	c.charts.Update(result.Net, metrics.SocialTotal, result.IncomeTaxNet, result.StampTaxNet)

	c.view.ShowResultPanel()
	c.view.HideEmptyState()
	if c.view.ViewportWidth() < c.narrowWidth {
		c.view.ScrollToResults()
	}
}
