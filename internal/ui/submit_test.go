package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payroll-engine/internal/model"
)

func TestSubmitSuccess(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.ctrl.OnSubmit(context.Background(), form()))

	assert.True(t, h.page.resultVisible)
	assert.False(t, h.page.emptyVisible)
	assert.Empty(t, h.page.alerts)
	assert.Equal(t, []bool{true, false}, h.page.busyCalls)
	assert.Len(t, h.page.slots, len(HeadlineSlots)+len(TableRows))
	assert.Zero(t, h.page.scrolled, "wide viewport must not scroll")

	spec, ok := h.charts.Dataset()
	require.True(t, ok)
	// the chart decomposes gross: net plus every deduction
	assert.InDelta(t, 1000.0, spec.Total(), 1e-9)
	assert.Equal(t, []float64{790, 120, 80, 10}, values(spec))
}

func TestSubmitSendsEveryFieldAndMode(t *testing.T) {
	h := newHarness()
	h.modes.Select(NetToGross)

	snap := form()
	snap["mode"] = "gross_to_net" // stale hidden field loses to the committed mode
	require.NoError(t, h.ctrl.OnSubmit(context.Background(), snap))

	require.Len(t, h.calc.requests, 1)
	req := h.calc.requests[0]
	assert.Equal(t, "net_to_gross", req[model.InputMode])
	for k, v := range form() {
		assert.Equal(t, v, req[k])
	}
}

func TestRepeatedSubmitsKeepOneChart(t *testing.T) {
	h := newHarness()

	for i := 0; i < 4; i++ {
		require.NoError(t, h.ctrl.OnSubmit(context.Background(), form()))
	}
	assert.Equal(t, 1, h.canvas.attached)
	assert.Equal(t, 3, h.canvas.destroyed)
}

func TestTransportFailureLeavesPageUnchanged(t *testing.T) {
	h := newHarness()
	h.calc.err = errors.New("connection refused")

	err := h.ctrl.OnSubmit(context.Background(), form())
	require.Error(t, err)

	assert.Equal(t, []string{MsgTransport}, h.page.alerts)
	assert.False(t, h.page.resultVisible)
	assert.True(t, h.page.emptyVisible)
	assert.Empty(t, h.page.slots)
	assert.False(t, h.page.busy)
	assert.Zero(t, h.canvas.created)
}

func TestFailureAfterSuccessKeepsPreviousResult(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.ctrl.OnSubmit(context.Background(), form()))
	before := map[Slot]string{}
	for k, v := range h.page.slots {
		before[k] = v
	}

	h.calc.resp = model.Failure("amount is required")
	err := h.ctrl.OnSubmit(context.Background(), form())

	var appErr *ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "amount is required", appErr.Message)
	assert.Equal(t, []string{"amount is required"}, h.page.alerts)
	assert.True(t, h.page.resultVisible)
	assert.Equal(t, before, h.page.slots)
	assert.Equal(t, 1, h.canvas.attached)
	assert.False(t, h.page.busy)
}

func TestApplicationErrorWithoutMessage(t *testing.T) {
	h := newHarness()
	h.calc.resp = &model.CalculationResponse{Success: false}

	require.Error(t, h.ctrl.OnSubmit(context.Background(), form()))
	assert.Equal(t, []string{MsgServerRejected}, h.page.alerts)
}

func TestNilResponseIsTransportFailure(t *testing.T) {
	h := newHarness()
	h.calc.resp = nil

	require.Error(t, h.ctrl.OnSubmit(context.Background(), form()))
	assert.Equal(t, []string{MsgTransport}, h.page.alerts)
}

func TestDataContractViolationRefusesToRender(t *testing.T) {
	h := newHarness()
	h.calc.resp = &model.CalculationResponse{Success: true, Data: []byte(`{"net":"1","gross":"abc"}`)}

	err := h.ctrl.OnSubmit(context.Background(), form())

	var dce *model.DataContractError
	require.True(t, errors.As(err, &dce))
	require.Len(t, h.page.alerts, 1)
	assert.Contains(t, h.page.alerts[0], "Invalid calculation result")
	assert.Contains(t, h.page.alerts[0], `"gross"`)
	assert.Empty(t, h.page.slots)
	assert.False(t, h.page.resultVisible)
	assert.False(t, h.page.busy)
}

func TestEmptyFormRejected(t *testing.T) {
	h := newHarness()

	err := h.ctrl.OnSubmit(context.Background(), FormSnapshot{})
	assert.ErrorIs(t, err, ErrEmptyForm)
	assert.Equal(t, []string{MsgEmptyForm}, h.page.alerts)
	assert.Empty(t, h.calc.requests)
	assert.False(t, h.page.busy)
}

func TestNarrowViewportScrollsToResults(t *testing.T) {
	h := newHarness(WithNarrowWidth(100))
	h.page.width = 80

	require.NoError(t, h.ctrl.OnSubmit(context.Background(), form()))
	assert.Equal(t, 1, h.page.scrolled)
}

func TestSubmitWhileBusyIsIgnored(t *testing.T) {
	h := newHarness()
	h.calc.block = make(chan struct{})
	h.calc.started = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- h.ctrl.OnSubmit(context.Background(), form())
	}()
	<-h.calc.started

	assert.True(t, h.ctrl.Busy())
	h.calc.mu.Lock()
	h.calc.started = nil
	h.calc.mu.Unlock()

	err := h.ctrl.OnSubmit(context.Background(), form())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Empty(t, h.page.alerts)

	close(h.calc.block)
	require.NoError(t, <-done)

	assert.False(t, h.ctrl.Busy())
	assert.Len(t, h.calc.requests, 1)
	assert.Equal(t, []bool{true, false}, h.page.busyCalls)
}

func TestSubmitTimeout(t *testing.T) {
	h := newHarness(WithSubmitTimeout(10 * time.Millisecond))
	h.calc.block = make(chan struct{})
	defer close(h.calc.block)

	err := h.ctrl.OnSubmit(context.Background(), form())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{MsgTransport}, h.page.alerts)
	assert.False(t, h.page.busy)
}

func TestBusyQueryDoesNotBlockSubmit(t *testing.T) {
	h := newHarness()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = h.ctrl.Busy()
			}
		}
	}()

	for i := 0; i < 200; i++ {
		require.NoError(t, h.ctrl.OnSubmit(context.Background(), form()), "submit %d", i)
	}
	close(stop)
	wg.Wait()
	assert.False(t, h.ctrl.Busy())
}

type panickingCalculator struct{}

func (panickingCalculator) Calculate(context.Context, model.CalculationRequest) (*model.CalculationResponse, error) {
	panic("boom")
}

func TestBusyStateReleasedOnPanic(t *testing.T) {
	h := newHarness()
	h.ctrl.calc = panickingCalculator{}

	assert.Panics(t, func() {
		_ = h.ctrl.OnSubmit(context.Background(), form())
	})
	assert.False(t, h.page.busy)
	assert.False(t, h.ctrl.Busy())
}
