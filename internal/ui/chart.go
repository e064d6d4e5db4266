package ui

import "math"

// ChartKind names the chart type requested from the factory.
type ChartKind string

const Doughnut ChartKind = "doughnut"

// LegendBottom places the legend under the chart.
const LegendBottom = "bottom"

// Slice indexes in every ChartSpec.
const (
	SliceNet = iota
	SliceSocial
	SliceIncomeTax
	SliceStampTax
)

// Slice is one proportional segment.
type Slice struct {
	Label string
	Color string
	Value float64
}

// ChartSpec is everything a factory needs to draw the breakdown chart.
type ChartSpec struct {
	Kind   ChartKind
	Slices []Slice
	Legend string
	// Cutout is the inner radius as a fraction of the outer one.
	Cutout float64
}

// Total sums the slice values.
func (s ChartSpec) Total() float64 {
	var t float64
	for _, sl := range s.Slices {
		t += sl.Value
	}
	return t
}

// Chart is a drawn chart instance. Destroy releases it from its canvas.
type Chart interface {
	Destroy()
}

// ChartFactory draws a new chart on the page's canvas.
type ChartFactory interface {
	NewChart(spec ChartSpec) Chart
}

const chartCutout = 0.70

var chartSeries = [...]struct{ label, color string }{
	SliceNet:       {"Net pay", "#10b981"},
	SliceSocial:    {"SGK & unemployment", "#ef4444"},
	SliceIncomeTax: {"Income tax", "#f97316"},
	SliceStampTax:  {"Stamp tax", "#6366f1"},
}

// ChartManager owns the single chart instance on the page.
type ChartManager struct {
	factory ChartFactory
	current Chart
	spec    ChartSpec
}

func NewChartManager(factory ChartFactory) *ChartManager {
	return &ChartManager{factory: factory}
}

// Update replaces the chart: any existing instance is destroyed before the new
// one is built. Non-finite or negative inputs become empty slices.
func (m *ChartManager) Update(net, socialTotal, incomeTaxNet, stampTaxNet float64) {
	values := [...]float64{
		SliceNet:       net,
		SliceSocial:    socialTotal,
		SliceIncomeTax: incomeTaxNet,
		SliceStampTax:  stampTaxNet,
	}

	spec := ChartSpec{
		Kind:   Doughnut,
		Slices: make([]Slice, len(chartSeries)),
		Legend: LegendBottom,
		Cutout: chartCutout,
	}
	for i, s := range chartSeries {
		spec.Slices[i] = Slice{Label: s.label, Color: s.color, Value: sliceValue(values[i])}
	}

	m.Close()
	m.spec = spec
	m.current = m.factory.NewChart(spec)
}

// Dataset returns the spec of the chart currently shown.
func (m *ChartManager) Dataset() (ChartSpec, bool) {
	return m.spec, m.current != nil
}

// Close destroys the current chart, if any.
func (m *ChartManager) Close() {
	if m.current != nil {
		m.current.Destroy()
		m.current = nil
	}
}

func sliceValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
