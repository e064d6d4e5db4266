package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"payroll-engine/internal/ui"
)

const (
	appTitle = "Bordro motoru"

	// barRows is the thickness of a full bar. The chart cutout takes its
	// share away, the way a doughnut hole thins the ring.
	barRows       = 5
	minChartWidth = 20
	labelWidth    = 22
	emptyMessage  = "Enter an amount and press enter to see the payslip."
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F0F0F0")).
			Background(lipgloss.Color("#6366f1")).
			Padding(0, 1)
	activeModeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F0F0F0")).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#10b981"))
	inactiveModeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Width(labelWidth)
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	cardStyle     = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#ef4444")).
			Padding(1, 2)
)

func title() string {
	return titleStyle.Render(cases.Upper(language.Turkish).String(appTitle))
}

func modeLabel(m ui.Mode) string {
	if m == ui.NetToGross {
		return "Net → Gross"
	}
	return "Gross → Net"
}

func renderModes(st pageState) string {
	buttons := make([]string, 0, len(ui.Modes))
	for _, m := range ui.Modes {
		style := inactiveModeStyle
		if st.active[m] {
			style = activeModeStyle
		}
		buttons = append(buttons, style.Render(modeLabel(m)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}

func renderResults(st pageState, width int) string {
	if !st.resultVisible || st.emptyVisible {
		return cardStyle.Render(mutedStyle.Render(emptyMessage))
	}

	var b strings.Builder
	b.WriteString(renderHeadline(st))
	b.WriteString("\n")
	b.WriteString(renderTable(st))
	if st.chart != nil {
		b.WriteString("\n")
		b.WriteString(renderChart(*st.chart, width))
	}
	return b.String()
}

var headlineLabels = map[ui.Slot]string{
	ui.SlotNet:           "Net pay",
	ui.SlotGross:         "Gross pay",
	ui.SlotDeduction:     "Total deductions",
	ui.SlotDeductionRate: "Deduction rate",
}

func renderHeadline(st pageState) string {
	cards := make([]string, 0, len(ui.HeadlineSlots))
	for _, slot := range ui.HeadlineSlots {
		cards = append(cards, cardStyle.Render(
			mutedStyle.Render(headlineLabels[slot])+"\n"+headlineStyle.Render(st.slots[slot]),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func renderTable(st pageState) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("Item", "Amount").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if col == 1 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	for _, row := range ui.TableRows {
		t.Row(row.Label, st.slots[row.Slot])
	}
	return t.Render()
}

// renderChart draws the breakdown as one proportional bar with the legend
// below it.
func renderChart(spec ui.ChartSpec, width int) string {
	if width < minChartWidth {
		width = minChartWidth
	}
	widths := barWidths(spec, width)

	segments := make([]string, 0, len(spec.Slices))
	for i, sl := range spec.Slices {
		if widths[i] == 0 {
			continue
		}
		seg := lipgloss.NewStyle().Background(lipgloss.Color(sl.Color)).Render(strings.Repeat(" ", widths[i]))
		segments = append(segments, seg)
	}
	line := strings.Join(segments, "")
	if line == "" {
		line = mutedStyle.Render(strings.Repeat("·", width))
	}

	rows := make([]string, barThickness(spec.Cutout))
	for i := range rows {
		rows[i] = line
	}

	legend := renderLegend(spec)
	if spec.Legend != ui.LegendBottom {
		return legend + "\n" + strings.Join(rows, "\n")
	}
	return strings.Join(rows, "\n") + "\n" + legend
}

func renderLegend(spec ui.ChartSpec) string {
	values, total := normalized(spec)
	items := make([]string, 0, len(spec.Slices))
	for i, sl := range spec.Slices {
		share := 0.0
		if total > 0 {
			share = values[i] / total * 100
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(sl.Color)).Render("■")
		items = append(items, swatch+" "+sl.Label+" "+ui.FormatMoney(sl.Value)+" "+mutedStyle.Render(ui.FormatRate(share)))
	}
	return strings.Join(items, "   ")
}

func barThickness(cutout float64) int {
	if math.IsNaN(cutout) || cutout < 0 || cutout >= 1 {
		cutout = 0
	}
	return max(1, int(math.Ceil(float64(barRows)*(1-cutout))))
}

// normalized scales the slice values by the largest one so sums of huge
// amounts cannot overflow. Non-finite and negative values count as zero.
func normalized(spec ui.ChartSpec) ([]float64, float64) {
	values := make([]float64, len(spec.Slices))
	var peak float64
	for i, sl := range spec.Slices {
		if sl.Value > 0 && !math.IsInf(sl.Value, 0) {
			values[i] = sl.Value
			peak = max(peak, sl.Value)
		}
	}
	if peak == 0 {
		return values, 0
	}
	var total float64
	for i := range values {
		values[i] /= peak
		total += values[i]
	}
	return values, total
}

// barWidths splits width cells between the slices in proportion to their
// values using largest remainders, so the cells always add up to width when
// anything is non-zero.
func barWidths(spec ui.ChartSpec, width int) []int {
	out := make([]int, len(spec.Slices))
	if width <= 0 {
		return out
	}

	values, total := normalized(spec)
	if total == 0 {
		return out
	}

	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, 0, len(values))
	used := 0
	for i, v := range values {
		exact := v / total * float64(width)
		out[i] = min(max(int(exact), 0), width-used)
		used += out[i]
		rems = append(rems, rem{i, exact - float64(out[i])})
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; used < width && i < len(rems); i++ {
		out[rems[i].idx]++
		used++
	}
	return out
}
