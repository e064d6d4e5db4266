package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"payroll-engine/internal/model"
	"payroll-engine/internal/ui"
)

// Focus targets in tab order.
const (
	focusMode = iota
	focusAmount
	focusCumBase
	focusEmployee
	focusYear
	focusCount
)

var employeeTypes = []string{"normal_4a", "emekli_sgdp"}

var employeeLabels = map[string]string{
	"normal_4a":   "Employee (4a)",
	"emekli_sgdp": "Retired (SGDP)",
}

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Left     key.Binding
	Right    key.Binding
	Gross    key.Binding
	Net      key.Binding
	Employee key.Binding
	Submit   key.Binding
	Dismiss  key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		Left:     key.NewBinding(key.WithKeys("left")),
		Right:    key.NewBinding(key.WithKeys("right")),
		Gross:    key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "gross → net")),
		Net:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "net → gross")),
		Employee: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "employee type")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "calculate")),
		Dismiss:  key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "dismiss")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Next, k.Gross, k.Net, k.Employee, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Next, k.Prev}, {k.Gross, k.Net, k.Employee, k.Quit}}
}

// submitDoneMsg reports that a submission finished. The page already holds
// its outcome.
type submitDoneMsg struct {
	err error
}

// Model is the bubbletea program for the calculator page.
type Model struct {
	core *Core
	keys keyMap
	help help.Model

	amount  textinput.Model
	cumBase textinput.Model
	year    textinput.Model

	employee int
	focus    int
	spinner  spinner.Model

	width  int
	height int
}

// FormDefaults seeds the inputs.
type FormDefaults struct {
	EmployeeType string
	Year         string
}

func NewModel(core *Core, defaults FormDefaults) Model {
	newInput := func(placeholder string, limit int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		ti.Prompt = ""
		return ti
	}

	m := Model{
		core:    core,
		keys:    defaultKeys(),
		help:    help.New(),
		amount:  newInput("50.000,00", 20),
		cumBase: newInput("0", 20),
		year:    newInput("2026", 4),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		focus:   focusAmount,
	}
	m.year.SetValue(defaults.Year)
	for i, et := range employeeTypes {
		if et == defaults.EmployeeType {
			m.employee = i
		}
	}
	m.amount.Focus()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.core.Page.SetWidth(msg.Width)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitDoneMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// an open alert blocks everything else
	if m.core.Page.snapshot().alert != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			m.core.Page.DismissAlert()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case key.Matches(msg, m.keys.Gross):
		m.core.Modes.Select(ui.GrossToNet)
		return m, nil
	case key.Matches(msg, m.keys.Net):
		m.core.Modes.Select(ui.NetToGross)
		return m, nil
	case key.Matches(msg, m.keys.Employee):
		m.toggleEmployee()
		return m, nil
	}

	switch m.focus {
	case focusMode:
		switch {
		case key.Matches(msg, m.keys.Left):
			m.core.Modes.Select(ui.GrossToNet)
		case key.Matches(msg, m.keys.Right):
			m.core.Modes.Select(ui.NetToGross)
		}
		return m, nil
	case focusEmployee:
		if key.Matches(msg, m.keys.Left, m.keys.Right) || msg.Type == tea.KeySpace {
			m.toggleEmployee()
		}
		return m, nil
	}
	return m.updateFocused(msg)
}

func (m *Model) toggleEmployee() {
	m.employee = (m.employee + 1) % len(employeeTypes)
}

func (m *Model) setFocus(f int) tea.Cmd {
	m.focus = f
	m.amount.Blur()
	m.cumBase.Blur()
	m.year.Blur()
	if in := m.input(f); in != nil {
		return in.Focus()
	}
	return nil
}

func (m *Model) input(f int) *textinput.Model {
	switch f {
	case focusAmount:
		return &m.amount
	case focusCumBase:
		return &m.cumBase
	case focusYear:
		return &m.year
	}
	return nil
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	in := m.input(m.focus)
	if in == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return m, cmd
}

// Form is the flat name/value snapshot submitted to the controller.
func (m Model) Form() ui.FormSnapshot {
	return ui.FormSnapshot{
		model.InputMode:         m.core.Page.snapshot().modeField,
		model.InputAmount:       strings.TrimSpace(m.amount.Value()),
		model.InputCumBase:      strings.TrimSpace(m.cumBase.Value()),
		model.InputEmployeeType: employeeTypes[m.employee],
		model.InputYear:         strings.TrimSpace(m.year.Value()),
	}
}

func (m Model) submit() tea.Cmd {
	form := m.Form()
	core := m.core
	return func() tea.Msg {
		return submitDoneMsg{err: core.Submit(context.Background(), form)}
	}
}

func (m Model) View() string {
	st := m.core.Page.snapshot()

	if st.alert != "" {
		box := alertStyle.Render(st.alert + "\n\n" + mutedStyle.Render("enter to dismiss"))
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
		}
		return box
	}

	form := m.renderForm(st)
	results := renderResults(st, m.chartWidth())

	sections := []string{title(), form, results}
	if st.resultsFirst {
		sections = []string{title(), results, form}
	}
	sections = append(sections, m.help.View(m.keys))
	return strings.Join(sections, "\n\n")
}

func (m Model) chartWidth() int {
	if m.width == 0 {
		return 60
	}
	return m.width - 2
}

func (m Model) renderForm(st pageState) string {
	field := func(f int, label, value string) string {
		l := labelStyle.Render(label)
		if m.focus == f {
			l = focusedStyle.Width(labelWidth).Render(label)
		}
		return l + value
	}

	modes := renderModes(st)
	if m.focus == focusMode {
		modes = focusedStyle.Render("› ") + modes
	}

	employee := make([]string, len(employeeTypes))
	for i, et := range employeeTypes {
		label := employeeLabels[et]
		if i == m.employee {
			employee[i] = focusedStyle.Render("(•) " + label)
		} else {
			employee[i] = mutedStyle.Render("( ) " + label)
		}
	}

	submit := focusedStyle.Render("[ Calculate ]")
	if st.busy {
		submit = m.spinner.View() + " Calculating..."
	}

	return strings.Join([]string{
		modes,
		field(focusAmount, st.amountLabel, m.amount.View()),
		field(focusCumBase, "Cumulative tax base", m.cumBase.View()),
		field(focusEmployee, "Employee type", strings.Join(employee, "  ")),
		field(focusYear, "Year", m.year.View()),
		submit,
	}, "\n")
}
