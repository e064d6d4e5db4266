package tui

import (
	"sync"

	"payroll-engine/internal/ui"
)

// Page is the terminal rendition of the calculator page. The presentation
// core writes to it from the submit goroutine while the bubbletea loop reads
// it, so all state sits behind one mutex.
type Page struct {
	mu sync.Mutex

	active      map[ui.Mode]bool
	modeField   string
	amountLabel string

	busy          bool
	resultVisible bool
	emptyVisible  bool
	resultsFirst  bool
	width         int
	alerts        []string

	slots map[ui.Slot]string

	chart    *termChart
	attached int
}

var (
	_ ui.ModeView     = (*Page)(nil)
	_ ui.SubmitView   = (*Page)(nil)
	_ ui.SlotWriter   = (*Page)(nil)
	_ ui.ChartFactory = (*Page)(nil)
)

// NewPage returns a page showing initial as the selected mode and the empty
// state in place of results.
func NewPage(initial ui.Mode) *Page {
	return &Page{
		active:       map[ui.Mode]bool{initial: true},
		modeField:    initial.String(),
		amountLabel:  initial.AmountLabel(),
		emptyVisible: true,
		slots:        make(map[ui.Slot]string),
	}
}

func (p *Page) ResetModeControl(m ui.Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active[m] = false
}

func (p *Page) ActivateModeControl(m ui.Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active[m] = true
}

func (p *Page) SetModeField(value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modeField = value
}

func (p *Page) SetAmountLabel(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.amountLabel = label
}

func (p *Page) SetSubmitBusy(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = busy
	if busy {
		p.resultsFirst = false
	}
}

func (p *Page) ShowResultPanel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resultVisible = true
}

func (p *Page) HideEmptyState() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emptyVisible = false
}

func (p *Page) ViewportWidth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width
}

// ScrollToResults moves the result panel above the form until the next submit.
func (p *Page) ScrollToResults() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resultsFirst = true
}

// Alert queues a message. The model shows the oldest one as a blocking overlay.
func (p *Page) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, message)
}

func (p *Page) SetText(slot ui.Slot, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slots[slot] = text
}

// NewChart attaches a chart to the page canvas.
func (p *Page) NewChart(spec ui.ChartSpec) ui.Chart {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := &termChart{page: p, spec: spec}
	p.chart = c
	p.attached++
	return c
}

// SetWidth records the terminal width.
func (p *Page) SetWidth(w int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width = w
}

// DismissAlert drops the oldest pending alert.
func (p *Page) DismissAlert() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.alerts) > 0 {
		p.alerts = p.alerts[1:]
	}
}

// Alerts returns the pending alerts, oldest first.
func (p *Page) Alerts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.alerts...)
}

// AttachedCharts counts chart instances currently drawn on the canvas.
func (p *Page) AttachedCharts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attached
}

// pageState is a copy of the page taken under the lock for rendering.
type pageState struct {
	active      map[ui.Mode]bool
	modeField   string
	amountLabel string

	busy          bool
	resultVisible bool
	emptyVisible  bool
	resultsFirst  bool
	width         int
	alert         string

	slots map[ui.Slot]string
	chart *ui.ChartSpec
}

func (p *Page) snapshot() pageState {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := pageState{
		active:        make(map[ui.Mode]bool, len(p.active)),
		modeField:     p.modeField,
		amountLabel:   p.amountLabel,
		busy:          p.busy,
		resultVisible: p.resultVisible,
		emptyVisible:  p.emptyVisible,
		resultsFirst:  p.resultsFirst,
		width:         p.width,
		slots:         make(map[ui.Slot]string, len(p.slots)),
	}
	for k, v := range p.active {
		st.active[k] = v
	}
	for k, v := range p.slots {
		st.slots[k] = v
	}
	if len(p.alerts) > 0 {
		st.alert = p.alerts[0]
	}
	if p.chart != nil {
		spec := p.chart.spec
		st.chart = &spec
	}
	return st
}

// termChart is one chart instance drawn on a Page.
type termChart struct {
	page      *Page
	spec      ui.ChartSpec
	destroyed bool
}

func (c *termChart) Destroy() {
	p := c.page
	p.mu.Lock()
	defer p.mu.Unlock()
	if c.destroyed {
		return
	}
	c.destroyed = true
	p.attached--
	if p.chart == c {
		p.chart = nil
	}
}
