package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/galaxysim/internal/pool"
	"github.com/san-kum/galaxysim/internal/sim"
	"github.com/san-kum/galaxysim/internal/units"
)

const (
	width           = 80
	height          = 24
	statsWidth      = 48
	historyCapacity = 600
	frameInterval   = time.Second / 30

	zoomFactor = 1.25
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives a simulator from the bubbletea frame loop: one step per
// tick while running, one frame per render.
type Model struct {
	sim   *sim.Simulator
	frame *Frame

	view       View
	zoom       float64
	area       float64
	running    bool
	showBounds bool
	showHelp   bool
	done       bool
	err        error

	died        int
	stepTime    time.Duration
	liveHistory []float64
}

// NewModel wraps s. The caller owns s and closes it once the program
// exits.
func NewModel(s *sim.Simulator) Model {
	cfg := s.Config()
	view, err := ParseView(cfg.Render.View)
	if err != nil {
		view = ViewDefault
	}
	return Model{
		sim:         s,
		frame:       NewFrame(width, height),
		view:        view,
		zoom:        cfg.Render.Zoom,
		area:        cfg.AreaMeters(),
		running:     true,
		liveHistory: []float64{float64(s.LiveCount())},
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles keys and window resizes and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "v":
			m.view = m.view.Next()
		case "+", "=":
			m.zoom *= zoomFactor
		case "-", "_":
			m.zoom /= zoomFactor
			if m.zoom < 1 {
				m.zoom = 1
			}
		case "b":
			m.showBounds = !m.showBounds
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := msg.Width - statsWidth - 6
		h := msg.Height - 3
		if w > 0 && h > 0 {
			m.frame = NewFrame(w, h)
		}
	case TickMsg:
		if m.running && !m.done {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	start := time.Now()
	r, err := m.sim.Step(context.Background())
	m.stepTime = time.Since(start)

	switch {
	case errors.Is(err, sim.ErrExtinct):
		m.done = true
		return
	case err != nil:
		m.err = err
		m.done = true
		return
	}

	m.died += r.Died
	m.liveHistory = append(m.liveHistory, float64(r.Live))
	if len(m.liveHistory) > historyCapacity {
		m.liveHistory = m.liveHistory[len(m.liveHistory)-historyCapacity:]
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return statusDone.Render("ERROR")
	case m.done:
		return statusDone.Render("NO STARS LEFT")
	case !m.running:
		return statusPaused.Render("PAUSED")
	default:
		return statusRunning.Render("RUNNING")
	}
}

func (m Model) View() string {
	center := m.sim.MassCenter()
	m.frame.Draw(m.sim.Live(), center, m.view, m.zoom, m.area)
	if m.showBounds {
		m.frame.DrawBounds(m.sim.Block().Center().Sub(center), m.view, m.zoom, m.area)
	}
	canvasView := canvasStyle.Render(m.frame.Render())

	var s strings.Builder
	s.WriteString(headerStyle.Render("GALAXY") + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.liveHistory) > 1 {
		chart := asciigraph.Plot(m.liveHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Live stars"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(row("Step", fmt.Sprintf("%d", m.sim.StepCount())))
	s.WriteString(row("Time", fmt.Sprintf("%.4g yr", m.sim.Time()/units.Year)))
	s.WriteString(row("Live", fmt.Sprintf("%d", m.sim.LiveCount())))
	s.WriteString(row("Died", fmt.Sprintf("%d", m.died)))
	s.WriteString(row("Drawn", fmt.Sprintf("%d", m.frame.Drawn)))
	s.WriteString(row("View", m.view.String()))
	s.WriteString(row("Zoom", fmt.Sprintf("%.0f", m.zoom)))
	s.WriteString(row("Tree nodes", fmt.Sprintf("%d", m.sim.Block().Nodes())))
	s.WriteString(row("Workers", workerSummary(m.sim.PoolStates())))
	s.WriteString(row("Step time", m.stepTime.Round(time.Microsecond).String()))
	if m.err != nil {
		s.WriteString("\n" + statusDone.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render(Separator(30) + "\nSP:Pause V:View +/-:Zoom\nB:Bounds ?:Help Q:Quit"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  V        - Cycle view               ║
║  + / -    - Zoom in / out            ║
║  B        - Toggle volume outline    ║
║  Q / Esc  - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n" + mainView
	}
	return mainView
}

// workerSummary counts the pool slots per state, e.g. "4 (3 completed, 1 assigned)".
func workerSummary(states []pool.State) string {
	counts := map[pool.State]int{}
	for _, st := range states {
		counts[st]++
	}

	var parts []string
	for _, st := range []pool.State{pool.Completed, pool.Assigned, pool.Idle} {
		if counts[st] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[st], st))
		}
	}
	return fmt.Sprintf("%d (%s)", len(states), strings.Join(parts, ", "))
}

func (m Model) Running() bool       { return m.running }
func (m Model) Done() bool          { return m.done }
func (m Model) Err() error          { return m.err }
func (m Model) CurrentView() View   { return m.view }
func (m Model) Zoom() float64       { return m.zoom }
func (m Model) History() []float64  { return m.liveHistory }
func (m Model) Frame() *Frame       { return m.frame }
func (m Model) Sim() *sim.Simulator { return m.sim }
