// Package tui is the terminal frontend: a bubbletea model that ticks the game
// in real time and lets the player construct buildings and buy upgrades.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/napolitain/idlekeep/internal/advisor"
	"github.com/napolitain/idlekeep/internal/engine"
	"github.com/napolitain/idlekeep/internal/game"
	"github.com/napolitain/idlekeep/internal/models"
)

const frame = 100 * time.Millisecond

var (
	title      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	header     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	dim        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	good       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	bad        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	selected   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	rule       = dim.Render(strings.Repeat("-", 48))
	speedSteps = []float64{0, 1, 2, 5, 10}
)

type frameMsg time.Time

// action is one selectable row: a building or an upgrade
type action struct {
	building models.BuildingID
	upgrade  models.UpgradeID
}

// Model is the bubbletea model for a running game
type Model struct {
	game   *game.Game
	engine *engine.Engine

	cursor   int
	speedIdx int
	auto     bool
	status   string
	last     time.Time
	quitting bool
}

// New creates a model driving g at its configured tick interval
func New(g *game.Game) Model {
	return Model{
		game:     g,
		engine:   engine.New(g, g.Settings().TickInterval()),
		speedIdx: 1,
	}
}

func tickFrame() tea.Cmd {
	return tea.Tick(frame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tickFrame()
}

func (m Model) actions() []action {
	var out []action
	for _, b := range m.game.VisibleBuildings() {
		out = append(out, action{building: b.ID})
	}
	for _, u := range m.game.VisibleUpgrades() {
		out = append(out, action{upgrade: u.ID})
	}
	return out
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		now := time.Time(msg)
		if !m.last.IsZero() {
			m.engine.Advance(now.Sub(m.last))
		}
		m.last = now
		if m.auto {
			if c, ok, err := advisor.Step(m.game); err != nil {
				m.status = err.Error()
			} else if ok {
				m.status = "auto: " + c.String()
			}
		}
		return m, tickFrame()

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.actions())
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if n > 0 {
			m.cursor = (m.cursor + n - 1) % n
		}
	case "down", "j":
		if n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case "enter", " ":
		m.status = m.act()
	case "a":
		m.auto = !m.auto
		m.status = fmt.Sprintf("autoplay %s", onOff(m.auto))
	case "+", "=":
		if m.speedIdx < len(speedSteps)-1 {
			m.speedIdx++
		}
		m.engine.Speed = speedSteps[m.speedIdx]
	case "-":
		if m.speedIdx > 0 {
			m.speedIdx--
		}
		m.engine.Speed = speedSteps[m.speedIdx]
	case "p":
		if m.engine.Speed > 0 {
			m.engine.Speed = 0
			m.status = "paused"
		} else {
			m.engine.Speed = speedSteps[max(m.speedIdx, 1)]
			m.status = "resumed"
		}
	}
	return m, nil
}

// act constructs or purchases the selected row and returns a status line
func (m *Model) act() string {
	actions := m.actions()
	if len(actions) == 0 {
		return ""
	}
	if m.cursor >= len(actions) {
		m.cursor = len(actions) - 1
	}
	a := actions[m.cursor]
	if a.building != "" {
		if err := m.game.Construct(a.building); err != nil {
			return err.Error()
		}
		return fmt.Sprintf("built %s (%d)", a.building, m.game.Buildings().Count(a.building))
	}
	if err := m.game.Purchase(a.upgrade); err != nil {
		return err.Error()
	}
	// the list shrank; keep the cursor in range
	if m.cursor >= len(actions)-1 && m.cursor > 0 {
		m.cursor--
	}
	return fmt.Sprintf("purchased %s", a.upgrade)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	v := m.game.View()
	var b strings.Builder

	b.WriteString(title.Render("IDLEKEEP") + "  " + dim.Render(v.Time.Label))
	if v.Time.WeatherVisible {
		b.WriteString(dim.Render("  weather: " + v.Time.Weather))
	}
	b.WriteString("\n" + rule + "\n")

	b.WriteString(header.Render("Resources") + "\n")
	for _, r := range v.Resources {
		amount := fmt.Sprintf("%.1f", r.Amount)
		if r.HasCapacity {
			amount += fmt.Sprintf(" / %.0f", r.Capacity)
		}
		b.WriteString(fmt.Sprintf("  %-12s %-16s %s\n", r.Name, amount, rate(r.Net)))
	}

	row := 0
	line := func(label, cost string, affordable bool) {
		cursor := "  "
		if row == m.cursor {
			cursor = "> "
			label = selected.Render(label)
		}
		costStyle := bad
		if affordable {
			costStyle = good
		}
		b.WriteString(fmt.Sprintf("%s%-28s %s\n", cursor, label, costStyle.Render(cost)))
		row++
	}

	b.WriteString("\n" + header.Render("Buildings") + "\n")
	for _, bv := range v.Buildings {
		line(fmt.Sprintf("%s (%d)", bv.Name, bv.Count), formatCosts(bv.Cost), bv.Affordable)
	}
	if len(v.Upgrades) > 0 {
		b.WriteString("\n" + header.Render("Upgrades") + "\n")
		for _, u := range v.Upgrades {
			line(u.Name, formatCosts(u.Cost), u.Affordable)
		}
	}

	b.WriteString("\n" + rule + "\n")
	b.WriteString(dim.Render(fmt.Sprintf("speed x%g  autoplay %s", m.engine.Speed, onOff(m.auto))) + "\n")
	b.WriteString(dim.Render("↑/↓ move, enter build/buy, a autoplay, +/- speed, p pause, q save and quit") + "\n")
	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	return b.String()
}

func rate(net float64) string {
	switch {
	case net > 0:
		return good.Render(fmt.Sprintf("+%.2f/s", net))
	case net < 0:
		return bad.Render(fmt.Sprintf("%.2f/s", net))
	}
	return dim.Render("0/s")
}

func formatCosts(c models.Costs) string {
	parts := make([]string, 0, len(c))
	for _, id := range c.Resources() {
		parts = append(parts, fmt.Sprintf("%s %.0f", id, c[id]))
	}
	return strings.Join(parts, ", ")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
