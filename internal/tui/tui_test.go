package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/napolitain/idlekeep/internal/game"
	"github.com/napolitain/idlekeep/internal/loader"
)

func testModel(t *testing.T) Model {
	t.Helper()
	defs, err := loader.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	g, err := game.New(defs)
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	return New(g)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestEnterConstructsSelectedBuilding(t *testing.T) {
	m := press(t, testModel(t), "enter")
	if got := m.game.Buildings().Count("farm"); got != 1 {
		t.Fatalf("farm count = %d, want 1", got)
	}
	if !strings.Contains(m.status, "built farm") {
		t.Errorf("status = %q", m.status)
	}

	m = press(t, m, "down", "enter")
	if got := m.game.Buildings().Count("woodcutter"); got != 1 {
		t.Errorf("woodcutter count = %d, want 1", got)
	}
}

func TestCursorWraps(t *testing.T) {
	m := testModel(t)
	n := len(m.actions())
	m = press(t, m, "up")
	if m.cursor != n-1 {
		t.Errorf("cursor after up = %d, want %d", m.cursor, n-1)
	}
	m = press(t, m, "down")
	if m.cursor != 0 {
		t.Errorf("cursor after down = %d, want 0", m.cursor)
	}
}

func TestFramesAdvanceGame(t *testing.T) {
	m := testModel(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next, cmd := m.Update(frameMsg(start))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("frames should keep ticking")
	}
	next, _ = m.Update(frameMsg(start.Add(3 * time.Second)))
	m = next.(Model)
	if got := m.game.Clock().State().Tick; got != 3 {
		t.Errorf("tick = %d after 3s, want 3", got)
	}

	m = press(t, m, "p")
	next, _ = m.Update(frameMsg(start.Add(10 * time.Second)))
	m = next.(Model)
	if got := m.game.Clock().State().Tick; got != 3 {
		t.Errorf("tick = %d while paused, want 3", got)
	}
}

func TestQuit(t *testing.T) {
	m := testModel(t)
	next, cmd := m.Update(key("q"))
	m = next.(Model)
	if !m.quitting || cmd == nil {
		t.Fatal("q should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestViewListsVisibleContent(t *testing.T) {
	out := testModel(t).View()
	for _, want := range []string{"Food", "Farm", "Woodcutter"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(out, "Market") {
		t.Error("locked market should not be listed")
	}
}
