package game

import (
	"log/slog"
	"slices"

	"github.com/napolitain/idlekeep/internal/clock"
	"github.com/napolitain/idlekeep/internal/economy"
)

// EventKind identifies what triggered a refresh
type EventKind string

const (
	EventTick        EventKind = "tick"
	EventConstructed EventKind = "constructed"
	EventPurchased   EventKind = "purchased"
	EventReset       EventKind = "reset"
	EventRestored    EventKind = "restored"
	EventCatchUp     EventKind = "catch_up"
)

// Event is delivered to listeners after the state change it describes
type Event struct {
	Kind              EventKind
	Subject           string // building or upgrade ID for actions
	Ticks             int    // ticks replayed, for EventCatchUp
	Transition        clock.Transition
	VisibilityChanged bool
}

// Listener receives refresh notifications
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(Event)

// OnEvent calls f(e)
func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Subscribe registers a listener. A nil listener is logged and ignored.
func (g *Game) Subscribe(l Listener) {
	if l == nil {
		slog.Warn("ignoring nil game listener")
		return
	}
	g.listeners = append(g.listeners, l)
}

func (g *Game) emit(e Event) {
	for _, l := range g.listeners {
		l.OnEvent(e)
	}
}

// visibility is the set of visible entities at the end of the last refresh
type visibility struct {
	resources []bool
	buildings []bool
	upgrades  []bool
}

func (g *Game) captureVisibility() visibility {
	defs := g.defs
	v := visibility{
		resources: make([]bool, len(defs.Resources)),
		buildings: make([]bool, len(defs.Buildings)),
		upgrades:  make([]bool, len(defs.Upgrades)),
	}
	for i, r := range defs.Resources {
		v.resources[i] = g.ledger.IsUnlocked(r.ID)
	}
	for i, b := range defs.Buildings {
		v.buildings[i] = g.buildings.Visible(b.ID)
	}
	for i, u := range defs.Upgrades {
		v.upgrades[i] = g.upgrades.Visible(u.ID) && !g.upgrades.IsPurchased(u.ID)
	}
	return v
}

// refreshVisibility re-evaluates every visibility predicate and reports
// whether any of them flipped since the last refresh
func (g *Game) refreshVisibility() bool {
	next := g.captureVisibility()
	changed := !slices.Equal(next.resources, g.vis.resources) ||
		!slices.Equal(next.buildings, g.vis.buildings) ||
		!slices.Equal(next.upgrades, g.vis.upgrades)
	g.vis = next
	return changed
}

var _ economy.SeasonalModifier = (*clock.Seasonal)(nil)
