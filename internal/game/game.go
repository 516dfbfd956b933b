// Package game wires the ledger, registries, rate calculator and clock into a
// single tick-driven economy. A Game has exactly one caller at a time.
package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/napolitain/idlekeep/internal/clock"
	"github.com/napolitain/idlekeep/internal/economy"
	"github.com/napolitain/idlekeep/internal/models"
)

// Game is the composition root of one running economy
type Game struct {
	defs      *models.Definitions
	settings  models.Settings
	catalog   *economy.Catalog
	ledger    *economy.Ledger
	buildings *economy.Buildings
	upgrades  *economy.Upgrades
	rates     *economy.Rates
	clock     *clock.Clock
	seasonal  *clock.Seasonal

	session   string
	lastSave  time.Time
	listeners []Listener
	vis       visibility
}

// New builds a game from validated definitions. Every subsystem is created
// once here and handed its collaborators explicitly.
func New(defs *models.Definitions) (*Game, error) {
	catalog, err := economy.NewCatalog(defs)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	ledger := economy.NewLedger(catalog)
	buildings := economy.NewBuildings(catalog, ledger)
	upgrades := economy.NewUpgrades(catalog, ledger, buildings)
	clk := clock.New(clock.ConfigFromSettings(defs.Settings))

	g := &Game{
		defs:      defs,
		settings:  defs.Settings,
		catalog:   catalog,
		ledger:    ledger,
		buildings: buildings,
		upgrades:  upgrades,
		rates:     economy.NewRates(catalog, ledger, buildings, upgrades),
		clock:     clk,
		seasonal:  clock.NewSeasonal(clk, defs.Settings.Seasonal),
		session:   uuid.NewString(),
	}
	g.buildings.PushCapacities(g.upgrades)
	g.vis = g.captureVisibility()
	return g, nil
}

// Tick advances the economy by one step: capacities are recomputed, net rates
// applied, the clock advanced and listeners notified.
func (g *Game) Tick() {
	g.tick(true)
}

func (g *Game) tick(notify bool) {
	g.buildings.PushCapacities(g.upgrades)
	g.rates.Apply(g.settings.TickSeconds, g.seasonal)
	tr := g.clock.Advance()
	changed := g.refreshVisibility()

	if tr.NewSeason {
		slog.Debug("season changed",
			"season", g.clock.State().Season.String(),
			"year", g.clock.State().Year,
			"weather", g.clock.ExposedWeather().String())
	}
	if notify {
		g.emit(Event{Kind: EventTick, Transition: tr, VisibilityChanged: changed})
	}
}

// Construct builds one unit of a building
func (g *Game) Construct(id models.BuildingID) error {
	cost := g.buildings.Cost(id)
	if err := g.buildings.Construct(id); err != nil {
		return fmt.Errorf("construct %s: %w", id, err)
	}
	slog.Debug("building constructed", "building", id, "count", g.buildings.Count(id), "cost", cost)
	changed := g.refreshVisibility()
	g.emit(Event{Kind: EventConstructed, Subject: string(id), VisibilityChanged: changed})
	return nil
}

// Purchase buys an upgrade
func (g *Game) Purchase(id models.UpgradeID) error {
	if err := g.upgrades.Purchase(id); err != nil {
		return fmt.Errorf("purchase %s: %w", id, err)
	}
	slog.Debug("upgrade purchased", "upgrade", id)
	changed := g.refreshVisibility()
	g.emit(Event{Kind: EventPurchased, Subject: string(id), VisibilityChanged: changed})
	return nil
}

// CanAffordBuilding reports whether the next unit of a building is affordable
func (g *Game) CanAffordBuilding(id models.BuildingID) bool {
	if _, ok := g.catalog.Building(id); !ok {
		return false
	}
	return g.ledger.CanAfford(g.buildings.Cost(id))
}

// CanAffordUpgrade reports whether an upgrade is affordable
func (g *Game) CanAffordUpgrade(id models.UpgradeID) bool {
	if _, ok := g.catalog.Upgrade(id); !ok {
		return false
	}
	return g.ledger.CanAfford(g.upgrades.Cost(id))
}

// BuildingCost returns the price of the next unit of a building
func (g *Game) BuildingCost(id models.BuildingID) models.Costs {
	return g.buildings.Cost(id)
}

// NetRate returns the current per-second net rate of a resource
func (g *Game) NetRate(id models.ResourceID) float64 {
	return g.rates.Net(id, g.seasonal)
}

// Reset restores every subsystem to the catalog defaults
func (g *Game) Reset() {
	g.ledger.Reset()
	g.buildings.Reset()
	g.upgrades.Reset()
	g.clock.Reset()
	g.buildings.PushCapacities(g.upgrades)
	g.session = uuid.NewString()
	g.lastSave = time.Time{}
	g.vis = g.captureVisibility()
	slog.Info("game reset", "session", g.session)
	g.emit(Event{Kind: EventReset, VisibilityChanged: true})
}

// CatchUp replays the ticks that fit in elapsed, capped at the configured
// maximum offline duration, and returns how many ran. A zero maximum disables
// offline progress. Replayed ticks are the same ticks an online session runs;
// listeners get one EventCatchUp.
func (g *Game) CatchUp(elapsed time.Duration) int {
	interval := g.settings.TickInterval()
	limit := g.settings.MaxOffline()
	if elapsed <= 0 || interval <= 0 || limit <= 0 {
		return 0
	}
	if elapsed > limit {
		slog.Info("offline time capped", "elapsed", elapsed, "max", limit)
		elapsed = limit
	}

	n := int(elapsed / interval)
	for i := 0; i < n; i++ {
		g.tick(false)
	}
	if n > 0 {
		slog.Info("offline progress applied", "ticks", n, "elapsed", elapsed)
		g.emit(Event{Kind: EventCatchUp, Ticks: n, VisibilityChanged: true})
	}
	return n
}

// Definitions returns the static content the game was built from
func (g *Game) Definitions() *models.Definitions { return g.defs }

// Settings returns the simulation tunables
func (g *Game) Settings() models.Settings { return g.settings }

// Ledger returns the resource ledger
func (g *Game) Ledger() *economy.Ledger { return g.ledger }

// Buildings returns the building registry
func (g *Game) Buildings() *economy.Buildings { return g.buildings }

// Upgrades returns the upgrade registry
func (g *Game) Upgrades() *economy.Upgrades { return g.upgrades }

// Rates returns the rate calculator
func (g *Game) Rates() *economy.Rates { return g.rates }

// Clock returns the time state machine
func (g *Game) Clock() *clock.Clock { return g.clock }

// Seasonal returns the seasonal production modifier
func (g *Game) Seasonal() *clock.Seasonal { return g.seasonal }

// Session returns the save lineage ID, renewed on Reset
func (g *Game) Session() string { return g.session }

// LastSave returns when the game was last snapshotted
func (g *Game) LastSave() time.Time { return g.lastSave }
