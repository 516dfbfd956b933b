package game

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/napolitain/idlekeep/internal/economy"
	"github.com/napolitain/idlekeep/internal/loader"
	"github.com/napolitain/idlekeep/internal/models"
)

func newTestGame(t testing.TB, tweak func(*models.Definitions)) *Game {
	t.Helper()
	defs, err := loader.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	// short days and seasons so a few hundred ticks cross weather rolls
	defs.Settings.TicksPerDay = 3
	defs.Settings.DaysPerSeason = 4
	defs.Settings.WeatherStartYear = 1
	defs.Settings.Seed = 1234
	if tweak != nil {
		tweak(defs)
	}
	g, err := New(defs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func seedEconomy(g *Game) {
	g.Buildings().Restore("farm", 6, true)
	g.Buildings().Restore("woodcutter", 4, true)
	g.Buildings().Restore("quarry", 2, true)
	g.Buildings().Restore("granary", 1, true)
	g.Upgrades().Restore("crop_rotation", true, true)
}

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// TestOfflineCatchUpMatchesOnline verifies that resuming a saved game after T
// seconds ends in exactly the state of T online ticks
func TestOfflineCatchUpMatchesOnline(t *testing.T) {
	const ticks = 500

	online := newTestGame(t, nil)
	seedEconomy(online)
	snap := online.Snapshot(epoch)

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var loaded Snapshot
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	offline := newTestGame(t, nil)
	n := offline.Resume(loaded, epoch.Add(ticks*time.Second))
	if n != ticks {
		t.Fatalf("Resume replayed %d ticks, want %d", n, ticks)
	}

	for i := 0; i < ticks; i++ {
		online.Tick()
	}

	end := epoch.Add(time.Hour)
	want := online.Snapshot(end)
	got := offline.Snapshot(end)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("offline state differs from online state\n got: %+v\nwant: %+v", got, want)
	}
	if want.Time.Year == 0 {
		t.Errorf("test should cross a year boundary, time = %+v", want.Time)
	}
}

func TestCatchUpCappedAtMaxOffline(t *testing.T) {
	g := newTestGame(t, func(d *models.Definitions) {
		d.Settings.MaxOfflineHours = 0.01 // 36 seconds
	})
	if n := g.CatchUp(time.Hour); n != 36 {
		t.Errorf("CatchUp(1h) = %d ticks, want 36", n)
	}
	if n := g.CatchUp(-time.Minute); n != 0 {
		t.Errorf("CatchUp(negative) = %d ticks, want 0", n)
	}
	if n := g.CatchUp(1500 * time.Millisecond); n != 1 {
		t.Errorf("CatchUp(1.5s) = %d ticks, want 1", n)
	}
}

func TestCatchUpDisabledByZeroMaxOffline(t *testing.T) {
	g := newTestGame(t, func(d *models.Definitions) {
		d.Settings.MaxOfflineHours = 0
	})
	seedEconomy(g)
	before := g.Snapshot(epoch)
	if n := g.CatchUp(time.Hour); n != 0 {
		t.Errorf("CatchUp(1h) = %d ticks, want 0", n)
	}
	if got := g.Clock().State().Tick; got != 0 {
		t.Errorf("tick = %d, want 0", got)
	}
	if after := g.Snapshot(epoch); !reflect.DeepEqual(before.Resources, after.Resources) {
		t.Error("resources changed without offline progress")
	}
}

func TestTickNotifiesListeners(t *testing.T) {
	g := newTestGame(t, nil)
	var events []Event
	g.Subscribe(ListenerFunc(func(e Event) { events = append(events, e) }))
	g.Subscribe(nil)

	g.Tick()
	if len(events) != 1 || events[0].Kind != EventTick {
		t.Fatalf("events after one tick = %+v", events)
	}

	g.Ledger().Add("wood", 50)
	if err := g.Construct("farm"); err != nil {
		t.Fatalf("Construct farm: %v", err)
	}
	last := events[len(events)-1]
	if last.Kind != EventConstructed || last.Subject != "farm" {
		t.Errorf("last event = %+v, want constructed farm", last)
	}

	g.CatchUp(10 * time.Second)
	last = events[len(events)-1]
	if last.Kind != EventCatchUp || last.Ticks != 10 {
		t.Errorf("last event = %+v, want catch_up of 10 ticks", last)
	}
	if len(events) != 3 {
		t.Errorf("catch-up should notify once, got %d events", len(events))
	}
}

func TestConstructErrorsWrapSentinels(t *testing.T) {
	g := newTestGame(t, nil)
	if err := g.Construct("market"); !errors.Is(err, economy.ErrBuildingLocked) {
		t.Errorf("Construct(market) = %v, want ErrBuildingLocked", err)
	}
	if err := g.Construct("castle"); !errors.Is(err, economy.ErrUnknownBuilding) {
		t.Errorf("Construct(castle) = %v, want ErrUnknownBuilding", err)
	}
	if err := g.Purchase("iron_axes"); !errors.Is(err, economy.ErrUpgradeHidden) {
		t.Errorf("Purchase(iron_axes) = %v, want ErrUpgradeHidden", err)
	}
	if g.CanAffordBuilding("castle") || g.CanAffordUpgrade("ghost") {
		t.Error("unknown entities are never affordable")
	}
}

func TestVisibleUpgradesExcludePurchased(t *testing.T) {
	g := newTestGame(t, nil)
	g.Buildings().Restore("woodcutter", 3, true)
	g.Ledger().Add("wood", 50)
	g.Ledger().Add("stone", 20)

	if !containsUpgrade(g.VisibleUpgrades(), "iron_axes") {
		t.Fatal("iron_axes should be visible with three woodcutters")
	}
	if err := g.Purchase("iron_axes"); err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if containsUpgrade(g.VisibleUpgrades(), "iron_axes") {
		t.Error("purchased upgrade still listed")
	}
}

func containsUpgrade(list []UpgradeView, id models.UpgradeID) bool {
	for _, u := range list {
		if u.ID == id {
			return true
		}
	}
	return false
}

func TestVisibleResourcesFollowUnlocks(t *testing.T) {
	g := newTestGame(t, nil)
	for _, r := range g.VisibleResources() {
		if r.ID == "gold" {
			t.Fatal("gold starts hidden")
		}
	}
	g.Buildings().Restore("storehouse", 1, true)
	g.Ledger().SetCapacity("food", 200)
	g.Ledger().SetCapacity("wood", 200)
	g.Ledger().Add("food", 100)
	g.Ledger().Add("wood", 100)
	g.Ledger().Add("stone", 50)
	if err := g.Purchase("trade_charter"); err != nil {
		t.Fatalf("Purchase trade_charter: %v", err)
	}

	var gold *ResourceView
	for _, r := range g.VisibleResources() {
		if r.ID == "gold" {
			gold = &r
		}
	}
	if gold == nil {
		t.Fatal("gold should be visible after trade_charter")
	}
	if gold.HasCapacity || gold.Capacity != 0 {
		t.Errorf("gold view = %+v, want uncapped with zero capacity", *gold)
	}
	found := false
	for _, b := range g.VisibleBuildings() {
		found = found || b.ID == "market"
	}
	if !found {
		t.Error("market should be visible after trade_charter")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	g := newTestGame(t, nil)
	seedEconomy(g)
	for i := 0; i < 50; i++ {
		g.Tick()
	}
	session := g.Session()

	g.Reset()
	fresh := newTestGame(t, nil)
	got, want := g.Snapshot(epoch), fresh.Snapshot(epoch)
	got.Session, want.Session = "", ""
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reset state differs from a new game\n got: %+v\nwant: %+v", got, want)
	}
	if g.Session() == session {
		t.Error("reset should start a new session")
	}
}

func TestRestoreIgnoresUnknownIDs(t *testing.T) {
	g := newTestGame(t, nil)
	snap := g.Snapshot(epoch)
	snap.Resources = append(snap.Resources, ResourceSave{ID: "mana", Amount: 5})
	snap.Buildings = append(snap.Buildings, BuildingSave{ID: "tower", Count: 3})
	snap.Upgrades = append(snap.Upgrades, UpgradeSave{ID: "magic", Purchased: true})
	snap.Resources[0].Amount = 1e9 // clamped to capacity

	g.Restore(snap)
	if got := g.Ledger().Amount("food"); got != g.Ledger().Capacity("food") {
		t.Errorf("food = %v, want clamped to %v", got, g.Ledger().Capacity("food"))
	}
	if g.Ledger().Amount("mana") != 0 || g.Buildings().Count("tower") != 0 {
		t.Error("unknown IDs should not appear")
	}
}

func TestRestoreIntoNewlyCappedResource(t *testing.T) {
	old := newTestGame(t, nil)
	old.Ledger().Add("gold", 500)
	snap := old.Snapshot(epoch)

	g := newTestGame(t, func(d *models.Definitions) {
		for i := range d.Resources {
			if d.Resources[i].ID == "gold" {
				d.Resources[i].HasCapacity = true
				d.Resources[i].InitialCapacity = 1000
			}
		}
	})
	g.Restore(snap)
	if got := g.Ledger().Amount("gold"); got != 500 {
		t.Errorf("gold = %v, want 500", got)
	}
	if got := g.Ledger().Capacity("gold"); got != 1000 {
		t.Errorf("gold capacity = %v, want 1000", got)
	}
}

func TestZeroNetRateOnNewGame(t *testing.T) {
	g := newTestGame(t, nil)
	before := g.Snapshot(epoch)
	g.Tick()
	after := g.Snapshot(epoch)
	for i := range before.Resources {
		if before.Resources[i].Amount != after.Resources[i].Amount {
			t.Errorf("%s changed without buildings: %v -> %v",
				before.Resources[i].ID, before.Resources[i].Amount, after.Resources[i].Amount)
		}
		if g.NetRate(before.Resources[i].ID) != 0 {
			t.Errorf("%s net rate = %v, want 0", before.Resources[i].ID, g.NetRate(before.Resources[i].ID))
		}
	}
}

// TestDeterminism runs the same seeded game twice and compares end states
func TestDeterminism(t *testing.T) {
	var first Snapshot
	for i := 0; i < 20; i++ {
		g := newTestGame(t, nil)
		seedEconomy(g)
		for j := 0; j < 300; j++ {
			g.Tick()
		}
		snap := g.Snapshot(epoch)
		snap.Session = ""
		if i == 0 {
			first = snap
			continue
		}
		if !reflect.DeepEqual(snap, first) {
			t.Fatalf("iteration %d diverged", i)
		}
	}
}
