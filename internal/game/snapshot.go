package game

import (
	"log/slog"
	"time"

	"github.com/napolitain/idlekeep/internal/clock"
	"github.com/napolitain/idlekeep/internal/models"
)

// SnapshotVersion is bumped when the saved layout changes incompatibly
const SnapshotVersion = 1

// ResourceSave is the persisted state of one resource
type ResourceSave struct {
	ID       models.ResourceID `json:"id"`
	Amount   float64           `json:"amount"`
	Capacity float64           `json:"capacity"`
	Unlocked bool              `json:"unlocked"`
}

// BuildingSave is the persisted state of one building
type BuildingSave struct {
	ID       models.BuildingID `json:"id"`
	Count    int               `json:"count"`
	Unlocked bool              `json:"unlocked"`
}

// UpgradeSave is the persisted state of one upgrade
type UpgradeSave struct {
	ID        models.UpgradeID `json:"id"`
	Purchased bool             `json:"purchased"`
	Unlocked  bool             `json:"unlocked"`
}

// Snapshot is the complete mutable state of a game. Slices follow catalog
// order so the serialized form is stable.
type Snapshot struct {
	Version   int            `json:"version"`
	Session   string         `json:"session"`
	Seed      int64          `json:"seed"`
	Resources []ResourceSave `json:"resources"`
	Buildings []BuildingSave `json:"buildings"`
	Upgrades  []UpgradeSave  `json:"upgrades"`
	Time      clock.State    `json:"time"`
	LastSave  time.Time      `json:"last_save"`
}

// Snapshot captures the game state and records now as the save time
func (g *Game) Snapshot(now time.Time) Snapshot {
	g.lastSave = now
	snap := Snapshot{
		Version:   SnapshotVersion,
		Session:   g.session,
		Seed:      g.clock.Config().Seed,
		Resources: make([]ResourceSave, 0, len(g.defs.Resources)),
		Buildings: make([]BuildingSave, 0, len(g.defs.Buildings)),
		Upgrades:  make([]UpgradeSave, 0, len(g.defs.Upgrades)),
		Time:      g.clock.State(),
		LastSave:  now,
	}
	for _, r := range g.defs.Resources {
		rs := ResourceSave{ID: r.ID, Amount: g.ledger.Amount(r.ID), Unlocked: g.ledger.IsUnlocked(r.ID)}
		if r.HasCapacity {
			rs.Capacity = g.ledger.Capacity(r.ID)
		}
		snap.Resources = append(snap.Resources, rs)
	}
	for _, b := range g.defs.Buildings {
		snap.Buildings = append(snap.Buildings, BuildingSave{
			ID:       b.ID,
			Count:    g.buildings.Count(b.ID),
			Unlocked: g.buildings.IsUnlocked(b.ID),
		})
	}
	for _, u := range g.defs.Upgrades {
		snap.Upgrades = append(snap.Upgrades, UpgradeSave{
			ID:        u.ID,
			Purchased: g.upgrades.IsPurchased(u.ID),
			Unlocked:  g.upgrades.IsUnlocked(u.ID),
		})
	}
	return snap
}

// Restore resets the game and applies a snapshot on top. Entries for IDs the
// catalog no longer defines are skipped; entities missing from the snapshot
// keep their defaults.
func (g *Game) Restore(snap Snapshot) {
	g.ledger.Reset()
	g.buildings.Reset()
	g.upgrades.Reset()
	g.clock.Reset()

	if snap.Version > SnapshotVersion {
		slog.Warn("snapshot is newer than this build", "version", snap.Version, "supported", SnapshotVersion)
	}
	g.clock.SetSeed(snap.Seed)

	skipped := 0
	for _, b := range snap.Buildings {
		if _, ok := g.catalog.Building(b.ID); !ok {
			skipped++
			continue
		}
		g.buildings.Restore(b.ID, b.Count, b.Unlocked)
	}
	for _, u := range snap.Upgrades {
		if _, ok := g.catalog.Upgrade(u.ID); !ok {
			skipped++
			continue
		}
		g.upgrades.Restore(u.ID, u.Purchased, u.Unlocked)
	}
	// uncapped saves carry capacity 0; derive current caps before amounts
	g.buildings.PushCapacities(g.upgrades)
	for _, r := range snap.Resources {
		if _, ok := g.catalog.Resource(r.ID); !ok {
			skipped++
			continue
		}
		g.ledger.Restore(r.ID, r.Amount, r.Capacity, r.Unlocked)
	}
	if skipped > 0 {
		slog.Warn("snapshot entries ignored", "count", skipped)
	}

	g.clock.Restore(snap.Time)
	if snap.Session != "" {
		g.session = snap.Session
	}
	g.lastSave = snap.LastSave
	g.vis = g.captureVisibility()
	g.emit(Event{Kind: EventRestored, VisibilityChanged: true})
}

// Resume restores a snapshot and replays the offline time between its save
// timestamp and now. It returns the number of ticks replayed.
func (g *Game) Resume(snap Snapshot, now time.Time) int {
	g.Restore(snap)
	if snap.LastSave.IsZero() {
		return 0
	}
	return g.CatchUp(now.Sub(snap.LastSave))
}
