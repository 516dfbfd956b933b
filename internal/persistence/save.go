package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/napolitain/idlekeep/internal/game"
)

// LoadResult describes what happened when a save was applied to a game
type LoadResult struct {
	Verified bool      // checksum matched
	Ticks    int       // offline ticks replayed
	SavedAt  time.Time // when the save was written
}

// SaveGame snapshots g at now and writes it to slot
func SaveGame(ctx context.Context, store Store, slot string, g *game.Game, now time.Time) error {
	snap := g.Snapshot(now)
	blob, checksum, err := encode(snap)
	if err != nil {
		return err
	}
	rec := Record{
		Slot:     slot,
		Blob:     blob,
		Checksum: checksum,
		Session:  snap.Session,
		Tick:     snap.Time.Tick,
		SavedAt:  now,
	}
	if err := store.Save(ctx, rec); err != nil {
		return err
	}
	slog.Debug("game saved", "slot", slot, "tick", snap.Time.Tick, "bytes", len(blob))
	return nil
}

// LoadGame reads slot, restores it into g and replays offline progress up to
// now. It returns ErrNoSave when the slot is empty; g is untouched then.
func LoadGame(ctx context.Context, store Store, slot string, g *game.Game, now time.Time) (LoadResult, error) {
	rec, err := store.Load(ctx, slot)
	if err != nil {
		return LoadResult{}, err
	}
	snap, verified, err := Decode(rec.Blob)
	if err != nil {
		return LoadResult{}, fmt.Errorf("slot %s: %w", slot, err)
	}
	ticks := g.Resume(snap, now)
	slog.Info("game loaded",
		"slot", slot, "tick", snap.Time.Tick, "verified", verified, "offline_ticks", ticks)
	return LoadResult{Verified: verified, Ticks: ticks, SavedAt: snap.LastSave}, nil
}

// Inspect decodes a slot without applying it
func Inspect(ctx context.Context, store Store, slot string) (Record, game.Snapshot, bool, error) {
	rec, err := store.Load(ctx, slot)
	if err != nil {
		return rec, game.Snapshot{}, false, err
	}
	snap, verified, err := Decode(rec.Blob)
	return rec, snap, verified, err
}
