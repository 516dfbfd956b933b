package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/napolitain/idlekeep/internal/game"
	"github.com/napolitain/idlekeep/internal/loader"
)

var savedAt = time.Date(2026, 5, 10, 8, 30, 0, 0, time.UTC)

func newGame(t *testing.T) *game.Game {
	t.Helper()
	defs, err := loader.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	defs.Settings.Seed = 99
	g, err := game.New(defs)
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	return g
}

func busyGame(t *testing.T) *game.Game {
	g := newGame(t)
	g.Buildings().Restore("farm", 4, true)
	g.Buildings().Restore("woodcutter", 2, true)
	for i := 0; i < 120; i++ {
		g.Tick()
	}
	return g
}

// captureLogs routes the default logger into a buffer for the test
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestEncodeDecode(t *testing.T) {
	g := busyGame(t)
	snap := g.Snapshot(savedAt)

	blob, err := Encode(snap)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, verified, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !verified {
		t.Error("untouched save should verify")
	}
	if !reflect.DeepEqual(got, snap) {
		t.Errorf("decoded snapshot differs\n got: %+v\nwant: %+v", got, snap)
	}
}

func TestEncodeExtremeAmounts(t *testing.T) {
	g := newGame(t)
	g.Ledger().Add("gold", math.Inf(1))
	g.Ledger().SetCapacity("wood", math.Inf(1))
	g.Ledger().Add("wood", 1e308)
	g.Ledger().Add("wood", 1e308)

	blob, err := Encode(g.Snapshot(savedAt))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, verified, err := Decode(blob)
	if err != nil || !verified {
		t.Fatalf("Decode: verified=%v err=%v", verified, err)
	}
	for _, r := range got.Resources {
		if (r.ID == "gold" || r.ID == "wood") && r.Amount != math.MaxFloat64 {
			t.Errorf("%s = %v, want MaxFloat64", r.ID, r.Amount)
		}
	}
}

func TestChecksumIsMD5OfPayload(t *testing.T) {
	if got := Checksum([]byte("")); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("Checksum(empty) = %s", got)
	}

	blob, err := Encode(newGame(t).Snapshot(savedAt))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		t.Fatalf("Unmarshal envelope: %v", err)
	}
	if env.Checksum != Checksum(env.Payload) {
		t.Errorf("envelope checksum %s does not match payload", env.Checksum)
	}
}

// TestTamperedSaveStillLoads covers the soft-fail policy: a checksum mismatch
// is logged and the edited values are loaded
func TestTamperedSaveStillLoads(t *testing.T) {
	logs := captureLogs(t)
	snap := newGame(t).Snapshot(savedAt)
	blob, err := Encode(snap)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		t.Fatalf("Unmarshal envelope: %v", err)
	}
	var edited game.Snapshot
	if err := json.Unmarshal(env.Payload, &edited); err != nil {
		t.Fatalf("Unmarshal payload: %v", err)
	}
	edited.Resources[1].Amount = 49
	env.Payload, _ = json.Marshal(edited)
	tampered, _ := json.Marshal(env)

	got, verified, err := Decode(tampered)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if verified {
		t.Error("tampered save should not verify")
	}
	if got.Resources[1].Amount != 49 {
		t.Errorf("tampered amount = %v, want 49", got.Resources[1].Amount)
	}
	if !strings.Contains(logs.String(), "checksum mismatch") {
		t.Errorf("expected a checksum warning, logs: %s", logs.String())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := Decode([]byte("not json")); err == nil {
		t.Error("expected parse error")
	}
	if _, _, err := Decode([]byte(`{"checksum":"abc"}`)); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("missing payload = %v, want ErrEmptyPayload", err)
	}
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": db,
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Load(ctx, DefaultSlot); !errors.Is(err, ErrNoSave) {
				t.Fatalf("Load on empty store = %v, want ErrNoSave", err)
			}

			rec := Record{Slot: DefaultSlot, Blob: []byte(`{"payload":{}}`), Checksum: "x", Session: "s1", Tick: 42, SavedAt: savedAt}
			if err := store.Save(ctx, rec); err != nil {
				t.Fatalf("Save: %v", err)
			}
			rec.Tick = 43
			if err := store.Save(ctx, rec); err != nil {
				t.Fatalf("Save overwrite: %v", err)
			}
			if err := store.Save(ctx, Record{Slot: "alt", Blob: []byte("{}"), SavedAt: savedAt}); err != nil {
				t.Fatalf("Save alt: %v", err)
			}

			got, err := store.Load(ctx, DefaultSlot)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Tick != 43 || got.Session != "s1" || string(got.Blob) != string(rec.Blob) || !got.SavedAt.Equal(savedAt) {
				t.Errorf("loaded record = %+v", got)
			}

			slots, err := store.Slots(ctx)
			if err != nil {
				t.Fatalf("Slots: %v", err)
			}
			if !reflect.DeepEqual(slots, []string{"alt", DefaultSlot}) {
				t.Errorf("Slots = %v", slots)
			}

			if err := store.Delete(ctx, "alt"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := store.Delete(ctx, "alt"); !errors.Is(err, ErrNoSave) {
				t.Errorf("second Delete = %v, want ErrNoSave", err)
			}
		})
	}
}

func TestSaveAndLoadGame(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			src := busyGame(t)
			if err := SaveGame(ctx, store, "slot1", src, savedAt); err != nil {
				t.Fatalf("SaveGame: %v", err)
			}

			dst := newGame(t)
			res, err := LoadGame(ctx, store, "slot1", dst, savedAt.Add(90*time.Second))
			if err != nil {
				t.Fatalf("LoadGame: %v", err)
			}
			if !res.Verified || res.Ticks != 90 || !res.SavedAt.Equal(savedAt) {
				t.Errorf("LoadGame result = %+v", res)
			}

			for i := 0; i < 90; i++ {
				src.Tick()
			}
			end := savedAt.Add(time.Hour)
			if want, got := src.Snapshot(end), dst.Snapshot(end); !reflect.DeepEqual(got, want) {
				t.Errorf("loaded game diverged from the original\n got: %+v\nwant: %+v", got, want)
			}

			if _, err := LoadGame(ctx, store, "missing", newGame(t), savedAt); !errors.Is(err, ErrNoSave) {
				t.Errorf("LoadGame(missing) = %v, want ErrNoSave", err)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	g := busyGame(t)
	if err := SaveGame(ctx, store, DefaultSlot, g, savedAt); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	rec, snap, verified, err := Inspect(ctx, store, DefaultSlot)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !verified || rec.Tick != 120 || snap.Time.Tick != 120 || rec.Session != g.Session() {
		t.Errorf("Inspect = %+v verified=%v tick=%d", rec, verified, snap.Time.Tick)
	}
}
