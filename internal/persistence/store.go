package persistence

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// DefaultSlot is the save slot used when none is named
const DefaultSlot = "default"

// ErrNoSave is returned when a slot holds no save
var ErrNoSave = errors.New("no save in slot")

// Record is one stored save with the metadata kept next to the blob
type Record struct {
	Slot     string
	Blob     []byte
	Checksum string
	Session  string
	Tick     uint64
	SavedAt  time.Time
}

// Store persists save blobs by slot name
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, slot string) (Record, error)
	Delete(ctx context.Context, slot string) error
	Slots(ctx context.Context) ([]string, error)
	Close() error
}

// MemoryStore keeps saves in memory
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Blob = append([]byte(nil), rec.Blob...)
	m.records[rec.Slot] = rec
	return nil
}

func (m *MemoryStore) Load(_ context.Context, slot string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[slot]
	if !ok {
		return Record{}, ErrNoSave
	}
	rec.Blob = append([]byte(nil), rec.Blob...)
	return rec, nil
}

func (m *MemoryStore) Delete(_ context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[slot]; !ok {
		return ErrNoSave
	}
	delete(m.records, slot)
	return nil
}

func (m *MemoryStore) Slots(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slots := make([]string, 0, len(m.records))
	for slot := range m.records {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots, nil
}

func (m *MemoryStore) Close() error { return nil }
