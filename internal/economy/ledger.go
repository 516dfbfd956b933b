package economy

import (
	"math"

	"github.com/napolitain/idlekeep/internal/models"
)

type resourceState struct {
	amount   float64
	capacity float64
	unlocked bool
}

// Ledger holds the current amount, capacity and unlock flag of every resource.
// Amounts never go below zero and, for capped resources, never above capacity.
type Ledger struct {
	catalog *Catalog
	rows    []resourceState
}

// NewLedger creates a ledger initialized from the catalog definitions
func NewLedger(c *Catalog) *Ledger {
	l := &Ledger{catalog: c, rows: make([]resourceState, c.NumResources())}
	l.Reset()
	return l
}

// Reset restores every resource to its definition defaults
func (l *Ledger) Reset() {
	for i := range l.rows {
		def := l.catalog.resources[i]
		l.rows[i] = resourceState{
			capacity: math.Max(def.InitialCapacity, 0),
			unlocked: def.Unlocked,
		}
		l.set(ResourceIndex(i), def.InitialAmount)
	}
}

func (l *Ledger) row(id models.ResourceID) (ResourceIndex, bool) {
	return l.catalog.Resource(id)
}

// clamp bounds an amount for resource r. Overflow saturates at
// math.MaxFloat64 so amounts stay finite.
func (l *Ledger) clamp(r ResourceIndex, amount float64) float64 {
	if amount < 0 || math.IsNaN(amount) {
		return 0
	}
	if amount > math.MaxFloat64 {
		amount = math.MaxFloat64
	}
	if l.catalog.resources[r].HasCapacity && amount > l.rows[r].capacity {
		return l.rows[r].capacity
	}
	return amount
}

func (l *Ledger) set(r ResourceIndex, amount float64) {
	l.rows[r].amount = l.clamp(r, amount)
}

// Amount returns the current amount, 0 for unknown resources
func (l *Ledger) Amount(id models.ResourceID) float64 {
	r, ok := l.row(id)
	if !ok {
		return 0
	}
	return l.rows[r].amount
}

// Capacity returns the current capacity, 0 for unknown resources.
// Uncapped resources report +Inf.
func (l *Ledger) Capacity(id models.ResourceID) float64 {
	r, ok := l.row(id)
	if !ok {
		return 0
	}
	if !l.catalog.resources[r].HasCapacity {
		return math.Inf(1)
	}
	return l.rows[r].capacity
}

// HasCapacity reports whether the resource is capped
func (l *Ledger) HasCapacity(id models.ResourceID) bool {
	r, ok := l.row(id)
	return ok && l.catalog.resources[r].HasCapacity
}

// Add changes an amount by delta and clamps the result. NaN deltas are ignored.
func (l *Ledger) Add(id models.ResourceID, delta float64) {
	r, ok := l.row(id)
	if !ok || math.IsNaN(delta) {
		return
	}
	l.add(r, delta)
}

func (l *Ledger) add(r ResourceIndex, delta float64) {
	if math.IsNaN(delta) {
		return
	}
	l.set(r, l.rows[r].amount+delta)
}

// SetCapacity replaces the capacity of a resource. Negative values clamp to 0,
// +Inf to math.MaxFloat64, and the amount is clamped down when it no longer fits.
func (l *Ledger) SetCapacity(id models.ResourceID, capacity float64) {
	r, ok := l.row(id)
	if !ok {
		return
	}
	l.setCapacity(r, capacity)
}

func (l *Ledger) setCapacity(r ResourceIndex, capacity float64) {
	if capacity < 0 || math.IsNaN(capacity) {
		capacity = 0
	}
	l.rows[r].capacity = math.Min(capacity, math.MaxFloat64)
	l.set(r, l.rows[r].amount)
}

// CanAfford reports whether every amount in costs is available.
// Unknown resources in costs can never be afforded.
func (l *Ledger) CanAfford(costs models.Costs) bool {
	for id, amount := range costs {
		if amount <= 0 {
			continue
		}
		r, ok := l.row(id)
		if !ok || l.rows[r].amount < amount {
			return false
		}
	}
	return true
}

func (l *Ledger) canAfford(terms []amountTerm) bool {
	for _, t := range terms {
		if l.rows[t.res].amount < t.amount {
			return false
		}
	}
	return true
}

// Spend debits costs without re-checking affordability; callers check
// CanAfford first.
func (l *Ledger) Spend(costs models.Costs) {
	for _, id := range costs.Resources() {
		l.Add(id, -costs[id])
	}
}

func (l *Ledger) spend(terms []amountTerm) {
	for _, t := range terms {
		l.add(t.res, -t.amount)
	}
}

// Unlock makes a resource visible. It is one-way.
func (l *Ledger) Unlock(id models.ResourceID) {
	if r, ok := l.row(id); ok {
		l.rows[r].unlocked = true
	}
}

// IsUnlocked reports whether a resource is visible
func (l *Ledger) IsUnlocked(id models.ResourceID) bool {
	r, ok := l.row(id)
	return ok && l.rows[r].unlocked
}

// Unlocked returns the unlocked resources in catalog order
func (l *Ledger) Unlocked() []models.ResourceID {
	var ids []models.ResourceID
	for i, row := range l.rows {
		if row.unlocked {
			ids = append(ids, l.catalog.resources[i].ID)
		}
	}
	return ids
}

// Restore overwrites one resource from saved state. Unknown IDs are ignored.
// A positive capacity is applied before the amount so the amount is clamped
// against it; otherwise the current capacity stays.
func (l *Ledger) Restore(id models.ResourceID, amount, capacity float64, unlocked bool) {
	r, ok := l.row(id)
	if !ok {
		return
	}
	if capacity > 0 {
		l.setCapacity(r, capacity)
	}
	l.set(r, amount)
	l.rows[r].unlocked = l.rows[r].unlocked || unlocked
}
