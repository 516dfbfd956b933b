package economy

import (
	"errors"
	"math"

	"github.com/napolitain/idlekeep/internal/models"
)

var (
	ErrUnknownBuilding = errors.New("unknown building")
	ErrBuildingLocked  = errors.New("building is locked")
	ErrBuildingHidden  = errors.New("building requirements not met")
	ErrCannotAfford    = errors.New("cannot afford")
)

// costEpsilon is a relative tolerance: it keeps 100*1.1 = 110.00000000000001
// from rounding up to 111 while 10.0000000005 still rounds up to 11
const costEpsilon = 1e-12

type buildingState struct {
	count    int
	unlocked bool
}

// Buildings tracks owned counts and unlock flags of every building type
type Buildings struct {
	catalog *Catalog
	ledger  *Ledger
	rows    []buildingState
}

// NewBuildings creates the building registry. Construction debits ledger.
func NewBuildings(c *Catalog, ledger *Ledger) *Buildings {
	b := &Buildings{catalog: c, ledger: ledger, rows: make([]buildingState, c.NumBuildings())}
	b.Reset()
	return b
}

// Reset sets every count to zero and restores default unlock flags
func (b *Buildings) Reset() {
	for i := range b.rows {
		b.rows[i] = buildingState{unlocked: b.catalog.buildings[i].def.Unlocked}
	}
}

// ScaledCost returns ceil(base * scaling^count)
func ScaledCost(base, scaling float64, count int) float64 {
	if base <= 0 {
		return 0
	}
	x := base * math.Pow(scaling, float64(count))
	return math.Ceil(x - x*costEpsilon)
}

// Cost returns the price of the next unit. Unknown buildings cost nothing.
func (b *Buildings) Cost(id models.BuildingID) models.Costs {
	idx, ok := b.catalog.Building(id)
	if !ok {
		return models.Costs{}
	}
	costs := make(models.Costs, len(b.catalog.buildings[idx].baseCost))
	for _, t := range b.costTerms(idx) {
		costs[b.catalog.resources[t.res].ID] = t.amount
	}
	return costs
}

func (b *Buildings) costTerms(idx BuildingIndex) []amountTerm {
	cb := &b.catalog.buildings[idx]
	count := b.rows[idx].count
	terms := make([]amountTerm, len(cb.baseCost))
	for i, t := range cb.baseCost {
		terms[i] = amountTerm{res: t.res, amount: ScaledCost(t.amount, cb.def.CostScaling, count)}
	}
	return terms
}

// Count returns the number owned, 0 for unknown buildings
func (b *Buildings) Count(id models.BuildingID) int {
	idx, ok := b.catalog.Building(id)
	if !ok {
		return 0
	}
	return b.rows[idx].count
}

// Unlock makes a building eligible for construction. It is one-way.
func (b *Buildings) Unlock(id models.BuildingID) {
	if idx, ok := b.catalog.Building(id); ok {
		b.rows[idx].unlocked = true
	}
}

// IsUnlocked reports the unlock flag
func (b *Buildings) IsUnlocked(id models.BuildingID) bool {
	idx, ok := b.catalog.Building(id)
	return ok && b.rows[idx].unlocked
}

// Visible reports whether the building is unlocked and all its required
// building counts are met
func (b *Buildings) Visible(id models.BuildingID) bool {
	idx, ok := b.catalog.Building(id)
	return ok && b.visible(idx)
}

func (b *Buildings) visible(idx BuildingIndex) bool {
	return b.rows[idx].unlocked && b.requirementsMet(b.catalog.buildings[idx].requires)
}

func (b *Buildings) requirementsMet(reqs []requirement) bool {
	for _, req := range reqs {
		if b.rows[req.building].count < req.count {
			return false
		}
	}
	return true
}

// CanConstruct reports whether Construct would succeed
func (b *Buildings) CanConstruct(id models.BuildingID) bool {
	return b.check(id) == nil
}

func (b *Buildings) check(id models.BuildingID) error {
	idx, ok := b.catalog.Building(id)
	if !ok {
		return ErrUnknownBuilding
	}
	if !b.rows[idx].unlocked {
		return ErrBuildingLocked
	}
	if !b.requirementsMet(b.catalog.buildings[idx].requires) {
		return ErrBuildingHidden
	}
	if !b.ledger.canAfford(b.costTerms(idx)) {
		return ErrCannotAfford
	}
	return nil
}

// Construct buys one unit: it debits the current cost and increments the
// count by exactly one. Nothing changes when an error is returned.
func (b *Buildings) Construct(id models.BuildingID) error {
	if err := b.check(id); err != nil {
		return err
	}
	idx, _ := b.catalog.Building(id)
	b.ledger.spend(b.costTerms(idx))
	b.rows[idx].count++
	return nil
}

// PushCapacities recomputes the capacity of every capped resource:
// (initial + sum of count*contribution) * product of capacity multipliers.
// A nil upgrade registry applies no multipliers.
func (b *Buildings) PushCapacities(u *Upgrades) {
	caps := make([]float64, len(b.catalog.resources))
	for i, def := range b.catalog.resources {
		caps[i] = def.InitialCapacity
	}
	for i, row := range b.rows {
		if row.count == 0 {
			continue
		}
		for _, t := range b.catalog.buildings[i].capacity {
			caps[t.res] += t.amount * float64(row.count)
		}
	}
	for i, def := range b.catalog.resources {
		if !def.HasCapacity {
			continue
		}
		if u != nil {
			caps[i] *= u.capacityMultiplier(ResourceIndex(i))
		}
		b.ledger.setCapacity(ResourceIndex(i), caps[i])
	}
}

// Restore overwrites one building from saved state. Unknown IDs are ignored.
func (b *Buildings) Restore(id models.BuildingID, count int, unlocked bool) {
	idx, ok := b.catalog.Building(id)
	if !ok {
		return
	}
	if count < 0 {
		count = 0
	}
	b.rows[idx].count = count
	b.rows[idx].unlocked = b.rows[idx].unlocked || unlocked
}

func (b *Buildings) count(idx BuildingIndex) int { return b.rows[idx].count }
