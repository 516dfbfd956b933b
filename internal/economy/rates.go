package economy

import (
	"github.com/napolitain/idlekeep/internal/models"
)

// SeasonalModifier scales production of a resource by the current season and
// weather. A nil modifier leaves production unchanged.
type SeasonalModifier interface {
	ProductionFactor(id models.ResourceID) float64
}

// Rates derives production and consumption from building counts and purchased
// upgrades. It holds no state of its own; every call recomputes.
type Rates struct {
	catalog   *Catalog
	ledger    *Ledger
	buildings *Buildings
	upgrades  *Upgrades
}

// NewRates creates the rate calculator over the given registries
func NewRates(c *Catalog, ledger *Ledger, buildings *Buildings, upgrades *Upgrades) *Rates {
	return &Rates{catalog: c, ledger: ledger, buildings: buildings, upgrades: upgrades}
}

// Production returns the per-second production of a resource
func (r *Rates) Production(id models.ResourceID, mod SeasonalModifier) float64 {
	idx, ok := r.catalog.Resource(id)
	if !ok {
		return 0
	}
	return r.production(idx, mod)
}

// Consumption returns the per-second consumption of a resource
func (r *Rates) Consumption(id models.ResourceID) float64 {
	idx, ok := r.catalog.Resource(id)
	if !ok {
		return 0
	}
	return r.consumption(idx)
}

// Net returns production minus consumption per second
func (r *Rates) Net(id models.ResourceID, mod SeasonalModifier) float64 {
	idx, ok := r.catalog.Resource(id)
	if !ok {
		return 0
	}
	return r.production(idx, mod) - r.consumption(idx)
}

func (r *Rates) production(idx ResourceIndex, mod SeasonalModifier) float64 {
	base := r.sum(idx, func(cb *compiledBuilding) []amountTerm { return cb.produces })
	if base == 0 {
		return 0
	}
	if r.upgrades != nil {
		base *= r.upgrades.productionMultiplier(idx)
	}
	if mod != nil {
		base *= mod.ProductionFactor(r.catalog.resources[idx].ID)
	}
	return base
}

func (r *Rates) consumption(idx ResourceIndex) float64 {
	base := r.sum(idx, func(cb *compiledBuilding) []amountTerm { return cb.consumes })
	if base == 0 {
		return 0
	}
	if r.upgrades != nil {
		base *= r.upgrades.consumptionMultiplier(idx)
	}
	return base
}

func (r *Rates) sum(idx ResourceIndex, terms func(*compiledBuilding) []amountTerm) float64 {
	total := 0.0
	for i := range r.catalog.buildings {
		count := r.buildings.count(BuildingIndex(i))
		if count == 0 {
			continue
		}
		for _, t := range terms(&r.catalog.buildings[i]) {
			if t.res == idx {
				total += t.amount * float64(count)
			}
		}
	}
	return total
}

// Apply adds net * tickSeconds to every resource in catalog order. Net rates
// are all computed before any amount changes, so one resource's update never
// feeds another's within the same tick.
func (r *Rates) Apply(tickSeconds float64, mod SeasonalModifier) {
	n := r.catalog.NumResources()
	deltas := make([]float64, n)
	for i := 0; i < n; i++ {
		idx := ResourceIndex(i)
		deltas[i] = (r.production(idx, mod) - r.consumption(idx)) * tickSeconds
	}
	for i, d := range deltas {
		if d != 0 {
			r.ledger.add(ResourceIndex(i), d)
		}
	}
}
