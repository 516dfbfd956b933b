// Package economy implements the resource ledger, the building and upgrade
// registries and the stateless rate calculator. Entities live in slices
// indexed by handles interned once from their string IDs.
//
// Nothing here locks. Construct and Purchase check affordability and then
// spend as two steps, which holds only while a single caller mutates the
// economy at a time.
package economy

import (
	"fmt"
	"sort"

	"github.com/napolitain/idlekeep/internal/models"
)

// ResourceIndex is the interned handle of a resource
type ResourceIndex int

// BuildingIndex is the interned handle of a building
type BuildingIndex int

// UpgradeIndex is the interned handle of an upgrade
type UpgradeIndex int

type amountTerm struct {
	res    ResourceIndex
	amount float64
}

type factorTerm struct {
	res    ResourceIndex
	factor float64
}

type requirement struct {
	building BuildingIndex
	count    int
}

type compiledBuilding struct {
	def      models.BuildingDefinition
	baseCost []amountTerm
	produces []amountTerm
	consumes []amountTerm
	capacity []amountTerm
	requires []requirement
}

type compiledUpgrade struct {
	def         models.UpgradeDefinition
	cost        []amountTerm
	production  []factorTerm
	consumption []factorTerm
	capacity    []factorTerm
	requires    []requirement
	prereqs     []UpgradeIndex
}

// Catalog is the interned, immutable view of a set of definitions
type Catalog struct {
	resources []models.ResourceDefinition
	buildings []compiledBuilding
	upgrades  []compiledUpgrade

	resourceIndex map[models.ResourceID]ResourceIndex
	buildingIndex map[models.BuildingID]BuildingIndex
	upgradeIndex  map[models.UpgradeID]UpgradeIndex
}

// NewCatalog interns every ID and resolves every reference. Definitions
// should have passed loader.Validate; any unresolved reference is an error.
func NewCatalog(defs *models.Definitions) (*Catalog, error) {
	c := &Catalog{
		resources:     append([]models.ResourceDefinition(nil), defs.Resources...),
		resourceIndex: make(map[models.ResourceID]ResourceIndex, len(defs.Resources)),
		buildingIndex: make(map[models.BuildingID]BuildingIndex, len(defs.Buildings)),
		upgradeIndex:  make(map[models.UpgradeID]UpgradeIndex, len(defs.Upgrades)),
	}

	for i, r := range defs.Resources {
		c.resourceIndex[r.ID] = ResourceIndex(i)
	}
	for i, b := range defs.Buildings {
		c.buildingIndex[b.ID] = BuildingIndex(i)
	}
	for i, u := range defs.Upgrades {
		c.upgradeIndex[u.ID] = UpgradeIndex(i)
	}

	for _, b := range defs.Buildings {
		cb := compiledBuilding{def: b}
		var err error
		if cb.baseCost, err = c.costTerms(b.BaseCost); err != nil {
			return nil, fmt.Errorf("building %s: %w", b.ID, err)
		}
		if cb.produces, err = c.rateTerms(b.Produces); err != nil {
			return nil, fmt.Errorf("building %s: %w", b.ID, err)
		}
		if cb.consumes, err = c.rateTerms(b.Consumes); err != nil {
			return nil, fmt.Errorf("building %s: %w", b.ID, err)
		}
		if cb.capacity, err = c.rateTerms(b.Capacity); err != nil {
			return nil, fmt.Errorf("building %s: %w", b.ID, err)
		}
		if cb.requires, err = c.requirements(b.Requires); err != nil {
			return nil, fmt.Errorf("building %s: %w", b.ID, err)
		}
		c.buildings = append(c.buildings, cb)
	}

	for _, u := range defs.Upgrades {
		cu := compiledUpgrade{def: u}
		var err error
		if cu.cost, err = c.costTerms(u.Cost); err != nil {
			return nil, fmt.Errorf("upgrade %s: %w", u.ID, err)
		}
		if cu.requires, err = c.requirements(u.RequiresBuildings); err != nil {
			return nil, fmt.Errorf("upgrade %s: %w", u.ID, err)
		}
		for _, id := range u.RequiresUpgrades {
			idx, ok := c.upgradeIndex[id]
			if !ok {
				return nil, fmt.Errorf("upgrade %s: unknown upgrade %q", u.ID, id)
			}
			cu.prereqs = append(cu.prereqs, idx)
		}
		collector := &multiplierCollector{catalog: c, target: &cu}
		for _, e := range u.Effects {
			e.Accept(collector)
		}
		if collector.err != nil {
			return nil, fmt.Errorf("upgrade %s: %w", u.ID, collector.err)
		}
		c.upgrades = append(c.upgrades, cu)
	}

	return c, nil
}

// Resource resolves a resource ID
func (c *Catalog) Resource(id models.ResourceID) (ResourceIndex, bool) {
	idx, ok := c.resourceIndex[id]
	return idx, ok
}

// Building resolves a building ID
func (c *Catalog) Building(id models.BuildingID) (BuildingIndex, bool) {
	idx, ok := c.buildingIndex[id]
	return idx, ok
}

// Upgrade resolves an upgrade ID
func (c *Catalog) Upgrade(id models.UpgradeID) (UpgradeIndex, bool) {
	idx, ok := c.upgradeIndex[id]
	return idx, ok
}

// NumResources returns the number of resources
func (c *Catalog) NumResources() int { return len(c.resources) }

// NumBuildings returns the number of buildings
func (c *Catalog) NumBuildings() int { return len(c.buildings) }

// NumUpgrades returns the number of upgrades
func (c *Catalog) NumUpgrades() int { return len(c.upgrades) }

// ResourceDef returns the definition behind a handle
func (c *Catalog) ResourceDef(r ResourceIndex) models.ResourceDefinition { return c.resources[r] }

// BuildingDef returns the definition behind a handle
func (c *Catalog) BuildingDef(b BuildingIndex) models.BuildingDefinition { return c.buildings[b].def }

// UpgradeDef returns the definition behind a handle
func (c *Catalog) UpgradeDef(u UpgradeIndex) models.UpgradeDefinition { return c.upgrades[u].def }

func (c *Catalog) costTerms(costs models.Costs) ([]amountTerm, error) {
	terms := make([]amountTerm, 0, len(costs))
	// Resources() is sorted so the resolved order is deterministic
	for _, id := range costs.Resources() {
		idx, ok := c.resourceIndex[id]
		if !ok {
			return nil, fmt.Errorf("unknown resource %q", id)
		}
		terms = append(terms, amountTerm{res: idx, amount: costs[id]})
	}
	return terms, nil
}

func (c *Catalog) rateTerms(rates []models.Rate) ([]amountTerm, error) {
	terms := make([]amountTerm, 0, len(rates))
	for _, rate := range rates {
		idx, ok := c.resourceIndex[rate.Resource]
		if !ok {
			return nil, fmt.Errorf("unknown resource %q", rate.Resource)
		}
		terms = append(terms, amountTerm{res: idx, amount: rate.Amount})
	}
	return terms, nil
}

func (c *Catalog) requirements(req map[models.BuildingID]int) ([]requirement, error) {
	out := make([]requirement, 0, len(req))
	for id, n := range req {
		idx, ok := c.buildingIndex[id]
		if !ok {
			return nil, fmt.Errorf("unknown building %q", id)
		}
		out = append(out, requirement{building: idx, count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].building < out[j].building })
	return out, nil
}

// multiplierCollector compiles the continuous effects of an upgrade into
// per-resource factor lists read back every tick. Unlock effects are applied
// at purchase time by unlockApplier instead.
type multiplierCollector struct {
	catalog *Catalog
	target  *compiledUpgrade
	err     error
}

func (m *multiplierCollector) resolve(id models.ResourceID) (ResourceIndex, bool) {
	idx, ok := m.catalog.resourceIndex[id]
	if !ok && m.err == nil {
		m.err = fmt.Errorf("unknown resource %q", id)
	}
	return idx, ok
}

func (m *multiplierCollector) VisitProductionMultiplier(e models.ProductionMultiplier) {
	if idx, ok := m.resolve(e.Resource); ok {
		m.target.production = append(m.target.production, factorTerm{res: idx, factor: e.Factor})
	}
}

func (m *multiplierCollector) VisitConsumptionReduction(e models.ConsumptionReduction) {
	if idx, ok := m.resolve(e.Resource); ok {
		m.target.consumption = append(m.target.consumption, factorTerm{res: idx, factor: e.Factor})
	}
}

func (m *multiplierCollector) VisitCapacityMultiplier(e models.CapacityMultiplier) {
	if idx, ok := m.resolve(e.Resource); ok {
		m.target.capacity = append(m.target.capacity, factorTerm{res: idx, factor: e.Factor})
	}
}

func (m *multiplierCollector) VisitUnlockBuilding(e models.UnlockBuilding) {
	if _, ok := m.catalog.buildingIndex[e.Building]; !ok && m.err == nil {
		m.err = fmt.Errorf("unknown building %q", e.Building)
	}
}

func (m *multiplierCollector) VisitUnlockUpgrade(e models.UnlockUpgrade) {
	if _, ok := m.catalog.upgradeIndex[e.Upgrade]; !ok && m.err == nil {
		m.err = fmt.Errorf("unknown upgrade %q", e.Upgrade)
	}
}

func (m *multiplierCollector) VisitUnlockResource(e models.UnlockResource) {
	m.resolve(e.Resource)
}
