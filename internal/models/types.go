package models

import (
	"sort"
)

// ResourceID identifies a resource definition
type ResourceID string

// BuildingID identifies a building definition
type BuildingID string

// UpgradeID identifies an upgrade definition
type UpgradeID string

// Costs maps resources to amounts (building costs, upgrade costs)
type Costs map[ResourceID]float64

// Get returns the cost for a specific resource, 0 if absent
func (c Costs) Get(r ResourceID) float64 {
	return c[r]
}

// Total returns the sum of all amounts
func (c Costs) Total() float64 {
	total := 0.0
	for _, amount := range c {
		total += amount
	}
	return total
}

// Resources returns the resources in deterministic (sorted) order
func (c Costs) Resources() []ResourceID {
	ids := make([]ResourceID, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns an independent copy
func (c Costs) Clone() Costs {
	out := make(Costs, len(c))
	for id, amount := range c {
		out[id] = amount
	}
	return out
}

// Rate is a per-unit amount of one resource: per second for production and
// consumption, absolute for capacity contributions.
type Rate struct {
	Resource ResourceID `json:"resource"`
	Amount   float64    `json:"amount"`
}

// ResourceDefinition is the static configuration of a resource
type ResourceDefinition struct {
	ID              ResourceID
	Name            string
	HasCapacity     bool
	InitialAmount   float64
	InitialCapacity float64
	Unlocked        bool
}

// BuildingDefinition is the static configuration of a building type
type BuildingDefinition struct {
	ID          BuildingID
	Name        string
	BaseCost    Costs
	CostScaling float64
	Produces    []Rate
	Consumes    []Rate
	Capacity    []Rate
	Requires    map[BuildingID]int // building -> minimum count
	Unlocked    bool
}

// UpgradeDefinition is the static configuration of a one-shot upgrade
type UpgradeDefinition struct {
	ID                UpgradeID
	Name              string
	Cost              Costs
	Effects           []Effect
	RequiresBuildings map[BuildingID]int
	RequiresUpgrades  []UpgradeID
	Unlocked          bool
}

// Definitions is the full static content of a game: tunables plus every
// resource, building and upgrade, in catalog order.
type Definitions struct {
	Settings  Settings
	Resources []ResourceDefinition
	Buildings []BuildingDefinition
	Upgrades  []UpgradeDefinition
}

// ResourceIDs returns all resource IDs in catalog order
func (d *Definitions) ResourceIDs() []string {
	ids := make([]string, len(d.Resources))
	for i, r := range d.Resources {
		ids[i] = string(r.ID)
	}
	return ids
}

// BuildingIDs returns all building IDs in catalog order
func (d *Definitions) BuildingIDs() []string {
	ids := make([]string, len(d.Buildings))
	for i, b := range d.Buildings {
		ids[i] = string(b.ID)
	}
	return ids
}

// UpgradeIDs returns all upgrade IDs in catalog order
func (d *Definitions) UpgradeIDs() []string {
	ids := make([]string, len(d.Upgrades))
	for i, u := range d.Upgrades {
		ids[i] = string(u.ID)
	}
	return ids
}
