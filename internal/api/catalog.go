package api

import (
	"github.com/napolitain/idlekeep/internal/models"
)

// CatalogView is the static content of a game in a JSON-friendly form
type CatalogView struct {
	Resources []ResourceDef `json:"resources"`
	Buildings []BuildingDef `json:"buildings"`
	Upgrades  []UpgradeDef  `json:"upgrades"`
}

type ResourceDef struct {
	ID              models.ResourceID `json:"id"`
	Name            string            `json:"name"`
	HasCapacity     bool              `json:"has_capacity"`
	InitialAmount   float64           `json:"initial_amount"`
	InitialCapacity float64           `json:"initial_capacity"`
}

type BuildingDef struct {
	ID          models.BuildingID         `json:"id"`
	Name        string                    `json:"name"`
	BaseCost    models.Costs              `json:"base_cost"`
	CostScaling float64                   `json:"cost_scaling"`
	Produces    []models.Rate             `json:"produces,omitempty"`
	Consumes    []models.Rate             `json:"consumes,omitempty"`
	Capacity    []models.Rate             `json:"capacity,omitempty"`
	Requires    map[models.BuildingID]int `json:"requires,omitempty"`
}

type UpgradeDef struct {
	ID                models.UpgradeID          `json:"id"`
	Name              string                    `json:"name"`
	Cost              models.Costs              `json:"cost"`
	Effects           []string                  `json:"effects"`
	RequiresBuildings map[models.BuildingID]int `json:"requires_buildings,omitempty"`
	RequiresUpgrades  []models.UpgradeID        `json:"requires_upgrades,omitempty"`
}

// NewCatalogView flattens definitions; effects are rendered as text
func NewCatalogView(defs *models.Definitions) CatalogView {
	var v CatalogView
	for _, r := range defs.Resources {
		v.Resources = append(v.Resources, ResourceDef{
			ID:              r.ID,
			Name:            r.Name,
			HasCapacity:     r.HasCapacity,
			InitialAmount:   r.InitialAmount,
			InitialCapacity: r.InitialCapacity,
		})
	}
	for _, b := range defs.Buildings {
		v.Buildings = append(v.Buildings, BuildingDef{
			ID:          b.ID,
			Name:        b.Name,
			BaseCost:    b.BaseCost,
			CostScaling: b.CostScaling,
			Produces:    b.Produces,
			Consumes:    b.Consumes,
			Capacity:    b.Capacity,
			Requires:    b.Requires,
		})
	}
	for _, u := range defs.Upgrades {
		effects := make([]string, len(u.Effects))
		for i, e := range u.Effects {
			effects[i] = models.Describe(e)
		}
		v.Upgrades = append(v.Upgrades, UpgradeDef{
			ID:                u.ID,
			Name:              u.Name,
			Cost:              u.Cost,
			Effects:           effects,
			RequiresBuildings: u.RequiresBuildings,
			RequiresUpgrades:  u.RequiresUpgrades,
		})
	}
	return v
}
