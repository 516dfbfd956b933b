package loader

import (
	"errors"
	"fmt"

	"github.com/napolitain/idlekeep/internal/models"
)

// Validate checks IDs are unique, every reference resolves, and the settings
// describe a runnable clock.
func Validate(d *models.Definitions) error {
	var errs []error

	s := d.Settings
	if s.TickSeconds <= 0 {
		errs = append(errs, fmt.Errorf("settings: tick_seconds must be positive, got %v", s.TickSeconds))
	}
	if s.TicksPerDay <= 0 {
		errs = append(errs, fmt.Errorf("settings: ticks_per_day must be positive, got %d", s.TicksPerDay))
	}
	if s.DaysPerSeason <= 0 {
		errs = append(errs, fmt.Errorf("settings: days_per_season must be positive, got %d", s.DaysPerSeason))
	}
	if s.PoorWeatherChance < 0 || s.GoodWeatherChance < 0 || s.PoorWeatherChance+s.GoodWeatherChance > 1 {
		errs = append(errs, fmt.Errorf("settings: weather chances must be non-negative and sum to at most 1"))
	}
	if s.MaxOfflineHours < 0 {
		errs = append(errs, fmt.Errorf("settings: max_offline_hours must not be negative"))
	}

	resourceIDs := d.ResourceIDs()
	buildingIDs := d.BuildingIDs()
	upgradeIDs := d.UpgradeIDs()
	resources := indexOf(resourceIDs)
	buildings := indexOf(buildingIDs)
	upgrades := indexOf(upgradeIDs)

	if len(resources) != len(resourceIDs) {
		errs = append(errs, errors.New("duplicate resource id"))
	}
	if len(buildings) != len(buildingIDs) {
		errs = append(errs, errors.New("duplicate building id"))
	}
	if len(upgrades) != len(upgradeIDs) {
		errs = append(errs, errors.New("duplicate upgrade id"))
	}

	checkResource := func(owner string, id models.ResourceID) {
		if !resources[string(id)] {
			errs = append(errs, fmt.Errorf("%s: %w", owner, UnknownIDError("resource", string(id), resourceIDs)))
		}
	}
	checkBuilding := func(owner string, id models.BuildingID) {
		if !buildings[string(id)] {
			errs = append(errs, fmt.Errorf("%s: %w", owner, UnknownIDError("building", string(id), buildingIDs)))
		}
	}
	checkUpgrade := func(owner string, id models.UpgradeID) {
		if !upgrades[string(id)] {
			errs = append(errs, fmt.Errorf("%s: %w", owner, UnknownIDError("upgrade", string(id), upgradeIDs)))
		}
	}

	for _, r := range d.Resources {
		if r.ID == "" {
			errs = append(errs, errors.New("resource with empty id"))
		}
		if r.InitialAmount < 0 || r.InitialCapacity < 0 {
			errs = append(errs, fmt.Errorf("resource %s: initial values must not be negative", r.ID))
		}
	}

	for _, b := range d.Buildings {
		owner := "building " + string(b.ID)
		if b.ID == "" {
			errs = append(errs, errors.New("building with empty id"))
		}
		if b.CostScaling <= 0 {
			errs = append(errs, fmt.Errorf("%s: cost_scaling must be positive", owner))
		}
		for _, id := range b.BaseCost.Resources() {
			checkResource(owner, id)
		}
		for _, list := range [][]models.Rate{b.Produces, b.Consumes, b.Capacity} {
			for _, rate := range list {
				checkResource(owner, rate.Resource)
			}
		}
		for id := range b.Requires {
			checkBuilding(owner, id)
		}
	}

	for _, u := range d.Upgrades {
		owner := "upgrade " + string(u.ID)
		if u.ID == "" {
			errs = append(errs, errors.New("upgrade with empty id"))
		}
		for _, id := range u.Cost.Resources() {
			checkResource(owner, id)
		}
		for id := range u.RequiresBuildings {
			checkBuilding(owner, id)
		}
		for _, id := range u.RequiresUpgrades {
			checkUpgrade(owner, id)
		}
		for _, e := range u.Effects {
			e.Accept(&referenceChecker{
				owner:    owner,
				resource: checkResource,
				building: checkBuilding,
				upgrade:  checkUpgrade,
				errs:     &errs,
			})
		}
	}

	for _, rule := range s.Seasonal {
		owner := "seasonal rule"
		checkResource(owner, rule.Resource)
		if len(rule.Seasons) > 4 {
			errs = append(errs, fmt.Errorf("%s %s: at most 4 season factors", owner, rule.Resource))
		}
		if len(rule.Weather) > 3 {
			errs = append(errs, fmt.Errorf("%s %s: at most 3 weather factors", owner, rule.Resource))
		}
	}

	return errors.Join(errs...)
}

// referenceChecker verifies the IDs an effect points at
type referenceChecker struct {
	owner    string
	resource func(string, models.ResourceID)
	building func(string, models.BuildingID)
	upgrade  func(string, models.UpgradeID)
	errs     *[]error
}

func (c *referenceChecker) factor(kind string, f float64) {
	if f < 0 {
		*c.errs = append(*c.errs, fmt.Errorf("%s: %s factor must not be negative", c.owner, kind))
	}
}

func (c *referenceChecker) VisitProductionMultiplier(e models.ProductionMultiplier) {
	c.resource(c.owner, e.Resource)
	c.factor("production_multiplier", e.Factor)
}

func (c *referenceChecker) VisitConsumptionReduction(e models.ConsumptionReduction) {
	c.resource(c.owner, e.Resource)
	c.factor("consumption_reduction", e.Factor)
}

func (c *referenceChecker) VisitCapacityMultiplier(e models.CapacityMultiplier) {
	c.resource(c.owner, e.Resource)
	c.factor("capacity_multiplier", e.Factor)
}

func (c *referenceChecker) VisitUnlockBuilding(e models.UnlockBuilding) {
	c.building(c.owner, e.Building)
}

func (c *referenceChecker) VisitUnlockUpgrade(e models.UnlockUpgrade) {
	c.upgrade(c.owner, e.Upgrade)
}

func (c *referenceChecker) VisitUnlockResource(e models.UnlockResource) {
	c.resource(c.owner, e.Resource)
}

func indexOf(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
