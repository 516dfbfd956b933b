package advisor

import (
	"math"

	"github.com/napolitain/idlekeep/internal/game"
	"github.com/napolitain/idlekeep/internal/models"
)

// nearFull is the fill ratio at which extra storage starts to pay off
const nearFull = 0.9

// ROIMetric represents the components of an ROI calculation
type ROIMetric struct {
	GainPerSecond float64
	TotalCost     float64
	ScarcityBonus float64 // Multiplier adjustment (0.0 = no adjustment, 0.5 = +50% ROI)
}

// Calculate computes the final ROI value
func (m ROIMetric) Calculate() float64 {
	if m.GainPerSecond <= 0 {
		return 0
	}
	if m.TotalCost <= 0 {
		return m.GainPerSecond * 1000 // Very high ROI if free
	}
	baseROI := m.GainPerSecond / m.TotalCost
	return baseROI * (1.0 + m.ScarcityBonus)
}

// buildingMetric computes the metric for one more unit of a building
func buildingMetric(g *game.Game, def models.BuildingDefinition) ROIMetric {
	ups := g.Upgrades()
	gain := 0.0
	bonus := 0.0

	for _, p := range def.Produces {
		gain += p.Amount * ups.ProductionMultiplier(p.Resource) * g.Seasonal().ProductionFactor(p.Resource)
		// starving resources are worth more
		if g.NetRate(p.Resource) <= 0 {
			bonus = 0.5
		}
	}
	for _, c := range def.Consumes {
		gain -= c.Amount * ups.ConsumptionMultiplier(c.Resource)
	}
	for _, c := range def.Capacity {
		gain += storageGain(g, c.Resource)
	}

	return ROIMetric{
		GainPerSecond: gain,
		TotalCost:     g.BuildingCost(def.ID).Total(),
		ScarcityBonus: bonus,
	}
}

// upgradeMetric computes the metric for an upgrade by visiting its effects.
// unlocks reports whether any effect unlocks content.
func upgradeMetric(g *game.Game, def models.UpgradeDefinition) (metric ROIMetric, unlocks bool) {
	v := &gainVisitor{g: g}
	for _, e := range def.Effects {
		e.Accept(v)
	}
	return ROIMetric{GainPerSecond: v.gain, TotalCost: def.Cost.Total()}, v.unlock
}

// storageGain is the production lost to a full store, counted only when the
// resource is close to its capacity
func storageGain(g *game.Game, res models.ResourceID) float64 {
	l := g.Ledger()
	if !l.HasCapacity(res) {
		return 0
	}
	capacity := l.Capacity(res)
	if capacity > 0 && l.Amount(res)/capacity < nearFull {
		return 0
	}
	return math.Max(g.NetRate(res), 0)
}

// gainVisitor sums the per-second gain of continuous effects. Unlocks have
// no direct gain; Best falls back to them when nothing else pays off.
type gainVisitor struct {
	g      *game.Game
	gain   float64
	unlock bool
}

func (v *gainVisitor) VisitProductionMultiplier(e models.ProductionMultiplier) {
	prod := v.g.Rates().Production(e.Resource, v.g.Seasonal())
	v.gain += prod * (e.Factor - 1)
}

func (v *gainVisitor) VisitConsumptionReduction(e models.ConsumptionReduction) {
	cons := v.g.Rates().Consumption(e.Resource)
	v.gain += cons * (1 - e.Factor)
}

func (v *gainVisitor) VisitCapacityMultiplier(e models.CapacityMultiplier) {
	if e.Factor > 1 {
		v.gain += storageGain(v.g, e.Resource)
	}
}

func (v *gainVisitor) VisitUnlockBuilding(models.UnlockBuilding) { v.unlock = true }
func (v *gainVisitor) VisitUnlockUpgrade(models.UnlockUpgrade)   { v.unlock = true }
func (v *gainVisitor) VisitUnlockResource(models.UnlockResource) { v.unlock = true }
