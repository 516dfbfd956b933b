package models

import "fmt"

// Effect is a typed modifier applied by an upgrade. The set of kinds is closed:
// every kind has a method on EffectVisitor, so adding one breaks every
// dispatcher at compile time until it handles the new kind.
type Effect interface {
	Accept(v EffectVisitor)
}

// EffectVisitor dispatches on the concrete effect kind
type EffectVisitor interface {
	VisitProductionMultiplier(e ProductionMultiplier)
	VisitConsumptionReduction(e ConsumptionReduction)
	VisitCapacityMultiplier(e CapacityMultiplier)
	VisitUnlockBuilding(e UnlockBuilding)
	VisitUnlockUpgrade(e UnlockUpgrade)
	VisitUnlockResource(e UnlockResource)
}

// ProductionMultiplier scales production of a resource while purchased
type ProductionMultiplier struct {
	Resource ResourceID
	Factor   float64
}

// ConsumptionReduction scales consumption of a resource while purchased
// (a factor of 0.8 removes 20% of the consumption)
type ConsumptionReduction struct {
	Resource ResourceID
	Factor   float64
}

// CapacityMultiplier scales the capacity of a resource while purchased
type CapacityMultiplier struct {
	Resource ResourceID
	Factor   float64
}

// UnlockBuilding unlocks a building at purchase time
type UnlockBuilding struct {
	Building BuildingID
}

// UnlockUpgrade unlocks another upgrade at purchase time
type UnlockUpgrade struct {
	Upgrade UpgradeID
}

// UnlockResource unlocks a resource at purchase time
type UnlockResource struct {
	Resource ResourceID
}

func (e ProductionMultiplier) Accept(v EffectVisitor) { v.VisitProductionMultiplier(e) }
func (e ConsumptionReduction) Accept(v EffectVisitor) { v.VisitConsumptionReduction(e) }
func (e CapacityMultiplier) Accept(v EffectVisitor)   { v.VisitCapacityMultiplier(e) }
func (e UnlockBuilding) Accept(v EffectVisitor)       { v.VisitUnlockBuilding(e) }
func (e UnlockUpgrade) Accept(v EffectVisitor)        { v.VisitUnlockUpgrade(e) }
func (e UnlockResource) Accept(v EffectVisitor)       { v.VisitUnlockResource(e) }

// Describe returns a short human-readable description of an effect
func Describe(e Effect) string {
	d := &describer{}
	e.Accept(d)
	return d.text
}

type describer struct {
	text string
}

func (d *describer) VisitProductionMultiplier(e ProductionMultiplier) {
	d.text = fmt.Sprintf("%s production x%.2f", e.Resource, e.Factor)
}

func (d *describer) VisitConsumptionReduction(e ConsumptionReduction) {
	d.text = fmt.Sprintf("%s consumption x%.2f", e.Resource, e.Factor)
}

func (d *describer) VisitCapacityMultiplier(e CapacityMultiplier) {
	d.text = fmt.Sprintf("%s capacity x%.2f", e.Resource, e.Factor)
}

func (d *describer) VisitUnlockBuilding(e UnlockBuilding) {
	d.text = fmt.Sprintf("unlocks building %s", e.Building)
}

func (d *describer) VisitUnlockUpgrade(e UnlockUpgrade) {
	d.text = fmt.Sprintf("unlocks upgrade %s", e.Upgrade)
}

func (d *describer) VisitUnlockResource(e UnlockResource) {
	d.text = fmt.Sprintf("unlocks resource %s", e.Resource)
}
