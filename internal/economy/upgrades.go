package economy

import (
	"errors"

	"github.com/napolitain/idlekeep/internal/models"
)

var (
	ErrUnknownUpgrade   = errors.New("unknown upgrade")
	ErrUpgradeLocked    = errors.New("upgrade is locked")
	ErrUpgradeHidden    = errors.New("upgrade requirements not met")
	ErrAlreadyPurchased = errors.New("upgrade already purchased")
)

type upgradeState struct {
	purchased bool
	unlocked  bool
}

// Upgrades tracks one-shot upgrades. Unlock effects are applied once at
// purchase; multipliers are read back every tick from the purchased set.
type Upgrades struct {
	catalog   *Catalog
	ledger    *Ledger
	buildings *Buildings
	rows      []upgradeState
}

// NewUpgrades creates the upgrade registry
func NewUpgrades(c *Catalog, ledger *Ledger, buildings *Buildings) *Upgrades {
	u := &Upgrades{catalog: c, ledger: ledger, buildings: buildings, rows: make([]upgradeState, c.NumUpgrades())}
	u.Reset()
	return u
}

// Reset clears every purchase and restores default unlock flags
func (u *Upgrades) Reset() {
	for i := range u.rows {
		u.rows[i] = upgradeState{unlocked: u.catalog.upgrades[i].def.Unlocked}
	}
}

// Cost returns the price of an upgrade
func (u *Upgrades) Cost(id models.UpgradeID) models.Costs {
	idx, ok := u.catalog.Upgrade(id)
	if !ok {
		return models.Costs{}
	}
	return u.catalog.upgrades[idx].def.Cost.Clone()
}

// IsPurchased reports whether an upgrade was bought
func (u *Upgrades) IsPurchased(id models.UpgradeID) bool {
	idx, ok := u.catalog.Upgrade(id)
	return ok && u.rows[idx].purchased
}

// Unlock makes an upgrade eligible for purchase. It is one-way.
func (u *Upgrades) Unlock(id models.UpgradeID) {
	if idx, ok := u.catalog.Upgrade(id); ok {
		u.rows[idx].unlocked = true
	}
}

// IsUnlocked reports the unlock flag
func (u *Upgrades) IsUnlocked(id models.UpgradeID) bool {
	idx, ok := u.catalog.Upgrade(id)
	return ok && u.rows[idx].unlocked
}

// Visible reports whether the upgrade is unlocked, its building requirements
// are met and its prerequisite upgrades are purchased. Purchased upgrades stay
// visible; presentation filters them out.
func (u *Upgrades) Visible(id models.UpgradeID) bool {
	idx, ok := u.catalog.Upgrade(id)
	return ok && u.visible(idx)
}

func (u *Upgrades) visible(idx UpgradeIndex) bool {
	if !u.rows[idx].unlocked {
		return false
	}
	cu := &u.catalog.upgrades[idx]
	if u.buildings != nil && !u.buildings.requirementsMet(cu.requires) {
		return false
	}
	for _, pre := range cu.prereqs {
		if !u.rows[pre].purchased {
			return false
		}
	}
	return true
}

// CanPurchase reports whether Purchase would succeed
func (u *Upgrades) CanPurchase(id models.UpgradeID) bool {
	return u.check(id) == nil
}

func (u *Upgrades) check(id models.UpgradeID) error {
	idx, ok := u.catalog.Upgrade(id)
	if !ok {
		return ErrUnknownUpgrade
	}
	if u.rows[idx].purchased {
		return ErrAlreadyPurchased
	}
	if !u.rows[idx].unlocked {
		return ErrUpgradeLocked
	}
	if !u.visible(idx) {
		return ErrUpgradeHidden
	}
	if !u.ledger.canAfford(u.catalog.upgrades[idx].cost) {
		return ErrCannotAfford
	}
	return nil
}

// Purchase buys an upgrade once: it debits the cost, marks it purchased and
// applies its unlock effects. Nothing changes when an error is returned.
func (u *Upgrades) Purchase(id models.UpgradeID) error {
	if err := u.check(id); err != nil {
		return err
	}
	idx, _ := u.catalog.Upgrade(id)
	u.ledger.spend(u.catalog.upgrades[idx].cost)
	u.rows[idx].purchased = true
	u.applyUnlocks(idx)
	return nil
}

func (u *Upgrades) applyUnlocks(idx UpgradeIndex) {
	applier := unlockApplier{upgrades: u}
	for _, e := range u.catalog.upgrades[idx].def.Effects {
		e.Accept(applier)
	}
}

// ProductionMultiplier returns the product of purchased production factors
func (u *Upgrades) ProductionMultiplier(id models.ResourceID) float64 {
	r, ok := u.catalog.Resource(id)
	if !ok {
		return 1
	}
	return u.productionMultiplier(r)
}

// ConsumptionMultiplier returns the product of purchased consumption reductions
func (u *Upgrades) ConsumptionMultiplier(id models.ResourceID) float64 {
	r, ok := u.catalog.Resource(id)
	if !ok {
		return 1
	}
	return u.consumptionMultiplier(r)
}

// CapacityMultiplier returns the product of purchased capacity factors
func (u *Upgrades) CapacityMultiplier(id models.ResourceID) float64 {
	r, ok := u.catalog.Resource(id)
	if !ok {
		return 1
	}
	return u.capacityMultiplier(r)
}

func (u *Upgrades) productionMultiplier(r ResourceIndex) float64 {
	return u.product(r, func(cu *compiledUpgrade) []factorTerm { return cu.production })
}

func (u *Upgrades) consumptionMultiplier(r ResourceIndex) float64 {
	return u.product(r, func(cu *compiledUpgrade) []factorTerm { return cu.consumption })
}

func (u *Upgrades) capacityMultiplier(r ResourceIndex) float64 {
	return u.product(r, func(cu *compiledUpgrade) []factorTerm { return cu.capacity })
}

func (u *Upgrades) product(r ResourceIndex, terms func(*compiledUpgrade) []factorTerm) float64 {
	m := 1.0
	for i, row := range u.rows {
		if !row.purchased {
			continue
		}
		for _, t := range terms(&u.catalog.upgrades[i]) {
			if t.res == r {
				m *= t.factor
			}
		}
	}
	return m
}

// Restore overwrites one upgrade from saved state. Unknown IDs are ignored.
// Unlock effects of purchased upgrades are re-applied, which is idempotent.
func (u *Upgrades) Restore(id models.UpgradeID, purchased, unlocked bool) {
	idx, ok := u.catalog.Upgrade(id)
	if !ok {
		return
	}
	u.rows[idx].unlocked = u.rows[idx].unlocked || unlocked
	if purchased {
		u.rows[idx].purchased = true
		u.applyUnlocks(idx)
	}
}

// unlockApplier performs the one-time state changes of an upgrade's effects
type unlockApplier struct {
	upgrades *Upgrades
}

func (a unlockApplier) VisitProductionMultiplier(models.ProductionMultiplier)   {}
func (a unlockApplier) VisitConsumptionReduction(models.ConsumptionReduction) {}
func (a unlockApplier) VisitCapacityMultiplier(models.CapacityMultiplier)     {}

func (a unlockApplier) VisitUnlockBuilding(e models.UnlockBuilding) {
	if a.upgrades.buildings != nil {
		a.upgrades.buildings.Unlock(e.Building)
	}
}

func (a unlockApplier) VisitUnlockUpgrade(e models.UnlockUpgrade) {
	a.upgrades.Unlock(e.Upgrade)
}

func (a unlockApplier) VisitUnlockResource(e models.UnlockResource) {
	a.upgrades.ledger.Unlock(e.Resource)
}
