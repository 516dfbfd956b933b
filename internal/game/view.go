package game

import (
	"github.com/napolitain/idlekeep/internal/clock"
	"github.com/napolitain/idlekeep/internal/models"
)

// ResourceView is a visible resource as presented to a frontend.
// Capacity is 0 when HasCapacity is false.
type ResourceView struct {
	ID          models.ResourceID `json:"id"`
	Name        string            `json:"name"`
	Amount      float64           `json:"amount"`
	Capacity    float64           `json:"capacity"`
	HasCapacity bool              `json:"has_capacity"`
	Production  float64           `json:"production"`
	Consumption float64           `json:"consumption"`
	Net         float64           `json:"net"`
}

// BuildingView is a visible building with its next-unit cost
type BuildingView struct {
	ID         models.BuildingID `json:"id"`
	Name       string            `json:"name"`
	Count      int               `json:"count"`
	Cost       models.Costs      `json:"cost"`
	Affordable bool              `json:"affordable"`
	Produces   []models.Rate     `json:"produces,omitempty"`
	Consumes   []models.Rate     `json:"consumes,omitempty"`
	Capacity   []models.Rate     `json:"capacity,omitempty"`
}

// UpgradeView is a visible, not yet purchased upgrade
type UpgradeView struct {
	ID         models.UpgradeID `json:"id"`
	Name       string           `json:"name"`
	Cost       models.Costs     `json:"cost"`
	Affordable bool             `json:"affordable"`
	Effects    []string         `json:"effects"`
}

// TimeView is the time state with weather already gated
type TimeView struct {
	Tick           uint64 `json:"tick"`
	Day            int    `json:"day"`
	Season         string `json:"season"`
	Year           int    `json:"year"`
	Weather        string `json:"weather"`
	WeatherVisible bool   `json:"weather_visible"`
	Label          string `json:"label"`
}

// View is everything a frontend renders for one refresh
type View struct {
	Session   string         `json:"session"`
	Time      TimeView       `json:"time"`
	Resources []ResourceView `json:"resources"`
	Buildings []BuildingView `json:"buildings"`
	Upgrades  []UpgradeView  `json:"upgrades"`
}

// VisibleResources returns unlocked resources in catalog order
func (g *Game) VisibleResources() []ResourceView {
	var out []ResourceView
	for _, r := range g.defs.Resources {
		if !g.ledger.IsUnlocked(r.ID) {
			continue
		}
		prod := g.rates.Production(r.ID, g.seasonal)
		cons := g.rates.Consumption(r.ID)
		v := ResourceView{
			ID:          r.ID,
			Name:        r.Name,
			Amount:      g.ledger.Amount(r.ID),
			HasCapacity: r.HasCapacity,
			Production:  prod,
			Consumption: cons,
			Net:         prod - cons,
		}
		if r.HasCapacity {
			v.Capacity = g.ledger.Capacity(r.ID)
		}
		out = append(out, v)
	}
	return out
}

// VisibleBuildings returns buildings that are unlocked and whose
// requirements are met, in catalog order
func (g *Game) VisibleBuildings() []BuildingView {
	var out []BuildingView
	for _, b := range g.defs.Buildings {
		if !g.buildings.Visible(b.ID) {
			continue
		}
		out = append(out, BuildingView{
			ID:         b.ID,
			Name:       b.Name,
			Count:      g.buildings.Count(b.ID),
			Cost:       g.buildings.Cost(b.ID),
			Affordable: g.CanAffordBuilding(b.ID),
			Produces:   b.Produces,
			Consumes:   b.Consumes,
			Capacity:   b.Capacity,
		})
	}
	return out
}

// VisibleUpgrades returns visible upgrades that have not been purchased
func (g *Game) VisibleUpgrades() []UpgradeView {
	var out []UpgradeView
	for _, u := range g.defs.Upgrades {
		if g.upgrades.IsPurchased(u.ID) || !g.upgrades.Visible(u.ID) {
			continue
		}
		effects := make([]string, len(u.Effects))
		for i, e := range u.Effects {
			effects[i] = models.Describe(e)
		}
		out = append(out, UpgradeView{
			ID:         u.ID,
			Name:       u.Name,
			Cost:       u.Cost.Clone(),
			Affordable: g.CanAffordUpgrade(u.ID),
			Effects:    effects,
		})
	}
	return out
}

// Time returns the time state with weather gated
func (g *Game) Time() TimeView {
	s := g.clock.State()
	return TimeView{
		Tick:           s.Tick,
		Day:            s.Day + 1,
		Season:         s.Season.String(),
		Year:           s.Year + 1,
		Weather:        g.clock.ExposedWeather().String(),
		WeatherVisible: g.clock.WeatherExposed(),
		Label:          clock.Format(s),
	}
}

// View collects everything visible right now
func (g *Game) View() View {
	return View{
		Session:   g.session,
		Time:      g.Time(),
		Resources: g.VisibleResources(),
		Buildings: g.VisibleBuildings(),
		Upgrades:  g.VisibleUpgrades(),
	}
}
