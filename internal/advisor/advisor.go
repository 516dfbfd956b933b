// Package advisor ranks the constructions and upgrades a player can buy by
// return on investment and drives autoplay from that ranking.
package advisor

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/napolitain/idlekeep/internal/game"
	"github.com/napolitain/idlekeep/internal/models"
)

// Kind tells buildings and upgrades apart
type Kind string

const (
	KindBuilding Kind = "building"
	KindUpgrade  Kind = "upgrade"
)

// Candidate is one purchasable action with its ROI
type Candidate struct {
	Kind       Kind
	ID         string
	Name       string
	Cost       models.Costs
	Metric     ROIMetric
	ROI        float64
	Affordable bool
	Unlocks    bool          // upgrade unlocks content
	Wait       time.Duration // until affordable at current rates; -1 when never
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s %s (roi %.5f)", c.Kind, c.ID, c.ROI)
}

// Rank lists every visible building and unpurchased upgrade, best ROI first.
// Ties break on cost, then ID, so the order is deterministic.
func Rank(g *game.Game) []Candidate {
	defs := g.Definitions()
	var out []Candidate

	for _, b := range defs.Buildings {
		if !g.Buildings().Visible(b.ID) {
			continue
		}
		metric := buildingMetric(g, b)
		cost := g.BuildingCost(b.ID)
		out = append(out, Candidate{
			Kind:       KindBuilding,
			ID:         string(b.ID),
			Name:       b.Name,
			Cost:       cost,
			Metric:     metric,
			ROI:        metric.Calculate(),
			Affordable: g.CanAffordBuilding(b.ID),
			Wait:       waitFor(g, cost),
		})
	}

	for _, u := range defs.Upgrades {
		if g.Upgrades().IsPurchased(u.ID) || !g.Upgrades().Visible(u.ID) {
			continue
		}
		metric, unlocks := upgradeMetric(g, u)
		out = append(out, Candidate{
			Kind:       KindUpgrade,
			ID:         string(u.ID),
			Name:       u.Name,
			Cost:       u.Cost.Clone(),
			Metric:     metric,
			ROI:        metric.Calculate(),
			Affordable: g.CanAffordUpgrade(u.ID),
			Unlocks:    unlocks,
			Wait:       waitFor(g, u.Cost),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ROI != out[j].ROI {
			return out[i].ROI > out[j].ROI
		}
		if ci, cj := out[i].Cost.Total(), out[j].Cost.Total(); ci != cj {
			return ci < cj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Best picks the action to take now: the highest-ROI affordable candidate,
// or else the cheapest affordable upgrade that unlocks content.
func Best(g *game.Game) (Candidate, bool) {
	ranked := Rank(g)
	for _, c := range ranked {
		if c.Affordable && c.ROI > 0 {
			return c, true
		}
	}

	var best Candidate
	found := false
	for _, c := range ranked {
		if !c.Affordable || !c.Unlocks {
			continue
		}
		if !found || c.Cost.Total() < best.Cost.Total() {
			best, found = c, true
		}
	}
	return best, found
}

// Step applies Best to the game and reports what was bought
func Step(g *game.Game) (Candidate, bool, error) {
	c, ok := Best(g)
	if !ok {
		return Candidate{}, false, nil
	}
	var err error
	switch c.Kind {
	case KindBuilding:
		err = g.Construct(models.BuildingID(c.ID))
	case KindUpgrade:
		err = g.Purchase(models.UpgradeID(c.ID))
	}
	if err != nil {
		return c, false, err
	}
	return c, true, nil
}

// waitFor estimates how long until costs are affordable at current net rates
func waitFor(g *game.Game, costs models.Costs) time.Duration {
	l := g.Ledger()
	longest := 0.0
	for _, res := range costs.Resources() {
		missing := costs[res] - l.Amount(res)
		if missing <= 0 {
			continue
		}
		if l.HasCapacity(res) && costs[res] > l.Capacity(res) {
			return -1
		}
		rate := g.NetRate(res)
		if rate <= 0 {
			return -1
		}
		longest = math.Max(longest, missing/rate)
	}
	return time.Duration(math.Ceil(longest)) * time.Second
}
