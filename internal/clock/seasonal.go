package clock

import "github.com/napolitain/idlekeep/internal/models"

// Seasonal scales resource production by the current season and the exposed
// weather. It satisfies economy.SeasonalModifier.
type Seasonal struct {
	clock *Clock
	rules map[models.ResourceID]models.SeasonalRule
}

// NewSeasonal binds seasonal rules to a clock
func NewSeasonal(c *Clock, rules []models.SeasonalRule) *Seasonal {
	s := &Seasonal{clock: c, rules: make(map[models.ResourceID]models.SeasonalRule, len(rules))}
	for _, r := range rules {
		s.rules[r.Resource] = r
	}
	return s
}

// ProductionFactor returns the multiplier for a resource, 1 when no rule applies
func (s *Seasonal) ProductionFactor(id models.ResourceID) float64 {
	rule, ok := s.rules[id]
	if !ok {
		return 1
	}
	factor := 1.0
	if season := int(s.clock.state.Season); season < len(rule.Seasons) {
		factor *= rule.Seasons[season]
	}
	if weather := int(s.clock.ExposedWeather()); weather < len(rule.Weather) {
		factor *= rule.Weather[weather]
	}
	return factor
}
