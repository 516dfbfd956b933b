// Package clock provides the tick -> day -> season -> year state machine and
// the seasonal weather roll.
package clock

import (
	"fmt"
	"math/rand/v2"

	"github.com/napolitain/idlekeep/internal/models"
)

// Season of the year
type Season int

// Season constants.
const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

// SeasonsPerYear is the number of seasons before the year advances
const SeasonsPerYear = 4

// String returns a human-readable season name.
func (s Season) String() string {
	switch s {
	case Spring:
		return "Spring"
	case Summer:
		return "Summer"
	case Autumn:
		return "Autumn"
	case Winter:
		return "Winter"
	default:
		return "Unknown"
	}
}

// Weather of the current season
type Weather int

const (
	Poor Weather = iota
	Average
	Good
)

func (w Weather) String() string {
	switch w {
	case Poor:
		return "Poor"
	case Average:
		return "Average"
	case Good:
		return "Good"
	default:
		return "Unknown"
	}
}

// State is the persisted time state. Day is the day within the current
// season; Tick never resets.
type State struct {
	Tick    uint64  `json:"tick"`
	Day     int     `json:"day"`
	Season  Season  `json:"season"`
	Year    int     `json:"year"`
	Weather Weather `json:"weather"`
}

// Config holds the thresholds and weather distribution of a clock
type Config struct {
	TicksPerDay      int
	DaysPerSeason    int
	WeatherStartYear int
	PoorChance       float64
	GoodChance       float64
	Seed             int64
}

// ConfigFromSettings extracts clock settings from catalog settings
func ConfigFromSettings(s models.Settings) Config {
	return Config{
		TicksPerDay:      s.TicksPerDay,
		DaysPerSeason:    s.DaysPerSeason,
		WeatherStartYear: s.WeatherStartYear,
		PoorChance:       s.PoorWeatherChance,
		GoodChance:       s.GoodWeatherChance,
		Seed:             s.Seed,
	}
}

// Transition reports which counters rolled over during one Advance
type Transition struct {
	NewDay    bool
	NewSeason bool
	NewYear   bool
}

// Changed reports whether any counter above the tick rolled over
func (t Transition) Changed() bool {
	return t.NewDay || t.NewSeason || t.NewYear
}

// Clock advances time state one tick at a time
type Clock struct {
	cfg   Config
	state State
}

// New creates a clock at tick zero, spring of year zero, average weather
func New(cfg Config) *Clock {
	if cfg.TicksPerDay <= 0 {
		cfg.TicksPerDay = models.DefaultTicksPerDay
	}
	if cfg.DaysPerSeason <= 0 {
		cfg.DaysPerSeason = models.DefaultDaysPerSeason
	}
	c := &Clock{cfg: cfg}
	c.Reset()
	return c
}

// Reset returns the clock to its initial state
func (c *Clock) Reset() {
	c.state = State{Weather: Average}
}

// State returns a copy of the raw state, including the underlying weather roll
func (c *Clock) State() State { return c.state }

// SetSeed changes the seed used for future weather rolls
func (c *Clock) SetSeed(seed int64) { c.cfg.Seed = seed }

// Config returns the clock configuration
func (c *Clock) Config() Config { return c.cfg }

// Advance moves the clock forward by one tick. Weather is re-rolled only
// when the season changes.
func (c *Clock) Advance() Transition {
	var tr Transition
	c.state.Tick++
	if c.state.Tick%uint64(c.cfg.TicksPerDay) != 0 {
		return tr
	}

	tr.NewDay = true
	c.state.Day++
	if c.state.Day < c.cfg.DaysPerSeason {
		return tr
	}

	tr.NewSeason = true
	c.state.Day = 0
	c.state.Season++
	if c.state.Season >= SeasonsPerYear {
		tr.NewYear = true
		c.state.Season = Spring
		c.state.Year++
	}
	c.state.Weather = RollWeather(c.cfg, c.seasonOrdinal())
	return tr
}

func (c *Clock) seasonOrdinal() uint64 {
	return uint64(c.state.Year)*SeasonsPerYear + uint64(c.state.Season)
}

// WeatherExposed reports whether the weather roll is visible yet
func (c *Clock) WeatherExposed() bool {
	return c.state.Year >= c.cfg.WeatherStartYear
}

// ExposedWeather returns the weather consumers should act on: the rolled
// value once the start year is reached, Average before that.
func (c *Clock) ExposedWeather() Weather {
	if !c.WeatherExposed() {
		return Average
	}
	return c.state.Weather
}

// Restore replaces the state with a saved one, bringing counters back into range
func (c *Clock) Restore(s State) {
	if s.Day < 0 || s.Day >= c.cfg.DaysPerSeason {
		s.Day = 0
	}
	if s.Season < Spring || s.Season > Winter {
		s.Season = Spring
	}
	if s.Year < 0 {
		s.Year = 0
	}
	if s.Weather < Poor || s.Weather > Good {
		s.Weather = Average
	}
	c.state = s
}

// RollWeather draws the weather of the season with the given ordinal
// (year*4 + season). The result depends only on the seed and the ordinal.
func RollWeather(cfg Config, ordinal uint64) Weather {
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), ordinal))
	x := rng.Float64()
	switch {
	case x < cfg.PoorChance:
		return Poor
	case x < cfg.PoorChance+cfg.GoodChance:
		return Good
	default:
		return Average
	}
}

// Format renders a state as "Summer Day 3, Year 1"
func Format(s State) string {
	return fmt.Sprintf("%s Day %d, Year %d", s.Season, s.Day+1, s.Year+1)
}
