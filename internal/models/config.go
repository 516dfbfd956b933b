package models

import "time"

// Default game tunables
const (
	DefaultTickSeconds       = 1.0
	DefaultTicksPerDay       = 60
	DefaultDaysPerSeason     = 30
	DefaultWeatherStartYear  = 2
	DefaultPoorWeatherChance = 0.2
	DefaultGoodWeatherChance = 0.2
	DefaultMaxOfflineHours   = 12.0
	DefaultCostScaling       = 1.15
)

// SeasonalRule scales production of one resource by season and by the
// weather exposed to the player. Missing entries count as 1.
type SeasonalRule struct {
	Resource ResourceID
	Seasons  []float64 // indexed by season (spring, summer, autumn, winter)
	Weather  []float64 // indexed by weather (poor, average, good)
}

// Settings holds the simulation tunables of a catalog
type Settings struct {
	TickSeconds       float64
	TicksPerDay       int
	DaysPerSeason     int
	WeatherStartYear  int
	PoorWeatherChance float64
	GoodWeatherChance float64
	MaxOfflineHours   float64
	Seed              int64
	Seasonal          []SeasonalRule
}

// DefaultSettings returns the settings used when a catalog leaves them unset
func DefaultSettings() Settings {
	return Settings{
		TickSeconds:       DefaultTickSeconds,
		TicksPerDay:       DefaultTicksPerDay,
		DaysPerSeason:     DefaultDaysPerSeason,
		WeatherStartYear:  DefaultWeatherStartYear,
		PoorWeatherChance: DefaultPoorWeatherChance,
		GoodWeatherChance: DefaultGoodWeatherChance,
		MaxOfflineHours:   DefaultMaxOfflineHours,
	}
}

// TickInterval returns the real-time length of one tick
func (s Settings) TickInterval() time.Duration {
	return time.Duration(s.TickSeconds * float64(time.Second))
}

// MaxOffline returns the cap applied to offline catch-up; zero disables offline progress
func (s Settings) MaxOffline() time.Duration {
	return time.Duration(s.MaxOfflineHours * float64(time.Hour))
}
