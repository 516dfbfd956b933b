package clock

import (
	"testing"

	"github.com/napolitain/idlekeep/internal/models"
)

func smallConfig() Config {
	return Config{
		TicksPerDay:      2,
		DaysPerSeason:    3,
		WeatherStartYear: 2,
		PoorChance:       0.3,
		GoodChance:       0.3,
		Seed:             42,
	}
}

func TestAdvanceRollsOver(t *testing.T) {
	c := New(smallConfig())

	tr := c.Advance()
	if tr.Changed() {
		t.Fatalf("tick 1 should not change the day: %+v", tr)
	}
	tr = c.Advance()
	if !tr.NewDay || tr.NewSeason {
		t.Fatalf("tick 2 should start day 1 only: %+v", tr)
	}
	if s := c.State(); s.Day != 1 || s.Season != Spring {
		t.Fatalf("state after tick 2 = %+v", s)
	}

	// 2 ticks/day * 3 days/season
	for c.State().Tick < 6 {
		tr = c.Advance()
	}
	if !tr.NewSeason || tr.NewYear {
		t.Fatalf("tick 6 should start a season: %+v", tr)
	}
	if s := c.State(); s.Day != 0 || s.Season != Summer || s.Year != 0 {
		t.Fatalf("state after tick 6 = %+v", s)
	}

	for c.State().Tick < 24 {
		tr = c.Advance()
	}
	if !tr.NewYear {
		t.Fatalf("tick 24 should start a year: %+v", tr)
	}
	if s := c.State(); s.Season != Spring || s.Year != 1 {
		t.Fatalf("state after tick 24 = %+v", s)
	}
}

// TestWeatherRerolledOnlyOnSeasonChange runs several years and checks the
// raw weather never changes on a tick that did not start a season
func TestWeatherRerolledOnlyOnSeasonChange(t *testing.T) {
	cfg := smallConfig()
	c := New(cfg)
	rolls := 0

	for i := 0; i < 6*4*10; i++ {
		before := c.State().Weather
		tr := c.Advance()
		after := c.State().Weather
		if !tr.NewSeason && before != after {
			t.Fatalf("weather changed at tick %d without a season change", c.State().Tick)
		}
		if tr.NewSeason {
			rolls++
			s := c.State()
			want := RollWeather(cfg, uint64(s.Year)*SeasonsPerYear+uint64(s.Season))
			if after != want {
				t.Errorf("season %d/%d weather = %v, want %v", s.Year, s.Season, after, want)
			}
		}
	}
	if rolls != 40 {
		t.Errorf("rolled %d times, want 40", rolls)
	}
}

func TestWeatherGatedUntilStartYear(t *testing.T) {
	cfg := smallConfig()
	cfg.PoorChance = 1
	cfg.GoodChance = 0
	c := New(cfg)

	// first season change rolls Poor but it stays hidden
	for c.State().Tick < 6 {
		c.Advance()
	}
	if c.State().Weather != Poor {
		t.Fatalf("underlying weather = %v, want Poor", c.State().Weather)
	}
	if c.WeatherExposed() || c.ExposedWeather() != Average {
		t.Fatalf("weather exposed before start year: %v", c.ExposedWeather())
	}

	for c.State().Year < cfg.WeatherStartYear {
		if c.ExposedWeather() != Average {
			t.Fatalf("year %d exposed %v", c.State().Year, c.ExposedWeather())
		}
		c.Advance()
	}
	if c.ExposedWeather() != Poor {
		t.Errorf("weather in start year = %v, want Poor", c.ExposedWeather())
	}
}

func TestRollWeatherDeterministic(t *testing.T) {
	cfg := smallConfig()
	for ordinal := uint64(0); ordinal < 100; ordinal++ {
		a := RollWeather(cfg, ordinal)
		b := RollWeather(cfg, ordinal)
		if a != b {
			t.Fatalf("ordinal %d rolled %v then %v", ordinal, a, b)
		}
	}

	cfg.PoorChance, cfg.GoodChance = 0, 0
	for ordinal := uint64(0); ordinal < 100; ordinal++ {
		if w := RollWeather(cfg, ordinal); w != Average {
			t.Fatalf("zero chances rolled %v", w)
		}
	}
}

func TestRollWeatherDistribution(t *testing.T) {
	cfg := smallConfig()
	counts := map[Weather]int{}
	const n = 10000
	for ordinal := uint64(0); ordinal < n; ordinal++ {
		counts[RollWeather(cfg, ordinal)]++
	}
	for w, want := range map[Weather]float64{Poor: 0.3, Average: 0.4, Good: 0.3} {
		got := float64(counts[w]) / n
		if got < want-0.03 || got > want+0.03 {
			t.Errorf("%v frequency %.3f, want about %.2f", w, got, want)
		}
	}
	t.Logf("weather counts: %v", counts)
}

func TestRestoreClampsState(t *testing.T) {
	c := New(smallConfig())
	c.Restore(State{Tick: 99, Day: 7, Season: 9, Year: -1, Weather: 5})
	s := c.State()
	if s.Tick != 99 || s.Day != 0 || s.Season != Spring || s.Year != 0 || s.Weather != Average {
		t.Errorf("restored state = %+v", s)
	}
}

func TestSeasonalFactor(t *testing.T) {
	cfg := smallConfig()
	cfg.WeatherStartYear = 0
	cfg.PoorChance, cfg.GoodChance = 0, 1
	c := New(cfg)
	s := NewSeasonal(c, []models.SeasonalRule{{
		Resource: "food",
		Seasons:  []float64{1, 2, 3, 0.5},
		Weather:  []float64{0.5, 1, 1.5},
	}})

	// spring of year zero starts with Average weather
	if got := s.ProductionFactor("food"); got != 1 {
		t.Errorf("spring factor = %v, want 1", got)
	}
	if got := s.ProductionFactor("wood"); got != 1 {
		t.Errorf("unruled resource factor = %v, want 1", got)
	}

	for c.State().Season != Summer {
		c.Advance()
	}
	if got := s.ProductionFactor("food"); got != 3 {
		t.Errorf("summer with good weather = %v, want 2 * 1.5", got)
	}
}

func TestFormat(t *testing.T) {
	got := Format(State{Day: 2, Season: Autumn, Year: 0})
	if got != "Autumn Day 3, Year 1" {
		t.Errorf("Format = %q", got)
	}
}
