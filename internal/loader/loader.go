package loader

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/napolitain/idlekeep/internal/models"
)

//go:embed default.yaml
var defaultCatalog []byte

// settingsYAML represents the YAML structure for the settings block
type settingsYAML struct {
	TickSeconds       *float64           `yaml:"tick_seconds"`
	TicksPerDay       *int               `yaml:"ticks_per_day"`
	DaysPerSeason     *int               `yaml:"days_per_season"`
	WeatherStartYear  *int               `yaml:"weather_start_year"`
	PoorWeatherChance *float64           `yaml:"poor_weather_chance"`
	GoodWeatherChance *float64           `yaml:"good_weather_chance"`
	MaxOfflineHours   *float64           `yaml:"max_offline_hours"`
	Seed              int64              `yaml:"seed"`
	Seasonal          []seasonalRuleYAML `yaml:"seasonal"`
}

type seasonalRuleYAML struct {
	Resource string    `yaml:"resource"`
	Seasons  []float64 `yaml:"seasons"`
	Weather  []float64 `yaml:"weather"`
}

// ResourceYAML represents the YAML structure for a resource
type ResourceYAML struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	HasCapacity     bool    `yaml:"has_capacity"`
	InitialAmount   float64 `yaml:"initial_amount"`
	InitialCapacity float64 `yaml:"initial_capacity"`
	Unlocked        *bool   `yaml:"unlocked"`
}

// BuildingYAML represents the YAML structure for a building
type BuildingYAML struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	BaseCost    map[string]float64 `yaml:"base_cost"`
	CostScaling float64            `yaml:"cost_scaling"`
	Produces    map[string]float64 `yaml:"produces"`
	Consumes    map[string]float64 `yaml:"consumes"`
	Capacity    map[string]float64 `yaml:"capacity"`
	Requires    map[string]int     `yaml:"requires"`
	Unlocked    *bool              `yaml:"unlocked"`
}

// EffectYAML represents one upgrade effect; Kind selects which fields apply
type EffectYAML struct {
	Kind     string  `yaml:"kind"`
	Resource string  `yaml:"resource"`
	Building string  `yaml:"building"`
	Upgrade  string  `yaml:"upgrade"`
	Factor   float64 `yaml:"factor"`
}

// UpgradeYAML represents the YAML structure for an upgrade
type UpgradeYAML struct {
	ID                string             `yaml:"id"`
	Name              string             `yaml:"name"`
	Cost              map[string]float64 `yaml:"cost"`
	Effects           []EffectYAML       `yaml:"effects"`
	RequiresBuildings map[string]int     `yaml:"requires_buildings"`
	RequiresUpgrades  []string           `yaml:"requires_upgrades"`
	Unlocked          *bool              `yaml:"unlocked"`
}

type catalogYAML struct {
	Settings  settingsYAML   `yaml:"settings"`
	Resources []ResourceYAML `yaml:"resources"`
	Buildings []BuildingYAML `yaml:"buildings"`
	Upgrades  []UpgradeYAML  `yaml:"upgrades"`
}

// Load reads a catalog file, or the embedded default catalog when path is empty.
// JSON files are accepted as well since JSON is a subset of YAML.
func Load(path string) (*models.Definitions, error) {
	if path == "" {
		return LoadDefault()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// LoadDefault returns the embedded default catalog
func LoadDefault() (*models.Definitions, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*models.Definitions, error) {
	var raw catalogYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	defs := &models.Definitions{
		Settings: convertSettings(raw.Settings),
	}

	order := make([]models.ResourceID, 0, len(raw.Resources))
	for _, r := range raw.Resources {
		order = append(order, models.ResourceID(r.ID))
		defs.Resources = append(defs.Resources, models.ResourceDefinition{
			ID:              models.ResourceID(r.ID),
			Name:            nameOr(r.Name, r.ID),
			HasCapacity:     r.HasCapacity,
			InitialAmount:   r.InitialAmount,
			InitialCapacity: r.InitialCapacity,
			Unlocked:        boolOr(r.Unlocked, true),
		})
	}

	for _, b := range raw.Buildings {
		scaling := b.CostScaling
		if scaling == 0 {
			scaling = models.DefaultCostScaling
		}
		defs.Buildings = append(defs.Buildings, models.BuildingDefinition{
			ID:          models.BuildingID(b.ID),
			Name:        nameOr(b.Name, b.ID),
			BaseCost:    toCosts(b.BaseCost),
			CostScaling: scaling,
			Produces:    toRates(b.Produces, order),
			Consumes:    toRates(b.Consumes, order),
			Capacity:    toRates(b.Capacity, order),
			Requires:    toBuildingCounts(b.Requires),
			Unlocked:    boolOr(b.Unlocked, true),
		})
	}

	for _, u := range raw.Upgrades {
		effects := make([]models.Effect, 0, len(u.Effects))
		for i, e := range u.Effects {
			effect, err := toEffect(e)
			if err != nil {
				return nil, fmt.Errorf("upgrade %s effect %d: %w", u.ID, i, err)
			}
			effects = append(effects, effect)
		}
		required := make([]models.UpgradeID, len(u.RequiresUpgrades))
		for i, id := range u.RequiresUpgrades {
			required[i] = models.UpgradeID(id)
		}
		defs.Upgrades = append(defs.Upgrades, models.UpgradeDefinition{
			ID:                models.UpgradeID(u.ID),
			Name:              nameOr(u.Name, u.ID),
			Cost:              toCosts(u.Cost),
			Effects:           effects,
			RequiresBuildings: toBuildingCounts(u.RequiresBuildings),
			RequiresUpgrades:  required,
			Unlocked:          boolOr(u.Unlocked, true),
		})
	}

	if err := Validate(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func convertSettings(raw settingsYAML) models.Settings {
	s := models.DefaultSettings()
	if raw.TickSeconds != nil {
		s.TickSeconds = *raw.TickSeconds
	}
	if raw.TicksPerDay != nil {
		s.TicksPerDay = *raw.TicksPerDay
	}
	if raw.DaysPerSeason != nil {
		s.DaysPerSeason = *raw.DaysPerSeason
	}
	if raw.WeatherStartYear != nil {
		s.WeatherStartYear = *raw.WeatherStartYear
	}
	if raw.PoorWeatherChance != nil {
		s.PoorWeatherChance = *raw.PoorWeatherChance
	}
	if raw.GoodWeatherChance != nil {
		s.GoodWeatherChance = *raw.GoodWeatherChance
	}
	if raw.MaxOfflineHours != nil {
		s.MaxOfflineHours = *raw.MaxOfflineHours
	}
	s.Seed = raw.Seed
	for _, rule := range raw.Seasonal {
		s.Seasonal = append(s.Seasonal, models.SeasonalRule{
			Resource: models.ResourceID(rule.Resource),
			Seasons:  rule.Seasons,
			Weather:  rule.Weather,
		})
	}
	return s
}

func toEffect(e EffectYAML) (models.Effect, error) {
	switch e.Kind {
	case "production_multiplier":
		return models.ProductionMultiplier{Resource: models.ResourceID(e.Resource), Factor: e.Factor}, nil
	case "consumption_reduction":
		return models.ConsumptionReduction{Resource: models.ResourceID(e.Resource), Factor: e.Factor}, nil
	case "capacity_multiplier":
		return models.CapacityMultiplier{Resource: models.ResourceID(e.Resource), Factor: e.Factor}, nil
	case "unlock_building":
		return models.UnlockBuilding{Building: models.BuildingID(e.Building)}, nil
	case "unlock_upgrade":
		return models.UnlockUpgrade{Upgrade: models.UpgradeID(e.Upgrade)}, nil
	case "unlock_resource":
		return models.UnlockResource{Resource: models.ResourceID(e.Resource)}, nil
	}
	return nil, fmt.Errorf("unknown effect kind %q%s", e.Kind, didYouMean(e.Kind, effectKinds))
}

var effectKinds = []string{
	"production_multiplier",
	"consumption_reduction",
	"capacity_multiplier",
	"unlock_building",
	"unlock_upgrade",
	"unlock_resource",
}

func toCosts(raw map[string]float64) models.Costs {
	costs := make(models.Costs, len(raw))
	for res, amount := range raw {
		costs[models.ResourceID(res)] = amount
	}
	return costs
}

// toRates orders rates by the catalog resource order; unknown resources go
// last in name order so Validate can still report them.
func toRates(raw map[string]float64, order []models.ResourceID) []models.Rate {
	if len(raw) == 0 {
		return nil
	}
	rates := make([]models.Rate, 0, len(raw))
	seen := make(map[models.ResourceID]bool, len(raw))
	for _, id := range order {
		if amount, ok := raw[string(id)]; ok {
			rates = append(rates, models.Rate{Resource: id, Amount: amount})
			seen[id] = true
		}
	}
	for _, id := range toCosts(raw).Resources() {
		if !seen[id] {
			rates = append(rates, models.Rate{Resource: id, Amount: raw[string(id)]})
		}
	}
	return rates
}

func toBuildingCounts(raw map[string]int) map[models.BuildingID]int {
	if len(raw) == 0 {
		return nil
	}
	counts := make(map[models.BuildingID]int, len(raw))
	for id, n := range raw {
		counts[models.BuildingID(id)] = n
	}
	return counts
}

func nameOr(name, id string) string {
	if name == "" {
		return id
	}
	return name
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
