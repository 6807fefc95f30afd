package features

import (
	"fmt"
	"math/rand"
	"time"
)

// WeatherProvider supplies the weather impact for one demand-table row.
// Impacts are drawn in table order (restaurant ascending, hour ascending),
// so providers backed by a seeded source stay deterministic across runs.
type WeatherProvider interface {
	ImpactFor(hour time.Time, restaurantID string) float64
}

// FixedWeather returns the same impact for every row.
type FixedWeather float64

// ImpactFor returns the fixed impact value.
func (f FixedWeather) ImpactFor(time.Time, string) float64 { return float64(f) }

// MapWeather looks impacts up from an explicit per-hour input, keyed by
// the hour in RFC3339. Hours absent from the map count as normal weather.
type MapWeather map[string]float64

// ImpactFor returns the configured impact for the hour, or 0.
func (m MapWeather) ImpactFor(hour time.Time, _ string) float64 {
	return m[hour.Format(time.RFC3339)]
}

// SimulatedWeather draws impacts from the reference categorical
// distribution: 70% normal (0), 20% moderate rain (0.3), 10% heavy
// rain (0.7). The seed is injected so runs are reproducible.
type SimulatedWeather struct {
	rng *rand.Rand
}

// NewSimulatedWeather creates a provider seeded with the given value.
func NewSimulatedWeather(seed int64) *SimulatedWeather {
	return &SimulatedWeather{rng: rand.New(rand.NewSource(seed))}
}

// ImpactFor draws the next impact from the distribution.
func (s *SimulatedWeather) ImpactFor(time.Time, string) float64 {
	u := s.rng.Float64()
	switch {
	case u < 0.7:
		return 0
	case u < 0.9:
		return 0.3
	default:
		return 0.7
	}
}

// WeatherConfig selects and parameterises the weather provider.
type WeatherConfig struct {
	// Mode is "fixed", "simulated" or "map".
	Mode string `json:"mode"`
	// Fixed is the impact used in fixed mode.
	Fixed float64 `json:"fixed"`
	// Seed drives the simulated draw.
	Seed int64 `json:"seed"`
	// Impacts maps RFC3339 hours to impacts in map mode.
	Impacts map[string]float64 `json:"impacts"`
}

// SetDefaults applies sane defaults.
func (c *WeatherConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "fixed"
	}
}

// Provider builds the WeatherProvider described by the config.
func (c WeatherConfig) Provider() (WeatherProvider, error) {
	switch c.Mode {
	case "fixed":
		return FixedWeather(c.Fixed), nil
	case "simulated":
		return NewSimulatedWeather(c.Seed), nil
	case "map":
		return MapWeather(c.Impacts), nil
	default:
		return nil, fmt.Errorf("unknown weather mode %s", c.Mode)
	}
}
