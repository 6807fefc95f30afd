package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSimulatedWeatherDeterministic(t *testing.T) {
	a := NewSimulatedWeather(42)
	b := NewSimulatedWeather(42)
	hour := time.Date(2022, 3, 7, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		h := hour.Add(time.Duration(i) * time.Hour)
		require.Equal(t, a.ImpactFor(h, "R01"), b.ImpactFor(h, "R01"), "draw %d", i)
	}
}

func TestSimulatedWeatherSupport(t *testing.T) {
	w := NewSimulatedWeather(1)
	hour := time.Now()
	counts := map[float64]int{}
	for i := 0; i < 1000; i++ {
		v := w.ImpactFor(hour, "R01")
		counts[v]++
	}
	require.Len(t, counts, 3)
	// Normal weather dominates the reference distribution.
	require.Greater(t, counts[0.0], counts[0.3])
	require.Greater(t, counts[0.3], counts[0.7])
}

func TestWeatherConfigProvider(t *testing.T) {
	cases := []struct {
		cfg     WeatherConfig
		wantErr bool
	}{
		{WeatherConfig{Mode: "fixed", Fixed: 0.3}, false},
		{WeatherConfig{Mode: "simulated", Seed: 7}, false},
		{WeatherConfig{Mode: "map", Impacts: map[string]float64{"2022-03-07T12:00:00Z": 0.7}}, false},
		{WeatherConfig{Mode: "storm"}, true},
	}
	for _, c := range cases {
		p, err := c.cfg.Provider()
		if c.wantErr {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		require.NotNil(t, p)
	}
}

func TestMapWeatherLookup(t *testing.T) {
	hour := time.Date(2022, 3, 7, 12, 0, 0, 0, time.UTC)
	m := MapWeather{hour.Format(time.RFC3339): 0.7}
	require.Equal(t, 0.7, m.ImpactFor(hour, "R01"))
	require.Equal(t, 0.0, m.ImpactFor(hour.Add(time.Hour), "R01"))
}

func TestCalendarRejectsBadDate(t *testing.T) {
	_, err := NewCalendar([]string{"03/07/2022"})
	require.Error(t, err)
}
