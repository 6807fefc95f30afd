package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/demandcast/core/features"
	"github.com/kilianp07/demandcast/core/model"
)

// demandHistory builds a clean hourly series with pronounced lunch and
// dinner peaks, starting on a Monday midnight.
func demandHistory(days int) []model.HourlyDemand {
	start := time.Date(2022, 3, 7, 0, 0, 0, 0, time.UTC)
	obs := make([]model.HourlyDemand, 0, days*24)
	for h := 0; h < days*24; h++ {
		hour := start.Add(time.Duration(h) * time.Hour)
		count := 10
		switch {
		case model.LunchRushFlag(hour):
			count = 30
		case model.DinnerRushFlag(hour):
			count = 40
		}
		if model.WeekendFlag(hour) {
			count += 5
		}
		obs = append(obs, model.HourlyDemand{
			Hour:         hour,
			RestaurantID: "R01",
			OrderCount:   count,
			IsWeekend:    model.WeekendFlag(hour),
			IsLunchRush:  model.LunchRushFlag(hour),
			IsDinnerRush: model.DinnerRushFlag(hour),
		})
	}
	return obs
}

func TestFitEmptySeries(t *testing.T) {
	_, err := New(Config{}).Fit(nil)
	require.ErrorIs(t, err, ErrEmptySeries)
}

func TestFitPredictHorizon(t *testing.T) {
	history := demandHistory(14)
	m, err := New(Config{}).Fit(history)
	require.NoError(t, err)

	last := history[len(history)-1].Hour // 23:00
	rows := FutureRows(last, 24, nil, nil)
	points, err := m.Predict(rows)
	require.NoError(t, err)
	require.Len(t, points, 24)

	var lunch, dinner int
	for _, p := range points {
		require.GreaterOrEqual(t, p.PredictedOrders, 0)
		require.GreaterOrEqual(t, p.LowerBound, 0.0)
		require.LessOrEqual(t, p.LowerBound, p.UpperBound)
		switch p.RushPeriod {
		case model.RushLunch:
			lunch++
		case model.RushDinner:
			dinner++
		}
	}
	// Hours 12-14 of the forecast day are lunch rush, 19-22 dinner rush.
	require.Equal(t, 3, lunch)
	require.Equal(t, 4, dinner)

	// Multiplicative rush effects: the lunch peak dwarfs the small hours.
	byHour := make(map[int]int)
	for _, p := range points {
		byHour[p.Hour.Hour()] = p.PredictedOrders
	}
	require.Greater(t, byHour[13], byHour[3])
}

func TestPredictMissingRegressor(t *testing.T) {
	m, err := New(Config{}).Fit(demandHistory(7))
	require.NoError(t, err)

	rows := FutureRows(time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC), 2, nil, nil)
	delete(rows[1].Regressors, model.RegWeather)
	_, err = m.Predict(rows)
	var mre *MissingRegressorError
	require.True(t, errors.As(err, &mre))
	require.Equal(t, model.RegWeather, mre.Name)
}

func TestPredictClampsNegative(t *testing.T) {
	// A bare trend with a strongly negative level forecasts below zero in
	// log space; the point and lower bound clamp at 0.
	m := &FittedModel{
		Beta:       []float64{-5, 0},
		Origin:     time.Date(2022, 3, 7, 0, 0, 0, 0, time.UTC),
		ScaleHours: 1,
		Sigma:      0.1,
		IntervalZ:  1.28,
	}
	rows := FutureRows(m.Origin, 3, nil, nil)
	for i := range rows {
		rows[i].Regressors = map[string]float64{}
	}
	points, err := m.Predict(rows)
	require.NoError(t, err)
	for _, p := range points {
		require.Equal(t, 0, p.PredictedOrders)
		require.Equal(t, 0.0, p.LowerBound)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	history := demandHistory(14)
	m, err := New(Config{}).Fit(history)
	require.NoError(t, err)

	rows := FutureRows(history[len(history)-1].Hour, 24, nil, nil)
	want, err := m.Predict(rows)
	require.NoError(t, err)

	blob, err := m.Serialize()
	require.NoError(t, err)
	restored, err := Deserialize(blob)
	require.NoError(t, err)
	got, err := restored.Predict(rows)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDeserializeGarbage(t *testing.T) {
	_, err := Deserialize([]byte("not a model"))
	require.Error(t, err)
}

func TestFutureRows(t *testing.T) {
	cal, err := features.NewCalendar([]string{"2022-03-15"})
	require.NoError(t, err)
	start := time.Date(2022, 3, 14, 23, 30, 0, 0, time.UTC)
	rows := FutureRows(start, 24, cal, features.FixedWeather(0.3))
	require.Len(t, rows, 24)
	require.Equal(t, time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC), rows[0].Hour)
	for _, r := range rows {
		for _, name := range model.RegressorNames {
			_, ok := r.Regressors[name]
			require.True(t, ok, "row %s missing %s", r.Hour, name)
		}
		require.Equal(t, 0.3, r.Regressors[model.RegWeather])
		require.Equal(t, 1.0, r.Regressors[model.RegFestival], "hour %s", r.Hour)
	}
}

func TestFutureRowsLocalZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2022, 3, 14, 10, 45, 0, 0, ist)
	rows := FutureRows(start, 6, nil, nil)
	require.Equal(t, time.Date(2022, 3, 14, 11, 0, 0, 0, ist), rows[0].Hour)
	// The local 12:00 and 13:00 hours carry the lunch-rush regressor.
	require.Equal(t, 1.0, rows[1].Regressors[model.RegLunchRush])
	require.Equal(t, 1.0, rows[2].Regressors[model.RegLunchRush])
	require.Equal(t, 0.0, rows[0].Regressors[model.RegLunchRush])
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 0.05, cfg.ChangepointPriorScale)
	require.Equal(t, 0.8, cfg.IntervalWidth)

	bad := Config{IntervalWidth: 1.5}
	bad.SetDefaults()
	require.Error(t, bad.Validate())
}
