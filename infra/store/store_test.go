package store

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/demandcast/core/features"
	"github.com/kilianp07/demandcast/core/forecast"
	"github.com/kilianp07/demandcast/core/model"
)

func sampleTable() []model.HourlyDemand {
	hour := time.Date(2022, 3, 7, 12, 0, 0, 0, time.UTC)
	return []model.HourlyDemand{
		{
			Hour: hour, RestaurantID: "R01", OrderCount: 25,
			IsLunchRush: true, WeatherImpact: 0.3,
			OrdersLastHour: 20, OrdersLastDaySameHour: 22, Orders3hMean: 21.67,
		},
		{
			Hour: hour.Add(time.Hour), RestaurantID: "R01", OrderCount: 18,
			IsLunchRush: true,
			OrdersLastHour: 25, OrdersLastDaySameHour: 19, Orders3hMean: 21,
		},
	}
}

func TestTableRoundTrip(t *testing.T) {
	rows := sampleTable()
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, rows))

	got, err := ReadTable(&buf)
	require.NoError(t, err)
	require.Equal(t, rows, got)
}

func TestReadTableMissingColumn(t *testing.T) {
	data := "hour,restaurant_id,order_count\n2022-03-07T12:00:00Z,R01,5\n"
	_, err := ReadTable(strings.NewReader(data))
	var de *features.DataError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "is_weekend", de.Column)
}

func TestSaveLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	rows := sampleTable()
	require.NoError(t, SaveTable(path, rows))
	got, err := LoadTable(path)
	require.NoError(t, err)
	require.Equal(t, rows, got)
}

func TestModelArtifactRoundTrip(t *testing.T) {
	history := make([]model.HourlyDemand, 0, 72)
	start := time.Date(2022, 3, 7, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 72; h++ {
		hour := start.Add(time.Duration(h) * time.Hour)
		history = append(history, model.HourlyDemand{
			Hour: hour, RestaurantID: "R01", OrderCount: 10 + h%5,
			IsLunchRush: model.LunchRushFlag(hour), IsDinnerRush: model.DinnerRushFlag(hour),
		})
	}
	fitted, err := forecast.New(forecast.Config{}).Fit(history)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, SaveModel(path, fitted))
	restored, err := LoadModel(path)
	require.NoError(t, err)

	rows := forecast.FutureRows(start.Add(71*time.Hour), 12, nil, nil)
	want, err := fitted.Predict(rows)
	require.NoError(t, err)
	got, err := restored.Predict(rows)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadModelMissing(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
