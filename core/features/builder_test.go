package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/demandcast/core/model"
)

func alternatingEvents(t *testing.T, restaurant string, hours int) []model.OrderEvent {
	t.Helper()
	start := time.Date(2022, 3, 7, 0, 0, 0, 0, time.UTC)
	events := make([]model.OrderEvent, 0, hours)
	for i := 0; i < hours; i++ {
		count := 10
		if i%2 == 1 {
			count = 20
		}
		events = append(events, model.OrderEvent{
			Timestamp:    start.Add(time.Duration(i) * time.Hour),
			RestaurantID: restaurant,
			ItemID:       "I01",
			OrderCount:   count,
		})
	}
	return events
}

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	cal, err := NewCalendar(nil)
	require.NoError(t, err)
	return NewBuilder(cal, FixedWeather(0))
}

func TestBuildAggregatesByHourAndRestaurant(t *testing.T) {
	b := newTestBuilder(t)
	ts := time.Date(2022, 3, 7, 12, 15, 0, 0, time.UTC)
	events := []model.OrderEvent{
		{Timestamp: ts, RestaurantID: "R01", ItemID: "I01", OrderCount: 3},
		{Timestamp: ts.Add(20 * time.Minute), RestaurantID: "R01", ItemID: "I02", OrderCount: 4},
		{Timestamp: ts.Add(time.Hour), RestaurantID: "R01", ItemID: "I01", OrderCount: 5},
	}
	rows, err := b.Build(events)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 7, rows[0].OrderCount)
	require.Equal(t, time.Date(2022, 3, 7, 12, 0, 0, 0, time.UTC), rows[0].Hour)
	require.True(t, rows[0].IsLunchRush)
	require.False(t, rows[0].IsDinnerRush)
	require.Equal(t, 5, rows[1].OrderCount)
}

func TestBuildRowUniqueness(t *testing.T) {
	b := newTestBuilder(t)
	events := alternatingEvents(t, "R01", 48)
	// Split several events into the same hour to exercise grouping.
	events = append(events, model.OrderEvent{
		Timestamp:    events[0].Timestamp.Add(30 * time.Minute),
		RestaurantID: "R01",
		ItemID:       "I02",
		OrderCount:   1,
	})
	rows, err := b.Build(events)
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, r := range rows {
		key := r.RestaurantID + r.Hour.String()
		require.False(t, seen[key], "duplicate row for %s", key)
		seen[key] = true
	}
	require.Len(t, rows, 48)
}

func TestLagFeatures(t *testing.T) {
	b := newTestBuilder(t)
	rows, err := b.Build(alternatingEvents(t, "R01", 48))
	require.NoError(t, err)
	require.Len(t, rows, 48)

	// orders_last_hour at step i equals order_count at i-1; step 0 is
	// backward-filled from step 1.
	for i := 1; i < len(rows); i++ {
		require.Equal(t, float64(rows[i-1].OrderCount), rows[i].OrdersLastHour, "step %d", i)
	}
	require.Equal(t, rows[1].OrdersLastHour, rows[0].OrdersLastHour)

	// Trailing mean over {10,20,10} rounded to two decimals.
	require.Equal(t, 13.33, rows[2].Orders3hMean)
	require.Equal(t, 10.0, rows[0].Orders3hMean)
	require.Equal(t, 15.0, rows[1].Orders3hMean)

	// shift(24) defined from step 24 onwards, filled before that.
	require.Equal(t, float64(rows[0].OrderCount), rows[24].OrdersLastDaySameHour)
	for _, r := range rows {
		require.False(t, math.IsNaN(r.OrdersLastHour))
		require.False(t, math.IsNaN(r.OrdersLastDaySameHour))
		require.False(t, math.IsNaN(r.Orders3hMean))
	}
}

func TestLagsComputedPerRestaurant(t *testing.T) {
	b := newTestBuilder(t)
	events := append(alternatingEvents(t, "R01", 30), alternatingEvents(t, "R02", 30)...)
	rows, err := b.Build(events)
	require.NoError(t, err)
	require.Len(t, rows, 60)
	// The first R02 row must not see R01's last value.
	var firstR02 *model.HourlyDemand
	for i := range rows {
		if rows[i].RestaurantID == "R02" {
			firstR02 = &rows[i]
			break
		}
	}
	require.NotNil(t, firstR02)
	require.Equal(t, 10.0, firstR02.OrdersLastHour) // backward-filled from R02's own series
}

func TestBuildSingleHourSeriesFails(t *testing.T) {
	b := newTestBuilder(t)
	events := []model.OrderEvent{{
		Timestamp:    time.Date(2022, 3, 7, 9, 0, 0, 0, time.UTC),
		RestaurantID: "R01",
		OrderCount:   5,
	}}
	_, err := b.Build(events)
	var de *DataError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "orders_last_hour", de.Column)
	require.Equal(t, "R01", de.RestaurantID)
}

func TestBuildLocalZoneHourFlooring(t *testing.T) {
	b := newTestBuilder(t)
	ist := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2022, 3, 7, 0, 15, 0, 0, ist)
	events := make([]model.OrderEvent, 0, 48)
	for i := 0; i < 48; i++ {
		events = append(events, model.OrderEvent{
			Timestamp:    start.Add(time.Duration(i) * time.Hour),
			RestaurantID: "R01",
			ItemID:       "I01",
			OrderCount:   10,
		})
	}
	rows, err := b.Build(events)
	require.NoError(t, err)
	require.Len(t, rows, 48)
	for i, r := range rows {
		require.Equal(t, 0, r.Hour.Minute(), "row %d not floored to the wall-clock hour", i)
		require.Equal(t, i%24, r.Hour.Hour(), "row %d", i)
	}
	// The 12:15 half-hour-offset event belongs to the local 12:00 bucket
	// and keeps its lunch-rush flag.
	require.True(t, rows[12].IsLunchRush)
	require.False(t, rows[11].IsLunchRush)
	require.True(t, rows[19].IsDinnerRush)
}

func TestBuildEmptyInput(t *testing.T) {
	b := newTestBuilder(t)
	rows, err := b.Build(nil)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestFestivalFlag(t *testing.T) {
	cal, err := NewCalendar([]string{"2022-03-08"})
	require.NoError(t, err)
	b := NewBuilder(cal, FixedWeather(0))
	rows, err := b.Build(alternatingEvents(t, "R01", 48))
	require.NoError(t, err)
	for _, r := range rows {
		want := r.Hour.Format("2006-01-02") == "2022-03-08"
		require.Equal(t, want, r.IsFestival, "hour %s", r.Hour)
	}
}

func TestFillSeries(t *testing.T) {
	nan := math.NaN()
	v := []float64{nan, nan, 3, nan, 5}
	fillSeries(v)
	require.Equal(t, []float64{3, 3, 3, 3, 5}, v)

	w := []float64{1, nan, nan}
	fillSeries(w)
	require.Equal(t, []float64{1, 1, 1}, w)
}
