package features

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/demandcast/core/model"
)

// Builder turns raw order events into the hourly demand table consumed by
// the forecaster. Events are grouped by (hour, restaurant); calendar and
// rush flags are derived from the hour alone, weather impacts come from
// the injected provider, and lag/rolling columns are appended per
// restaurant in time order.
type Builder struct {
	calendar *Calendar
	weather  WeatherProvider
}

// NewBuilder creates a Builder with the given festival calendar and
// weather provider.
func NewBuilder(cal *Calendar, weather WeatherProvider) *Builder {
	return &Builder{calendar: cal, weather: weather}
}

// Build aggregates the events into one row per (hour, restaurant) and
// appends the lag features. The returned table is fully defined: lag
// columns are backward- then forward-filled per restaurant, and a
// DataError is returned if any value stays undefined after both fills.
func (b *Builder) Build(events []model.OrderEvent) ([]model.HourlyDemand, error) {
	groups := make(map[string]*model.HourlyDemand)
	for _, ev := range events {
		hour := model.FloorHour(ev.Timestamp)
		key := ev.RestaurantID + "|" + strconv.FormatInt(hour.Unix(), 10)
		g, ok := groups[key]
		if !ok {
			g = &model.HourlyDemand{
				Hour:         hour,
				RestaurantID: ev.RestaurantID,
				IsWeekend:    model.WeekendFlag(hour),
				IsLunchRush:  model.LunchRushFlag(hour),
				IsDinnerRush: model.DinnerRushFlag(hour),
				IsFestival:   b.calendar.IsFestival(hour),
			}
			groups[key] = g
		}
		g.OrderCount += ev.OrderCount
	}

	rows := make([]model.HourlyDemand, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, *g)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].RestaurantID != rows[j].RestaurantID {
			return rows[i].RestaurantID < rows[j].RestaurantID
		}
		return rows[i].Hour.Before(rows[j].Hour)
	})

	// Weather is drawn in table order so seeded providers reproduce.
	for i := range rows {
		rows[i].WeatherImpact = b.weather.ImpactFor(rows[i].Hour, rows[i].RestaurantID)
	}

	for start := 0; start < len(rows); {
		end := start
		for end < len(rows) && rows[end].RestaurantID == rows[start].RestaurantID {
			end++
		}
		if err := appendLagFeatures(rows[start:end]); err != nil {
			return nil, err
		}
		start = end
	}
	return rows, nil
}

// appendLagFeatures computes the shift and rolling columns for one
// restaurant's series, already sorted by hour ascending.
func appendLagFeatures(series []model.HourlyDemand) error {
	n := len(series)
	lastHour := make([]float64, n)
	lastDay := make([]float64, n)
	mean3 := make([]float64, n)

	for i := range series {
		if i >= 1 {
			lastHour[i] = float64(series[i-1].OrderCount)
		} else {
			lastHour[i] = math.NaN()
		}
		if i >= 24 {
			lastDay[i] = float64(series[i-24].OrderCount)
		} else {
			lastDay[i] = math.NaN()
		}
		lo := i - 2
		if lo < 0 {
			lo = 0
		}
		window := make([]float64, 0, 3)
		for j := lo; j <= i; j++ {
			window = append(window, float64(series[j].OrderCount))
		}
		mean3[i] = round2(stat.Mean(window, nil))
	}

	cols := []struct {
		name   string
		values []float64
	}{
		{"orders_last_hour", lastHour},
		{"orders_last_day_same_hour", lastDay},
		{"orders_3h_mean", mean3},
	}
	for _, c := range cols {
		fillSeries(c.values)
		for _, v := range c.values {
			if math.IsNaN(v) {
				return &DataError{
					Column:       c.name,
					RestaurantID: series[0].RestaurantID,
					Reason:       "undefined after backward and forward fill",
				}
			}
		}
	}
	for i := range series {
		series[i].OrdersLastHour = lastHour[i]
		series[i].OrdersLastDaySameHour = lastDay[i]
		series[i].Orders3hMean = mean3[i]
	}
	return nil
}

// fillSeries applies a backward fill followed by a forward fill in place.
// NaN marks an undefined value.
func fillSeries(v []float64) {
	next := math.NaN()
	for i := len(v) - 1; i >= 0; i-- {
		if !math.IsNaN(v[i]) {
			next = v[i]
		} else if !math.IsNaN(next) {
			v[i] = next
		}
	}
	prev := math.NaN()
	for i := range v {
		if !math.IsNaN(v[i]) {
			prev = v[i]
		} else if !math.IsNaN(prev) {
			v[i] = prev
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
