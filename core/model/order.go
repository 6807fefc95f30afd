package model

import "time"

// OrderEvent is a single raw order record as delivered by the loader.
type OrderEvent struct {
	Timestamp    time.Time
	RestaurantID string
	ItemID       string
	OrderCount   int
}

// HourlyDemand aggregates the orders of one restaurant over one hour,
// enriched with the calendar and context features the forecaster consumes.
type HourlyDemand struct {
	Hour         time.Time // floored to the hour
	RestaurantID string
	OrderCount   int

	IsWeekend    bool
	IsLunchRush  bool
	IsDinnerRush bool
	IsFestival   bool
	// WeatherImpact is 0 for normal weather, 0.3 for moderate rain and
	// 0.7 for heavy rain.
	WeatherImpact float64

	// Lag and rolling features, appended per restaurant after sorting by
	// hour. They are filled before the table leaves the feature builder.
	OrdersLastHour        float64
	OrdersLastDaySameHour float64
	Orders3hMean          float64
}

// FeatureColumns lists the demand-table columns in the order they are
// persisted. Used by the table store and schema validation.
var FeatureColumns = []string{
	"hour", "restaurant_id", "order_count",
	"is_weekend", "is_lunch_rush", "is_dinner_rush", "is_festival",
	"weather_impact",
	"orders_last_hour", "orders_last_day_same_hour", "orders_3h_mean",
}

// FloorHour floors t to the start of its wall-clock hour, keeping the
// location. Truncate would anchor on absolute time and shift buckets by
// the fractional offset in zones like IST (+05:30), moving hour-derived
// flags off their windows.
func FloorHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// WeekendFlag reports whether t falls on Saturday or Sunday.
func WeekendFlag(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// LunchRushFlag reports whether the hour falls inside the lunch window.
func LunchRushFlag(t time.Time) bool {
	h := t.Hour()
	return h >= 12 && h <= 14
}

// DinnerRushFlag reports whether the hour falls inside the dinner window.
func DinnerRushFlag(t time.Time) bool {
	h := t.Hour()
	return h >= 19 && h <= 22
}
