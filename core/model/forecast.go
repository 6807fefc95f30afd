package model

import "time"

// RushPeriod labels an hour for staffing emphasis.
type RushPeriod int

const (
	RushRegular RushPeriod = iota
	RushLunch
	RushDinner
)

// String returns the label used in exported plans.
func (r RushPeriod) String() string {
	switch r {
	case RushLunch:
		return "Lunch Rush"
	case RushDinner:
		return "Dinner Rush"
	default:
		return "Regular"
	}
}

// RushPeriodFor derives the label from the hour's rush flags. Lunch takes
// precedence over dinner; the windows are disjoint so both flags can only
// be set by a malformed feature row.
func RushPeriodFor(lunch, dinner bool) RushPeriod {
	switch {
	case lunch:
		return RushLunch
	case dinner:
		return RushDinner
	default:
		return RushRegular
	}
}

// FeatureRow carries the exogenous regressors for one future hour handed
// to the forecaster's predict step. Regressors are keyed by column name
// so the forecaster can detect rows missing a regressor it was fit with.
type FeatureRow struct {
	Hour       time.Time
	Regressors map[string]float64
}

// Flag reads a boolean regressor; any non-zero value counts as set.
func (r FeatureRow) Flag(name string) bool {
	return r.Regressors[name] != 0
}

// Regressor column names shared by the demand table and the forecaster.
const (
	RegWeekend    = "is_weekend"
	RegLunchRush  = "is_lunch_rush"
	RegDinnerRush = "is_dinner_rush"
	RegWeather    = "weather_impact"
	RegFestival   = "is_festival"
)

// RegressorNames lists the exogenous regressors in table order.
var RegressorNames = []string{RegWeekend, RegLunchRush, RegDinnerRush, RegWeather, RegFestival}

// RegressorRow projects the observation's context features into a
// FeatureRow, the shape the forecaster consumes.
func (d HourlyDemand) RegressorRow() FeatureRow {
	return FeatureRow{
		Hour: d.Hour,
		Regressors: map[string]float64{
			RegWeekend:    boolToFloat(d.IsWeekend),
			RegLunchRush:  boolToFloat(d.IsLunchRush),
			RegDinnerRush: boolToFloat(d.IsDinnerRush),
			RegWeather:    d.WeatherImpact,
			RegFestival:   boolToFloat(d.IsFestival),
		},
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ForecastPoint is one forecasted hour with its uncertainty band.
type ForecastPoint struct {
	Hour            time.Time
	PredictedOrders int // clamped at 0
	LowerBound      float64
	UpperBound      float64
	RushPeriod      RushPeriod
}

// StaffingPlanEntry maps one forecasted hour to a partner recommendation.
type StaffingPlanEntry struct {
	Hour            time.Time
	PredictedOrders int
	PartnersNeeded  int // always >= 1
	RushPeriod      RushPeriod
}

// StaffingSummary aggregates a staffing plan into business metrics. It is
// recomputed from the plan on every request and never persisted.
type StaffingSummary struct {
	TotalPredictedOrders int
	PartnersSaved        int
	CostSavings          float64
	AvgPartnersPerHour   float64
}
