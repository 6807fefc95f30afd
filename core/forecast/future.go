package forecast

import (
	"time"

	"github.com/kilianp07/demandcast/core/features"
	"github.com/kilianp07/demandcast/core/model"
)

// FutureRows generates the feature rows for the horizonHours hours that
// follow start. Rush and weekend flags are derived from each hour,
// festival flags from the calendar, weather from the provider. A nil
// calendar or provider defaults to no festivals and normal weather.
func FutureRows(start time.Time, horizonHours int, cal *features.Calendar, weather features.WeatherProvider) []model.FeatureRow {
	if weather == nil {
		weather = features.FixedWeather(0)
	}
	base := model.FloorHour(start)
	rows := make([]model.FeatureRow, 0, horizonHours)
	for i := 1; i <= horizonHours; i++ {
		h := base.Add(time.Duration(i) * time.Hour)
		rows = append(rows, model.FeatureRow{
			Hour: h,
			Regressors: map[string]float64{
				model.RegWeekend:    flag(model.WeekendFlag(h)),
				model.RegLunchRush:  flag(model.LunchRushFlag(h)),
				model.RegDinnerRush: flag(model.DinnerRushFlag(h)),
				model.RegWeather:    weather.ImpactFor(h, ""),
				model.RegFestival:   flag(cal.IsFestival(h)),
			},
		})
	}
	return rows
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
