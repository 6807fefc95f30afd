package forecast

import "fmt"

// Config defines the forecaster tunables loaded from configuration.
type Config struct {
	// ChangepointPriorScale controls how aggressively the trend can bend
	// at detected change points. Lower values favour smoother trends.
	ChangepointPriorScale float64 `json:"changepoint_prior_scale"`
	// Changepoints is the number of candidate trend change points placed
	// over the first 80% of the history.
	Changepoints int `json:"changepoints"`
	// DailyOrder and WeeklyOrder are the Fourier orders of the daily and
	// weekly seasonal components. Yearly seasonality is deliberately
	// absent: the horizon is operational, not annual.
	DailyOrder  int `json:"daily_order"`
	WeeklyOrder int `json:"weekly_order"`
	// IntervalWidth is the nominal coverage of the prediction interval.
	IntervalWidth float64 `json:"interval_width"`
}

// SetDefaults applies the reference tuning.
func (c *Config) SetDefaults() {
	if c.ChangepointPriorScale == 0 {
		c.ChangepointPriorScale = 0.05
	}
	if c.Changepoints == 0 {
		c.Changepoints = 25
	}
	if c.DailyOrder == 0 {
		c.DailyOrder = 4
	}
	if c.WeeklyOrder == 0 {
		c.WeeklyOrder = 3
	}
	if c.IntervalWidth == 0 {
		c.IntervalWidth = 0.8
	}
}

// Validate checks the tunables are usable.
func (c Config) Validate() error {
	if c.ChangepointPriorScale < 0 {
		return fmt.Errorf("changepoint_prior_scale must be non-negative")
	}
	if c.Changepoints < 0 {
		return fmt.Errorf("changepoints must be non-negative")
	}
	if c.DailyOrder < 0 || c.WeeklyOrder < 0 {
		return fmt.Errorf("seasonality orders must be non-negative")
	}
	if c.IntervalWidth <= 0 || c.IntervalWidth >= 1 {
		return fmt.Errorf("interval_width must be in (0,1)")
	}
	return nil
}
