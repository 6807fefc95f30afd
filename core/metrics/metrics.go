package metrics

import (
	"time"

	"github.com/kilianp07/demandcast/core/model"
)

// RunRecord captures one completed forecast run for observability.
type RunRecord struct {
	RunID        string
	RestaurantID string
	Start        time.Time
	HorizonHours int
	Summary      model.StaffingSummary
	// Accuracy and Improvement are present when the run included an
	// offline evaluation; both are percentages.
	Accuracy    float64
	Improvement float64
	Evaluated   bool
	Duration    time.Duration
}

// ForecastSink records forecast runs for observability purposes.
type ForecastSink interface {
	RecordRun(rec RunRecord) error
}

// PlanRecorder is implemented by sinks that also record the per-hour
// staffing plan.
type PlanRecorder interface {
	RecordPlan(runID string, plan []model.StaffingPlanEntry) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordRun implements ForecastSink.
func (NopSink) RecordRun(RunRecord) error { return nil }

// Config selects the enabled sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
