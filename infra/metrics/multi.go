package metrics

import (
	coremetrics "github.com/kilianp07/demandcast/core/metrics"
	"github.com/kilianp07/demandcast/core/model"
)

// MultiSink fans forecast records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.ForecastSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.ForecastSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRun(rec coremetrics.RunRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordPlan forwards the plan to sinks that support it.
func (m *MultiSink) RecordPlan(runID string, plan []model.StaffingPlanEntry) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PlanRecorder); ok {
			if err := rec.RecordPlan(runID, plan); err != nil {
				return err
			}
		}
	}
	return nil
}
