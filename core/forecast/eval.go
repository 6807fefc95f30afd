package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kilianp07/demandcast/core/model"
)

// BaselineMAPE is the industry error rate forecasts are compared against
// when no override is configured.
const BaselineMAPE = 0.35

// Evaluation summarises an offline holdout run.
type Evaluation struct {
	TrainHours  int
	TestHours   int
	MAPE        float64
	Accuracy    float64 // (1 - MAPE) * 100
	Improvement float64 // % better than the baseline error rate
}

// Evaluate fits on all but the most recent holdout window and scores the
// predictions on the held-out hours. It is an offline utility and takes
// no part in the online forecast path.
func Evaluate(f *Forecaster, history []model.HourlyDemand, holdout time.Duration, baselineMAPE float64) (Evaluation, error) {
	if len(history) == 0 {
		return Evaluation{}, ErrEmptySeries
	}
	if baselineMAPE <= 0 {
		baselineMAPE = BaselineMAPE
	}
	obs := make([]model.HourlyDemand, len(history))
	copy(obs, history)
	sort.Slice(obs, func(i, j int) bool { return obs[i].Hour.Before(obs[j].Hour) })

	cutoff := obs[len(obs)-1].Hour.Add(-holdout)
	var train, test []model.HourlyDemand
	for _, o := range obs {
		if o.Hour.After(cutoff) {
			test = append(test, o)
		} else {
			train = append(train, o)
		}
	}
	if len(train) == 0 || len(test) == 0 {
		return Evaluation{}, fmt.Errorf("holdout %s leaves train=%d test=%d hours", holdout, len(train), len(test))
	}

	m, err := f.Fit(train)
	if err != nil {
		return Evaluation{}, err
	}
	rows := make([]model.FeatureRow, len(test))
	for i, o := range test {
		rows[i] = o.RegressorRow()
	}
	points, err := m.Predict(rows)
	if err != nil {
		return Evaluation{}, err
	}

	// Zero-order hours are skipped: a percentage error is undefined there.
	var sum float64
	var count int
	for i, o := range test {
		if o.OrderCount == 0 {
			continue
		}
		actual := float64(o.OrderCount)
		sum += math.Abs(actual-float64(points[i].PredictedOrders)) / actual
		count++
	}
	if count == 0 {
		return Evaluation{}, fmt.Errorf("holdout window has no non-zero hours")
	}
	mape := sum / float64(count)
	return Evaluation{
		TrainHours:  len(train),
		TestHours:   len(test),
		MAPE:        mape,
		Accuracy:    (1 - mape) * 100,
		Improvement: (baselineMAPE - mape) / baselineMAPE * 100,
	}, nil
}
