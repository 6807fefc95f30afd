package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/demandcast/core/metrics"
)

// PromSink records forecast runs in Prometheus metrics.
type PromSink struct {
	runs          *prometheus.CounterVec
	orders        *prometheus.GaugeVec
	partnersSaved *prometheus.GaugeVec
	accuracy      *prometheus.GaugeVec
	duration      prometheus.Histogram
}

// NewPromSink registers forecast metrics on the default Prometheus
// registerer. The exposition server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_runs_total",
			Help: "Total number of completed forecast runs",
		}, []string{"restaurant_id"}),
		orders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "forecast_predicted_orders",
			Help: "Total predicted orders of the latest run",
		}, []string{"restaurant_id"}),
		partnersSaved: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "forecast_partners_saved",
			Help: "Partners saved versus the baseline policy in the latest run",
		}, []string{"restaurant_id"}),
		accuracy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "forecast_accuracy_percent",
			Help: "Holdout accuracy of the latest evaluated run",
		}, []string{"restaurant_id"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "forecast_run_duration_seconds",
			Help:    "Wall time of a full pipeline run",
			Buckets: prometheus.DefBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{s.runs, s.orders, s.partnersSaved, s.accuracy, s.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RecordRun implements coremetrics.ForecastSink.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	s.runs.WithLabelValues(rec.RestaurantID).Inc()
	s.orders.WithLabelValues(rec.RestaurantID).Set(float64(rec.Summary.TotalPredictedOrders))
	s.partnersSaved.WithLabelValues(rec.RestaurantID).Set(float64(rec.Summary.PartnersSaved))
	if rec.Evaluated {
		s.accuracy.WithLabelValues(rec.RestaurantID).Set(rec.Accuracy)
	}
	s.duration.Observe(rec.Duration.Seconds())
	return nil
}
