package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/demandcast/core/metrics"
	"github.com/kilianp07/demandcast/core/model"
	"github.com/kilianp07/demandcast/infra/logger"
)

// InfluxSink writes forecast runs to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.ForecastSink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run summary as a single point.
func (s *InfluxSink) RecordRun(rec coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("forecast_run").
		AddTag("run_id", rec.RunID).
		AddTag("restaurant_id", rec.RestaurantID).
		AddField("horizon_hours", rec.HorizonHours).
		AddField("predicted_orders", rec.Summary.TotalPredictedOrders).
		AddField("partners_saved", rec.Summary.PartnersSaved).
		AddField("cost_savings", round3(rec.Summary.CostSavings)).
		AddField("avg_partners_per_hour", round3(rec.Summary.AvgPartnersPerHour)).
		AddField("duration_seconds", rec.Duration.Seconds()).
		SetTime(rec.Start)
	if rec.Evaluated {
		p.AddField("accuracy_percent", round3(rec.Accuracy)).
			AddField("improvement_percent", round3(rec.Improvement))
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPlan writes one point per planned hour.
func (s *InfluxSink) RecordPlan(runID string, plan []model.StaffingPlanEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, e := range plan {
		p := write.NewPointWithMeasurement("staffing_plan").
			AddTag("run_id", runID).
			AddTag("rush_period", e.RushPeriod.String()).
			AddField("predicted_orders", e.PredictedOrders).
			AddField("partners_needed", e.PartnersNeeded).
			SetTime(e.Hour)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
