package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/demandcast/config"
	"github.com/kilianp07/demandcast/core/features"
	"github.com/kilianp07/demandcast/core/forecast"
	coremetrics "github.com/kilianp07/demandcast/core/metrics"
	"github.com/kilianp07/demandcast/core/model"
	"github.com/kilianp07/demandcast/core/staffing"
	"github.com/kilianp07/demandcast/infra/history"
	"github.com/kilianp07/demandcast/infra/loader"
	"github.com/kilianp07/demandcast/infra/logger"
	"github.com/kilianp07/demandcast/infra/metrics"
	"github.com/kilianp07/demandcast/infra/publish"
	"github.com/kilianp07/demandcast/infra/store"
	"github.com/kilianp07/demandcast/internal/eventbus"
	"github.com/kilianp07/demandcast/pkg/export"
)

// RunEvent is published on the bus after every completed pipeline run.
type RunEvent struct {
	Record coremetrics.RunRecord
	Plan   export.Plan
}

// Service wires the pipeline stages and collaborators from configuration
// and executes forecast runs.
type Service struct {
	cfg        *config.Config
	loader     *loader.CSVLoader
	calendar   *features.Calendar
	builder    *features.Builder
	forecaster *forecast.Forecaster
	translator *staffing.Translator
	sink       coremetrics.ForecastSink
	publisher  publish.Publisher
	hist       *history.SQLiteStore
	bus        *eventbus.Bus[RunEvent]
	log        logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	cal, err := features.NewCalendar(cfg.Features.FestivalDates)
	if err != nil {
		return nil, fmt.Errorf("festival calendar: %w", err)
	}
	weather, err := cfg.Features.Weather.Provider()
	if err != nil {
		return nil, fmt.Errorf("weather provider: %w", err)
	}

	var sinks []coremetrics.ForecastSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.ForecastSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var pub publish.Publisher = publish.NopPublisher{}
	if cfg.Publish.Enabled {
		p, err := publish.NewMQTTPublisher(cfg.Publish)
		if err != nil {
			return nil, fmt.Errorf("plan publisher: %w", err)
		}
		pub = p
	}

	var hist *history.SQLiteStore
	if cfg.History.Enabled {
		hist, err = history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
	}

	return &Service{
		cfg:        cfg,
		loader:     loader.NewCSVLoader(cfg.Loader),
		calendar:   cal,
		builder:    features.NewBuilder(cal, weather),
		forecaster: forecast.New(cfg.Forecast),
		translator: staffing.New(cfg.Staffing),
		sink:       sink,
		publisher:  pub,
		hist:       hist,
		bus:        eventbus.New[RunEvent](),
		log:        logger.New("service"),
	}, nil
}

// Events returns a subscription to completed runs.
func (s *Service) Events() <-chan RunEvent { return s.bus.Subscribe() }

// Close releases the service collaborators.
func (s *Service) Close() error {
	s.bus.Close()
	s.publisher.Close()
	if s.hist != nil {
		return s.hist.Close()
	}
	return nil
}

// LoadEvents resolves the raw order events: the configured source first,
// the synthetic fallback when it cannot be loaded. The pipeline behaves
// identically regardless of provenance.
func (s *Service) LoadEvents(ctx context.Context) ([]model.OrderEvent, error) {
	events, err := s.loader.TryLoad(ctx)
	if err == nil {
		return events, nil
	}
	s.log.Warnf("load failed, substituting synthetic data: %v", err)
	return loader.Synthetic(s.cfg.Loader.Synthetic)
}

// Prepare builds the hourly demand table from raw events and persists it
// at the configured table path.
func (s *Service) Prepare(ctx context.Context) ([]model.HourlyDemand, error) {
	events, err := s.LoadEvents(ctx)
	if err != nil {
		return nil, err
	}
	table, err := s.builder.Build(events)
	if err != nil {
		return nil, err
	}
	if err := store.SaveTable(s.cfg.Run.TablePath, table); err != nil {
		return nil, err
	}
	s.log.Infof("prepared %d hourly demand rows", len(table))
	return table, nil
}

// table returns the persisted demand table, preparing it when absent.
func (s *Service) table(ctx context.Context) ([]model.HourlyDemand, error) {
	if _, err := os.Stat(s.cfg.Run.TablePath); err == nil {
		return store.LoadTable(s.cfg.Run.TablePath)
	}
	return s.Prepare(ctx)
}

// Run executes one full pipeline run: feature table, fit, predict,
// staffing plan, then fan-out to sinks, history and the publisher.
func (s *Service) Run(ctx context.Context) (RunEvent, error) {
	start := time.Now()
	table, err := s.table(ctx)
	if err != nil {
		return RunEvent{}, err
	}

	restaurant := s.cfg.Run.RestaurantID
	if restaurant == "" {
		restaurant = BusiestRestaurant(table)
	}
	series := make([]model.HourlyDemand, 0, len(table))
	for _, row := range table {
		if row.RestaurantID == restaurant {
			series = append(series, row)
		}
	}
	if len(series) == 0 {
		return RunEvent{}, fmt.Errorf("restaurant %s: %w", restaurant, forecast.ErrEmptySeries)
	}

	rec := coremetrics.RunRecord{
		RunID:        uuid.NewString(),
		RestaurantID: restaurant,
		Start:        start,
		HorizonHours: s.cfg.Run.HorizonHours,
	}

	holdout := time.Duration(s.cfg.Run.HoldoutDays) * 24 * time.Hour
	if eval, err := forecast.Evaluate(s.forecaster, series, holdout, s.cfg.Run.BaselineMAPE); err != nil {
		s.log.Warnf("evaluation skipped: %v", err)
	} else {
		rec.Accuracy = eval.Accuracy
		rec.Improvement = eval.Improvement
		rec.Evaluated = true
		s.log.Infof("holdout accuracy %.1f%%, %.1f%% better than baseline", eval.Accuracy, eval.Improvement)
	}

	fitted, err := s.forecaster.Fit(series)
	if err != nil {
		return RunEvent{}, err
	}
	if s.cfg.Run.ModelPath != "" {
		if err := store.SaveModel(s.cfg.Run.ModelPath, fitted); err != nil {
			return RunEvent{}, err
		}
	}

	lastHour := series[0].Hour
	for _, o := range series {
		if o.Hour.After(lastHour) {
			lastHour = o.Hour
		}
	}
	weather, err := s.cfg.Features.Weather.Provider()
	if err != nil {
		return RunEvent{}, err
	}
	rows := forecast.FutureRows(lastHour, s.cfg.Run.HorizonHours, s.calendar, weather)
	points, err := fitted.Predict(rows)
	if err != nil {
		return RunEvent{}, err
	}

	plan := s.translator.ToPlan(points)
	rec.Summary = s.translator.Summarize(plan)
	rec.Duration = time.Since(start)

	records, err := export.BuildRecords(points, plan)
	if err != nil {
		return RunEvent{}, err
	}
	out := export.Plan{Records: records, Summary: export.BuildSummary(rec.Summary)}

	if err := s.sink.RecordRun(rec); err != nil {
		s.log.Errorf("record run: %v", err)
	}
	if pr, ok := s.sink.(coremetrics.PlanRecorder); ok {
		if err := pr.RecordPlan(rec.RunID, plan); err != nil {
			s.log.Errorf("record plan: %v", err)
		}
	}
	if s.hist != nil {
		if err := s.hist.RecordRun(rec); err != nil {
			s.log.Errorf("history run: %v", err)
		}
		if err := s.hist.RecordPlan(rec.RunID, plan); err != nil {
			s.log.Errorf("history plan: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, out); err != nil {
		return RunEvent{}, err
	}
	if err := s.publisher.PublishPlan(rec.RunID, buf.Bytes()); err != nil {
		s.log.Errorf("publish plan: %v", err)
	}

	ev := RunEvent{Record: rec, Plan: out}
	s.bus.Publish(ev)
	s.log.Infof("run %s: %d orders forecast over %dh, %d partners saved",
		rec.RunID, rec.Summary.TotalPredictedOrders, rec.HorizonHours, rec.Summary.PartnersSaved)
	return ev, nil
}

// Serve re-runs the pipeline on the configured interval until the
// context is canceled.
func (s *Service) Serve(ctx context.Context) error {
	interval := time.Duration(s.cfg.Run.IntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	if _, err := s.Run(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				s.log.Errorf("run failed: %v", err)
			}
		}
	}
}

// BusiestRestaurant returns the restaurant with the most observed hours,
// ties broken towards the lexicographically smaller id. Used wherever a
// run has no configured restaurant.
func BusiestRestaurant(table []model.HourlyDemand) string {
	counts := make(map[string]int)
	var best string
	var bestCount int
	for _, row := range table {
		counts[row.RestaurantID]++
		c := counts[row.RestaurantID]
		if c > bestCount || (c == bestCount && row.RestaurantID < best) {
			best = row.RestaurantID
			bestCount = c
		}
	}
	return best
}
