package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/demandcast/core/metrics"
	"github.com/kilianp07/demandcast/core/model"
)

// SQLiteStore persists forecast runs and their staffing plans in a SQLite
// database so past recommendations stay queryable across runs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS forecast_runs (
        run_id TEXT PRIMARY KEY,
        restaurant_id TEXT,
        start INTEGER,
        horizon_hours INTEGER,
        total_orders INTEGER,
        partners_saved INTEGER,
        cost_savings REAL,
        avg_partners REAL,
        accuracy REAL,
        evaluated INTEGER
    );
    CREATE TABLE IF NOT EXISTS staffing_plans (
        run_id TEXT,
        hour INTEGER,
        predicted_orders INTEGER,
        partners_needed INTEGER,
        rush_period TEXT,
        PRIMARY KEY(run_id, hour)
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// RecordRun inserts or replaces the run summary.
func (s *SQLiteStore) RecordRun(rec metrics.RunRecord) error {
	evaluated := 0
	if rec.Evaluated {
		evaluated = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO forecast_runs
        (run_id, restaurant_id, start, horizon_hours, total_orders, partners_saved, cost_savings, avg_partners, accuracy, evaluated)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.RestaurantID, rec.Start.Unix(), rec.HorizonHours,
		rec.Summary.TotalPredictedOrders, rec.Summary.PartnersSaved,
		rec.Summary.CostSavings, rec.Summary.AvgPartnersPerHour,
		rec.Accuracy, evaluated)
	return err
}

// RecordPlan appends the per-hour staffing entries of the run.
func (s *SQLiteStore) RecordPlan(runID string, plan []model.StaffingPlanEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, e := range plan {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO staffing_plans
            (run_id, hour, predicted_orders, partners_needed, rush_period)
            VALUES (?, ?, ?, ?, ?)`,
			runID, e.Hour.Unix(), e.PredictedOrders, e.PartnersNeeded, e.RushPeriod.String()); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Plan returns the staffing entries stored for the run, ordered by hour.
func (s *SQLiteStore) Plan(runID string) ([]model.StaffingPlanEntry, error) {
	rows, err := s.db.Query(`SELECT hour, predicted_orders, partners_needed, rush_period
        FROM staffing_plans WHERE run_id = ? ORDER BY hour`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var plan []model.StaffingPlanEntry
	for rows.Next() {
		var e model.StaffingPlanEntry
		var hour int64
		var rush string
		if err := rows.Scan(&hour, &e.PredictedOrders, &e.PartnersNeeded, &rush); err != nil {
			return nil, err
		}
		e.Hour = time.Unix(hour, 0).UTC()
		e.RushPeriod = parseRush(rush)
		plan = append(plan, e)
	}
	return plan, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func parseRush(s string) model.RushPeriod {
	switch s {
	case "Lunch Rush":
		return model.RushLunch
	case "Dinner Rush":
		return model.RushDinner
	default:
		return model.RushRegular
	}
}
