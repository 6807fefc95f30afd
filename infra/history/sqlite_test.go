package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/demandcast/core/metrics"
	"github.com/kilianp07/demandcast/core/model"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	hour := time.Date(2022, 3, 14, 12, 0, 0, 0, time.UTC)
	plan := []model.StaffingPlanEntry{
		{Hour: hour, PredictedOrders: 30, PartnersNeeded: 18, RushPeriod: model.RushLunch},
		{Hour: hour.Add(time.Hour), PredictedOrders: 12, PartnersNeeded: 7, RushPeriod: model.RushRegular},
	}
	rec := metrics.RunRecord{
		RunID:        "run-1",
		RestaurantID: "R01",
		Start:        hour,
		HorizonHours: 2,
		Summary: model.StaffingSummary{
			TotalPredictedOrders: 42,
			PartnersSaved:        6,
			CostSavings:          900,
			AvgPartnersPerHour:   12.5,
		},
		Accuracy:  81.5,
		Evaluated: true,
	}

	require.NoError(t, s.RecordRun(rec))
	require.NoError(t, s.RecordPlan(rec.RunID, plan))

	got, err := s.Plan("run-1")
	require.NoError(t, err)
	require.Equal(t, plan, got)
}

func TestSQLiteStoreUnknownRun(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Plan("missing")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSQLiteStoreRunOverwrite(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	rec := metrics.RunRecord{RunID: "run-1", RestaurantID: "R01", Start: time.Now()}
	require.NoError(t, s.RecordRun(rec))
	rec.Summary.TotalPredictedOrders = 99
	require.NoError(t, s.RecordRun(rec))
}
