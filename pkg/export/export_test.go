package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/demandcast/core/model"
)

func samplePlan() ([]model.ForecastPoint, []model.StaffingPlanEntry) {
	hour := time.Date(2022, 3, 14, 12, 0, 0, 0, time.UTC)
	points := []model.ForecastPoint{
		{Hour: hour, PredictedOrders: 30, LowerBound: 24.2, UpperBound: 37.8, RushPeriod: model.RushLunch},
		{Hour: hour.Add(time.Hour), PredictedOrders: 12, LowerBound: 8.1, UpperBound: 16.9, RushPeriod: model.RushRegular},
	}
	plan := []model.StaffingPlanEntry{
		{Hour: hour, PredictedOrders: 30, PartnersNeeded: 18, RushPeriod: model.RushLunch},
		{Hour: hour.Add(time.Hour), PredictedOrders: 12, PartnersNeeded: 7, RushPeriod: model.RushRegular},
	}
	return points, plan
}

func TestBuildRecords(t *testing.T) {
	points, plan := samplePlan()
	records, err := BuildRecords(points, plan)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, Record{
		Hour:                   "2022-03-14 12:00",
		PredictedOrders:        30,
		DeliveryPartnersNeeded: 18,
		ConfidenceInterval:     "24-37",
		RushPeriod:             "Lunch Rush",
	}, records[0])
}

func TestBuildRecordsLengthMismatch(t *testing.T) {
	points, plan := samplePlan()
	_, err := BuildRecords(points, plan[:1])
	require.Error(t, err)
}

func TestBuildSummaryFormatting(t *testing.T) {
	s := BuildSummary(model.StaffingSummary{
		TotalPredictedOrders: 1000,
		PartnersSaved:        150,
		CostSavings:          22500,
		AvgPartnersPerHour:   6.04,
	})
	require.Equal(t, "₹22,500", s.EstimatedCostSavings)
	require.Equal(t, 6.0, s.AvgDeliveryPartners)
	require.Equal(t, 150, s.DeliveryPartnersSaved)
}

func TestWriteJSON(t *testing.T) {
	points, plan := samplePlan()
	records, err := BuildRecords(points, plan)
	require.NoError(t, err)
	p := Plan{Records: records, Summary: BuildSummary(model.StaffingSummary{CostSavings: 100})}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, p))
	var got Plan
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, p, got)
}

func TestWriteCSV(t *testing.T) {
	points, plan := samplePlan()
	records, err := BuildRecords(points, plan)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "hour,predicted_orders,delivery_partners_needed,confidence_interval,rush_period", lines[0])
	require.Equal(t, "2022-03-14 12:00,30,18,24-37,Lunch Rush", lines[1])
}

func TestGroupDigits(t *testing.T) {
	cases := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-22500:  "-22,500",
	}
	for in, want := range cases {
		require.Equal(t, want, groupDigits(in), "input %d", in)
	}
}
