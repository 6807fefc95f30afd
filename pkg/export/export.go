package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/kilianp07/demandcast/core/model"
)

// Record is one dashboard row in the shape the forecast consumer expects.
type Record struct {
	Hour                   string `json:"hour"`
	PredictedOrders        int    `json:"predicted_orders"`
	DeliveryPartnersNeeded int    `json:"delivery_partners_needed"`
	ConfidenceInterval     string `json:"confidence_interval"`
	RushPeriod             string `json:"rush_period"`
}

// Summary mirrors the staffing summary with dashboard formatting.
type Summary struct {
	TotalPredictedOrders  int     `json:"total_predicted_orders"`
	DeliveryPartnersSaved int     `json:"delivery_partners_saved"`
	EstimatedCostSavings  string  `json:"estimated_cost_savings"`
	AvgDeliveryPartners   float64 `json:"avg_delivery_partners"`
}

// Plan bundles the records and summary of one run.
type Plan struct {
	Records []Record `json:"forecast"`
	Summary Summary  `json:"summary"`
}

// BuildRecords zips the forecast points and their staffing entries into
// dashboard records. Both sequences come from the same run and must be
// aligned hour by hour.
func BuildRecords(points []model.ForecastPoint, plan []model.StaffingPlanEntry) ([]Record, error) {
	if len(points) != len(plan) {
		return nil, fmt.Errorf("forecast has %d hours, plan has %d", len(points), len(plan))
	}
	records := make([]Record, len(points))
	for i, p := range points {
		records[i] = Record{
			Hour:                   p.Hour.Format("2006-01-02 15:00"),
			PredictedOrders:        p.PredictedOrders,
			DeliveryPartnersNeeded: plan[i].PartnersNeeded,
			ConfidenceInterval:     fmt.Sprintf("%d-%d", int(p.LowerBound), int(p.UpperBound)),
			RushPeriod:             p.RushPeriod.String(),
		}
	}
	return records, nil
}

// BuildSummary formats the staffing summary for the dashboard.
func BuildSummary(s model.StaffingSummary) Summary {
	return Summary{
		TotalPredictedOrders:  s.TotalPredictedOrders,
		DeliveryPartnersSaved: s.PartnersSaved,
		EstimatedCostSavings:  "₹" + groupDigits(int(s.CostSavings)),
		AvgDeliveryPartners:   math.Round(s.AvgPartnersPerHour*10) / 10,
	}
}

// WriteJSON writes the plan to w in JSON format.
func WriteJSON(w io.Writer, p Plan) error {
	enc := json.NewEncoder(w)
	return enc.Encode(p)
}

// WriteCSV writes the dashboard records to w with canonical headers.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"hour", "predicted_orders", "delivery_partners_needed", "confidence_interval", "rush_period"}); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			r.Hour,
			strconv.Itoa(r.PredictedOrders),
			strconv.Itoa(r.DeliveryPartnersNeeded),
			r.ConfidenceInterval,
			r.RushPeriod,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// groupDigits inserts thousand separators into a non-negative integer.
// Negative savings keep the sign in front of the grouped digits.
func groupDigits(v int) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.Itoa(v)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + s
}
