package staffing

import (
	"fmt"
	"math"

	"github.com/kilianp07/demandcast/core/model"
)

// Config defines the staffing ratios loaded from configuration.
type Config struct {
	// PartnersPerOrder converts predicted orders into delivery partners.
	// The reference 0.6 means one partner per ~1.6 orders.
	PartnersPerOrder float64 `json:"partners_per_order"`
	// BaselineRatio is the unoptimised staffing policy partners are
	// compared against when estimating savings.
	BaselineRatio float64 `json:"baseline_ratio"`
	// CostPerPartnerHour prices one saved partner-hour.
	CostPerPartnerHour float64 `json:"cost_per_partner_hour"`
}

// SetDefaults applies the reference ratios.
func (c *Config) SetDefaults() {
	if c.PartnersPerOrder == 0 {
		c.PartnersPerOrder = 0.6
	}
	if c.BaselineRatio == 0 {
		c.BaselineRatio = 0.75
	}
	if c.CostPerPartnerHour == 0 {
		c.CostPerPartnerHour = 150
	}
}

// Validate checks the ratios are sound.
func (c Config) Validate() error {
	if c.PartnersPerOrder <= 0 {
		return fmt.Errorf("partners_per_order must be positive")
	}
	if c.BaselineRatio < c.PartnersPerOrder {
		return fmt.Errorf("baseline_ratio below partners_per_order yields negative savings by construction")
	}
	if c.CostPerPartnerHour < 0 {
		return fmt.Errorf("cost_per_partner_hour must be non-negative")
	}
	return nil
}

// Translator maps forecasts to staffing plans and business summaries.
type Translator struct {
	cfg Config
}

// New returns a Translator with defaults applied on top of cfg.
func New(cfg Config) *Translator {
	cfg.SetDefaults()
	return &Translator{cfg: cfg}
}

// ToPlan derives one staffing entry per forecasted hour. Every hour gets
// at least one partner: a location keeps baseline coverage even at zero
// predicted demand.
func (t *Translator) ToPlan(forecast []model.ForecastPoint) []model.StaffingPlanEntry {
	plan := make([]model.StaffingPlanEntry, 0, len(forecast))
	for _, p := range forecast {
		partners := int(math.Floor(float64(p.PredictedOrders) * t.cfg.PartnersPerOrder))
		if partners < 1 {
			partners = 1
		}
		plan = append(plan, model.StaffingPlanEntry{
			Hour:            p.Hour,
			PredictedOrders: p.PredictedOrders,
			PartnersNeeded:  partners,
			RushPeriod:      p.RushPeriod,
		})
	}
	return plan
}

// Summarize aggregates the plan into business metrics. The summary is a
// pure function of the plan and is recomputed on every call.
func (t *Translator) Summarize(plan []model.StaffingPlanEntry) model.StaffingSummary {
	if len(plan) == 0 {
		return model.StaffingSummary{}
	}
	var totalOrders, totalPartners int
	for _, e := range plan {
		totalOrders += e.PredictedOrders
		totalPartners += e.PartnersNeeded
	}
	baseline := float64(totalOrders) * t.cfg.BaselineRatio
	saved := int(baseline) - totalPartners
	return model.StaffingSummary{
		TotalPredictedOrders: totalOrders,
		PartnersSaved:        saved,
		CostSavings:          float64(saved) * t.cfg.CostPerPartnerHour,
		AvgPartnersPerHour:   float64(totalPartners) / float64(len(plan)),
	}
}
