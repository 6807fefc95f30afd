package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/demandcast/core/model"
)

// Forecaster fits a seasonal regression on hourly demand. The model is a
// ridge-regularised linear fit in log space: a piecewise-linear trend
// bending at candidate change points, daily and weekly Fourier
// seasonality, and the exogenous regressors. Fitting in log space makes
// the seasonal and regressor effects multiplicative, so rush and weekend
// effects scale with the baseline level instead of adding a constant.
type Forecaster struct {
	cfg Config
}

// New returns a Forecaster with defaults applied on top of cfg.
func New(cfg Config) *Forecaster {
	cfg.SetDefaults()
	return &Forecaster{cfg: cfg}
}

// FittedModel holds the fitted coefficients. It serializes to an opaque
// blob whose deserialized form predicts identically.
type FittedModel struct {
	Beta         []float64 `json:"beta"`
	Changepoints []float64 `json:"changepoints"` // in scaled trend time
	Origin       time.Time `json:"origin"`
	ScaleHours   float64   `json:"scale_hours"`
	DailyOrder   int       `json:"daily_order"`
	WeeklyOrder  int       `json:"weekly_order"`
	Regressors   []string  `json:"regressors"`
	Sigma        float64   `json:"sigma"` // residual std in log space
	IntervalZ    float64   `json:"interval_z"`
}

// Fit estimates the model on the restaurant's historical observations.
// The slice is not modified; ErrEmptySeries is returned when it is empty.
func (f *Forecaster) Fit(history []model.HourlyDemand) (*FittedModel, error) {
	if len(history) == 0 {
		return nil, ErrEmptySeries
	}
	obs := make([]model.HourlyDemand, len(history))
	copy(obs, history)
	sort.Slice(obs, func(i, j int) bool { return obs[i].Hour.Before(obs[j].Hour) })

	n := len(obs)
	span := obs[n-1].Hour.Sub(obs[0].Hour).Hours()
	if span < 1 {
		span = 1
	}
	k := f.cfg.Changepoints
	if k > n/2 {
		k = n / 2
	}
	// Candidate change points over the first 80% of the scaled history,
	// mirroring the usual changepoint_range.
	cps := make([]float64, k)
	for j := range cps {
		cps[j] = 0.8 * float64(j+1) / float64(k+1)
	}

	m := &FittedModel{
		Changepoints: cps,
		Origin:       obs[0].Hour,
		ScaleHours:   span,
		DailyOrder:   f.cfg.DailyOrder,
		WeeklyOrder:  f.cfg.WeeklyOrder,
		Regressors:   append([]string(nil), model.RegressorNames...),
		IntervalZ:    distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.5 + f.cfg.IntervalWidth/2),
	}
	p := m.dim()

	X := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i, o := range obs {
		row := o.RegressorRow()
		regs := make([]float64, len(m.Regressors))
		for ri, name := range m.Regressors {
			regs[ri] = row.Regressors[name]
		}
		X.SetRow(i, m.designRow(o.Hour.Sub(m.Origin).Hours(), regs))
		y.SetVec(i, math.Log1p(float64(o.OrderCount)))
	}

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	for i, lambda := range m.penalties(f.cfg.ChangepointPriorScale) {
		xtx.Set(i, i, xtx.At(i, i)+lambda)
	}
	var xty mat.VecDense
	xty.MulVec(X.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("solve regression: %w", err)
	}
	m.Beta = make([]float64, p)
	copy(m.Beta, beta.RawVector().Data)

	resid := make([]float64, n)
	for i := 0; i < n; i++ {
		resid[i] = y.AtVec(i) - mat.Dot(X.RowView(i), &beta)
	}
	m.Sigma = stat.StdDev(resid, nil)
	if math.IsNaN(m.Sigma) {
		m.Sigma = 0
	}
	return m, nil
}

// Predict evaluates the model on the future feature rows. Every regressor
// the model was fit with must be present in each row; predictions are
// clamped at zero and labelled from the row's rush flags.
func (m *FittedModel) Predict(rows []model.FeatureRow) ([]model.ForecastPoint, error) {
	points := make([]model.ForecastPoint, 0, len(rows))
	for _, r := range rows {
		regs := make([]float64, len(m.Regressors))
		for i, name := range m.Regressors {
			v, ok := r.Regressors[name]
			if !ok {
				return nil, &MissingRegressorError{Name: name, Hour: r.Hour}
			}
			regs[i] = v
		}
		yhat := floats.Dot(m.Beta, m.designRow(r.Hour.Sub(m.Origin).Hours(), regs))

		pred := int(math.Expm1(yhat))
		if pred < 0 {
			pred = 0
		}
		lower := math.Expm1(yhat - m.IntervalZ*m.Sigma)
		if lower < 0 {
			lower = 0
		}
		upper := math.Expm1(yhat + m.IntervalZ*m.Sigma)

		points = append(points, model.ForecastPoint{
			Hour:            r.Hour,
			PredictedOrders: pred,
			LowerBound:      lower,
			UpperBound:      upper,
			RushPeriod:      model.RushPeriodFor(r.Flag(model.RegLunchRush), r.Flag(model.RegDinnerRush)),
		})
	}
	return points, nil
}

// dim returns the design-matrix width.
func (m *FittedModel) dim() int {
	return 2 + len(m.Changepoints) + 2*m.DailyOrder + 2*m.WeeklyOrder + len(m.Regressors)
}

// designRow builds one design-matrix row for the given hours since the
// trend origin and regressor values.
func (m *FittedModel) designRow(tHours float64, regs []float64) []float64 {
	x := tHours / m.ScaleHours
	row := make([]float64, 0, m.dim())
	row = append(row, 1, x)
	for _, s := range m.Changepoints {
		if x > s {
			row = append(row, x-s)
		} else {
			row = append(row, 0)
		}
	}
	for k := 1; k <= m.DailyOrder; k++ {
		arg := 2 * math.Pi * float64(k) * tHours / 24
		row = append(row, math.Sin(arg), math.Cos(arg))
	}
	for k := 1; k <= m.WeeklyOrder; k++ {
		arg := 2 * math.Pi * float64(k) * tHours / 168
		row = append(row, math.Sin(arg), math.Cos(arg))
	}
	row = append(row, regs...)
	return row
}

// penalties returns the per-column ridge weights. Change-point deltas are
// shrunk by the inverse squared prior scale so a smaller scale yields a
// smoother trend; the remaining columns get a light penalty that keeps
// the system well conditioned.
func (m *FittedModel) penalties(changepointScale float64) []float64 {
	const base = 1e-8
	const seasonal = 0.01
	cp := base
	if changepointScale > 0 {
		cp = 1 / (changepointScale * changepointScale)
	}
	pen := make([]float64, 0, m.dim())
	pen = append(pen, base, base)
	for range m.Changepoints {
		pen = append(pen, cp)
	}
	for i := 0; i < 2*(m.DailyOrder+m.WeeklyOrder); i++ {
		pen = append(pen, seasonal)
	}
	for range m.Regressors {
		pen = append(pen, seasonal)
	}
	return pen
}
