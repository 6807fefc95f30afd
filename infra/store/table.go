package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/demandcast/core/features"
	"github.com/kilianp07/demandcast/core/model"
)

// WriteTable writes the demand table to w as CSV with the canonical
// column set, decoupling feature building from forecasting runs.
func WriteTable(w io.Writer, rows []model.HourlyDemand) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.FeatureColumns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Hour.Format(time.RFC3339),
			r.RestaurantID,
			strconv.Itoa(r.OrderCount),
			boolField(r.IsWeekend),
			boolField(r.IsLunchRush),
			boolField(r.IsDinnerRush),
			boolField(r.IsFestival),
			floatField(r.WeatherImpact),
			floatField(r.OrdersLastHour),
			floatField(r.OrdersLastDaySameHour),
			floatField(r.Orders3hMean),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTable parses a demand table previously written by WriteTable. A
// missing column is a schema DataError.
func ReadTable(r io.Reader) ([]model.HourlyDemand, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range model.FeatureColumns {
		if _, ok := idx[col]; !ok {
			return nil, &features.DataError{Column: col, Reason: "required column missing from demand table"}
		}
	}

	var rows []model.HourlyDemand
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		hour, err := time.Parse(time.RFC3339, rec[idx["hour"]])
		if err != nil {
			return nil, &features.DataError{Column: "hour", Reason: fmt.Sprintf("unparsable value %q", rec[idx["hour"]])}
		}
		row := model.HourlyDemand{Hour: hour, RestaurantID: rec[idx["restaurant_id"]]}
		if row.OrderCount, err = strconv.Atoi(rec[idx["order_count"]]); err != nil {
			return nil, &features.DataError{Column: "order_count", Reason: err.Error()}
		}
		row.IsWeekend = rec[idx["is_weekend"]] == "1"
		row.IsLunchRush = rec[idx["is_lunch_rush"]] == "1"
		row.IsDinnerRush = rec[idx["is_dinner_rush"]] == "1"
		row.IsFestival = rec[idx["is_festival"]] == "1"
		floatCols := []struct {
			name string
			dst  *float64
		}{
			{"weather_impact", &row.WeatherImpact},
			{"orders_last_hour", &row.OrdersLastHour},
			{"orders_last_day_same_hour", &row.OrdersLastDaySameHour},
			{"orders_3h_mean", &row.Orders3hMean},
		}
		for _, c := range floatCols {
			v, err := strconv.ParseFloat(rec[idx[c.name]], 64)
			if err != nil {
				return nil, &features.DataError{Column: c.name, Reason: err.Error()}
			}
			*c.dst = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SaveTable writes the table to path, creating or truncating the file.
func SaveTable(path string, rows []model.HourlyDemand) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteTable(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadTable reads the table from path.
func LoadTable(path string) ([]model.HourlyDemand, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTable(f)
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func floatField(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
