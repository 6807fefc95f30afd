package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/demandcast/core/features"
	"github.com/kilianp07/demandcast/core/model"
	"github.com/kilianp07/demandcast/infra/logger"
)

// Config defines the order-event source.
type Config struct {
	// Source is a local CSV path or an http(s) URL.
	Source string `json:"source"`
	// TimeoutSeconds bounds the network fetch.
	TimeoutSeconds int `json:"timeout_seconds"`
	// MaxRecords truncates the input; 0 means unlimited.
	MaxRecords int `json:"max_records"`
	// Synthetic parameterises the fallback generator.
	Synthetic SyntheticConfig `json:"synthetic"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
	c.Synthetic.SetDefaults()
}

// CSVLoader reads order events from a flat tabular source. Load failures
// are returned to the caller, which decides whether to substitute the
// synthetic dataset; the pipeline itself never sees the failure.
type CSVLoader struct {
	cfg Config
	log logger.Logger
}

// NewCSVLoader creates a loader for the configured source.
func NewCSVLoader(cfg Config) *CSVLoader {
	cfg.SetDefaults()
	return &CSVLoader{cfg: cfg, log: logger.New("loader")}
}

// TryLoad fetches and parses the source.
func (l *CSVLoader) TryLoad(ctx context.Context) ([]model.OrderEvent, error) {
	r, closer, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	defer closer()
	events, err := Parse(r, l.cfg.MaxRecords)
	if err != nil {
		return nil, err
	}
	l.log.Infof("loaded %d order events from %s", len(events), l.cfg.Source)
	return events, nil
}

func (l *CSVLoader) open(ctx context.Context) (io.Reader, func(), error) {
	if strings.HasPrefix(l.cfg.Source, "http://") || strings.HasPrefix(l.cfg.Source, "https://") {
		ctx, cancel := context.WithTimeout(ctx, time.Duration(l.cfg.TimeoutSeconds)*time.Second)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.Source, nil)
		if err != nil {
			cancel()
			return nil, nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			cancel()
			return nil, nil, fmt.Errorf("fetch %s: %w", l.cfg.Source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			cancel()
			return nil, nil, fmt.Errorf("fetch %s: status %s", l.cfg.Source, resp.Status)
		}
		return resp.Body, func() { resp.Body.Close(); cancel() }, nil
	}
	f, err := os.Open(l.cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", l.cfg.Source, err)
	}
	return f, func() { f.Close() }, nil
}

// Column aliases accepted for each required field. The public store-sales
// dataset uses date/store/item/sales; prepared exports use the canonical
// names.
var columnAliases = map[string][]string{
	"timestamp":     {"timestamp", "order_date", "date"},
	"restaurant_id": {"restaurant_id", "store"},
	"item_id":       {"item_id", "menu_item_id", "item"},
	"order_count":   {"order_count", "sales"},
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// Parse reads order events from CSV data. A header row is required; a
// missing required column is a schema DataError.
func Parse(r io.Reader, maxRecords int) ([]model.OrderEvent, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int)
	for col, aliases := range columnAliases {
		found := -1
		// Aliases are listed canonical-first; the first alias with a
		// matching header wins so canonical columns shadow dataset ones.
		for _, a := range aliases {
			for i, h := range header {
				if strings.ToLower(strings.TrimSpace(h)) == a {
					found = i
					break
				}
			}
			if found >= 0 {
				break
			}
		}
		if found < 0 {
			return nil, &features.DataError{Column: col, Reason: "required column missing from input schema"}
		}
		idx[col] = found
	}

	var events []model.OrderEvent
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		ts, err := parseTime(rec[idx["timestamp"]])
		if err != nil {
			return nil, err
		}
		count, err := strconv.ParseFloat(strings.TrimSpace(rec[idx["order_count"]]), 64)
		if err != nil {
			return nil, &features.DataError{Column: "order_count", Reason: fmt.Sprintf("unparsable value %q", rec[idx["order_count"]])}
		}
		events = append(events, model.OrderEvent{
			Timestamp:    ts,
			RestaurantID: strings.TrimSpace(rec[idx["restaurant_id"]]),
			ItemID:       strings.TrimSpace(rec[idx["item_id"]]),
			OrderCount:   int(count),
		})
		if maxRecords > 0 && len(events) >= maxRecords {
			break
		}
	}
	return events, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &features.DataError{Column: "timestamp", Reason: fmt.Sprintf("unparsable value %q", s)}
}
