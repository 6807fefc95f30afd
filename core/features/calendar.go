package features

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Calendar holds the festival dates configured for the deployment. Lookups
// match on the date only, independent of the hour.
type Calendar struct {
	dates map[string]struct{}
}

// NewCalendar parses the given YYYY-MM-DD dates into a Calendar.
func NewCalendar(dates []string) (*Calendar, error) {
	c := &Calendar{dates: make(map[string]struct{}, len(dates))}
	for _, d := range dates {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return nil, fmt.Errorf("festival date %q: %w", d, err)
		}
		c.dates[d] = struct{}{}
	}
	return c, nil
}

// IsFestival reports whether t falls on a configured festival date.
func (c *Calendar) IsFestival(t time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c.dates[t.Format(dateLayout)]
	return ok
}
