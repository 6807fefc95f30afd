package features

import "fmt"

// DataError reports a demand-table contract violation: a feature column
// that stays undefined after the fill policy, or a malformed input schema.
type DataError struct {
	Column       string
	RestaurantID string
	Reason       string
}

func (e *DataError) Error() string {
	if e.RestaurantID != "" {
		return fmt.Sprintf("data error: column %q for restaurant %s: %s", e.Column, e.RestaurantID, e.Reason)
	}
	return fmt.Sprintf("data error: column %q: %s", e.Column, e.Reason)
}
