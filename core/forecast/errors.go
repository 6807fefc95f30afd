package forecast

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptySeries indicates a fit was requested on a restaurant with zero
// historical observations.
var ErrEmptySeries = errors.New("empty demand series")

// MissingRegressorError reports a future feature row lacking a regressor
// the model was fit with. Fatal for the predict call that saw it.
type MissingRegressorError struct {
	Name string
	Hour time.Time
}

func (e *MissingRegressorError) Error() string {
	return fmt.Sprintf("missing regressor %q for hour %s", e.Name, e.Hour.Format(time.RFC3339))
}
