package forecast

import (
	"encoding/json"
	"fmt"
)

// Serialize encodes the fitted model as an opaque artifact. The wire
// format is private to this package; callers only rely on Deserialize
// producing a model with identical predictions.
func (m *FittedModel) Serialize() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("serialize model: %w", err)
	}
	return b, nil
}

// Deserialize decodes an artifact produced by Serialize.
func Deserialize(b []byte) (*FittedModel, error) {
	var m FittedModel
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("deserialize model: %w", err)
	}
	return &m, nil
}
