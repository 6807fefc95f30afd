package store

import (
	"fmt"
	"os"

	"github.com/kilianp07/demandcast/core/forecast"
)

// SaveModel persists the fitted model artifact at path. The blob is
// opaque: only forecast.Deserialize gives it meaning again.
func SaveModel(path string, m *forecast.FittedModel) error {
	b, err := m.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write model %s: %w", path, err)
	}
	return nil
}

// LoadModel reads a model artifact written by SaveModel.
func LoadModel(path string) (*forecast.FittedModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	return forecast.Deserialize(b)
}
