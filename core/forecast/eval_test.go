package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEvaluateHoldout(t *testing.T) {
	history := demandHistory(21)
	eval, err := Evaluate(New(Config{}), history, 7*24*time.Hour, 0)
	require.NoError(t, err)

	require.Equal(t, len(history), eval.TrainHours+eval.TestHours)
	// The most recent 7 days are held out.
	require.Equal(t, 7*24, eval.TestHours)
	require.GreaterOrEqual(t, eval.MAPE, 0.0)
	require.LessOrEqual(t, eval.Accuracy, 100.0)
	// The series is perfectly periodic, so the model should beat the
	// industry baseline error rate comfortably.
	require.Greater(t, eval.Improvement, 0.0)
}

func TestEvaluateEmpty(t *testing.T) {
	_, err := Evaluate(New(Config{}), nil, 7*24*time.Hour, 0)
	require.ErrorIs(t, err, ErrEmptySeries)
}

func TestEvaluateHoldoutTooLarge(t *testing.T) {
	history := demandHistory(3)
	_, err := Evaluate(New(Config{}), history, 30*24*time.Hour, 0)
	require.Error(t, err)
}
