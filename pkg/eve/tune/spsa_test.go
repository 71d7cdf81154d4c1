package tune_test

import (
	"context"
	"math"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinnovaak/engineduel/pkg/eve/tune"
)

// bowl scores plus against minus by their distance to 10, so that the
// closer side wins by the difference of the squared distances.
func bowl(calls *int) tune.Objective {
	loss := func(x float64) float64 { return (x - 10) * (x - 10) }

	return func(_ context.Context, plus, minus []float64) (int, error) {
		*calls++
		return int(loss(minus[0]) - loss(plus[0])), nil
	}
}

func newTuner(objective tune.Objective, sign float64) *tune.Tuner {
	logger, _ := test.NewNullLogger()
	return &tune.Tuner{
		Parameters: []tune.Parameter{{Name: "X", Value: 0, Step: 1}},
		Objective:  objective,
		Rounds:     1,
		Logger:     logger,
		Sign:       func() float64 { return sign },
	}
}

func TestGradient(t *testing.T) {
	calls := 0
	tuner := newTuner(bowl(&calls), 1)

	gradient, err := tuner.Gradient(context.Background(), []float64{0}, []float64{1})
	require.NoError(t, err)
	// plus=1 beats minus=-1 by 121-81
	assert.Equal(t, []float64{-20}, gradient)

	gradient, err = tuner.Gradient(context.Background(), []float64{0}, []float64{-1})
	require.NoError(t, err)
	assert.Equal(t, []float64{-20}, gradient)
	assert.Equal(t, 2, calls)
}

func TestGradientDimension(t *testing.T) {
	calls := 0
	tuner := newTuner(bowl(&calls), 1)

	_, err := tuner.Gradient(context.Background(), []float64{0, 0}, []float64{1, 1})
	assert.ErrorIs(t, err, tune.ErrDimension)

	_, err = tuner.Gradient(context.Background(), []float64{0}, []float64{})
	assert.ErrorIs(t, err, tune.ErrDimension)
	assert.Zero(t, calls)
}

func TestSGDConverges(t *testing.T) {
	for _, sign := range []float64{1, -1} {
		calls := 0
		theta, err := newTuner(bowl(&calls), sign).SGD(context.Background(), 30)
		require.NoError(t, err)
		assert.Less(t, math.Abs(theta[0]-10), 1.0)
		assert.Equal(t, 30, calls)
	}
}

func TestAdamMovesTowardOptimum(t *testing.T) {
	calls := 0
	theta, err := newTuner(bowl(&calls), 1).Adam(context.Background(), 30)
	require.NoError(t, err)
	assert.Greater(t, theta[0], 3.0)
	assert.Less(t, theta[0], 10.5)
	assert.Equal(t, 30, calls)
}

func TestTunerStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	objective := func(ctx context.Context, plus, minus []float64) (int, error) {
		calls++
		if calls == 3 {
			cancel()
		}
		return 1, nil
	}

	theta, err := newTuner(objective, 1).SGD(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, calls)
	assert.Len(t, theta, 1)
}
