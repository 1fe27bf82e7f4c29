package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxScaler_RoundTrip(t *testing.T) {
	prices := []float64{231.4, 228.9, 235.7, 230.05, 241.2, 239.99}

	scaler := NewMinMaxScaler()
	scaled, err := scaler.FitTransform(prices)
	require.NoError(t, err)

	for _, v := range scaled {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}

	back, err := scaler.InverseTransform(scaled)
	require.NoError(t, err)

	require.Len(t, back, len(prices))
	for i := range prices {
		assert.InDelta(t, prices[i], back[i], 1e-9)
	}
}

func TestMinMaxScaler_InverseOfUnseenValues(t *testing.T) {
	scaler := NewMinMaxScaler()
	_, err := scaler.FitTransform([]float64{100, 200})
	require.NoError(t, err)

	// Predictions can land outside the fitted range; the inverse must
	// extrapolate linearly rather than clamp.
	out, err := scaler.InverseTransform([]float64{0.5, 1.25, -0.1})
	require.NoError(t, err)
	assert.InDelta(t, 150.0, out[0], 1e-9)
	assert.InDelta(t, 225.0, out[1], 1e-9)
	assert.InDelta(t, 90.0, out[2], 1e-9)
}

func TestMinMaxScaler_ConstantSeries(t *testing.T) {
	scaler := NewMinMaxScaler()
	scaled, err := scaler.FitTransform([]float64{42, 42, 42})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, scaled)

	back, err := scaler.InverseTransform(scaled)
	require.NoError(t, err)
	assert.Equal(t, []float64{42, 42, 42}, back)
}

func TestMinMaxScaler_Errors(t *testing.T) {
	scaler := NewMinMaxScaler()

	err := scaler.Fit(nil)
	assert.Error(t, err)

	_, err = scaler.Transform([]float64{1})
	assert.Error(t, err)

	_, err = scaler.InverseTransform([]float64{1})
	assert.Error(t, err)
}
