package forecast

import (
	"errors"
	"fmt"
)

// MinMaxScaler normalizes values into [0, 1] over the observed range.
// A scaler is fitted fresh for every forecast call so the range tracks
// current prices; the same fitted instance must be used for both the
// forward transform and the inverse transform within one call.
type MinMaxScaler struct {
	min    float64
	max    float64
	fitted bool
}

// NewMinMaxScaler creates an unfitted scaler.
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{}
}

// Fit learns the min/max of the given values.
func (s *MinMaxScaler) Fit(values []float64) error {
	if len(values) == 0 {
		return errors.New("cannot fit scaler on empty data")
	}

	s.min, s.max = values[0], values[0]
	for _, v := range values[1:] {
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	s.fitted = true
	return nil
}

// Transform scales values into [0, 1]. A constant series maps to zero.
func (s *MinMaxScaler) Transform(values []float64) ([]float64, error) {
	if !s.fitted {
		return nil, errors.New("scaler is not fitted")
	}

	out := make([]float64, len(values))
	span := s.span()
	for i, v := range values {
		out[i] = (v - s.min) / span
	}
	return out, nil
}

// FitTransform fits on values and returns their scaled form.
func (s *MinMaxScaler) FitTransform(values []float64) ([]float64, error) {
	if err := s.Fit(values); err != nil {
		return nil, err
	}
	return s.Transform(values)
}

// InverseTransform maps scaled values back to price units.
func (s *MinMaxScaler) InverseTransform(values []float64) ([]float64, error) {
	if !s.fitted {
		return nil, errors.New("scaler is not fitted")
	}

	out := make([]float64, len(values))
	span := s.span()
	for i, v := range values {
		out[i] = v*span + s.min
	}
	return out, nil
}

// span returns the fitted range, degenerating to 1 for a constant
// series so Transform stays total.
func (s *MinMaxScaler) span() float64 {
	if s.max == s.min {
		return 1
	}
	return s.max - s.min
}

// String describes the fitted range, handy in debug logs.
func (s *MinMaxScaler) String() string {
	if !s.fitted {
		return "MinMaxScaler(unfitted)"
	}
	return fmt.Sprintf("MinMaxScaler[%g, %g]", s.min, s.max)
}
