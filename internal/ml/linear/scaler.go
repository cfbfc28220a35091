package linear

import (
	"errors"
	"math"
)

// Scaler-related errors
var (
	// ErrNoData is returned when fitting is attempted on an empty data set.
	ErrNoData = errors.New("no training data")

	// ErrDimensionMismatch is returned when a vector's length does not match
	// the fitted parameters.
	ErrDimensionMismatch = errors.New("feature vector dimension mismatch")
)

// Scaler standardizes feature vectors to zero mean and unit variance,
// per feature. Mean and Scale are exported so fitted parameters can be
// persisted and restored verbatim.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes per-feature mean and standard deviation over the rows
// of X. Features with zero variance get scale 1 so transforming them is a
// no-op beyond centering.
func FitScaler(X [][]float64) (*Scaler, error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return nil, ErrNoData
	}

	dim := len(X[0])
	mean := make([]float64, dim)
	scale := make([]float64, dim)

	for _, row := range X {
		if len(row) != dim {
			return nil, ErrDimensionMismatch
		}
		for j, v := range row {
			mean[j] += v
		}
	}
	n := float64(len(X))
	for j := range mean {
		mean[j] /= n
	}

	for _, row := range X {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	return &Scaler{Mean: mean, Scale: scale}, nil
}

// Transform standardizes a single vector with the fitted parameters.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) || len(s.Mean) != len(s.Scale) {
		return nil, ErrDimensionMismatch
	}

	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}

// TransformAll standardizes every row of X.
func (s *Scaler) TransformAll(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}
