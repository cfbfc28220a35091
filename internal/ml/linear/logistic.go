// Package linear implements the small linear-model toolkit the online
// learners are built on: a standardizing scaler and a binary logistic
// regression fitted by batch gradient descent on the cross-entropy loss.
// Fitted parameters are plain float slices so they round-trip through the
// arm-model store without loss.
package linear

import (
	"errors"
	"math"
)

// Fitting errors
var (
	// ErrSingleClass is returned when the training labels contain only one class.
	ErrSingleClass = errors.New("training labels contain a single class")

	// ErrLabelMismatch is returned when the number of labels does not match
	// the number of training rows.
	ErrLabelMismatch = errors.New("label count does not match row count")
)

// Model is a binary logistic regression classifier. Weights and Intercept
// are exported so fitted parameters can be persisted and restored verbatim.
type Model struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// TrainConfig controls the gradient-descent fit.
type TrainConfig struct {
	LearningRate float64
	Iterations   int
	L2Penalty    float64
}

// DefaultTrainConfig returns the fitting defaults: enough iterations for the
// small, standardized design matrices this package sees.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		LearningRate: 0.1,
		Iterations:   1000,
		L2Penalty:    0.01,
	}
}

// Fit trains a logistic regression on the rows of X with binary labels y
// using batch gradient descent. X is expected to be standardized already.
// Returns ErrSingleClass when y contains only one class, since the fit would
// be degenerate.
func Fit(X [][]float64, y []int, cfg TrainConfig) (*Model, error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return nil, ErrNoData
	}
	if len(y) != len(X) {
		return nil, ErrLabelMismatch
	}

	havePositive, haveNegative := false, false
	for _, label := range y {
		if label == 1 {
			havePositive = true
		} else {
			haveNegative = true
		}
	}
	if !havePositive || !haveNegative {
		return nil, ErrSingleClass
	}

	dim := len(X[0])
	for _, row := range X {
		if len(row) != dim {
			return nil, ErrDimensionMismatch
		}
	}

	weights := make([]float64, dim)
	intercept := 0.0
	n := float64(len(X))

	gradW := make([]float64, dim)
	for iter := 0; iter < cfg.Iterations; iter++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0

		for i, row := range X {
			z := intercept
			for j, v := range row {
				z += weights[j] * v
			}
			residual := sigmoid(z) - float64(y[i])

			for j, v := range row {
				gradW[j] += residual * v
			}
			gradB += residual
		}

		for j := range weights {
			weights[j] -= cfg.LearningRate * (gradW[j]/n + cfg.L2Penalty*weights[j])
		}
		intercept -= cfg.LearningRate * (gradB / n)
	}

	return &Model{Weights: weights, Intercept: intercept}, nil
}

// PredictProba returns the predicted probability of the positive class for a
// single (already scaled) feature vector.
func (m *Model) PredictProba(x []float64) (float64, error) {
	if len(x) != len(m.Weights) {
		return 0, ErrDimensionMismatch
	}

	z := m.Intercept
	for j, v := range x {
		z += m.Weights[j] * v
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
