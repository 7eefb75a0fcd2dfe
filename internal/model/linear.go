package model

import "fmt"

// Linear is an ordinary linear regression: intercept + Σ coefficient·value.
type Linear struct {
	name         string
	features     []string
	intercept    float64
	coefficients []float64
}

func newLinear(a Artifact) (Model, error) {
	if len(a.Coefficients) != len(a.Features) {
		return nil, fmt.Errorf("linear model: %d coefficients for %d features", len(a.Coefficients), len(a.Features))
	}
	coefficients := make([]float64, len(a.Coefficients))
	copy(coefficients, a.Coefficients)
	return &Linear{
		name:         a.Name,
		features:     cloneFeatures(a.Features),
		intercept:    a.Intercept,
		coefficients: coefficients,
	}, nil
}

func (l *Linear) Name() string       { return l.name }
func (l *Linear) Features() []string { return cloneFeatures(l.features) }

func (l *Linear) Predict(values []float64) (float64, error) {
	if err := checkArity(l.features, values); err != nil {
		return 0, err
	}
	score := l.intercept
	for i, c := range l.coefficients {
		score += c * values[i]
	}
	return score, nil
}
