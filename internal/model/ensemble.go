package model

import (
	"errors"
	"fmt"
	"slices"
)

// Ensemble sums the weighted scores of its members. Every member is trained
// on the same features as the ensemble.
type Ensemble struct {
	name     string
	features []string
	members  []Model
	weights  []float64
}

func newEnsemble(a Artifact) (Model, error) {
	if len(a.Members) == 0 {
		return nil, errors.New("ensemble model: no members")
	}

	e := Ensemble{name: a.Name, features: cloneFeatures(a.Features)}
	for i, member := range a.Members {
		sub := member.Model
		if len(sub.Features) == 0 {
			sub.Features = a.Features
		}
		if !slices.Equal(sub.Features, a.Features) {
			return nil, fmt.Errorf("ensemble model: member %d features differ from the ensemble", i)
		}
		m, err := Build(sub)
		if err != nil {
			return nil, fmt.Errorf("ensemble model: member %d: %w", i, err)
		}
		e.members = append(e.members, m)
		e.weights = append(e.weights, member.Weight)
	}
	return &e, nil
}

func (e *Ensemble) Name() string       { return e.name }
func (e *Ensemble) Features() []string { return cloneFeatures(e.features) }

func (e *Ensemble) Predict(values []float64) (float64, error) {
	if err := checkArity(e.features, values); err != nil {
		return 0, err
	}
	var score float64
	for i, m := range e.members {
		s, err := m.Predict(values)
		if err != nil {
			return 0, err
		}
		score += e.weights[i] * s
	}
	return score, nil
}
