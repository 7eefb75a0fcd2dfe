package model

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	TypeLinear     = "linear"
	TypeTree       = "tree"
	TypeExpression = "expression"
	TypeEnsemble   = "ensemble"
)

// Model is a trained predictor loaded from an artifact. Implementations are
// immutable after loading and safe for concurrent use.
type Model interface {
	// Name is the free-form artifact name.
	Name() string
	// Features lists the feature names in the order Predict expects them.
	Features() []string
	// Predict returns the score for one row of feature values.
	Predict(values []float64) (float64, error)
}

// ModelLoadError is returned when the model artifact is missing or cannot be
// turned into a working model. Without a model no prediction is possible.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	if e.Path == "" {
		return "model load: " + e.Err.Error()
	}
	return fmt.Sprintf("model load %s: %s", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// Artifact is the serialized form of a trained model. YAML and JSON documents
// are both accepted.
type Artifact struct {
	// Type: one of linear, tree, expression, ensemble.
	Type string `yaml:"type"`
	// Name: free-form model name, reported in logs and API responses.
	Name string `yaml:"name"`
	// Features: feature names in training order.
	Features []string `yaml:"features"`

	// Intercept and Coefficients describe a linear model; coefficients are
	// aligned with Features.
	Intercept    float64   `yaml:"intercept"`
	Coefficients []float64 `yaml:"coefficients"`

	// Nodes is a flat regression tree, node 0 being the root.
	Nodes []TreeNode `yaml:"nodes"`

	// Expression is a CEL expression over feature identifiers evaluating to double.
	Expression string `yaml:"expression"`

	// Members are the weighted sub-models of an ensemble.
	Members []Member `yaml:"members"`
}

// Member is one weighted model of an ensemble.
type Member struct {
	Weight float64  `yaml:"weight"`
	Model  Artifact `yaml:"model"`
}

// Load reads the artifact at path and builds the model it describes.
// Any failure is reported as *ModelLoadError.
func Load(path string) (Model, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}

	m, err := Parse(content)
	if err != nil {
		var loadErr *ModelLoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
			return nil, loadErr
		}
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	return m, nil
}

// Parse decodes an artifact document and builds the model.
func Parse(content []byte) (Model, error) {
	var a Artifact
	if err := yaml.Unmarshal(content, &a); err != nil {
		return nil, &ModelLoadError{Err: fmt.Errorf("decode artifact: %w", err)}
	}
	m, err := Build(a)
	if err != nil {
		return nil, &ModelLoadError{Err: err}
	}
	return m, nil
}

// Build turns a decoded artifact into a model.
func Build(a Artifact) (Model, error) {
	if err := validateFeatures(a.Features); err != nil {
		return nil, err
	}

	switch a.Type {
	case TypeLinear:
		return newLinear(a)
	case TypeTree:
		return newTree(a)
	case TypeExpression:
		return newExpression(a)
	case TypeEnsemble:
		return newEnsemble(a)
	case "":
		return nil, errors.New("model type must be specified")
	default:
		return nil, fmt.Errorf("unsupported model type %q", a.Type)
	}
}

func validateFeatures(features []string) error {
	if len(features) == 0 {
		return errors.New("features must be specified")
	}
	seen := make(map[string]bool, len(features))
	for _, f := range features {
		if f == "" {
			return errors.New("empty feature name")
		}
		if seen[f] {
			return fmt.Errorf("duplicate feature %q", f)
		}
		seen[f] = true
	}
	return nil
}

func checkArity(features []string, values []float64) error {
	if len(values) != len(features) {
		return fmt.Errorf("expected %d feature values, got %d", len(features), len(values))
	}
	return nil
}

func cloneFeatures(features []string) []string {
	out := make([]string, len(features))
	copy(out, features)
	return out
}
