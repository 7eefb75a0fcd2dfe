package model

import (
	"errors"
	"fmt"
	"strings"

	"wine/internal/feature"

	"github.com/google/cel-go/cel"
)

// Expression is a model written as a CEL expression over feature identifiers
// (feature names with spaces replaced by underscores).
type Expression struct {
	name     string
	features []string
	idents   []string
	program  cel.Program
}

func newExpression(a Artifact) (Model, error) {
	if strings.TrimSpace(a.Expression) == "" {
		return nil, errors.New("expression model: expression must be specified")
	}

	idents := make([]string, len(a.Features))
	opts := make([]cel.EnvOption, 0, len(a.Features))
	for i, f := range a.Features {
		idents[i] = feature.Ident(f)
		opts = append(opts, cel.Variable(idents[i], cel.DoubleType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("expression model: %w", err)
	}

	ast, iss := env.Compile(a.Expression)
	if iss.Err() != nil {
		return nil, fmt.Errorf("expression model: %w", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.DoubleType) {
		return nil, fmt.Errorf("expression model: expression must evaluate to double, got %s", ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("expression model: %w", err)
	}

	return &Expression{
		name:     a.Name,
		features: cloneFeatures(a.Features),
		idents:   idents,
		program:  program,
	}, nil
}

func (e *Expression) Name() string       { return e.name }
func (e *Expression) Features() []string { return cloneFeatures(e.features) }

func (e *Expression) Predict(values []float64) (float64, error) {
	if err := checkArity(e.features, values); err != nil {
		return 0, err
	}
	activation := make(map[string]any, len(values))
	for i, v := range values {
		activation[e.idents[i]] = v
	}
	out, _, err := e.program.Eval(activation)
	if err != nil {
		return 0, err
	}
	score, ok := out.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("expression model: unexpected result type %T", out.Value())
	}
	return score, nil
}
