package guide

import (
	"wine/internal/feature"

	"github.com/google/cel-go/cel"
)

// Rule attaches a tasting note to records matching a CEL condition.
type Rule struct {
	// When: CEL expression over feature identifiers, must return bool.
	When string `yaml:"when"`
	// Then: note shown to the user when the condition holds.
	Then string `yaml:"then"`
	// program: compiled CEL program used to execute the condition.
	program cel.Program
}

// Init compiles the When expression with the provided environment.
func (r *Rule) Init(env *cel.Env) error {
	ast, iss := env.Parse(r.When)
	if iss.Err() != nil {
		return iss.Err()
	}

	checked, iss := env.Check(ast)
	if iss.Err() != nil {
		return iss.Err()
	}

	var err error
	r.program, err = env.Program(checked)
	if err != nil {
		return err
	}

	return nil
}

// Eval reports whether the rule matches the record. Evaluation errors count as
// no match.
func (r *Rule) Eval(rec feature.Record) bool {
	result, _, err := r.program.Eval(rec.Activation())
	if err != nil {
		return false
	}
	matched, ok := result.Value().(bool)
	return ok && matched
}
