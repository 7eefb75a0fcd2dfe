package feature

import "github.com/google/cel-go/cel"

// NewRecordEnv declares every feature identifier as a CEL double variable.
func NewRecordEnv() (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, Count)
	for _, f := range fields {
		opts = append(opts, cel.Variable(f.Ident, cel.DoubleType))
	}
	return cel.NewEnv(opts...)
}
