package guide

import (
	"fmt"
	"os"

	"wine/internal/feature"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"
)

// Guide turns a record into the tasting notes of every matching rule.
type Guide struct {
	rules []Rule
}

// Notes returns the notes of the matching rules in declaration order.
func (g *Guide) Notes(rec feature.Record) []string {
	if g == nil {
		return nil
	}
	var notes []string
	for i := range g.rules {
		if g.rules[i].Eval(rec) {
			notes = append(notes, g.rules[i].Then)
		}
	}
	return notes
}

// Len returns the number of loaded rules.
func (g *Guide) Len() int {
	if g == nil {
		return 0
	}
	return len(g.rules)
}

// New parses a YAML list of rules and compiles each one against envProvider.
//
//   - when: "volatile_acidity > 1.0"
//     then: "High volatile acidity gives a vinegar-like sharpness."
func New(script []byte, envProvider func() (*cel.Env, error)) (*Guide, error) {
	g := Guide{rules: make([]Rule, 0)}
	if err := yaml.Unmarshal(script, &g.rules); err != nil {
		return nil, err
	}

	for i := range g.rules {
		env, err := envProvider()
		if err != nil {
			return nil, err
		}
		if err := g.rules[i].Init(env); err != nil {
			return nil, fmt.Errorf("rule %d %q: %w", i, g.rules[i].When, err)
		}
	}
	return &g, nil
}

// LoadFromFile reads guide rules compiled against the feature record environment.
func LoadFromFile(file string) (*Guide, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return New(content, feature.NewRecordEnv)
}
