package feature

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

var (
	// ErrUnknownField is returned when a feature name is not part of the schema.
	ErrUnknownField = errors.New("unknown feature")
	// ErrNotNumeric is returned when a submitted feature value is not a number.
	ErrNotNumeric = errors.New("feature value is not a number")
)

// Collector holds the current position of the ten input controls.
// Every write is clamped to the field range, so the collected values
// can never leave [Min, Max].
type Collector struct {
	values [Count]float64
}

// NewCollector returns a collector with every control at its default.
func NewCollector() *Collector {
	c := Collector{}
	for i, f := range fields {
		c.values[i] = f.Default
	}
	return &c
}

// Set moves the control to v, clamped to the field range.
func (c *Collector) Set(name string, v float64) error {
	i, ok := index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	c.values[i] = fields[i].Clamp(v)
	return nil
}

// Adjust moves the control by delta, clamped to the field range.
func (c *Collector) Adjust(name string, delta float64) error {
	i, ok := index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	c.values[i] = fields[i].Clamp(c.values[i] + delta)
	return nil
}

// Value returns the current position of the control.
func (c *Collector) Value(name string) (float64, error) {
	i, ok := index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return c.values[i], nil
}

// Record assembles a fresh Record from the current control state.
func (c *Collector) Record() Record {
	return Record{values: c.values}
}

// FromValues builds a collector from submitted form values keyed by identifier.
// Missing or unparsable values keep their defaults.
func FromValues(form url.Values) *Collector {
	c := NewCollector()
	for i, f := range fields {
		raw := form.Get(f.Ident)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		c.values[i] = f.Clamp(v)
	}
	return c
}

// FromMap builds a collector from values keyed by feature name or identifier.
// Absent features keep their defaults; unknown keys are rejected.
func FromMap(m map[string]float64) (*Collector, error) {
	c := NewCollector()
	for name, v := range m {
		if err := c.Set(name, v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FromJSON builds a collector from a JSON object of feature name or
// identifier to number. An empty body yields the defaults. Null values,
// non-numeric values and unknown keys are rejected.
func FromJSON(body []byte) (*Collector, error) {
	if len(body) == 0 {
		return NewCollector(), nil
	}

	var raw map[string]*float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotNumeric, err)
	}

	values := make(map[string]float64, len(raw))
	for name, v := range raw {
		if v == nil {
			return nil, fmt.Errorf("%w: %q is null", ErrNotNumeric, name)
		}
		values[name] = *v
	}
	return FromMap(values)
}
