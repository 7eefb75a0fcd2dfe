package feature

// Record is one row of model input: all ten features in schema order.
// A Record is built by a Collector, so every value is already within bounds.
type Record struct {
	values [Count]float64
}

// Values returns a copy of the feature values in schema order.
func (r Record) Values() []float64 {
	out := make([]float64, Count)
	copy(out, r.values[:])
	return out
}

// Get returns the value of the feature with the given name or identifier.
func (r Record) Get(name string) (float64, bool) {
	i, ok := index[name]
	if !ok {
		return 0, false
	}
	return r.values[i], true
}

// Map returns the record keyed by feature name.
func (r Record) Map() map[string]float64 {
	m := make(map[string]float64, Count)
	for i, f := range fields {
		m[f.Name] = r.values[i]
	}
	return m
}

// Activation returns the record keyed by identifier, ready for CEL evaluation.
func (r Record) Activation() map[string]any {
	m := make(map[string]any, Count)
	for i, f := range fields {
		m[f.Ident] = r.values[i]
	}
	return m
}

// DefaultRecord returns the record with every feature at its default.
func DefaultRecord() Record {
	return NewCollector().Record()
}
