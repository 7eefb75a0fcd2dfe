package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"wine/internal/feature"
	"wine/internal/model"
)

const (
	// MinQuality and MaxQuality bound the displayed quality.
	MinQuality = 0
	MaxQuality = 10
)

// ErrNonFiniteScore is returned when the model produces NaN or an infinity.
var ErrNonFiniteScore = errors.New("model returned a non-finite score")

// SchemaMismatchError: the model was trained on features that differ, by name
// or order, from the record schema. It is a configuration error: the service
// cannot predict until the artifact and the schema agree.
type SchemaMismatchError struct {
	// Schema: feature names of the record, in order.
	Schema []string
	// Model: feature names the model was trained on, in order.
	Model []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: model expects %q, record provides %q", e.Model, e.Schema)
}

// Prediction is the outcome of one prediction trigger.
type Prediction struct {
	// Score: raw model output, never truncated.
	Score float64 `json:"score"`
	// Quality: Score rounded half-to-even and clamped to [0, 10] for display.
	Quality int `json:"quality"`
}

// Invoker runs the loaded model on feature records. It holds the process-wide
// model handle, which is read-only after loading. Predictions are serialized:
// each call runs to completion before the next one starts.
type Invoker struct {
	model model.Model
	mu    sync.Mutex
}

// NewInvoker checks that the model was trained on the record schema and
// returns an invoker for it. A mismatch is reported as *SchemaMismatchError.
func NewInvoker(m model.Model) (*Invoker, error) {
	if m == nil {
		return nil, &model.ModelLoadError{Err: errors.New("no model loaded")}
	}
	schema := feature.Names()
	if trained := m.Features(); !slices.Equal(schema, trained) {
		return nil, &SchemaMismatchError{Schema: schema, Model: trained}
	}
	return &Invoker{model: m}, nil
}

// ModelName returns the name of the loaded model.
func (inv *Invoker) ModelName() string {
	return inv.model.Name()
}

// Predict passes the record to the model and rounds the returned score.
// The call is synchronous and deterministic for a fixed model and record.
func (inv *Invoker) Predict(ctx context.Context, r feature.Record) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	inv.mu.Lock()
	score, err := inv.model.Predict(r.Values())
	inv.mu.Unlock()
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Prediction{}, ErrNonFiniteScore
	}

	return Prediction{Score: score, Quality: Quality(score)}, nil
}

// Quality rounds a score to the nearest integer, ties to even, and clamps the
// result to the display range.
func Quality(score float64) int {
	q := math.RoundToEven(score)
	switch {
	case q < MinQuality:
		return MinQuality
	case q > MaxQuality:
		return MaxQuality
	default:
		return int(q)
	}
}

// Display renders the prediction in the form shown to the user.
func Display(p Prediction) string {
	return fmt.Sprintf("Predicted Wine Quality: **%d** (out of %d)", p.Quality, MaxQuality)
}
