package predict

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"wine/internal/feature"
	"wine/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel returns a fixed score, or a score computed from the values.
type fakeModel struct {
	features []string
	score    float64
	fn       func([]float64) float64
	err      error
	calls    int
}

func (f *fakeModel) Name() string       { return "fake" }
func (f *fakeModel) Features() []string { return f.features }
func (f *fakeModel) Predict(values []float64) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if f.fn != nil {
		return f.fn(values), nil
	}
	return f.score, nil
}

func loadShipped(t *testing.T) *Invoker {
	t.Helper()
	m, err := model.Load(filepath.Join("..", "..", "models", "wine_quality.yaml"))
	require.NoError(t, err)
	inv, err := NewInvoker(m)
	require.NoError(t, err)
	return inv
}

func literalRecord(t *testing.T) feature.Record {
	t.Helper()
	c, err := feature.FromMap(map[string]float64{
		"fixed acidity":        7.0,
		"volatile acidity":     0.5,
		"citric acid":          0.3,
		"residual sugar":       2.5,
		"chlorides":            0.05,
		"free sulfur dioxide":  15.0,
		"total sulfur dioxide": 46.0,
		"density":              0.9965,
		"pH":                   3.3,
		"sulphates":            0.6,
	})
	require.NoError(t, err)
	return c.Record()
}

func TestNewInvoker_SchemaMismatch(t *testing.T) {
	reordered := feature.Names()
	reordered[0], reordered[1] = reordered[1], reordered[0]

	cases := map[string][]string{
		"reordered": reordered,
		"missing":   feature.Names()[:9],
		"renamed":   append(feature.Names()[:9:9], "alcohol"),
	}
	for name, features := range cases {
		t.Run(name, func(t *testing.T) {
			m := &fakeModel{features: features}
			inv, err := NewInvoker(m)
			assert.Nil(t, inv)

			var mismatch *SchemaMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, feature.Names(), mismatch.Schema)
			assert.Equal(t, features, mismatch.Model)
			assert.Zero(t, m.calls, "no prediction may be attempted")
		})
	}
}

func TestNewInvoker_NilModel(t *testing.T) {
	_, err := NewInvoker(nil)
	var loadErr *model.ModelLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestMissingArtifact_PreventsPrediction(t *testing.T) {
	m, err := model.Load(filepath.Join(t.TempDir(), "best_wine_quality_model.yaml"))
	var loadErr *model.ModelLoadError
	require.ErrorAs(t, err, &loadErr)

	_, err = NewInvoker(m)
	assert.Error(t, err)
}

func TestInvoker_DefaultRecordInRange(t *testing.T) {
	inv := loadShipped(t)

	p, err := inv.Predict(context.Background(), feature.DefaultRecord())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Quality, MinQuality)
	assert.LessOrEqual(t, p.Quality, MaxQuality)
	assert.Equal(t, 6, p.Quality)
}

func TestInvoker_Deterministic(t *testing.T) {
	inv := loadShipped(t)
	r := literalRecord(t)

	first, err := inv.Predict(context.Background(), r)
	require.NoError(t, err)
	second, err := inv.Predict(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInvoker_BoundaryFields(t *testing.T) {
	inv := loadShipped(t)

	for _, f := range feature.Fields() {
		for _, v := range []float64{f.Min, f.Max} {
			c := feature.NewCollector()
			require.NoError(t, c.Set(f.Name, v))

			p, err := inv.Predict(context.Background(), c.Record())
			assert.NoError(t, err, "%s=%v", f.Name, v)
			assert.GreaterOrEqual(t, p.Quality, MinQuality)
			assert.LessOrEqual(t, p.Quality, MaxQuality)
		}
	}
}

func TestInvoker_PassesValuesInSchemaOrder(t *testing.T) {
	var seen []float64
	m := &fakeModel{features: feature.Names(), fn: func(v []float64) float64 {
		seen = v
		return 5
	}}
	inv, err := NewInvoker(m)
	require.NoError(t, err)

	_, err = inv.Predict(context.Background(), literalRecord(t))
	require.NoError(t, err)
	assert.Equal(t, []float64{7.0, 0.5, 0.3, 2.5, 0.05, 15.0, 46.0, 0.9965, 3.3, 0.6}, seen)
}

func TestInvoker_ClampsDisplayOnly(t *testing.T) {
	m := &fakeModel{features: feature.Names(), score: 12.7}
	inv, err := NewInvoker(m)
	require.NoError(t, err)

	p, err := inv.Predict(context.Background(), feature.DefaultRecord())
	require.NoError(t, err)
	assert.Equal(t, 12.7, p.Score, "raw score must be kept")
	assert.Equal(t, MaxQuality, p.Quality)
}

func TestInvoker_Errors(t *testing.T) {
	boom := errors.New("boom")
	inv, err := NewInvoker(&fakeModel{features: feature.Names(), err: boom})
	require.NoError(t, err)
	_, err = inv.Predict(context.Background(), feature.DefaultRecord())
	assert.ErrorIs(t, err, boom)

	inv, err = NewInvoker(&fakeModel{features: feature.Names(), score: math.NaN()})
	require.NoError(t, err)
	_, err = inv.Predict(context.Background(), feature.DefaultRecord())
	assert.ErrorIs(t, err, ErrNonFiniteScore)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = inv.Predict(ctx, feature.DefaultRecord())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuality_RoundsHalfToEven(t *testing.T) {
	cases := map[float64]int{
		5.5:   6,
		6.5:   6,
		4.49:  4,
		7.51:  8,
		-0.4:  0,
		-3:    0,
		10.4:  10,
		10.5:  10,
		1e300: 10,
	}
	for score, expected := range cases {
		assert.Equal(t, expected, Quality(score), "score %v", score)
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Predicted Wine Quality: **6** (out of 10)", Display(Prediction{Score: 5.6, Quality: 6}))
}
