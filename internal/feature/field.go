package feature

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Count is the number of features the model is trained on.
const Count = 10

// Field describes one bounded numeric input of the wine quality model.
type Field struct {
	// Name: feature name exactly as the model was trained on (e.g. "fixed acidity").
	Name string
	// Ident: identifier used in forms and CEL expressions (e.g. "fixed_acidity").
	Ident string
	// Label: human readable slider label.
	Label string
	// Help: short explanation shown next to the slider and in the feature guide.
	Help string
	// Min, Max: inclusive bounds of the slider.
	Min float64
	Max float64
	// Default: initial slider position.
	Default float64
	// Step: slider granularity.
	Step float64
}

// Clamp returns v limited to [Min, Max]. NaN snaps to Default.
func (f Field) Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return f.Default
	case v < f.Min:
		return f.Min
	case v > f.Max:
		return f.Max
	default:
		return v
	}
}

var fields = [Count]Field{
	newField("fixed acidity", 4.0, 16.0, 7.0, 0.1, "Amount of fixed acids in wine."),
	newField("volatile acidity", 0.10, 1.50, 0.5, 0.01, "Amount of volatile acids affecting sharpness."),
	newField("citric acid", 0.0, 1.0, 0.3, 0.01, "Contributes to freshness and flavor."),
	newField("residual sugar", 0.5, 16.0, 2.5, 0.1, "Sugar remaining after fermentation."),
	newField("chlorides", 0.01, 0.2, 0.05, 0.001, "Salt content affecting taste."),
	newField("free sulfur dioxide", 1.0, 72.0, 15.0, 1.0, "Preservative levels."),
	newField("total sulfur dioxide", 6.0, 300.0, 46.0, 1.0, "Total sulfur dioxide present."),
	newField("density", 0.9900, 1.0050, 0.9965, 0.0001, "Mass per unit volume."),
	newField("pH", 2.5, 4.5, 3.3, 0.01, "Acidity level of wine."),
	newField("sulphates", 0.2, 2.0, 0.6, 0.01, "Contributes to wine's stability and flavor."),
}

// index resolves both feature names and identifiers to a position in fields.
var index = func() map[string]int {
	m := make(map[string]int, 2*Count)
	for i, f := range fields {
		m[f.Name] = i
		m[f.Ident] = i
	}
	return m
}()

func newField(name string, min, max, def, step float64, help string) Field {
	return Field{
		Name:    name,
		Ident:   Ident(name),
		Label:   label(name),
		Help:    help,
		Min:     min,
		Max:     max,
		Default: def,
		Step:    step,
	}
}

// Ident converts a feature name into the identifier used by forms, guide
// rules and expression models.
func Ident(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// label title-cases every word, leaving words with capitals ("pH") untouched.
func label(name string) string {
	caser := cases.Title(language.English)
	words := strings.Fields(name)
	for i, w := range words {
		if strings.IndexFunc(w, unicode.IsUpper) >= 0 {
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// Fields returns the feature definitions in training schema order.
func Fields() []Field {
	out := make([]Field, Count)
	copy(out, fields[:])
	return out
}

// Names returns the feature names in training schema order.
func Names() []string {
	names := make([]string, Count)
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
