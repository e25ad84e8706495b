// Package coefficients holds the pre-trained regression tables used by the
// cooling propagator and the building impact estimator.
package coefficients

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jengzang/coolparks-go/internal/models"
)

//go:embed defaults.yaml
var defaultTable []byte

// Table is the full set of coefficients. It is read once and shared read-only.
type Table struct {
	Park              map[int]ParkModel            `yaml:"park"`
	Morphology        map[int]MorphologyModel      `yaml:"morphology"`
	Buildings         []ArchetypeModel             `yaml:"buildings"`
	Periods           []Period                     `yaml:"periods"`
	ComboReplacements map[models.Combo]models.Combo `yaml:"combo_replacements"`
}

// ParkModel describes the in-park cooling for one time of day.
type ParkModel struct {
	PatternSize float64                     `yaml:"pattern_size"`
	Combos      map[models.Combo]ComboModel `yaml:"combos"`
}

// ComboModel gives the asymptotic surface temperature delta of a cover
// combination and the fraction of it gained per pattern crossed.
type ComboModel struct {
	Intercept float64 `yaml:"intercept"`
	WindSpeed float64 `yaml:"wind_speed"`
	DPV       float64 `yaml:"dpv"`
	Rate      float64 `yaml:"rate"`
}

// MaxDelta returns the asymptotic temperature delta for normalised weather inputs.
func (c ComboModel) MaxDelta(windNorm, dpvNorm float64) float64 {
	return c.Intercept + c.WindSpeed*windNorm + c.DPV*dpvNorm
}

// MorphologyModel pairs the city warming regression with the regression of
// the distance over which park cooling survives in the city.
type MorphologyModel struct {
	DeltaT   LinearModel `yaml:"delta_t"`
	Distance LinearModel `yaml:"distance"`
}

// LinearModel is a0 + a_ws*ws + s*sum(a_i*x_i), s being ws when WindScaled
// and 1 otherwise. Covariates are clamped to their training range.
type LinearModel struct {
	Intercept  float64                      `yaml:"intercept"`
	WindSpeed  float64                      `yaml:"wind_speed"`
	WindScaled bool                         `yaml:"wind_scaled"`
	Terms      map[models.Indicator]float64 `yaml:"terms"`
	Min        map[models.Indicator]float64 `yaml:"min"`
	Max        map[models.Indicator]float64 `yaml:"max"`
}

// Eval evaluates the model on fragment indicators and a normalised wind speed.
func (m LinearModel) Eval(ind models.Indicators, windNorm float64) float64 {
	var sum float64
	for _, name := range sortedKeys(m.Terms) {
		sum += m.Terms[name] * clampTo(ind.Get(name), name, m.Min, m.Max)
	}
	scale := 1.0
	if m.WindScaled {
		scale = windNorm
	}
	return m.Intercept + m.WindSpeed*windNorm + scale*sum
}

// PairTerm is the coefficient of the product of two covariates.
type PairTerm struct {
	A    models.Indicator `yaml:"a"`
	B    models.Indicator `yaml:"b"`
	Coef float64          `yaml:"coef"`
}

// RegressionModel is an intercept plus linear and pairwise product terms.
type RegressionModel struct {
	Intercept float64                      `yaml:"intercept"`
	Linear    map[models.Indicator]float64 `yaml:"linear"`
	Pairs     []PairTerm                   `yaml:"pairs"`
	Min       map[models.Indicator]float64 `yaml:"min"`
	Max       map[models.Indicator]float64 `yaml:"max"`
}

// Eval evaluates the regression after clamping every covariate.
func (m RegressionModel) Eval(x models.Indicators) float64 {
	value := func(k models.Indicator) float64 {
		return clampTo(x.Get(k), k, m.Min, m.Max)
	}
	sum := m.Intercept
	for _, name := range sortedKeys(m.Linear) {
		sum += m.Linear[name] * value(name)
	}
	for _, p := range m.Pairs {
		sum += p.Coef * value(p.A) * value(p.B)
	}
	return sum
}

// ArchetypeModel is the building regression of one archetype. A zero class
// matches any value.
type ArchetypeModel struct {
	GeometryClass int             `yaml:"geometry_class"`
	Orientation   int             `yaml:"orientation"`
	SizeClass     int             `yaml:"size_class"`
	Energy        RegressionModel `yaml:"energy"`
	Comfort       RegressionModel `yaml:"comfort"`
}

// Period maps a construction period to envelope properties.
type Period struct {
	Start    float64         `yaml:"start"`
	End      float64         `yaml:"end"`
	Envelope models.Envelope `yaml:"envelope"`
}

// Default returns the embedded coefficient table.
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// Load reads a coefficient table from a YAML file. An empty path yields the
// embedded defaults.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read coefficients %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a coefficient table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse coefficients: %w", err)
	}
	if err := t.Validate(nil); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the table is usable for the given times of day.
func (t *Table) Validate(timesOfDay []int) error {
	var errs []error
	for _, h := range timesOfDay {
		park, ok := t.Park[h]
		if !ok {
			errs = append(errs, fmt.Errorf("no park coefficients for %dh", h))
		} else if park.PatternSize <= 0 {
			errs = append(errs, fmt.Errorf("pattern size must be positive for %dh", h))
		}
		if _, ok := t.Morphology[h]; !ok {
			errs = append(errs, fmt.Errorf("no morphology coefficients for %dh", h))
		}
	}
	for h, park := range t.Park {
		for combo, c := range park.Combos {
			if c.Rate < 0 || c.Rate > 1 {
				errs = append(errs, fmt.Errorf("rate of combo %d at %dh outside [0,1]", combo, h))
			}
		}
	}
	if len(t.Periods) == 0 {
		errs = append(errs, errors.New("no construction periods"))
	}
	return errors.Join(errs...)
}

// Archetype returns the most specific building model matching the classes,
// trying wildcards for orientation, then size, then both.
func (t *Table) Archetype(geometry, orientation, size int) (*ArchetypeModel, bool) {
	candidates := [][3]int{
		{geometry, orientation, size},
		{geometry, orientation, 0},
		{geometry, 0, size},
		{geometry, 0, 0},
		{0, 0, 0},
	}
	for _, c := range candidates {
		for i := range t.Buildings {
			b := &t.Buildings[i]
			if b.GeometryClass == c[0] && b.Orientation == c[1] && b.SizeClass == c[2] {
				return b, true
			}
		}
	}
	return nil, false
}

// Envelope returns the envelope of a building of the given age. Renovated
// buildings get the most recent period.
func (t *Table) Envelope(age float64, renovated bool) (models.Envelope, int) {
	last := len(t.Periods) - 1
	if renovated {
		return t.Periods[last].Envelope, last + 1
	}
	for i, p := range t.Periods {
		if age >= p.Start && age < p.End {
			return p.Envelope, i + 1
		}
	}
	if age < t.Periods[0].Start {
		return t.Periods[0].Envelope, 1
	}
	return t.Periods[last].Envelope, last + 1
}

// ReplaceCombo maps a physically impossible combination to its substitute.
func (t *Table) ReplaceCombo(c models.Combo) models.Combo {
	if r, ok := t.ComboReplacements[c]; ok {
		return r
	}
	return c
}

func clampTo(v float64, k models.Indicator, lo, hi map[models.Indicator]float64) float64 {
	if m, ok := lo[k]; ok {
		v = math.Max(v, m)
	}
	if m, ok := hi[k]; ok {
		v = math.Min(v, m)
	}
	return v
}

// sortedKeys keeps floating point sums reproducible across runs.
func sortedKeys(m map[models.Indicator]float64) []models.Indicator {
	keys := make([]models.Indicator, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
