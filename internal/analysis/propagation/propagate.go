// Package propagation carries air temperature and park cooling along the
// corridor fragments of one wind direction.
package propagation

import (
	"fmt"
	"math"
	"sort"

	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/models"
)

// Weather is the meteorological situation of one evaluation.
type Weather struct {
	AirTemperature   float64
	WindSpeed        float64
	RelativeHumidity float64
}

// Result holds the air temperature and the park induced delta for every
// grid point of a direction, indexed like DirectionModel.Points.
type Result struct {
	T      []float64
	DeltaT []float64
}

// Propagator evaluates the cooling model of one time of day. It is read-only
// once built and safe for concurrent use.
type Propagator struct {
	hour  int
	cal   config.CalibrationConfig
	park  coefficients.ParkModel
	morph coefficients.MorphologyModel
}

// New creates the propagator of a time of day.
func New(table *coefficients.Table, cfg *config.Config, hour int) (*Propagator, error) {
	cal, ok := cfg.Calibration[hour]
	if !ok {
		return nil, fmt.Errorf("no calibration for time of day %d", hour)
	}
	park, ok := table.Park[hour]
	if !ok {
		return nil, fmt.Errorf("no park coefficients for time of day %d", hour)
	}
	morph, ok := table.Morphology[hour]
	if !ok {
		return nil, fmt.Errorf("no morphology coefficients for time of day %d", hour)
	}
	return &Propagator{hour: hour, cal: cal, park: park, morph: morph}, nil
}

// Hour returns the time of day the propagator was built for.
func (p *Propagator) Hour() int {
	return p.hour
}

// state is what a fragment hands to the next one downstream.
type state struct {
	t, dt float64
}

// inputs are the normalised weather covariates.
type inputs struct {
	ta, ws, dpv float64
}

// Propagate evaluates every column chain of d, strictly upstream to
// downstream, and returns the values at the grid points.
func (p *Propagator) Propagate(d *models.DirectionModel, w Weather) Result {
	in := inputs{
		ta:  w.AirTemperature,
		ws:  Normalize(w.WindSpeed, p.cal.WindSpeedMin, p.cal.WindSpeedMax),
		dpv: Normalize(VapourPressureDeficit(w.AirTemperature, w.RelativeHumidity), p.cal.DPVMin, p.cal.DPVMax),
	}

	exits := make([]state, len(d.Fragments))
	entries := make([]state, len(d.Fragments))
	for _, chain := range d.ColumnChains() {
		cur := state{t: in.ta}
		for _, fi := range chain {
			entries[fi] = cur
			cur = p.evaluate(&d.Fragments[fi], cur, in, d.Fragments[fi].Length())
			exits[fi] = cur
		}
	}

	res := Result{T: make([]float64, len(d.Points)), DeltaT: make([]float64, len(d.Points))}
	for i := range d.Points {
		pt := &d.Points[i]
		frag := &d.Fragments[pt.Fragment]
		var at float64
		switch frag.Zone {
		case models.ZonePark:
			at = pt.DInput
		case models.ZoneAfter:
			at = pt.DPark
		}
		s := p.evaluate(frag, entries[pt.Fragment], in, at)
		res.T[i], res.DeltaT[i] = s.t, s.dt
	}
	return res
}

// evaluate returns the state at distance d inside frag, given the state
// entering it.
func (p *Propagator) evaluate(frag *models.Fragment, entry state, in inputs, d float64) state {
	switch frag.Zone {
	case models.ZonePark:
		return p.parkState(frag, entry, in, d)
	case models.ZoneAfter:
		tCity := in.ta + p.morph.DeltaT.Eval(frag.Indicators, in.ws)
		dMorph := math.Max(p.morph.Distance.Eval(frag.Indicators, in.ws), 1)
		w := math.Min(d/dMorph, 1)
		rest := math.Max(1-w, 0)
		return state{t: w*tCity + rest*entry.t, dt: rest * entry.dt}
	default:
		return state{t: in.ta + p.morph.DeltaT.Eval(frag.Indicators, in.ws)}
	}
}

// parkState applies the cover-weighted cooling gained after crossing d
// metres of park.
func (p *Propagator) parkState(frag *models.Fragment, entry state, in inputs, d float64) state {
	n := math.Min(math.Max(d, 0), p.cal.MaxCoolingDistance) / p.park.PatternSize
	var cooling float64
	for _, combo := range sortedCombos(frag.Cover) {
		frac := frag.Cover[combo]
		m, ok := p.park.Combos[combo]
		if !ok || frac == 0 {
			continue
		}
		cooling += frac * m.MaxDelta(in.ws, in.dpv) * (1 - math.Pow(1-m.Rate, n))
	}
	f := frag.Indicators.Get(models.CorridorParkFrac)
	t := f*(entry.t+cooling) + (1-f)*entry.t
	return state{t: t, dt: t - entry.t + entry.dt}
}

func sortedCombos(cover map[models.Combo]float64) []models.Combo {
	combos := make([]models.Combo, 0, len(cover))
	for c := range cover {
		combos = append(combos, c)
	}
	sort.Slice(combos, func(i, j int) bool { return combos[i] < combos[j] })
	return combos
}
