// Package props supplies saturated liquid and vapor properties for the film
// calculation. Lookups are deterministic; a failed lookup is never retried.
package props

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// Phase selects the saturated liquid (Q=0) or vapor (Q=1) line.
type Phase int

const (
	Liquid Phase = 0
	Vapor  Phase = 1
)

func (p Phase) String() string {
	if p == Vapor {
		return "vapor"
	}
	return "liquid"
}

var ErrUnsupported = errors.New("unsupported substance or state")

// Property is density [kg/m³] and dynamic viscosity [Pa·s] of one phase.
type Property struct {
	Density   float64 `json:"density"`
	Viscosity float64 `json:"viscosity"`
}

// Saturation holds the optional data used for the heat transfer estimate
// and the reduced pressure.
type Saturation struct {
	LiquidConductivity float64 `json:"liquid_conductivity"` // W/(m·K)
	Pressure           float64 `json:"pressure"`            // Pa
	CriticalPressure   float64 `json:"critical_pressure"`   // Pa
}

func (s Saturation) ReducedPressure() float64 {
	return s.Pressure / s.CriticalPressure
}

type Provider interface {
	Lookup(substance string, temperatureC float64, phase Phase) (Property, error)
	Substances() []string
}

// SaturationProvider is implemented by providers that also know conductivity
// and saturation pressure.
type SaturationProvider interface {
	Saturation(substance string, temperatureC float64) (Saturation, error)
}

type row struct {
	t          float64 // °C
	rhoL, rhoV float64
	muL, muV   float64
	lambdaL    float64
	psat       float64
}

type substance struct {
	name  string
	pcrit float64
	rows  []row // ascending in t
}

// Interpolated columns of a substance table.
const (
	colRhoL = iota
	colRhoV
	colMuL
	colMuV
	colLambdaL
	colPsat
	numCols
)

func (r row) columns() [numCols]float64 {
	return [numCols]float64{r.rhoL, r.rhoV, r.muL, r.muV, r.lambdaL, r.psat}
}

// curves is a substance with one fitted piecewise-linear curve per column.
type curves struct {
	name     string
	pcrit    float64
	min, max float64
	cols     [numCols]interp.PiecewiseLinear
}

func fit(s *substance) (*curves, error) {
	c := &curves{name: s.name, pcrit: s.pcrit, min: s.rows[0].t, max: s.rows[len(s.rows)-1].t}
	ts := make([]float64, len(s.rows))
	ys := make([][]float64, numCols)
	for k := range ys {
		ys[k] = make([]float64, len(s.rows))
	}
	for i, r := range s.rows {
		ts[i] = r.t
		for k, v := range r.columns() {
			ys[k][i] = v
		}
	}
	for k := range c.cols {
		if err := c.cols[k].Fit(ts, ys[k]); err != nil {
			return nil, fmt.Errorf("%s column %d: %w", s.name, k, err)
		}
	}
	return c, nil
}

// Table interpolates linearly between tabulated saturation states.
type Table struct {
	byName map[string]*curves
	names  []string
}

// NewTable returns a table with the built-in substances.
func NewTable() *Table {
	t := &Table{byName: make(map[string]*curves)}
	t.add(water, "water", "h2o")
	t.add(carbonDioxide, "co2", "carbondioxide", "r744")
	return t
}

// add panics on a malformed built-in table.
func (t *Table) add(s *substance, aliases ...string) {
	c, err := fit(s)
	if err != nil {
		panic(err)
	}
	t.names = append(t.names, s.name)
	sort.Strings(t.names)
	for _, a := range aliases {
		t.byName[a] = c
	}
	t.byName[strings.ToLower(s.name)] = c
}

func (t *Table) Substances() []string {
	return append([]string(nil), t.names...)
}

func (t *Table) find(name string) (*curves, error) {
	c, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: substance %q", ErrUnsupported, name)
	}
	return c, nil
}

// at returns every column at temperature tc. Predict clamps outside the
// fitted range, so the range is checked first.
func (c *curves) at(tc float64) ([numCols]float64, error) {
	var v [numCols]float64
	if math.IsNaN(tc) || tc < c.min || tc > c.max {
		return v, fmt.Errorf("%w: %s at %g °C (table covers %g..%g °C)", ErrUnsupported, c.name, tc, c.min, c.max)
	}
	for k := range c.cols {
		v[k] = c.cols[k].Predict(tc)
	}
	return v, nil
}

func (t *Table) Lookup(name string, temperatureC float64, phase Phase) (Property, error) {
	c, err := t.find(name)
	if err != nil {
		return Property{}, err
	}
	v, err := c.at(temperatureC)
	if err != nil {
		return Property{}, err
	}
	if phase == Vapor {
		return Property{Density: v[colRhoV], Viscosity: v[colMuV]}, nil
	}
	return Property{Density: v[colRhoL], Viscosity: v[colMuL]}, nil
}

func (t *Table) Saturation(name string, temperatureC float64) (Saturation, error) {
	c, err := t.find(name)
	if err != nil {
		return Saturation{}, err
	}
	v, err := c.at(temperatureC)
	if err != nil {
		return Saturation{}, err
	}
	return Saturation{
		LiquidConductivity: v[colLambdaL],
		Pressure:           v[colPsat],
		CriticalPressure:   c.pcrit,
	}, nil
}
