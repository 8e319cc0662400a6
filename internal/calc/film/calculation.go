package film

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"Annular/internal/props"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Values is a number or a list of numbers.
type Values []float64

func (v *Values) UnmarshalJSON(b []byte) error {
	var one float64
	if err := json.Unmarshal(b, &one); err == nil {
		*v = Values{one}
		return nil
	}
	var many []float64
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("expected a number or a list of numbers: %w", err)
	}
	*v = many
	return nil
}

func (v *Values) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var one float64
		if err := n.Decode(&one); err != nil {
			return err
		}
		*v = Values{one}
		return nil
	}
	var many []float64
	if err := n.Decode(&many); err != nil {
		return err
	}
	*v = many
	return nil
}

// Params are the thermodynamic inputs of a calculation. Keys match the
// field names used by the table and dashboard tools.
type Params struct {
	Substance   string   `json:"Substance" yaml:"Substance"`
	Temperature *float64 `json:"Temperature,omitempty" yaml:"Temperature,omitempty"` // °C
	Pressure    *float64 `json:"Pressure,omitempty" yaml:"Pressure,omitempty"`

	LiquidDensity   *float64 `json:"Liquid density,omitempty" yaml:"Liquid density,omitempty"`
	LiquidViscosity *float64 `json:"Liquid viscosity,omitempty" yaml:"Liquid viscosity,omitempty"`
	GasDensity      *float64 `json:"Gas density,omitempty" yaml:"Gas density,omitempty"`
	GasViscosity    *float64 `json:"Gas viscosity,omitempty" yaml:"Gas viscosity,omitempty"`

	G              Values `json:"G,omitempty" yaml:"G,omitempty"`
	X              Values `json:"x,omitempty" yaml:"x,omitempty"`
	LiquidVelocity Values `json:"Liquid velocity,omitempty" yaml:"Liquid velocity,omitempty"`
	GasVelocity    Values `json:"Gas velocity,omitempty" yaml:"Gas velocity,omitempty"`
}

func (p Params) hasVelocities() bool { return len(p.LiquidVelocity) > 0 && len(p.GasVelocity) > 0 }
func (p Params) hasMassFlux() bool   { return len(p.G) > 0 && len(p.X) > 0 }

func (p Params) propertiesGiven() bool {
	return p.LiquidDensity != nil && p.LiquidViscosity != nil && p.GasDensity != nil && p.GasViscosity != nil
}

// Input is one calculation request: channel, correlation choices and Params.
// Zero channel fields fall back to Env.Channel.
type Input struct {
	Diameter                 float64     `json:"d" yaml:"d"`
	Gravity                  *float64    `json:"g,omitempty" yaml:"g,omitempty"`
	Ki                       *float64    `json:"ki,omitempty" yaml:"ki,omitempty"`
	IncludeInterfaceVelocity bool        `json:"flg_wb" yaml:"flg_wb"`
	Friction                 Correlation `json:"friction,omitempty" yaml:"friction,omitempty"`
	Policy                   Policy      `json:"policy,omitempty" yaml:"policy,omitempty"`
	Params                   Params      `json:"params" yaml:"params"`
}

// Channel is the default geometry and correlation choice.
type Channel struct {
	Diameter float64
	// Gravity is DefaultGravity when nil.
	Gravity  *float64
	Friction Correlation
}

func (c Channel) gravity() float64 {
	if c.Gravity == nil {
		return DefaultGravity
	}
	return *c.Gravity
}

// Env is what a calculation needs besides its Input.
type Env struct {
	Channel  Channel
	Options  Options
	Provider props.Provider
}

// Calculation is a validated Input: the shared State and the operating
// points to evaluate.
type Calculation struct {
	State       State
	Points      [][]Point
	Nested      bool
	Temperature *float64
	Saturation  *props.Saturation
	Policy      Policy
}

// NewCalculation checks the input, looks up missing phase properties and
// builds the operating points. Nothing is returned on error.
func NewCalculation(in Input, env Env) (*Calculation, error) {
	p := in.Params
	if !p.hasVelocities() && !p.hasMassFlux() {
		return nil, configError("cannot determine phase velocities: G missing=%t, x missing=%t, liquid velocity missing=%t, gas velocity missing=%t",
			len(p.G) == 0, len(p.X) == 0, len(p.LiquidVelocity) == 0, len(p.GasVelocity) == 0)
	}

	liquid, gas, err := resolveProperties(p, env.Provider)
	if err != nil {
		return nil, err
	}

	s := State{
		Substance:                p.Substance,
		Diameter:                 in.Diameter,
		Gravity:                  env.Channel.gravity(),
		LiquidDensity:            liquid.Density,
		LiquidViscosity:          liquid.Viscosity,
		GasDensity:               gas.Density,
		GasViscosity:             gas.Viscosity,
		Ki:                       in.Ki,
		IncludeInterfaceVelocity: in.IncludeInterfaceVelocity,
		Friction:                 in.Friction,
	}
	if s.Diameter == 0 {
		s.Diameter = env.Channel.Diameter
	}
	if in.Gravity != nil {
		s.Gravity = *in.Gravity
	}
	if s.Friction == "" {
		s.Friction = env.Channel.Friction
	}
	if s, err = NewState(s); err != nil {
		return nil, err
	}

	c := &Calculation{State: s, Temperature: p.Temperature, Policy: in.Policy}
	if c.Policy == "" {
		c.Policy = env.Options.Policy
	}
	if _, err := ParsePolicy(string(c.Policy)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	// Explicit velocities take precedence over G and x.
	if p.hasVelocities() {
		points, err := VelocityPoints(p.LiquidVelocity, p.GasVelocity)
		if err != nil {
			return nil, err
		}
		c.Points = [][]Point{points}
	} else {
		if c.Points, err = MassFluxGrid(p.G, p.X, s); err != nil {
			return nil, err
		}
		c.Nested = true
	}

	if sp, ok := env.Provider.(props.SaturationProvider); ok && p.Temperature != nil {
		if sat, err := sp.Saturation(p.Substance, *p.Temperature); err == nil {
			c.Saturation = &sat
		}
	}
	return c, nil
}

// resolveProperties fills the phase properties that were not given, with at
// most one provider call per phase.
func resolveProperties(p Params, provider props.Provider) (liquid, gas props.Property, err error) {
	if p.LiquidDensity != nil {
		liquid.Density = *p.LiquidDensity
	}
	if p.LiquidViscosity != nil {
		liquid.Viscosity = *p.LiquidViscosity
	}
	if p.GasDensity != nil {
		gas.Density = *p.GasDensity
	}
	if p.GasViscosity != nil {
		gas.Viscosity = *p.GasViscosity
	}
	if p.propertiesGiven() {
		return liquid, gas, nil
	}

	if p.Temperature == nil {
		return liquid, gas, configError("phase properties missing and no temperature to look them up")
	}
	if provider == nil {
		return liquid, gas, configError("phase properties missing and no property provider configured")
	}

	if p.LiquidDensity == nil || p.LiquidViscosity == nil {
		l, err := provider.Lookup(p.Substance, *p.Temperature, props.Liquid)
		if err != nil {
			return liquid, gas, fmt.Errorf("%w: %w", ErrPropertyLookup, err)
		}
		if p.LiquidDensity == nil {
			liquid.Density = l.Density
		}
		if p.LiquidViscosity == nil {
			liquid.Viscosity = l.Viscosity
		}
	}
	if p.GasDensity == nil || p.GasViscosity == nil {
		g, err := provider.Lookup(p.Substance, *p.Temperature, props.Vapor)
		if err != nil {
			return liquid, gas, fmt.Errorf("%w: %w", ErrPropertyLookup, err)
		}
		if p.GasDensity == nil {
			gas.Density = g.Density
		}
		if p.GasViscosity == nil {
			gas.Viscosity = g.Viscosity
		}
	}
	return liquid, gas, nil
}

// Size is the number of operating points.
func (c *Calculation) Size() int {
	n := 0
	for _, row := range c.Points {
		n += len(row)
	}
	return n
}

// Run evaluates every point. opts.Policy is overridden by the calculation's
// own policy.
func (c *Calculation) Run(ctx context.Context, opts Options) (Results, error) {
	opts.Policy = c.Policy
	if hook := opts.OnRecord; hook != nil && c.Saturation != nil {
		opts.OnRecord = func(row, col int, rec Record) {
			c.decorate(&rec)
			hook(row, col, rec)
		}
	}
	rows, err := EvaluateGrid(ctx, c.State, c.Points, opts)
	if err != nil {
		return Results{}, err
	}
	if c.Saturation != nil {
		for i := range rows {
			for j := range rows[i] {
				c.decorate(&rows[i][j])
			}
		}
	}
	return Results{Rows: rows, Nested: c.Nested}, nil
}

// decorate adds the conductive heat transfer coefficient λ/B and the
// reduced pressure to a solved record.
func (c *Calculation) decorate(r *Record) {
	if !r.Solved || c.Saturation == nil {
		return
	}
	if c.Saturation.LiquidConductivity > 0 {
		alpha := c.Saturation.LiquidConductivity / r.B
		r.Alpha = &alpha
	}
	if c.Saturation.CriticalPressure > 0 {
		pred := c.Saturation.ReducedPressure()
		r.Pred = &pred
	}
}

// Summary describes the shared state of a calculation.
type Summary struct {
	Substance        string   `json:"Substance"`
	Temperature      *float64 `json:"T,omitempty"`
	Diameter         float64  `json:"d"`
	Gravity          float64  `json:"g"`
	Ki               float64  `json:"ki"`
	Friction         string   `json:"friction"`
	LiquidDensity    float64  `json:"Liquid density"`
	GasDensity       float64  `json:"Gas density"`
	LiquidViscosity  float64  `json:"Liquid viscosity"`
	GasViscosity     float64  `json:"Gas viscosity"`
	SimplexDensity   float64  `json:"Simplex density"`
	SimplexViscosity float64  `json:"Simplex viscosity"`
	Points           int      `json:"points"`
}

func (c *Calculation) Summary() Summary {
	s := c.State
	return Summary{
		Substance:        s.Substance,
		Temperature:      c.Temperature,
		Diameter:         s.Diameter,
		Gravity:          s.Gravity,
		Ki:               s.InterfacialCoefficient(),
		Friction:         string(s.correlation()),
		LiquidDensity:    s.LiquidDensity,
		GasDensity:       s.GasDensity,
		LiquidViscosity:  s.LiquidViscosity,
		GasViscosity:     s.GasViscosity,
		SimplexDensity:   s.SimplexDensity(),
		SimplexViscosity: s.SimplexViscosity(),
		Points:           c.Size(),
	}
}

// Results keeps the input shape: a G×x grid is nested, explicit velocity
// pairs are a flat sequence.
type Results struct {
	Rows   [][]Record
	Nested bool
}

func (r Results) Flat() []Record {
	var out []Record
	for _, row := range r.Rows {
		out = append(out, row...)
	}
	return out
}

func (r Results) MarshalJSON() ([]byte, error) {
	if r.Nested {
		return json.Marshal(r.Rows)
	}
	flat := r.Flat()
	if flat == nil {
		flat = []Record{}
	}
	return json.Marshal(flat)
}

// Output is the response of Calculate.
type Output struct {
	RunID   string  `json:"run_id,omitempty"`
	Summary Summary `json:"summary"`
	Results Results `json:"results"`
	Failed  int     `json:"failed"`
}

// Calculate builds and runs a calculation.
func Calculate(ctx context.Context, in Input, env Env) (Output, error) {
	c, err := NewCalculation(in, env)
	if err != nil {
		return Output{}, err
	}
	res, err := c.Run(ctx, env.Options)
	if err != nil {
		return Output{}, err
	}
	out := Output{Summary: c.Summary(), Results: res, Failed: CountFailed(res.Rows)}
	log.WithFields(log.Fields{
		"substance": out.Summary.Substance,
		"points":    out.Summary.Points,
		"failed":    out.Failed,
		"d":         out.Summary.Diameter,
	}).Debug("film calculation done")
	return out, nil
}

// IsInputError reports whether err is caused by the request rather than by
// the physics of a point.
func IsInputError(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrPropertyLookup)
}
