package film

import (
	"fmt"
	"math"
	"strings"
)

// Correlation selects the turbulent friction factor used for both phases.
type Correlation string

const (
	// Blasius is 0.3164·Re^-0.25.
	Blasius Correlation = "blasius"
	// Filonenko is (1.82·log10(Re) − 1.64)^-2.
	Filonenko Correlation = "filonenko"
)

// ParseCorrelation accepts the correlation name in any case; empty means Blasius.
func ParseCorrelation(s string) (Correlation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Blasius):
		return Blasius, nil
	case string(Filonenko), "colebrook":
		return Filonenko, nil
	}
	return "", fmt.Errorf("unknown friction correlation %q", s)
}

const (
	// DefaultGravity is standard gravity in m/s².
	DefaultGravity = 9.81
	// Re at or below this value is treated as laminar.
	LaminarReynolds = 2000.0
)

// State holds the channel geometry and phase properties of one batch.
// It is passed by value and never modified after NewState.
type State struct {
	Substance string  `json:"substance,omitempty"`
	Diameter  float64 `json:"d"`
	Gravity   float64 `json:"g"`

	LiquidDensity   float64 `json:"liquid_density"`
	GasDensity      float64 `json:"gas_density"`
	LiquidViscosity float64 `json:"liquid_viscosity"`
	GasViscosity    float64 `json:"gas_viscosity"`

	// Ki overrides the Wallis coefficient 24·(ρl/ρg)^(1/3).
	Ki *float64 `json:"ki,omitempty"`

	IncludeInterfaceVelocity bool                   `json:"flg_wb"`
	InterfaceVelocity        InterfaceVelocityModel `json:"-"`

	Friction Correlation `json:"friction,omitempty"`
}

// NewState validates s and fills the friction and interface velocity defaults.
func NewState(s State) (State, error) {
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	if s.Friction == "" {
		s.Friction = Blasius
	}
	if s.InterfaceVelocity == nil {
		s.InterfaceVelocity = NoInterfaceVelocity
	}
	if s.Ki != nil {
		ki := *s.Ki
		s.Ki = &ki
	}
	return s, nil
}

func (s State) Validate() error {
	switch {
	case !(s.Diameter > 0) || math.IsInf(s.Diameter, 0):
		return configError("channel diameter must be positive, got %g", s.Diameter)
	case math.IsNaN(s.Gravity) || math.IsInf(s.Gravity, 0):
		return configError("gravity must be finite, got %g", s.Gravity)
	case !(s.LiquidDensity > 0) || !(s.GasDensity > 0):
		return configError("phase densities must be positive (liquid %g, gas %g)", s.LiquidDensity, s.GasDensity)
	case !(s.LiquidViscosity > 0) || !(s.GasViscosity > 0):
		return configError("phase viscosities must be positive (liquid %g, gas %g)", s.LiquidViscosity, s.GasViscosity)
	case s.LiquidDensity <= s.GasDensity:
		return configError("liquid density %g must exceed gas density %g", s.LiquidDensity, s.GasDensity)
	case s.Ki != nil && (math.IsNaN(*s.Ki) || math.IsInf(*s.Ki, 0)):
		return configError("interfacial friction coefficient must be finite")
	}
	if _, err := ParseCorrelation(string(s.Friction)); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

func (s State) DeltaDensity() float64 {
	return s.LiquidDensity - s.GasDensity
}

// SimplexDensity is ρg/ρl.
func (s State) SimplexDensity() float64 {
	return s.GasDensity / s.LiquidDensity
}

// SimplexViscosity is μg/μl.
func (s State) SimplexViscosity() float64 {
	return s.GasViscosity / s.LiquidViscosity
}

func (s State) correlation() Correlation {
	if s.Friction == Filonenko {
		return Filonenko
	}
	return Blasius
}
