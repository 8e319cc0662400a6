package film

import "math"

// FrictionFactor is 64/Re in the laminar range and the selected turbulent
// correlation above it.
func FrictionFactor(re float64, c Correlation) float64 {
	if re <= LaminarReynolds {
		return 64 / re
	}
	if c == Filonenko {
		return math.Pow(1.82*math.Log10(re)-1.64, -2)
	}
	return 0.3164 * math.Pow(re, -0.25)
}

// InterfaceDiameter is the gas core diameter d − 2B.
func InterfaceDiameter(b, d float64) float64 {
	return d - 2*b
}

// VoidFraction is the gas core share of the cross-section, ((d − 2B)/d)².
func VoidFraction(b, d float64) float64 {
	r := (d - 2*b) / d
	return r * r
}

// LiquidReynolds is ρl·jl·d/μl.
func (s State) LiquidReynolds(jl float64) float64 {
	return (s.LiquidDensity * jl * s.Diameter) / s.LiquidViscosity
}

// LiquidFriction is the liquid friction factor Ec.
func (s State) LiquidFriction(jl float64) float64 {
	return FrictionFactor(s.LiquidReynolds(jl), s.correlation())
}

func (s State) InterfaceDiameter(b float64) float64 {
	return InterfaceDiameter(b, s.Diameter)
}

func (s State) VoidFraction(b float64) float64 {
	return VoidFraction(b, s.Diameter)
}

// GasReynolds is the gas core Reynolds number ρg·jg/Φ·Di/μg.
func (s State) GasReynolds(b, jg float64) float64 {
	fi := s.VoidFraction(b)
	di := s.InterfaceDiameter(b)
	return (s.GasDensity * jg / fi * di) / s.GasViscosity
}

// GasFriction is the smooth-core gas friction factor E0.
func (s State) GasFriction(b, jg float64) float64 {
	return FrictionFactor(s.GasReynolds(b, jg), s.correlation())
}

// InterfacialCoefficient returns Ki when set, otherwise the Wallis
// default 24·(ρl/ρg)^(1/3).
func (s State) InterfacialCoefficient() float64 {
	if s.Ki != nil {
		return *s.Ki
	}
	return 24 * math.Cbrt(s.LiquidDensity/s.GasDensity)
}

// InterfacialFriction is Ei = E0·(1 + k·B/d).
func (s State) InterfacialFriction(b, jg float64) float64 {
	return s.GasFriction(b, jg) * (1 + s.InterfacialCoefficient()*b/s.Diameter)
}
