package film

// InterfaceVelocityModel estimates the liquid velocity at the gas-liquid
// interface for film thickness b and liquid superficial velocity jl.
type InterfaceVelocityModel func(b, jl float64, s State) float64

// NoInterfaceVelocity treats the interface as stationary. It is the only
// model shipped: the log-law estimate is not validated for this correlation set.
func NoInterfaceVelocity(b, jl float64, s State) float64 {
	return 0
}

// InterfaceVelocityAt returns w_b, zero unless the state enables it.
func (s State) InterfaceVelocityAt(b, jl float64) float64 {
	if !s.IncludeInterfaceVelocity || s.InterfaceVelocity == nil {
		return 0
	}
	return s.InterfaceVelocity(b, jl, s)
}

// WallShear is Tc = Ec·ρl·jl² / (8·(1 − Φ)²). It diverges as b → 0.
func (s State) WallShear(b, jl float64) float64 {
	if jl == 0 {
		return 0
	}
	den := 1 - s.VoidFraction(b)
	return s.LiquidFriction(jl) * s.LiquidDensity * jl * jl / (8 * den * den)
}

// InterfacialShear is Ti = Ei·ρg·(jg/Φ − w_b)² / 8.
func (s State) InterfacialShear(b, jg, jl float64) float64 {
	u := jg/s.VoidFraction(b) - s.InterfaceVelocityAt(b, jl)
	if jg == 0 || u == 0 {
		return 0
	}
	return s.InterfacialFriction(b, jg) * s.GasDensity * u * u / 8
}

// Residual is the film force balance Tc − (Ti + Δρ·g·B); its zero is the
// stationary film thickness.
func (s State) Residual(b, jg, jl float64) float64 {
	return s.WallShear(b, jl) - (s.InterfacialShear(b, jg, jl) + s.DeltaDensity()*s.Gravity*b)
}

// PressureGradient is 4·Ti/Di + ρg·g in Pa/m.
func (s State) PressureGradient(b, jg, jl float64) float64 {
	return 4.0*s.InterfacialShear(b, jg, jl)/s.InterfaceDiameter(b) + s.GasDensity*s.Gravity
}
