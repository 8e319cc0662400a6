package film

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DerivePhaseVelocities returns jl = G·(1−x)/ρl and jg = G·x/ρg for every
// (G, x) combination: row i is G[i], column j is x[j]. A scalar is a
// length-one slice.
func DerivePhaseVelocities(g, x []float64, rhoL, rhoG float64) (jl, jg *mat.Dense, err error) {
	if len(g) == 0 || len(x) == 0 {
		return nil, nil, configError("mass flux and quality are both required (G: %d values, x: %d values)", len(g), len(x))
	}
	if !(rhoL > 0) || !(rhoG > 0) {
		return nil, nil, configError("phase densities are required to derive velocities")
	}

	gv := mat.NewVecDense(len(g), append([]float64(nil), g...))
	liquid := make([]float64, len(x))
	for i, q := range x {
		liquid[i] = 1 - q
	}
	gas := append([]float64(nil), x...)

	jl = mat.NewDense(len(g), len(x), nil)
	jl.Outer(1, gv, mat.NewVecDense(len(x), liquid))
	jl.Scale(1/rhoL, jl)

	jg = mat.NewDense(len(g), len(x), nil)
	jg.Outer(1, gv, mat.NewVecDense(len(x), gas))
	jg.Scale(1/rhoG, jg)
	return jl, jg, nil
}

// MassFluxGrid builds the operating point grid for mass flux g (outer) and
// quality x (inner).
func MassFluxGrid(g, x []float64, s State) ([][]Point, error) {
	jl, jg, err := DerivePhaseVelocities(g, x, s.LiquidDensity, s.GasDensity)
	if err != nil {
		return nil, err
	}
	grid := make([][]Point, len(g))
	for i := range g {
		grid[i] = make([]Point, len(x))
		for j := range x {
			gi, xj := g[i], x[j]
			grid[i][j] = Point{Jg: jg.At(i, j), Jl: jl.At(i, j), G: &gi, X: &xj}
		}
	}
	return grid, nil
}

// VelocityPoints pairs explicit superficial velocities element-wise. A
// single value is broadcast against the other list.
func VelocityPoints(jl, jg []float64) ([]Point, error) {
	if len(jl) == 0 || len(jg) == 0 {
		return nil, configError("both liquid and gas velocities are required")
	}
	n := len(jl)
	if len(jg) > n {
		n = len(jg)
	}
	if (len(jl) != n && len(jl) != 1) || (len(jg) != n && len(jg) != 1) {
		return nil, configError("liquid velocity (%d values) and gas velocity (%d values) cannot be paired", len(jl), len(jg))
	}
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{Jl: jl[min(i, len(jl)-1)], Jg: jg[min(i, len(jg)-1)]}
	}
	return points, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
