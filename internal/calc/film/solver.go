package film

import (
	"fmt"
	"math"
)

// Tolerance controls Brent's method.
type Tolerance struct {
	XTol    float64 `json:"xtol"`
	RTol    float64 `json:"rtol"`
	MaxIter int     `json:"max_iter"`
}

// DefaultTolerance matches scipy's brentq defaults.
var DefaultTolerance = Tolerance{XTol: 2e-12, RTol: 4 * 0x1p-52, MaxIter: 100}

// DefaultEpsilon keeps the bracket ends off B = 0 and B = d/2, relative to d.
const DefaultEpsilon = 1e-9

// Brent finds a zero of f in [a, b]. f(a) and f(b) must differ in sign.
func Brent(f func(float64) float64, a, b float64, tol Tolerance) (float64, error) {
	if tol.MaxIter <= 0 {
		tol.MaxIter = DefaultTolerance.MaxIter
	}
	if tol.XTol <= 0 {
		tol.XTol = DefaultTolerance.XTol
	}
	if tol.RTol <= 0 {
		tol.RTol = DefaultTolerance.RTol
	}

	xpre, xcur := a, b
	fpre, fcur := f(xpre), f(xcur)
	if !finite(fpre) || !finite(fcur) {
		return 0, fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrDomain, xpre, fpre, xcur, fcur)
	}
	if fpre*fcur > 0 {
		return 0, fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrRootNotBracketed, xpre, fpre, xcur, fcur)
	}
	if fpre == 0 {
		return xpre, nil
	}
	if fcur == 0 {
		return xcur, nil
	}

	var xblk, fblk, spre, scur float64
	for i := 0; i < tol.MaxIter; i++ {
		if fpre != 0 && fcur != 0 && math.Signbit(fpre) != math.Signbit(fcur) {
			xblk, fblk = xpre, fpre
			spre = xcur - xpre
			scur = spre
		}
		if math.Abs(fblk) < math.Abs(fcur) {
			xpre, xcur, xblk = xcur, xblk, xcur
			fpre, fcur, fblk = fcur, fblk, fcur
		}

		delta := (tol.XTol + tol.RTol*math.Abs(xcur)) / 2
		sbis := (xblk - xcur) / 2
		if fcur == 0 || math.Abs(sbis) < delta {
			return xcur, nil
		}

		if math.Abs(spre) > delta && math.Abs(fcur) < math.Abs(fpre) {
			var stry float64
			if xpre == xblk {
				// secant
				stry = -fcur * (xcur - xpre) / (fcur - fpre)
			} else {
				// inverse quadratic interpolation
				dpre := (fpre - fcur) / (xpre - xcur)
				dblk := (fblk - fcur) / (xblk - xcur)
				stry = -fcur * (fblk*dblk - fpre*dpre) / (dblk * dpre * (fblk - fpre))
			}
			if 2*math.Abs(stry) < math.Min(math.Abs(spre), 3*math.Abs(sbis)-delta) {
				spre, scur = scur, stry
			} else {
				spre, scur = sbis, sbis
			}
		} else {
			spre, scur = sbis, sbis
		}

		xpre, fpre = xcur, fcur
		if math.Abs(scur) > delta {
			xcur += scur
		} else if sbis > 0 {
			xcur += delta
		} else {
			xcur -= delta
		}
		fcur = f(xcur)
		if !finite(fcur) {
			return 0, fmt.Errorf("%w: f(%g)=%g", ErrDomain, xcur, fcur)
		}
	}
	return xcur, fmt.Errorf("%w after %d iterations (x=%g)", ErrNoConvergence, tol.MaxIter, xcur)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Bracket is the film thickness search interval [ε·d, d/2 − ε·d].
func (s State) Bracket(eps float64) (lo, hi float64) {
	if !(eps > 0) {
		eps = DefaultEpsilon
	}
	return eps * s.Diameter, s.Diameter/2 - eps*s.Diameter
}

// FilmThickness solves the force balance for B at one operating point.
func FilmThickness(s State, jg, jl float64, opts Options) (float64, error) {
	opts = opts.normalize()
	lo, hi := s.Bracket(opts.Epsilon)
	b, err := Brent(func(b float64) float64 {
		return s.Residual(b, jg, jl)
	}, lo, hi, opts.Tolerance)
	if err != nil {
		return 0, &PointError{Jg: jg, Jl: jl, Err: err}
	}
	return b, nil
}
