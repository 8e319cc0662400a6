package film

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration means the input cannot determine the phase velocities
	// or the phase properties.
	ErrConfiguration = errors.New("insufficient data for calculation")
	// ErrPropertyLookup wraps a failure of the property provider.
	ErrPropertyLookup = errors.New("property lookup failed")
	// ErrRootNotBracketed means the force balance has no sign change over the
	// admissible film thickness interval.
	ErrRootNotBracketed = errors.New("root not bracketed")
	// ErrDomain means the residual is not finite at a bracket end.
	ErrDomain = errors.New("residual outside its domain")
	ErrNoConvergence = errors.New("solver did not converge")
)

// PointError carries the operating point a solve failed at.
type PointError struct {
	Jg, Jl float64
	Err    error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("jg=%g jl=%g: %v", e.Jg, e.Jl, e.Err)
}

func (e *PointError) Unwrap() error { return e.Err }

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
