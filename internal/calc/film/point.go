package film

import (
	"fmt"
	"runtime"
	"strings"
)

// Policy decides what a failed point does to a batch.
type Policy string

const (
	// PolicyAbort stops the batch at the first failed point.
	PolicyAbort Policy = "abort"
	// PolicyRecord keeps the failed point as an unsolved record.
	PolicyRecord Policy = "record"
)

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PolicyAbort):
		return PolicyAbort, nil
	case string(PolicyRecord), "skip", "gap":
		return PolicyRecord, nil
	}
	return "", fmt.Errorf("unknown failure policy %q", s)
}

// Options tunes the solver and the batch driver. The zero value is usable.
type Options struct {
	Epsilon   float64
	Tolerance Tolerance
	Policy    Policy
	Workers   int

	// OnRecord, when set, is called once per finished point, possibly from
	// several goroutines at once.
	OnRecord func(row, col int, rec Record)
}

func DefaultOptions() Options {
	return Options{
		Epsilon:   DefaultEpsilon,
		Tolerance: DefaultTolerance,
		Policy:    PolicyAbort,
		Workers:   runtime.NumCPU(),
	}
}

func (o Options) normalize() Options {
	if !(o.Epsilon > 0) || o.Epsilon >= 0.25 {
		o.Epsilon = DefaultEpsilon
	}
	if o.Tolerance == (Tolerance{}) {
		o.Tolerance = DefaultTolerance
	}
	if o.Policy == "" {
		o.Policy = PolicyAbort
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return o
}

// Point is one operating point: the two superficial velocities plus the
// mass flux and quality they came from, when known.
type Point struct {
	Jg float64  `json:"jg"`
	Jl float64  `json:"jl"`
	X  *float64 `json:"x,omitempty"`
	G  *float64 `json:"G,omitempty"`
}

// Record is the result of one operating point. Field names are shared with
// the table, xlsx and PDF exports.
type Record struct {
	Jg           float64  `json:"jg"`
	Jl           float64  `json:"jl"`
	B            float64  `json:"B"`
	DpDz         float64  `json:"DpDz"`
	Substance    string   `json:"Substance"`
	ReLiquid     float64  `json:"Re liquid"`
	ReGas        float64  `json:"Re gas"`
	X            *float64 `json:"x,omitempty"`
	G            *float64 `json:"G,omitempty"`
	VoidFraction float64  `json:"void fraction"`
	Wb           float64  `json:"wb"`
	Alpha        *float64 `json:"alpha,omitempty"`
	Pred         *float64 `json:"Pred,omitempty"`

	Solved bool   `json:"solved"`
	Error  string `json:"error,omitempty"`
}

// EvaluatePoint solves for the film thickness and derives the pressure
// gradient, Reynolds numbers and void fraction.
func EvaluatePoint(s State, jg, jl float64, opts Options) (Record, error) {
	b, err := FilmThickness(s, jg, jl, opts)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Jg:           jg,
		Jl:           jl,
		B:            b,
		DpDz:         s.PressureGradient(b, jg, jl),
		Substance:    s.Substance,
		ReLiquid:     s.LiquidReynolds(jl),
		ReGas:        s.GasReynolds(b, jg),
		VoidFraction: s.VoidFraction(b),
		Wb:           s.InterfaceVelocityAt(b, jl),
		Solved:       true,
	}, nil
}

func failedRecord(s State, p Point, err error) Record {
	return Record{
		Jg:        p.Jg,
		Jl:        p.Jl,
		Substance: s.Substance,
		X:         p.X,
		G:         p.G,
		Error:     err.Error(),
	}
}
