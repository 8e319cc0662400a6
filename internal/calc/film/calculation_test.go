package film

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"Annular/internal/props"

	"gopkg.in/yaml.v3"
)

// countingProvider records every lookup made through it.
type countingProvider struct {
	props.Provider
	mu    sync.Mutex
	calls []props.Phase
	err   error
}

func (c *countingProvider) Lookup(name string, t float64, phase props.Phase) (props.Property, error) {
	c.mu.Lock()
	c.calls = append(c.calls, phase)
	c.mu.Unlock()
	if c.err != nil {
		return props.Property{}, c.err
	}
	return c.Provider.Lookup(name, t, phase)
}

func ptr(v float64) *float64 { return &v }

func env(p props.Provider) Env {
	return Env{
		Channel:  Channel{Diameter: 0.01, Friction: Blasius},
		Options:  Options{Workers: 4},
		Provider: p,
	}
}

func TestValuesDecode(t *testing.T) {
	var p Params
	if err := json.Unmarshal([]byte(`{"G": 100, "x": [0.1, 0.5], "Liquid density": 998}`), &p); err != nil {
		t.Fatal(err)
	}
	if len(p.G) != 1 || p.G[0] != 100 || len(p.X) != 2 || *p.LiquidDensity != 998 {
		t.Errorf("json params = %+v", p)
	}

	var q Params
	doc := "Substance: Water\nTemperature: 100\nGas velocity: [1, 2, 3]\nLiquid velocity: 0.1\n"
	if err := yaml.Unmarshal([]byte(doc), &q); err != nil {
		t.Fatal(err)
	}
	if q.Substance != "Water" || *q.Temperature != 100 || len(q.GasVelocity) != 3 || q.LiquidVelocity[0] != 0.1 {
		t.Errorf("yaml params = %+v", q)
	}

	if err := json.Unmarshal([]byte(`{"G": "fast"}`), &p); err == nil {
		t.Errorf("string G should fail")
	}
}

func TestNewCalculationConfiguration(t *testing.T) {
	table := props.NewTable()
	cases := map[string]Params{
		"no velocities":   {Substance: "Water", Temperature: ptr(100), G: Values{100}},
		"no temperature":  {Substance: "Water", LiquidVelocity: Values{0.1}, GasVelocity: Values{10}},
		"length mismatch": {Substance: "Water", Temperature: ptr(100), LiquidVelocity: Values{0.1, 0.2}, GasVelocity: Values{1, 2, 3}},
		"gas heavier":     {LiquidDensity: ptr(1), LiquidViscosity: ptr(1e-3), GasDensity: ptr(2), GasViscosity: ptr(1e-5), LiquidVelocity: Values{0.1}, GasVelocity: Values{1}},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := NewCalculation(Input{Params: p}, env(table))
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("got %v, want ErrConfiguration", err)
			}
			if c != nil {
				t.Errorf("calculation constructed on error")
			}
		})
	}
}

func TestNewCalculationGravity(t *testing.T) {
	p := Params{LiquidDensity: ptr(1000), LiquidViscosity: ptr(1e-3), GasDensity: ptr(1.2), GasViscosity: ptr(1.8e-5), LiquidVelocity: Values{0.05}, GasVelocity: Values{20}}
	cases := []struct {
		name    string
		channel *float64
		input   *float64
		want    float64
	}{
		{"zero env", nil, nil, DefaultGravity},
		{"channel", ptr(1.62), nil, 1.62},
		{"channel zero", ptr(0), nil, 0},
		{"input wins", ptr(1.62), ptr(3.71), 3.71},
		{"input zero", nil, ptr(0), 0},
	}
	for _, tc := range cases {
		e := Env{Channel: Channel{Diameter: 0.01, Gravity: tc.channel}}
		c, err := NewCalculation(Input{Gravity: tc.input, Params: p}, e)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if c.State.Gravity != tc.want {
			t.Errorf("%s: gravity = %g, want %g", tc.name, c.State.Gravity, tc.want)
		}
	}

	for _, g := range []float64{math.NaN(), math.Inf(1)} {
		if _, err := NewCalculation(Input{Gravity: ptr(g), Params: p}, Env{Channel: Channel{Diameter: 0.01}}); !errors.Is(err, ErrConfiguration) {
			t.Errorf("gravity %g: got %v, want ErrConfiguration", g, err)
		}
	}
}

func TestNewCalculationPropertyLookup(t *testing.T) {
	counting := &countingProvider{Provider: props.NewTable()}
	in := Input{Params: Params{Substance: "Water", Temperature: ptr(100), G: Values{100}, X: Values{0.5}}}
	c, err := NewCalculation(in, env(counting))
	if err != nil {
		t.Fatal(err)
	}
	if len(counting.calls) != 2 || counting.calls[0] != props.Liquid || counting.calls[1] != props.Vapor {
		t.Errorf("lookups = %v, want [liquid vapor]", counting.calls)
	}
	if c.State.LiquidDensity != 958.4 || c.State.GasViscosity != 12.3e-6 {
		t.Errorf("state = %+v", c.State)
	}

	// Explicit properties win over the provider; only the vapor line is read.
	counting.calls = nil
	in.Params.LiquidDensity, in.Params.LiquidViscosity = ptr(1000), ptr(1e-3)
	c, err = NewCalculation(in, env(counting))
	if err != nil {
		t.Fatal(err)
	}
	if len(counting.calls) != 1 || counting.calls[0] != props.Vapor || c.State.LiquidDensity != 1000 {
		t.Errorf("lookups = %v, state %+v", counting.calls, c.State)
	}

	failing := &countingProvider{Provider: props.NewTable(), err: props.ErrUnsupported}
	_, err = NewCalculation(Input{Params: Params{Substance: "Water", Temperature: ptr(100), G: Values{100}, X: Values{0.5}}}, env(failing))
	if !errors.Is(err, ErrPropertyLookup) {
		t.Errorf("got %v, want ErrPropertyLookup", err)
	}
	if len(failing.calls) != 1 {
		t.Errorf("failed lookup retried: %d calls", len(failing.calls))
	}

	_, err = NewCalculation(Input{Params: Params{Substance: "Mercury", Temperature: ptr(100), G: Values{100}, X: Values{0.5}}}, env(props.NewTable()))
	if !errors.Is(err, ErrPropertyLookup) || !errors.Is(err, props.ErrUnsupported) {
		t.Errorf("unknown substance: got %v", err)
	}
}

func TestCalculateMassFluxGrid(t *testing.T) {
	in := Input{Params: Params{Substance: "Water", Temperature: ptr(100), G: Values{100, 200}, X: Values{0.1, 0.5}}}
	out, err := Calculate(context.Background(), in, env(props.NewTable()))
	if err != nil {
		t.Fatal(err)
	}
	if !out.Results.Nested || len(out.Results.Rows) != 2 || len(out.Results.Rows[0]) != 2 {
		t.Fatalf("results shape = %+v", out.Results)
	}
	if out.Failed != 0 || out.Summary.Points != 4 {
		t.Errorf("summary = %+v, failed %d", out.Summary, out.Failed)
	}
	if !near(out.Summary.SimplexDensity, 0.598/958.4, 1e-12) {
		t.Errorf("simplex density = %g", out.Summary.SimplexDensity)
	}

	want := [2][2]float64{
		{1.9985772686e-4, 5.0115184112e-5},
		{2.1384923257e-4, 5.6425676340e-5},
	}
	for i, g := range []float64{100, 200} {
		for j, x := range []float64{0.1, 0.5} {
			r := out.Results.Rows[i][j]
			if *r.G != g || *r.X != x {
				t.Errorf("[%d][%d] G=%g x=%g", i, j, *r.G, *r.X)
			}
			if !near(r.Jl, g*(1-x)/958.4, 1e-12) || !near(r.Jg, g*x/0.598, 1e-12) {
				t.Errorf("[%d][%d] jl=%g jg=%g", i, j, r.Jl, r.Jg)
			}
			if !near(r.B, want[i][j], 1e-6) {
				t.Errorf("[%d][%d] B = %.10g, want %.10g", i, j, r.B, want[i][j])
			}
			if r.Alpha == nil || !near(*r.Alpha, 0.679/r.B, 1e-12) {
				t.Errorf("[%d][%d] alpha = %v", i, j, r.Alpha)
			}
			if r.Pred == nil || !near(*r.Pred, 101418/22.064e6, 1e-12) {
				t.Errorf("[%d][%d] Pred = %v", i, j, r.Pred)
			}
		}
	}

	b, err := json.Marshal(out.Results)
	if err != nil {
		t.Fatal(err)
	}
	var nested [][]map[string]any
	if err := json.Unmarshal(b, &nested); err != nil {
		t.Fatalf("nested results: %v", err)
	}
	for _, key := range []string{"jg", "jl", "B", "DpDz", "Substance", "Re liquid", "Re gas", "x", "void fraction"} {
		if _, ok := nested[0][0][key]; !ok {
			t.Errorf("record is missing %q", key)
		}
	}
}

func TestCalculateExplicitVelocities(t *testing.T) {
	in := Input{
		Diameter: 0.01,
		Params: Params{
			Substance:       "air-water",
			LiquidDensity:   ptr(1000),
			LiquidViscosity: ptr(1e-3),
			GasDensity:      ptr(1.2),
			GasViscosity:    ptr(1.8e-5),
			LiquidVelocity:  Values{0.05},
			GasVelocity:     Values{20, 20, 20},
		},
	}
	out, err := Calculate(context.Background(), in, env(nil))
	if err != nil {
		t.Fatal(err)
	}
	flat := out.Results.Flat()
	if out.Results.Nested || len(flat) != 3 {
		t.Fatalf("results = %+v", out.Results)
	}
	for _, r := range flat {
		if !r.Solved || !near(r.B, 1.5637368429e-4, 1e-6) || r.X != nil || r.Alpha != nil {
			t.Errorf("record = %+v", r)
		}
	}
	b, _ := json.Marshal(out.Results)
	if !strings.HasPrefix(string(b), "[{") {
		t.Errorf("flat results should marshal as a list of records: %.40s", b)
	}
}

func TestCalculatePolicy(t *testing.T) {
	in := Input{
		Diameter: 0.1,
		Params: Params{
			LiquidDensity:   ptr(1000),
			LiquidViscosity: ptr(1e-3),
			GasDensity:      ptr(1.2),
			GasViscosity:    ptr(1.8e-5),
			LiquidVelocity:  Values{1, 0, 1},
			GasVelocity:     Values{1e-6, 10, 0},
		},
	}
	_, err := Calculate(context.Background(), in, env(nil))
	if !errors.Is(err, ErrRootNotBracketed) {
		t.Fatalf("abort policy: got %v", err)
	}

	in.Policy = PolicyRecord
	out, err := Calculate(context.Background(), in, env(nil))
	if err != nil {
		t.Fatal(err)
	}
	flat := out.Results.Flat()
	if out.Failed != 1 || !flat[0].Solved || flat[1].Solved || !flat[2].Solved {
		t.Fatalf("records = %+v", flat)
	}
	if flat[1].B != 0 || flat[1].Jg != 10 || !strings.Contains(flat[1].Error, "not bracketed") {
		t.Errorf("failed record = %+v", flat[1])
	}
	if !near(flat[0].B, flat[2].B, 1e-6) {
		t.Errorf("jg→0 and jg=0 differ: %g vs %g", flat[0].B, flat[2].B)
	}

	in.Policy = "retry"
	if _, err := Calculate(context.Background(), in, env(nil)); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unknown policy: got %v", err)
	}
}

func TestRunStreamsDecoratedRecords(t *testing.T) {
	c, err := NewCalculation(Input{Params: Params{Substance: "Water", Temperature: ptr(100), G: Values{100}, X: Values{0.1, 0.5}}}, env(props.NewTable()))
	if err != nil {
		t.Fatal(err)
	}
	var mu sync.Mutex
	seen := 0
	opts := Options{Workers: 2, OnRecord: func(row, col int, rec Record) {
		mu.Lock()
		defer mu.Unlock()
		seen++
		if rec.Alpha == nil {
			t.Errorf("streamed record [%d][%d] has no alpha", row, col)
		}
	}}
	if _, err := c.Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if seen != 2 {
		t.Errorf("OnRecord called %d times, want 2", seen)
	}
}
