package film

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
)

func TestDerivePhaseVelocities(t *testing.T) {
	jl, jg, err := DerivePhaseVelocities([]float64{100, 300}, []float64{0, 0.25, 1}, 1000, 2)
	if err != nil {
		t.Fatal(err)
	}
	r, c := jl.Dims()
	if r != 2 || c != 3 {
		t.Fatalf("dims = %d×%d, want 2×3", r, c)
	}
	cases := []struct {
		i, j   int
		jl, jg float64
	}{
		{0, 0, 0.1, 0},
		{0, 1, 0.075, 12.5},
		{1, 1, 0.225, 37.5},
		{1, 2, 0, 150},
	}
	for _, tc := range cases {
		if got := jl.At(tc.i, tc.j); !near(got, tc.jl, 1e-12) && got != tc.jl {
			t.Errorf("jl[%d][%d] = %g, want %g", tc.i, tc.j, got, tc.jl)
		}
		if got := jg.At(tc.i, tc.j); !near(got, tc.jg, 1e-12) && got != tc.jg {
			t.Errorf("jg[%d][%d] = %g, want %g", tc.i, tc.j, got, tc.jg)
		}
	}

	if _, _, err := DerivePhaseVelocities(nil, []float64{0.5}, 1000, 1); !errors.Is(err, ErrConfiguration) {
		t.Errorf("empty G: got %v", err)
	}
	if _, _, err := DerivePhaseVelocities([]float64{100}, []float64{0.5}, 1000, 0); !errors.Is(err, ErrConfiguration) {
		t.Errorf("zero gas density: got %v", err)
	}
}

func TestDerivePhaseVelocitiesAirWater(t *testing.T) {
	g := []float64{100, 250}
	x := []float64{0.1, 0.5, 0.9}
	jl, jg, err := DerivePhaseVelocities(g, x, 1000, 1.2)
	if err != nil {
		t.Fatal(err)
	}
	if got := jl.At(0, 1); !near(got, 0.05, 1e-12) {
		t.Errorf("jl(G=100, x=0.5) = %g, want 0.05", got)
	}
	if got := jg.At(0, 1); !near(got, 41.666666666666667, 1e-12) {
		t.Errorf("jg(G=100, x=0.5) = %g, want 41.667", got)
	}
	for i, gi := range g {
		for j, xj := range x {
			if back := jl.At(i, j) * 1000 / (1 - xj); !near(back, gi, 1e-12) {
				t.Errorf("G from jl at (%g, %g) = %g", gi, xj, back)
			}
			if back := jg.At(i, j) * 1.2 / xj; !near(back, gi, 1e-12) {
				t.Errorf("G from jg at (%g, %g) = %g", gi, xj, back)
			}
		}
	}
}

func TestVelocityPoints(t *testing.T) {
	points, err := VelocityPoints([]float64{0.1}, []float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 || points[2].Jl != 0.1 || points[2].Jg != 3 {
		t.Errorf("broadcast points = %+v", points)
	}

	points, err = VelocityPoints([]float64{0.1, 0.2}, []float64{1, 2})
	if err != nil || points[1].Jl != 0.2 || points[1].Jg != 2 {
		t.Errorf("paired points = %+v, %v", points, err)
	}

	if _, err := VelocityPoints([]float64{0.1, 0.2}, []float64{1, 2, 3}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("mismatch: got %v", err)
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0.1, 0.5, 5)
	want := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if !near(got[i], want[i], 1e-12) {
			t.Errorf("Linspace[%d] = %g, want %g", i, got[i], want[i])
		}
	}
	if got := Linspace(1, 2, 1); len(got) != 1 || got[0] != 1 {
		t.Errorf("Linspace n=1 = %v", got)
	}
	if got := Linspace(1, 2, 0); got != nil {
		t.Errorf("Linspace n=0 = %v", got)
	}
}

func TestEvaluateBatchKeepsOrder(t *testing.T) {
	s := air(t, 0.01)
	var points []Point
	for _, jg := range Linspace(10, 40, 16) {
		points = append(points, Point{Jg: jg, Jl: 0.05})
	}

	serial, err := EvaluateBatch(context.Background(), s, points, Options{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := EvaluateBatch(context.Background(), s, points, Options{Workers: 8})
	if err != nil {
		t.Fatal(err)
	}
	for i := range points {
		if serial[i].Jg != points[i].Jg || parallel[i].Jg != points[i].Jg {
			t.Fatalf("record %d out of order", i)
		}
		if serial[i].B != parallel[i].B {
			t.Errorf("record %d: B %g (serial) != %g (parallel)", i, serial[i].B, parallel[i].B)
		}
		if i > 0 && !(serial[i].B < serial[i-1].B) {
			t.Errorf("film should thin as jg grows: B[%d]=%g, B[%d]=%g", i-1, serial[i-1].B, i, serial[i].B)
		}
	}
}

func TestEvaluateBatchAbortStops(t *testing.T) {
	s := air(t, 0.01)
	points := []Point{{Jg: 10, Jl: 0}}
	for _, jg := range Linspace(10, 40, 50) {
		points = append(points, Point{Jg: jg, Jl: 0.05})
	}

	var mu sync.Mutex
	calls := 0
	opts := Options{Workers: 1, Policy: PolicyAbort, OnRecord: func(row, col int, rec Record) {
		mu.Lock()
		calls++
		mu.Unlock()
	}}
	out, err := EvaluateBatch(context.Background(), s, points, opts)
	if !errors.Is(err, ErrRootNotBracketed) || out != nil {
		t.Fatalf("got %v, %v", out, err)
	}
	if calls != 1 {
		t.Errorf("%d points evaluated, want only the failed one", calls)
	}

	// Parallel: the failure reported is the first in input order and the
	// batch stops well short of the end.
	points = nil
	for _, jg := range Linspace(10, 40, 200) {
		points = append(points, Point{Jg: jg, Jl: 0.05})
	}
	points[20].Jl = 0
	points[25].Jl = 0
	calls = 0
	opts.Workers = 4
	_, err = EvaluateBatch(context.Background(), s, points, opts)
	var pe *PointError
	if !errors.As(err, &pe) || pe.Jg != points[20].Jg {
		t.Fatalf("got %v, want the failure at point 20", err)
	}
	if calls >= len(points) {
		t.Errorf("all %d points evaluated after an abort", calls)
	}
}

func TestEvaluateGridCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	grid := [][]Point{{{Jg: 20, Jl: 0.05}, {Jg: 30, Jl: 0.05}}}
	if _, err := EvaluateGrid(ctx, air(t, 0.01), grid, Options{Workers: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestEvaluatePointRecord(t *testing.T) {
	s := air(t, 0.01)
	rec, err := EvaluatePoint(s, 20, 0.05, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Solved || rec.Substance != "air-water" || rec.Wb != 0 {
		t.Errorf("record = %+v", rec)
	}
	again, err := EvaluatePoint(s, 20, 0.05, Options{})
	if err != nil || math.Float64bits(again.B) != math.Float64bits(rec.B) {
		t.Errorf("repeat solve B = %v (%v), first %v", again.B, err, rec.B)
	}
	if !near(rec.DpDz, s.PressureGradient(rec.B, 20, 0.05), 1e-12) {
		t.Errorf("DpDz = %g", rec.DpDz)
	}
	if !near(rec.VoidFraction, 0.9384286354, 1e-6) {
		t.Errorf("void fraction = %g", rec.VoidFraction)
	}
	if !near(rec.DpDz, 3735.8532833, 1e-5) {
		t.Errorf("DpDz = %.10g", rec.DpDz)
	}
}
