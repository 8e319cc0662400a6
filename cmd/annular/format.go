package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	film "Annular/internal/calc/film"
)

func g(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func optG(v *float64) string {
	if v == nil {
		return "-"
	}
	return g(*v)
}

func printSummary(w io.Writer, out film.Output) {
	s := out.Summary
	fmt.Fprintf(w, "Substance:   %s\n", s.Substance)
	if s.Temperature != nil {
		fmt.Fprintf(w, "T:           %s °C\n", g(*s.Temperature))
	}
	fmt.Fprintf(w, "d:           %s m\n", g(s.Diameter))
	fmt.Fprintf(w, "rho l / g:   %s / %s kg/m3\n", g(s.LiquidDensity), g(s.GasDensity))
	fmt.Fprintf(w, "mu l / g:    %s / %s Pa s\n", g(s.LiquidViscosity), g(s.GasViscosity))
	fmt.Fprintf(w, "simplexes:   %s (density), %s (viscosity)\n", g(s.SimplexDensity), g(s.SimplexViscosity))
	fmt.Fprintf(w, "friction:    %s, ki = %s\n", s.Friction, g(s.Ki))
	fmt.Fprintf(w, "points:      %d (%d unsolved)\n\n", s.Points, out.Failed)
}

func printRecords(w io.Writer, records []film.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "G\tx\tjg\tjl\tB\tDpDz\tRe liquid\tRe gas\tvoid fraction\talpha\t")
	for _, r := range records {
		if !r.Solved {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\t\t\t\t\t\n", optG(r.G), optG(r.X), g(r.Jg), g(r.Jl), r.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			optG(r.G), optG(r.X), g(r.Jg), g(r.Jl), g(r.B), g(r.DpDz), g(r.ReLiquid), g(r.ReGas), g(r.VoidFraction), optG(r.Alpha))
	}
	tw.Flush()
}
