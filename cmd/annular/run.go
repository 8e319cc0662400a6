package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	film "Annular/internal/calc/film"
	"Annular/internal/calc/premium/importer"
	"Annular/internal/calc/report"
	"Annular/internal/config"
	"Annular/internal/props"

	"gopkg.in/yaml.v3"
)

type solveOptions struct {
	format string
	out    string
	xSpan  string
	policy string
}

type pointOptions struct {
	jg, jl, d   float64
	substance   string
	temperature float64
	rhoL, rhoG  float64
	muL, muG    float64
	friction    string
}

// caseFile is the YAML case: the calculation input plus report metadata.
type caseFile struct {
	film.Input `yaml:",inline"`
	Report     report.Meta `yaml:"report"`
}

func loadEnv(configPath string) (film.Env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return film.Env{}, err
	}
	cfg.SetupLogging()
	return film.Env{Channel: cfg.Channel, Options: cfg.Options, Provider: props.NewTable()}, nil
}

func readCase(path string) (caseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return caseFile{}, err
	}
	var c caseFile
	if err := yaml.Unmarshal(data, &c); err != nil {
		return caseFile{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return c, nil
}

// parseSpan reads lo:hi:n.
func parseSpan(s string) ([]float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("span %q: want lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("span %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("span %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return nil, fmt.Errorf("span %q: n must be a positive integer", s)
	}
	return film.Linspace(lo, hi, n), nil
}

func runSolve(ctx context.Context, configPath, casePath string, opts solveOptions, stdout io.Writer) error {
	env, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	c, err := readCase(casePath)
	if err != nil {
		return err
	}
	if opts.xSpan != "" {
		if c.Params.X, err = parseSpan(opts.xSpan); err != nil {
			return err
		}
	}
	if opts.policy != "" {
		if c.Policy, err = film.ParsePolicy(opts.policy); err != nil {
			return err
		}
	}

	out, err := film.Calculate(ctx, c.Input, env)
	if err != nil {
		return err
	}

	switch opts.format {
	case "table", "":
		printSummary(stdout, out)
		printRecords(stdout, out.Results.Flat())
		return nil
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "xlsx", "pdf":
		if opts.out == "" {
			return fmt.Errorf("--out is required for %s output", opts.format)
		}
		f, err := os.Create(opts.out)
		if err != nil {
			return err
		}
		if opts.format == "xlsx" {
			err = importer.WriteRecords(f, out)
		} else {
			err = report.Generate(f, c.Report, out, time.Now())
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %d records to %s\n", out.Summary.Points, opts.out)
		return nil
	}
	return fmt.Errorf("unknown format %q", opts.format)
}

func runPoint(ctx context.Context, configPath string, p pointOptions, stdout io.Writer) error {
	env, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	in := film.Input{
		Diameter: p.d,
		Params: film.Params{
			Substance:      p.substance,
			GasVelocity:    film.Values{p.jg},
			LiquidVelocity: film.Values{p.jl},
		},
	}
	if p.friction != "" {
		if in.Friction, err = film.ParseCorrelation(p.friction); err != nil {
			return err
		}
	}
	if p.substance != "" {
		t := p.temperature
		in.Params.Temperature = &t
	}
	set := func(dst **float64, v float64) {
		if v > 0 {
			*dst = &v
		}
	}
	set(&in.Params.LiquidDensity, p.rhoL)
	set(&in.Params.GasDensity, p.rhoG)
	set(&in.Params.LiquidViscosity, p.muL)
	set(&in.Params.GasViscosity, p.muG)

	out, err := film.Calculate(ctx, in, env)
	if err != nil {
		return err
	}
	printSummary(stdout, out)
	printRecords(stdout, out.Results.Flat())
	return nil
}

func runSubstances(stdout io.Writer) error {
	for _, s := range props.NewTable().Substances() {
		fmt.Fprintln(stdout, s)
	}
	return nil
}
