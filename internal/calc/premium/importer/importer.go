package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	film "Annular/internal/calc/film"

	"github.com/xuri/excelize/v2"
)

var ErrNoPoints = errors.New("sheet has no operating points")

// Column headers understood by ReadPoints, lower case.
var headers = map[string]string{
	"jg":              "jg",
	"gas velocity":    "jg",
	"jl":              "jl",
	"liquid velocity": "jl",
	"x":               "x",
	"quality":         "x",
	"g":               "G",
	"mass flux":       "G",
}

// ReadPoints reads operating points from the first sheet of an xlsx file.
// The first row names the columns; jg and jl are required, x and G are
// carried into the records when present. Non-blank rows whose velocities
// do not parse are left out and their 1-based sheet row numbers returned
// as skipped.
func ReadPoints(r io.Reader) (points []film.Point, skipped []int, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, ErrNoPoints
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		if name, ok := headers[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, seen := cols[name]; !seen {
				cols[name] = i
			}
		}
	}
	if _, ok := cols["jg"]; !ok {
		return nil, nil, fmt.Errorf("%w: column jg missing", film.ErrConfiguration)
	}
	if _, ok := cols["jl"]; !ok {
		return nil, nil, fmt.Errorf("%w: column jl missing", film.ErrConfiguration)
	}

	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		jg, errG := cell(row, cols["jg"])
		jl, errL := cell(row, cols["jl"])
		if errG != nil || errL != nil {
			skipped = append(skipped, i+2)
			continue
		}
		p := film.Point{Jg: jg, Jl: jl}
		if i, ok := cols["x"]; ok {
			if v, err := cell(row, i); err == nil {
				p.X = &v
			}
		}
		if i, ok := cols["G"]; ok {
			if v, err := cell(row, i); err == nil {
				p.G = &v
			}
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, skipped, ErrNoPoints
	}
	return points, skipped, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) (float64, error) {
	if i >= len(row) {
		return 0, errors.New("empty cell")
	}
	return toFloat(row[i])
}

func toFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

// Record columns, in sheet order.
var recordHeader = []interface{}{
	"Substance", "G", "x", "jg", "jl", "B", "DpDz", "Re liquid", "Re gas", "void fraction", "wb", "alpha", "Pred", "solved", "error",
}

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// WriteRecords writes the summary and one row per record as an xlsx workbook.
func WriteRecords(w io.Writer, out film.Output) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &recordHeader); err != nil {
		return err
	}
	for i, r := range out.Results.Flat() {
		row := []interface{}{r.Substance, opt(r.G), opt(r.X), r.Jg, r.Jl, r.B, r.DpDz, r.ReLiquid, r.ReGas, r.VoidFraction, r.Wb, opt(r.Alpha), opt(r.Pred), r.Solved, r.Error}
		if !r.Solved {
			for j := 5; j <= 10; j++ {
				row[j] = nil
			}
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultsSheet, addr, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	s := out.Summary
	summary := [][]interface{}{
		{"Substance", s.Substance},
		{"d", s.Diameter},
		{"g", s.Gravity},
		{"ki", s.Ki},
		{"friction", s.Friction},
		{"Liquid density", s.LiquidDensity},
		{"Gas density", s.GasDensity},
		{"Liquid viscosity", s.LiquidViscosity},
		{"Gas viscosity", s.GasViscosity},
		{"Simplex density", s.SimplexDensity},
		{"Simplex viscosity", s.SimplexViscosity},
		{"points", s.Points},
		{"failed", out.Failed},
	}
	if s.Temperature != nil {
		summary = append(summary, []interface{}{"T", *s.Temperature})
	}
	for i, row := range summary {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, addr, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func opt(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
