package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	film "Annular/internal/calc/film"

	"github.com/phpdave11/gofpdf"
)

type Meta struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
}

// maxRows caps the record table; longer runs belong in the xlsx export.
const maxRows = 400

var columns = []struct {
	name  string
	width float64
}{
	{"G", 18}, {"x", 14}, {"jg", 20}, {"jl", 20}, {"B", 22}, {"DpDz", 22}, {"Re liquid", 22}, {"Re gas", 22}, {"void fr.", 18}, {"alpha", 20},
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 5, 64)
}

func optNum(v *float64) string {
	if v == nil {
		return "-"
	}
	return num(*v)
}

// Generate writes a PDF with the calculation summary and the record table.
func Generate(w io.Writer, meta Meta, out film.Output, now time.Time) error {
	if meta.Title == "" {
		meta.Title = "Annular Film Report"
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, meta.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", meta.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", meta.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", now.Format("2006-01-02")))
	pdf.Ln(10)

	s := out.Summary
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Input")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		fmt.Sprintf("Substance: %s", s.Substance),
		fmt.Sprintf("Channel diameter d = %s m, g = %s m/s2", num(s.Diameter), num(s.Gravity)),
		fmt.Sprintf("Liquid: density %s kg/m3, viscosity %s Pa s", num(s.LiquidDensity), num(s.LiquidViscosity)),
		fmt.Sprintf("Gas: density %s kg/m3, viscosity %s Pa s", num(s.GasDensity), num(s.GasViscosity)),
		fmt.Sprintf("Simplex density %s, simplex viscosity %s", num(s.SimplexDensity), num(s.SimplexViscosity)),
		fmt.Sprintf("Friction: %s, interfacial coefficient ki = %s", s.Friction, num(s.Ki)),
		fmt.Sprintf("Points: %d, unsolved: %d", s.Points, out.Failed),
	}
	if s.Temperature != nil {
		lines = append(lines, fmt.Sprintf("Saturation temperature: %s C", num(*s.Temperature)))
	}
	for _, l := range lines {
		pdf.Cell(0, 5, l)
		pdf.Ln(5)
	}
	if meta.Notes != "" {
		pdf.Ln(3)
		pdf.MultiCell(0, 5, meta.Notes, "", "L", false)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 9)
	header := func() {
		for _, c := range columns {
			pdf.CellFormat(c.width, 6, c.name, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	header()
	pdf.SetFont("Helvetica", "", 8)
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for i, r := range out.Results.Flat() {
		if i == maxRows {
			pdf.Cell(0, 5, fmt.Sprintf("... %d more records in the xlsx export", out.Summary.Points-maxRows))
			break
		}
		if pdf.GetY()+5 > pageH-bottom-10 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 9)
			header()
			pdf.SetFont("Helvetica", "", 8)
		}
		cells := []string{optNum(r.G), optNum(r.X), num(r.Jg), num(r.Jl), "-", "-", "-", "-", "-", optNum(r.Alpha)}
		if r.Solved {
			cells[4], cells[5], cells[6], cells[7], cells[8] = num(r.B), num(r.DpDz), num(r.ReLiquid), num(r.ReGas), num(r.VoidFraction)
		}
		for j, c := range columns {
			pdf.CellFormat(c.width, 5, cells[j], "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}
