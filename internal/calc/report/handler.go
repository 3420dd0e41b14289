package report

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"Gateway/internal/auth"
	"Gateway/internal/calc/solubility"
	"Gateway/internal/metrics"

	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"
)

// Core PDF fonts are Latin-1 only.
var slotHeaders = [3]string{"xH2S+xCO2", "rho, kg/m3", "lambda H2S"}

type Handler struct {
	Calc *solubility.Handler
}

// Build renders one page per calculation: the query, the bounds notice and the
// per-pressure table.
func Build(title, author string, calcs []solubility.Calculation) *gofpdf.Fpdf {
	if title == "" {
		title = "Solubility Report"
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.SetAuthor(author, false)
	pdf.SetAutoPageBreak(true, 15)

	if len(calcs) == 0 {
		pdf.AddPage()
		heading(pdf, title, author)
		pdf.Cell(0, 6, "No calculations in this session.")
		return pdf
	}
	for _, c := range calcs {
		pdf.AddPage()
		heading(pdf, title, author)
		calcPage(pdf, c)
	}
	return pdf
}

func heading(pdf *gofpdf.Fpdf, title, author string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	if author != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Author: %s", author))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)
}

func calcPage(pdf *gofpdf.Fpdf, c solubility.Calculation) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, fmt.Sprintf("#%d  %s  T = %g K  NaCl = %g mol/kg", c.ID, c.Query.System, c.Query.Temperature, c.Query.NaCl))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	if c.Adjusted {
		pdf.Cell(0, 6, fmt.Sprintf("Requested T = %g K, NaCl = %g. %s", c.Requested.Temperature, c.Requested.NaCl, c.Notice))
		pdf.Ln(8)
	}

	header := []string{"P, bar"}
	var cols []solubility.Values
	for i, s := range c.Curve.Series {
		if s.Available {
			header = append(header, slotHeaders[i])
			cols = append(cols, s.Values)
		}
	}
	width := 180 / float64(len(header))

	pdf.SetFont("Helvetica", "B", 9)
	for _, h := range header {
		pdf.CellFormat(width, 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for i, p := range c.Curve.Pressures {
		pdf.CellFormat(width, 5, fmt.Sprintf("%g", p), "1", 0, "R", false, 0, "")
		for _, col := range cols {
			pdf.CellFormat(width, 5, cell(col[i]), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func cell(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.*f", solubility.Decimals, v)
}

// Generate writes the session history as a PDF.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	calcs := h.Calc.Calculations(r)
	pdf := Build(r.URL.Query().Get("title"), auth.Login(r.Context()), calcs)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	if err := pdf.Output(w); err != nil {
		logrus.WithError(err).Error("report generation")
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	metrics.Exports.WithLabelValues("pdf").Inc()
}
