package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"Gateway/internal/calc/solubility"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const MaxUploadSize = 10 << 20

type Handler struct {
	Calc *solubility.Handler
}

type Skipped struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type Result struct {
	Count   int                      `json:"count"`
	Results []solubility.Calculation `json:"results"`
	Skipped []Skipped                `json:"skipped,omitempty"`
}

// Row is a parsed query with its 1-based sheet row.
type Row struct {
	Line  int
	Query solubility.Query
}

// ReadQueries reads system, temp, nacl from the first sheet. The first row is
// a header. Rows that do not parse are reported, not fatal.
func ReadQueries(r io.Reader) ([]Row, []Skipped, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("empty sheet")
	}

	var queries []Row
	var skipped []Skipped
	for i := 1; i < len(rows); i++ {
		q, err := parseRow(rows[i])
		if err != nil {
			skipped = append(skipped, Skipped{Row: i + 1, Reason: err.Error()})
			continue
		}
		queries = append(queries, Row{Line: i + 1, Query: q})
	}
	return queries, skipped, nil
}

func parseRow(row []string) (solubility.Query, error) {
	// expected: system, temp_K, nacl_mol_kg
	if len(row) < 3 {
		return solubility.Query{}, fmt.Errorf("want 3 columns, got %d", len(row))
	}
	temp, err := toFloat(row[1])
	if err != nil {
		return solubility.Query{}, fmt.Errorf("temp: %w", err)
	}
	nacl, err := toFloat(row[2])
	if err != nil {
		return solubility.Query{}, fmt.Errorf("nacl: %w", err)
	}
	return solubility.Query{System: strings.TrimSpace(row[0]), Temperature: temp, NaCl: nacl}, nil
}

func toFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// Import calculates every row of an uploaded workbook and records the results
// in the session history.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	queries, skipped, err := ReadQueries(file)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}

	res := Result{Skipped: skipped}
	for _, row := range queries {
		calc, err := h.Calc.Store.Calculate(row.Query)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{Row: row.Line, Reason: err.Error()})
			continue
		}
		res.Results = append(res.Results, h.Calc.Record(r, calc))
	}
	res.Count = len(res.Results)
	logrus.WithFields(logrus.Fields{"count": res.Count, "skipped": len(res.Skipped)}).Info("spreadsheet import")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
