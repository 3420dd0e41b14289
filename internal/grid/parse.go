package grid

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Axis columns every table must carry.
const (
	ColumnTemperature = "T"
	ColumnPressure    = "P"
	ColumnNaCl        = "NaCl"
)

type record struct {
	t, p, n float64
	values  []float64
}

// ParseCSV builds a Grid from a table with one row per (T, P, NaCl) node.
// columns maps quantity name to the CSV column holding it. Rows may come in any
// order; nodes missing from the table are NaN. The returned grid is validated.
func ParseCSV(r io.Reader, columns map[string]string) (*Grid, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty table", ErrMalformedGrid)
		}
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	axisCols := make([]int, 3)
	for i, name := range []string{ColumnTemperature, ColumnPressure, ColumnNaCl} {
		col, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedGrid, name)
		}
		axisCols[i] = col
	}
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	valueCols := make([]int, len(names))
	for i, name := range names {
		col, ok := index[columns[name]]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q for quantity %q", ErrMalformedGrid, columns[name], name)
		}
		valueCols[i] = col
	}

	var records []record
	seen := make(map[[3]float64]int)
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedGrid, line, err)
		}
		rec := record{values: make([]float64, len(valueCols))}
		axis := [3]*float64{&rec.t, &rec.p, &rec.n}
		for i, col := range axisCols {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedGrid, line, err)
			}
			*axis[i] = v
		}
		node := [3]float64{rec.t, rec.p, rec.n}
		if first, dup := seen[node]; dup {
			return nil, fmt.Errorf("%w: line %d: node T=%g P=%g NaCl=%g repeats line %d",
				ErrMalformedGrid, line, rec.t, rec.p, rec.n, first)
		}
		seen[node] = line
		for i, col := range valueCols {
			s := strings.TrimSpace(row[col])
			if s == "" {
				rec.values[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedGrid, line, err)
			}
			rec.values[i] = v
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: table has no rows", ErrMalformedGrid)
	}

	g := &Grid{
		Temperatures: uniqueSorted(records, func(r record) float64 { return r.t }),
		Pressures:    uniqueSorted(records, func(r record) float64 { return r.p }),
		NaCl:         uniqueSorted(records, func(r record) float64 { return r.n }),
		Quantities:   make(map[string][]float64, len(names)),
	}
	size := g.Size()
	for _, name := range names {
		values := make([]float64, size)
		for i := range values {
			values[i] = math.NaN()
		}
		g.Quantities[name] = values
	}
	for _, rec := range records {
		ti := sort.SearchFloat64s(g.Temperatures, rec.t)
		ni := sort.SearchFloat64s(g.NaCl, rec.n)
		pi := sort.SearchFloat64s(g.Pressures, rec.p)
		off := g.offset(ti, ni) + pi
		for i, name := range names {
			g.Quantities[name][off] = rec.values[i]
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func uniqueSorted(records []record, key func(record) float64) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for _, r := range records {
		v := key(r)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}
