package solubility

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Decimals used for quantity values in exported tables.
const Decimals = 6

// Header returns the export column names for curve.
func Header(curve ResultCurve) []string {
	header := []string{"Temperature", "Pressure", "NaCl"}
	for _, s := range curve.Available() {
		header = append(header, s.Label)
	}
	return header
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', Decimals, 64)
}

func formatAxis(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ToCSV writes one row per pressure point.
func ToCSV(w io.Writer, curve ResultCurve) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(curve)); err != nil {
		return err
	}
	series := curve.Available()
	temp := formatAxis(curve.Temperature)
	nacl := formatAxis(curve.NaCl)
	row := make([]string, 3+len(series))
	for i, p := range curve.Pressures {
		row[0], row[1], row[2] = temp, formatAxis(p), nacl
		for j, s := range series {
			row[3+j] = formatValue(s.Values[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func CSV(curve ResultCurve) ([]byte, error) {
	var buf bytes.Buffer
	if err := ToCSV(&buf, curve); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename is the download name for an export, e.g. h2sOutput-20240131-154500.csv.
func Filename(system, ext string, t time.Time) string {
	return fmt.Sprintf("%sOutput-%s.%s", system, t.Format("20060102-150405"), ext)
}
