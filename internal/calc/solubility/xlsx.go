package solubility

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
)

// ToXLSX builds a workbook with one sheet per curve, laid out like ToCSV.
// Missing values are left blank.
func ToXLSX(curves ...ResultCurve) (*excelize.File, error) {
	if len(curves) == 0 {
		return nil, fmt.Errorf("no curves")
	}
	f := excelize.NewFile()
	for i, curve := range curves {
		sheet := fmt.Sprintf("%d %s", i+1, curve.System)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeSheet(f, sheet, curve); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, curve ResultCurve) error {
	header := Header(curve)
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return err
	}

	series := curve.Available()
	for i, p := range curve.Pressures {
		row := make([]interface{}, 3+len(series))
		row[0], row[1], row[2] = curve.Temperature, p, curve.NaCl
		for j, s := range series {
			v := s.Values[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				row[3+j] = nil
				continue
			}
			row[3+j] = roundTo(v, Decimals)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func roundTo(v float64, decimals int) float64 {
	return math.Round(v*math.Pow10(decimals)) / math.Pow10(decimals)
}
