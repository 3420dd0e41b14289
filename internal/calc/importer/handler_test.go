package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"Gateway/internal/auth"
	"Gateway/internal/calc/solubility"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow() unexpected error: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	return buf.Bytes()
}

var sheet = [][]interface{}{
	{"system", "temp", "nacl"},
	{"h2s", 310, 1},
	{"co2", "warm", 1},
	{"2", "320,5", 2},
	{"XYZ", 300, 1},
	{"co2"},
}

func TestReadQueries(t *testing.T) {
	rows, skipped, err := ReadQueries(bytes.NewReader(workbook(t, sheet)))
	if err != nil {
		t.Fatalf("ReadQueries() unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("%d rows parsed, want 3: %+v", len(rows), rows)
	}
	if rows[1].Line != 4 || rows[1].Query.Temperature != 320.5 || rows[1].Query.System != "2" {
		t.Errorf("decimal comma row = %+v", rows[1])
	}
	if len(skipped) != 2 || skipped[0].Row != 3 || skipped[1].Row != 6 {
		t.Errorf("skipped = %+v, want rows 3 and 6", skipped)
	}

	if _, _, err := ReadQueries(bytes.NewReader([]byte("not a workbook"))); err == nil {
		t.Error("garbage input: expected error")
	}
	if _, _, err := ReadQueries(bytes.NewReader(workbook(t, sheet[:1]))); err == nil {
		t.Error("header only: expected error")
	}
}

func TestImport(t *testing.T) {
	calc := solubility.NewHandler(solubility.LoadStore(solubility.Assets("")))
	h := &Handler{Calc: calc}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "queries.xlsx")
	fw.Write(workbook(t, sheet))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/h2s/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(auth.WithUser(req.Context(), 1, "ada"))
	rec := httptest.NewRecorder()
	h.Import(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var res Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Count != 2 || len(res.Skipped) != 3 {
		t.Errorf("count %d skipped %+v, want 2 and 3", res.Count, res.Skipped)
	}
	if res.Skipped[2].Row != 5 {
		t.Errorf("unknown system reported on row %d, want 5", res.Skipped[2].Row)
	}
	if n := calc.History.Len("1"); n != 2 {
		t.Errorf("history has %d entries, want 2", n)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/h2s/import", nil)
	req = req.WithContext(auth.WithUser(req.Context(), 1, "ada"))
	rec = httptest.NewRecorder()
	h.Import(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("no file: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestParseRowRejectsNonFinite(t *testing.T) {
	tests := [][]string{
		{"h2s", "NaN", "1"},
		{"h2s", "310", "nan"},
		{"h2s", "Inf", "1"},
		{"h2s", "310", "-Inf"},
	}
	for _, row := range tests {
		if q, err := parseRow(row); err == nil {
			t.Errorf("parseRow(%v) = %+v, want error", row, q)
		}
	}
	if _, err := parseRow([]string{"h2s", "310", "1,5"}); err != nil {
		t.Errorf("parseRow() unexpected error: %v", err)
	}
}
