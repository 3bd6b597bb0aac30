package output

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/contractgest/internal/doctree"
	"github.com/xuri/excelize/v2"
)

func sample() *doctree.DocumentMetadata {
	meta := doctree.New()
	meta.Title = doctree.Str("SERVICES AGREEMENT")
	meta.ContractType = "Service Agreement"
	meta.EffectiveDate = doctree.Str("2021-03-03")
	meta.Preamble = "Between Café Ltd <Provider> & Client."
	meta.Sections = []doctree.Section{
		{
			Number: doctree.Str("1."),
			Title:  doctree.Str("Fees"),
			Clauses: []doctree.Clause{
				{Label: doctree.Str("(a)"), Text: doctree.Str("Fees are due monthly."), Index: 0},
				{Index: 1, TableData: &doctree.TableData{
					Columns: []string{"Item", "Amount"},
					Index:   []int{0, 1},
					Data:    [][]string{{"Setup", "100"}, {"Support", "50"}},
				}},
			},
		},
		{Number: doctree.Str(""), Title: doctree.Str("Schedule A"), Clauses: []doctree.Clause{}},
	}
	return meta
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteJSON(path, sample()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	if !strings.Contains(text, "Café Ltd <Provider> & Client.") {
		t.Errorf("expected unescaped preamble, got %s", text)
	}
	if !strings.Contains(text, "\n  \"contract_type\": \"Service Agreement\"") {
		t.Errorf("expected two-space indentation, got %s", text)
	}
	if !strings.Contains(text, "\"table_data\"") {
		t.Error("expected table_data in output")
	}

	var back doctree.DocumentMetadata
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if *back.EffectiveDate != "2021-03-03" || len(back.Sections) != 2 {
		t.Errorf("unexpected decoded document %+v", back)
	}
}

func TestWriteJSON_NullFields(t *testing.T) {
	data, err := Marshal(doctree.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := string(data)
	for _, want := range []string{`"title": null`, `"effective_date": null`, `"sections": []`} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %s in %s", want, text)
		}
	}
}

func TestWriteJSON_SchemaViolation(t *testing.T) {
	meta := sample()
	meta.EffectiveDate = doctree.Str("March 3, 2021")
	path := filepath.Join(t.TempDir(), "out.json")

	err := WriteJSON(path, meta)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("expected no output file after schema failure")
	}
}

func TestWriteJSON_WriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.json")
	if err := WriteJSON(path, sample()); !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
}

func TestWriteTablesXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.xlsx")
	n, err := WriteTablesXLSX(path, sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 sheet, got %d", n)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Table 1", "B1"); got != "Item" {
		t.Errorf("expected header Item, got %q", got)
	}
	if got, _ := f.GetCellValue("Table 1", "C3"); got != "50" {
		t.Errorf("expected 50, got %q", got)
	}
	if got, _ := f.GetCellValue("Table 1", "A2"); got != "1. Fees" {
		t.Errorf("expected section label, got %q", got)
	}
}

func TestWriteTablesXLSX_NoTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.xlsx")
	n, err := WriteTablesXLSX(path, doctree.New())
	if err != nil || n != 0 {
		t.Fatalf("expected no sheets, got %d (err=%v)", n, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no workbook without tables")
	}
}

func TestSectionLabel(t *testing.T) {
	tests := []struct {
		number, title *string
		want          string
	}{
		{doctree.Str("2."), doctree.Str("Term"), "2. Term"},
		{doctree.Str(""), doctree.Str("Schedule A"), "Schedule A"},
		{nil, nil, ""},
		{doctree.Str("IV."), nil, "IV."},
	}
	for _, tt := range tests {
		if got := sectionLabel(doctree.Section{Number: tt.number, Title: tt.title}); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
