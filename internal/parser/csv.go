package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/contractgest/internal/layout"
)

// CSVParser handles CSV files. The whole file becomes one table whose
// first row is the header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (layout.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	flow := layout.NewFlow()
	flow.AddTable(records)
	return flow.Document(), nil
}
