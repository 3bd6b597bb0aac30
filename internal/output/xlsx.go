package output

import (
	"fmt"

	"github.com/dgallion1/contractgest/internal/doctree"
	"github.com/xuri/excelize/v2"
)

// WriteTablesXLSX writes every table clause in meta to its own sheet of a
// workbook at path and returns the number of sheets written. No file is
// created when the document has no tables.
func WriteTablesXLSX(path string, meta *doctree.DocumentMetadata) (int, error) {
	type located struct {
		section int
		table   *doctree.TableData
	}
	var tables []located
	for i, s := range meta.Sections {
		for _, c := range s.Clauses {
			if c.IsTable() {
				tables = append(tables, located{section: i, table: c.TableData})
			}
		}
	}
	if len(tables) == 0 {
		return 0, nil
	}

	f := excelize.NewFile()
	defer f.Close()

	for n, t := range tables {
		sheet := fmt.Sprintf("Table %d", n+1)
		if n == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return 0, fmt.Errorf("xlsx sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return 0, fmt.Errorf("xlsx sheet: %w", err)
		}

		write := func(col, row int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		// Column A carries the section the table belongs to.
		write(1, 1, "Section")
		for i, h := range t.table.Columns {
			write(i+2, 1, h)
		}
		label := sectionLabel(meta.Sections[t.section])
		for r, row := range t.table.Data {
			write(1, r+2, label)
			for c, v := range row {
				write(c+2, r+2, v)
			}
		}
		_ = f.SetColWidth(sheet, "A", "A", 28)
	}

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return len(tables), nil
}

func sectionLabel(s doctree.Section) string {
	var number, title string
	if s.Number != nil {
		number = *s.Number
	}
	if s.Title != nil {
		title = *s.Title
	}
	switch {
	case number == "":
		return title
	case title == "":
		return number
	}
	return number + " " + title
}
