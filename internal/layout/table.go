package layout

import (
	"fmt"
	"strings"

	"github.com/dgallion1/contractgest/internal/doctree"
)

// Table is a detected table region with its cell grid in row-major order.
type Table struct {
	BBox  Rect
	Cells [][]string
}

// Data converts the cell grid into TableData. The first row becomes the
// column header and the remaining rows are keyed 0..n-1. Rows are padded or
// truncated to the header width. It returns nil when the grid is empty.
func (t Table) Data() *doctree.TableData {
	if len(t.Cells) == 0 || len(t.Cells[0]) == 0 {
		return nil
	}

	header := t.Cells[0]
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Col%d", i)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s-%d", name, n)
		} else {
			seen[name] = 1
		}
		columns[i] = name
	}

	td := &doctree.TableData{
		Columns: columns,
		Index:   []int{},
		Data:    [][]string{},
	}
	for i, row := range t.Cells[1:] {
		cells := make([]string, len(columns))
		copy(cells, row)
		td.Index = append(td.Index, i)
		td.Data = append(td.Data, cells)
	}
	return td
}
