// Package structure rebuilds the Section → Clause (→ Table) hierarchy of a
// contract from page layout.
package structure

import (
	"sort"
	"strings"

	"github.com/dgallion1/contractgest/internal/extract"
	"github.com/dgallion1/contractgest/internal/layout"
)

// DefaultFooterHeight is the height of the bottom band treated as footer, in points.
const DefaultFooterHeight = 100.0

// ItemKind tags a PageItem.
type ItemKind int

const (
	ItemText ItemKind = iota
	ItemTable
)

func (k ItemKind) String() string {
	if k == ItemTable {
		return "table"
	}
	return "text"
}

// Item is one entry of the merged reading-order stream.
type Item struct {
	Kind  ItemKind
	Page  int
	BBox  layout.Rect
	Block *layout.Block // ItemText
	Table *layout.Table // ItemTable
}

// PageResult is the merged view of one page.
type PageResult struct {
	Items    []Item
	Footer   string // normalized footer band text, may be empty
	Excluded int    // text items dropped by the footer or table zones
}

// MergePage merges tables and text blocks into one list sorted by top edge,
// drops text inside the footer band or overlapping a table, and collects the
// footer band text.
func MergePage(page *layout.Page, footerHeight float64) PageResult {
	if footerHeight <= 0 {
		footerHeight = DefaultFooterHeight
	}

	items := make([]Item, 0, len(page.Tables)+len(page.Blocks))
	for i := range page.Tables {
		t := &page.Tables[i]
		items = append(items, Item{Kind: ItemTable, Page: page.Number, BBox: t.BBox, Table: t})
	}
	for i := range page.Blocks {
		b := &page.Blocks[i]
		items = append(items, Item{Kind: ItemText, Page: page.Number, BBox: b.BBox, Block: b})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].BBox.Top() < items[j].BBox.Top()
	})

	footerTop := page.Height - footerHeight
	res := PageResult{
		Items:  items[:0],
		Footer: footerText(page, footerTop),
	}
	for _, it := range items {
		if it.Kind == ItemText {
			if it.Block.Empty() {
				continue
			}
			if it.BBox.Top() > footerTop || inTable(it.BBox, page.Tables) {
				res.Excluded++
				continue
			}
		}
		res.Items = append(res.Items, it)
	}
	return res
}

func footerText(page *layout.Page, footerTop float64) string {
	blocks := page.Clip(layout.R(0, footerTop, page.Width, page.Height))
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, b.RawText())
	}
	return extract.CleanText(strings.Join(parts, " "))
}

func inTable(r layout.Rect, tables []layout.Table) bool {
	for _, t := range tables {
		if r.Intersects(t.BBox) {
			return true
		}
	}
	return false
}
