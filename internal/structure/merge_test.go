package structure

import (
	"testing"

	"github.com/dgallion1/contractgest/internal/layout"
)

func pageBlock(text string, x0, top, x1, bottom float64) layout.Block {
	bbox := layout.R(x0, top, x1, bottom)
	return layout.Block{
		BBox:  bbox,
		Lines: []layout.Line{{BBox: bbox, Spans: []layout.Span{{Text: text, BBox: bbox}}}},
	}
}

func TestMergePage_SortsByTopEdge(t *testing.T) {
	page := &layout.Page{
		Width:  612,
		Height: 792,
		Blocks: []layout.Block{
			pageBlock("third", 72, 300, 540, 312),
			pageBlock("first", 72, 100, 540, 112),
		},
		Tables: []layout.Table{
			{BBox: layout.R(72, 200, 540, 260), Cells: [][]string{{"a"}, {"b"}}},
		},
	}

	res := MergePage(page, DefaultFooterHeight)
	if len(res.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(res.Items))
	}
	if res.Items[0].Block.Text() != "first" {
		t.Errorf("expected first item %q, got %q", "first", res.Items[0].Block.Text())
	}
	if res.Items[1].Kind != ItemTable {
		t.Errorf("expected table second, got %s", res.Items[1].Kind)
	}
	if res.Items[2].Block.Text() != "third" {
		t.Errorf("expected third item %q, got %q", "third", res.Items[2].Block.Text())
	}
}

func TestMergePage_TiesKeepTablesFirst(t *testing.T) {
	page := &layout.Page{
		Width:  612,
		Height: 792,
		Blocks: []layout.Block{pageBlock("beside", 560, 200, 600, 212)},
		Tables: []layout.Table{{BBox: layout.R(72, 200, 500, 260), Cells: [][]string{{"a"}}}},
	}
	res := MergePage(page, DefaultFooterHeight)
	if len(res.Items) != 2 || res.Items[0].Kind != ItemTable {
		t.Fatalf("expected table then text, got %+v", res.Items)
	}
}

func TestMergePage_ExcludesFooterAndTableText(t *testing.T) {
	page := &layout.Page{
		Width:  612,
		Height: 792,
		Blocks: []layout.Block{
			pageBlock("body", 72, 100, 540, 112),
			pageBlock("cell text", 80, 210, 200, 222),
			pageBlock("Page 1 of 3", 72, 750, 540, 762),
			{BBox: layout.R(72, 400, 540, 412)},
		},
		Tables: []layout.Table{{BBox: layout.R(72, 200, 540, 260), Cells: [][]string{{"a"}}}},
	}

	res := MergePage(page, DefaultFooterHeight)
	if len(res.Items) != 2 {
		t.Fatalf("expected body and table, got %d items", len(res.Items))
	}
	if res.Excluded != 2 {
		t.Errorf("expected 2 excluded items, got %d", res.Excluded)
	}
	if res.Footer != "Page 1 of 3" {
		t.Errorf("expected footer %q, got %q", "Page 1 of 3", res.Footer)
	}
}

func TestMergePage_TouchingTableIsNotOverlap(t *testing.T) {
	page := &layout.Page{
		Width:  612,
		Height: 792,
		Blocks: []layout.Block{pageBlock("caption", 72, 188, 540, 200)},
		Tables: []layout.Table{{BBox: layout.R(72, 200, 540, 260), Cells: [][]string{{"a"}}}},
	}
	res := MergePage(page, DefaultFooterHeight)
	if len(res.Items) != 2 {
		t.Fatalf("expected caption kept, got %d items", len(res.Items))
	}
}

func TestMergePage_FooterDedupAcrossPages(t *testing.T) {
	ctx := NewContext()
	for i := 0; i < 3; i++ {
		page := &layout.Page{
			Number: i,
			Width:  612,
			Height: 792,
			Blocks: []layout.Block{pageBlock("“ACME”   Confidential", 72, 760, 540, 772)},
		}
		res := MergePage(page, 0)
		ctx = ctx.AddFooter(res.Footer)
	}
	_, preamble := Finish(ctx)
	if preamble != "ACME Confidential" {
		t.Errorf("expected footer once, got %q", preamble)
	}
}
