package parser

import (
	"sort"
	"strings"

	"github.com/dgallion1/contractgest/internal/layout"
	pdflib "github.com/ledongthuc/pdf"
)

const (
	// ruleThickness is the largest extent, in points, of a rectangle drawn
	// as a rule rather than a box.
	ruleThickness = 2.0
	// snapTolerance merges rule positions and joins rules that nearly touch.
	snapTolerance = 3.0
)

type segment struct {
	horizontal bool
	pos        float64 // y for horizontal rules, x for vertical ones
	from, to   float64
}

// segments converts drawn rectangles to ruling segments in page space.
// Thin rectangles are rules; larger ones contribute their four edges.
func (b pageBox) segments(rects []pdflib.Rect) []segment {
	var out []segment
	for _, r := range rects {
		x0, x1 := r.Min.X-b.x0, r.Max.X-b.x0
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		y0, y1 := b.h-(r.Max.Y-b.y0), b.h-(r.Min.Y-b.y0)
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		w, h := x1-x0, y1-y0
		switch {
		case w <= ruleThickness && h <= ruleThickness:
		case h <= ruleThickness:
			out = append(out, segment{horizontal: true, pos: (y0 + y1) / 2, from: x0, to: x1})
		case w <= ruleThickness:
			out = append(out, segment{pos: (x0 + x1) / 2, from: y0, to: y1})
		default:
			out = append(out,
				segment{horizontal: true, pos: y0, from: x0, to: x1},
				segment{horizontal: true, pos: y1, from: x0, to: x1},
				segment{pos: x0, from: y0, to: y1},
				segment{pos: x1, from: y0, to: y1},
			)
		}
	}
	return out
}

func crosses(h, v segment) bool {
	return v.pos >= h.from-snapTolerance && v.pos <= h.to+snapTolerance &&
		h.pos >= v.from-snapTolerance && h.pos <= v.to+snapTolerance
}

type unionFind []int

func newUnionFind(n int) unionFind {
	u := make(unionFind, n)
	for i := range u {
		u[i] = i
	}
	return u
}

func (u unionFind) find(i int) int {
	for u[i] != i {
		u[i] = u[u[i]]
		i = u[i]
	}
	return i
}

func (u unionFind) union(a, b int) {
	u[u.find(a)] = u.find(b)
}

// detectTables finds grids of crossing rules and fills their cells with the
// glyphs whose centers fall inside. A grid needs at least two rows and two
// columns, and at least one cell with text.
func detectTables(segs []segment, glyphs []glyph, tolerance float64) []layout.Table {
	if len(segs) == 0 {
		return nil
	}
	uf := newUnionFind(len(segs))
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			if segs[i].horizontal == segs[j].horizontal {
				continue
			}
			h, v := segs[i], segs[j]
			if !h.horizontal {
				h, v = v, h
			}
			if crosses(h, v) {
				uf.union(i, j)
			}
		}
	}

	groups := make(map[int][]segment)
	var roots []int
	for i, s := range segs {
		root := uf.find(i)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], s)
	}

	var tables []layout.Table
	for _, root := range roots {
		var ys, xs []float64
		for _, s := range groups[root] {
			if s.horizontal {
				ys = append(ys, s.pos)
			} else {
				xs = append(xs, s.pos)
			}
		}
		ys, xs = snapPositions(ys), snapPositions(xs)
		if len(ys) < 3 || len(xs) < 3 {
			continue
		}
		tbl := fillGrid(xs, ys, glyphs, tolerance)
		if !hasText(tbl.Cells) {
			continue
		}
		tables = append(tables, tbl)
	}
	sort.SliceStable(tables, func(i, j int) bool {
		return tables[i].BBox.Top() < tables[j].BBox.Top()
	})
	return tables
}

func hasText(cells [][]string) bool {
	for _, row := range cells {
		for _, c := range row {
			if c != "" {
				return true
			}
		}
	}
	return false
}

// snapPositions sorts positions and collapses runs closer than
// snapTolerance into their first value.
func snapPositions(ps []float64) []float64 {
	if len(ps) == 0 {
		return nil
	}
	sort.Float64s(ps)
	out := []float64{ps[0]}
	for _, p := range ps[1:] {
		if p-out[len(out)-1] > snapTolerance {
			out = append(out, p)
		}
	}
	return out
}

func fillGrid(xs, ys []float64, glyphs []glyph, tolerance float64) layout.Table {
	rows, cols := len(ys)-1, len(xs)-1
	buckets := make([][][]glyph, rows)
	for i := range buckets {
		buckets[i] = make([][]glyph, cols)
	}
	for _, g := range glyphs {
		c := g.bbox().Center()
		r := interval(ys, c.Y)
		k := interval(xs, c.X)
		if r < 0 || k < 0 {
			continue
		}
		buckets[r][k] = append(buckets[r][k], g)
	}

	cells := make([][]string, rows)
	for r := range buckets {
		cells[r] = make([]string, cols)
		for k, gs := range buckets[r] {
			var parts []string
			for _, l := range buildLines(gs, tolerance) {
				parts = append(parts, l.Text())
			}
			cells[r][k] = strings.TrimSpace(strings.Join(parts, " "))
		}
	}
	return layout.Table{
		BBox:  layout.R(xs[0], ys[0], xs[cols], ys[rows]),
		Cells: cells,
	}
}

// interval returns i such that edges[i] <= v < edges[i+1], or -1.
func interval(edges []float64, v float64) int {
	for i := 0; i+1 < len(edges); i++ {
		if v >= edges[i] && v < edges[i+1] {
			return i
		}
	}
	return -1
}
