package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/dgallion1/contractgest/internal/layout"
	pdflib "github.com/ledongthuc/pdf"
)

const (
	DefaultRowTolerance = 3.0
	DefaultBlockGap     = 0.6
)

var errDocumentClosed = errors.New("document closed")

// PDFParser handles PDF files. Glyphs reported by the content stream are
// grouped into lines, styled spans and blocks; ruled rectangles become
// table regions.
type PDFParser struct {
	RowTolerance float64
	BlockGap     float64

	log *slog.Logger
}

func (p *PDFParser) Parse(r io.Reader, filename string) (layout.Document, error) {
	ra, size, err := readerAt(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	reader, err := openPDF(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	log := p.log
	if log == nil {
		log = Options{}.withDefaults().Logger
	}
	log = log.With("file", filename)

	images, err := imagePages(ra, size)
	if err != nil {
		log.Debug("pdf preflight skipped", "error", err)
	}

	return &pdfDocument{
		r:      reader,
		parser: p,
		images: images,
		log:    log,
	}, nil
}

func openPDF(ra io.ReaderAt, size int64) (r *pdflib.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdflib.NewReader(ra, size)
}

type pdfDocument struct {
	r      *pdflib.Reader
	parser *PDFParser
	images map[int]bool
	log    *slog.Logger
}

func (d *pdfDocument) PageCount() int {
	if d.r == nil {
		return 0
	}
	return d.r.NumPage()
}

func (d *pdfDocument) Page(i int) (page *layout.Page, err error) {
	if d.r == nil {
		return nil, errDocumentClosed
	}
	if i < 0 || i >= d.r.NumPage() {
		return nil, layout.ErrPageRange
	}

	// The object and content decoders panic on malformed input.
	defer func() {
		if rec := recover(); rec != nil {
			page, err = nil, fmt.Errorf("read page %d: %v", i+1, rec)
		}
	}()

	p := d.r.Page(i + 1)
	box := mediaBox(p)
	if p.V.IsNull() {
		return &layout.Page{Number: i, Width: box.w, Height: box.h}, nil
	}
	content := p.Content()

	glyphs := box.glyphs(content.Text)
	if len(glyphs) == 0 && d.images[i+1] {
		d.log.Warn("page has images but no text, OCR is not supported", "page", i+1)
	}

	tables := detectTables(box.segments(content.Rect), glyphs, d.parser.RowTolerance)
	lines := buildLines(glyphs, d.parser.RowTolerance)
	return &layout.Page{
		Number: i,
		Width:  box.w,
		Height: box.h,
		Blocks: buildBlocks(lines, d.parser.BlockGap),
		Tables: tables,
	}, nil
}

func (d *pdfDocument) Close() error {
	d.r = nil
	return nil
}

// pageBox maps PDF user space (bottom-left origin) to page space.
type pageBox struct {
	x0, y0 float64
	w, h   float64
}

func mediaBox(p pdflib.Page) pageBox {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Len() != 4 {
			continue
		}
		x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
		x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
		if x1 > x0 && y1 > y0 {
			return pageBox{x0: x0, y0: y0, w: x1 - x0, h: y1 - y0}
		}
	}
	return pageBox{w: 612, h: 792}
}

type glyph struct {
	text     string
	x0, x1   float64
	top      float64
	bottom   float64
	baseline float64
	size     float64
	font     string
	bold     bool
}

func (g glyph) space() bool {
	return strings.TrimSpace(g.text) == ""
}

func (b pageBox) glyphs(texts []pdflib.Text) []glyph {
	out := make([]glyph, 0, len(texts))
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		size := t.FontSize
		if size <= 0 {
			size = 10
		}
		baseline := b.h - (t.Y - b.y0)
		x := t.X - b.x0
		out = append(out, glyph{
			text:     t.S,
			x0:       x,
			x1:       x + t.W,
			top:      baseline - 0.8*size,
			bottom:   baseline + 0.2*size,
			baseline: baseline,
			size:     size,
			font:     t.Font,
			bold:     isBoldFont(t.Font),
		})
	}
	return out
}

func (g glyph) bbox() layout.Rect {
	return layout.R(g.x0, g.top, g.x1, g.bottom)
}

var boldMarkers = []string{"bold", "black", "heavy", "semibold", "demi"}

// isBoldFont infers weight from the base font name, e.g. "Helvetica-Bold"
// or "ABCDEE+Arial,BoldItalic".
func isBoldFont(name string) bool {
	lower := strings.ToLower(name)
	for _, m := range boldMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// buildLines groups glyphs whose baselines lie within tolerance of each
// other and splits each line into spans at font changes.
func buildLines(glyphs []glyph, tolerance float64) []layout.Line {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].baseline < sorted[j].baseline
	})

	var rows [][]glyph
	var rowBase float64
	for _, g := range sorted {
		if len(rows) > 0 && g.baseline-rowBase <= tolerance {
			rows[len(rows)-1] = append(rows[len(rows)-1], g)
			continue
		}
		rows = append(rows, []glyph{g})
		rowBase = g.baseline
	}

	lines := make([]layout.Line, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].x0 < row[j].x0 })
		if l, ok := rowLine(row); ok {
			lines = append(lines, l)
		}
	}
	return lines
}

func rowLine(row []glyph) (layout.Line, bool) {
	var spans []layout.Span
	var cur *layout.Span
	var curFont string
	var prev *glyph

	for i := range row {
		g := row[i]
		if cur == nil && g.space() {
			continue
		}
		gap := prev != nil && g.x0-prev.x1 > 0.3*g.size
		switch {
		case cur == nil:
			spans = append(spans, layout.Span{Text: g.text, BBox: g.bbox(), Bold: g.bold})
		case g.space():
			cur.Text += g.text
		case g.font != curFont || g.bold != cur.Bold:
			if gap && !strings.HasSuffix(cur.Text, " ") {
				cur.Text += " "
			}
			spans = append(spans, layout.Span{Text: g.text, BBox: g.bbox(), Bold: g.bold})
		default:
			if gap && !strings.HasSuffix(cur.Text, " ") {
				cur.Text += " "
			}
			cur.Text += g.text
			cur.BBox = cur.BBox.Union(g.bbox())
		}
		if !g.space() {
			cur = &spans[len(spans)-1]
			curFont = g.font
		}
		prev = &row[i]
	}
	if len(spans) == 0 {
		return layout.Line{}, false
	}
	last := &spans[len(spans)-1]
	last.Text = strings.TrimRightFunc(last.Text, unicode.IsSpace)

	bbox := spans[0].BBox
	for _, s := range spans[1:] {
		bbox = bbox.Union(s.BBox)
	}
	return layout.Line{BBox: bbox, Spans: spans}, true
}

// buildBlocks merges consecutive lines separated by at most gap times the
// font size and of similar size into blocks.
func buildBlocks(lines []layout.Line, gap float64) []layout.Block {
	var blocks []layout.Block
	var prevSize float64
	for _, l := range lines {
		size := l.BBox.Height()
		if n := len(blocks); n > 0 {
			b := &blocks[n-1]
			prev := b.Lines[len(b.Lines)-1]
			vgap := l.BBox.Top() - prev.BBox.Bottom()
			if vgap <= gap*prevSize && abs(size-prevSize) <= 1.5 {
				b.Lines = append(b.Lines, l)
				b.BBox = b.BBox.Union(l.BBox)
				prevSize = size
				continue
			}
		}
		blocks = append(blocks, layout.Block{BBox: l.BBox, Lines: []layout.Line{l}})
		prevSize = size
	}
	return blocks
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
