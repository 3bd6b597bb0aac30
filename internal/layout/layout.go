// Package layout is the contract between extraction backends and the
// structure engine: pages of positioned text blocks and table regions.
//
// Coordinates use a top-left origin with Y growing downward, in points.
package layout

import (
	"strings"
)

// Document is an opened source document. Pages are 0-indexed.
type Document interface {
	PageCount() int
	Page(i int) (*Page, error)
	Close() error
}

// Page is one page of layout primitives in backend order.
type Page struct {
	Number int // 0-indexed
	Width  float64
	Height float64
	Blocks []Block
	Tables []Table
}

// Block is a run of consecutive lines.
type Block struct {
	BBox  Rect
	Lines []Line
}

// Line is a single visual line of spans.
type Line struct {
	BBox  Rect
	Spans []Span
}

// Span is a run of text sharing one style.
type Span struct {
	Text string
	BBox Rect
	// Bold marks emphasized text (bold weight in PDF fonts, <b>/<strong>,
	// **strong** in Markdown, w:b in DOCX).
	Bold bool
}

// Emphasized reports whether the span is styled for emphasis.
func (s Span) Emphasized() bool {
	return s.Bold
}

// Text returns the block's text: spans of a line concatenated, lines joined
// with a single space.
func (b Block) Text() string {
	parts := make([]string, 0, len(b.Lines))
	for _, l := range b.Lines {
		parts = append(parts, l.Text())
	}
	return strings.Join(parts, " ")
}

// RawText returns every span of the block concatenated without separators.
func (b Block) RawText() string {
	var sb strings.Builder
	for _, l := range b.Lines {
		for _, s := range l.Spans {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

// Empty reports whether the block has no line carrying a span.
func (b Block) Empty() bool {
	for _, l := range b.Lines {
		if len(l.Spans) > 0 {
			return false
		}
	}
	return true
}

// Text returns the line's spans concatenated.
func (l Line) Text() string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Rect returns the page rectangle.
func (p *Page) Rect() Rect {
	return Rect{X0: 0, Y0: 0, X1: p.Width, Y1: p.Height}
}

// Clip returns the blocks restricted to spans whose center lies inside r.
// Lines and blocks left without spans are dropped.
func (p *Page) Clip(r Rect) []Block {
	var out []Block
	for _, b := range p.Blocks {
		var lines []Line
		for _, l := range b.Lines {
			var spans []Span
			for _, s := range l.Spans {
				if r.ContainsPoint(s.BBox.Center()) {
					spans = append(spans, s)
				}
			}
			if len(spans) == 0 {
				continue
			}
			lines = append(lines, Line{BBox: unionSpans(spans), Spans: spans})
		}
		if len(lines) == 0 {
			continue
		}
		bbox := lines[0].BBox
		for _, l := range lines[1:] {
			bbox = bbox.Union(l.BBox)
		}
		out = append(out, Block{BBox: bbox, Lines: lines})
	}
	return out
}

// Text returns the whole page text: one line per layout line, blocks
// separated by a newline.
func (p *Page) Text() string {
	var sb strings.Builder
	for _, b := range p.Blocks {
		for _, l := range b.Lines {
			sb.WriteString(l.Text())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func unionSpans(spans []Span) Rect {
	r := spans[0].BBox
	for _, s := range spans[1:] {
		r = r.Union(s.BBox)
	}
	return r
}
