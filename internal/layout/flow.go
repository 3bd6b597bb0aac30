package layout

// Page geometry for formats without a physical layout (DOCX, HTML, Markdown,
// CSV, plain text). Content is placed top to bottom on US Letter pages and
// never enters the bottom margin, which is taller than the footer band.
const (
	FlowPageWidth    = 612.0
	FlowPageHeight   = 792.0
	FlowMarginTop    = 72.0
	FlowMarginBottom = 120.0
	FlowMarginLeft   = 72.0
	FlowLineHeight   = 14.0
	FlowBlockGap     = 6.0
	FlowCharWidth    = 5.5
)

// Flow lays out paragraphs and tables onto synthetic pages.
type Flow struct {
	pages []*Page
	y     float64
}

// NewFlow returns an empty flow with one open page.
func NewFlow() *Flow {
	f := &Flow{}
	f.newPage()
	return f
}

func (f *Flow) newPage() {
	f.pages = append(f.pages, &Page{
		Number: len(f.pages),
		Width:  FlowPageWidth,
		Height: FlowPageHeight,
	})
	f.y = FlowMarginTop
}

func (f *Flow) current() *Page {
	return f.pages[len(f.pages)-1]
}

// reserve returns the top Y for a region of height h, starting a new page
// when it would cross the bottom margin. Oversized regions get a page of
// their own and may extend past the margin.
func (f *Flow) reserve(h float64) float64 {
	limit := FlowPageHeight - FlowMarginBottom
	if f.y+h > limit && f.y > FlowMarginTop {
		f.newPage()
	}
	top := f.y
	f.y += h + FlowBlockGap
	return top
}

// AddParagraph places one block made of a single line of spans. Empty
// paragraphs are ignored.
func (f *Flow) AddParagraph(spans []Span) {
	var runes int
	for _, s := range spans {
		runes += len([]rune(s.Text))
	}
	if runes == 0 {
		return
	}

	// Long paragraphs are compressed to stay within the text column.
	charWidth := FlowCharWidth
	if avail := FlowPageWidth - 2*FlowMarginLeft; float64(runes)*charWidth > avail {
		charWidth = avail / float64(runes)
	}

	top := f.reserve(FlowLineHeight)
	x := FlowMarginLeft
	placed := make([]Span, len(spans))
	for i, s := range spans {
		w := float64(len([]rune(s.Text))) * charWidth
		s.BBox = R(x, top, x+w, top+FlowLineHeight)
		x += w
		placed[i] = s
	}
	line := Line{BBox: R(FlowMarginLeft, top, x, top+FlowLineHeight), Spans: placed}
	p := f.current()
	p.Blocks = append(p.Blocks, Block{BBox: line.BBox, Lines: []Line{line}})
}

// AddText places a paragraph of unstyled text.
func (f *Flow) AddText(text string) {
	f.AddParagraph([]Span{{Text: text}})
}

// AddTable places a table region sized by its row count.
func (f *Flow) AddTable(cells [][]string) {
	if len(cells) == 0 {
		return
	}
	h := float64(len(cells)) * FlowLineHeight
	top := f.reserve(h)
	p := f.current()
	p.Tables = append(p.Tables, Table{
		BBox:  R(FlowMarginLeft, top, FlowPageWidth-FlowMarginLeft, top+h),
		Cells: cells,
	})
}

// Document returns the laid-out pages as a Document.
func (f *Flow) Document() Document {
	return &MemDocument{Pages: f.pages}
}

// MemDocument is an in-memory Document.
type MemDocument struct {
	Pages  []*Page
	closed bool
}

func (d *MemDocument) PageCount() int { return len(d.Pages) }

func (d *MemDocument) Page(i int) (*Page, error) {
	if i < 0 || i >= len(d.Pages) {
		return nil, ErrPageRange
	}
	return d.Pages[i], nil
}

func (d *MemDocument) Close() error {
	d.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (d *MemDocument) Closed() bool {
	return d.closed
}
