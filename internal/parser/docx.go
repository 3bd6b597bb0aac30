package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/contractgest/internal/layout"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraphs keep their run weights;
// tables keep their cell grid.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (layout.Document, error) {
	ra, size, err := readerAt(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(ra, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	return docxLayout(doc), nil
}

func docxLayout(doc *docx.Docx) layout.Document {
	flow := layout.NewFlow()
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			flow.AddParagraph(docxParagraphSpans(it))
		case *docx.Table:
			flow.AddTable(docxTableCells(it))
		}
	}
	return flow.Document()
}

func docxParagraphSpans(para *docx.Paragraph) []layout.Span {
	var spans []layout.Span
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var buf strings.Builder
		for _, rc := range run.Children {
			switch t := rc.(type) {
			case *docx.Text:
				buf.WriteString(t.Text)
			case *docx.Tab:
				buf.WriteByte(' ')
			}
		}
		if buf.Len() == 0 {
			continue
		}
		bold := run.RunProperties != nil && run.RunProperties.Bold != nil
		if n := len(spans); n > 0 && spans[n-1].Bold == bold {
			spans[n-1].Text += buf.String()
			continue
		}
		spans = append(spans, layout.Span{Text: buf.String(), Bold: bold})
	}
	return spans
}

func docxTableCells(tbl *docx.Table) [][]string {
	var cells [][]string
	for _, row := range tbl.TableRows {
		var out []string
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				var sb strings.Builder
				for _, s := range docxParagraphSpans(para) {
					sb.WriteString(s.Text)
				}
				if t := strings.TrimSpace(sb.String()); t != "" {
					parts = append(parts, t)
				}
			}
			out = append(out, strings.Join(parts, " "))
		}
		cells = append(cells, out)
	}
	return cells
}
