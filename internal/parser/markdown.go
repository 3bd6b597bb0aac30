package parser

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/contractgest/internal/layout"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings and
// **strong** text are bold; GFM tables become table regions.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (layout.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	flow := layout.NewFlow()
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		markdownBlock(flow, n, src, "")
	}
	return flow.Document(), nil
}

// markdownBlock lays out one block node. prefix is prepended to the first
// paragraph, restoring ordered list numbers that the parser strips.
func markdownBlock(flow *layout.Flow, n ast.Node, src []byte, prefix string) {
	switch node := n.(type) {
	case *ast.Heading:
		spans := inlineSpans(node, src, true)
		flow.AddParagraph(prefixSpans(prefix, spans))

	case *ast.Paragraph, *ast.TextBlock:
		flow.AddParagraph(prefixSpans(prefix, inlineSpans(node, src, false)))

	case *ast.List:
		num := node.Start
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			marker := ""
			if node.IsOrdered() {
				marker = strconv.Itoa(num) + string(node.Marker) + " "
				num++
			}
			first := true
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				if first {
					markdownBlock(flow, c, src, marker)
					first = false
					continue
				}
				markdownBlock(flow, c, src, "")
			}
		}

	case *east.Table:
		flow.AddTable(markdownTableCells(node, src))

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			flow.AddText(strings.TrimSpace(string(seg.Value(src))))
		}

	case *ast.ThematicBreak, *ast.HTMLBlock:

	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			markdownBlock(flow, c, src, prefix)
			prefix = ""
		}
	}
}

func prefixSpans(prefix string, spans []layout.Span) []layout.Span {
	if prefix == "" {
		return spans
	}
	return append([]layout.Span{{Text: prefix}}, spans...)
}

// inlineSpans collects the inline text of n, splitting spans where the
// strong-emphasis state changes.
func inlineSpans(n ast.Node, src []byte, bold bool) []layout.Span {
	var spans []layout.Span
	add := func(s string, bold bool) {
		if s == "" {
			return
		}
		if k := len(spans); k > 0 && spans[k-1].Bold == bold {
			spans[k-1].Text += s
			return
		}
		spans = append(spans, layout.Span{Text: s, Bold: bold})
	}

	var walk func(ast.Node, bool)
	walk = func(n ast.Node, bold bool) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				add(string(node.Segment.Value(src)), bold)
				if node.SoftLineBreak() || node.HardLineBreak() {
					add(" ", bold)
				}
			case *ast.String:
				add(string(node.Value), bold)
			case *ast.Emphasis:
				walk(node, bold || node.Level >= 2)
			case *ast.AutoLink:
				add(string(node.Label(src)), bold)
			case *ast.RawHTML:
			default:
				walk(node, bold)
			}
		}
	}
	walk(n, bold)

	if len(spans) > 0 {
		last := &spans[len(spans)-1]
		last.Text = strings.TrimRight(last.Text, " ")
	}
	return spans
}

func markdownTableCells(tbl *east.Table, src []byte) [][]string {
	var cells [][]string
	for row := tbl.FirstChild(); row != nil; row = row.NextSibling() {
		var out []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			var buf bytes.Buffer
			for _, s := range inlineSpans(cell, src, false) {
				buf.WriteString(s.Text)
			}
			out = append(out, strings.TrimSpace(buf.String()))
		}
		cells = append(cells, out)
	}
	return cells
}
