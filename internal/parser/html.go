package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/contractgest/internal/layout"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Block elements become paragraphs,
// <b>/<strong> runs become bold spans and <table> becomes a table region.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (layout.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	flow := layout.NewFlow()
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head", "nav":
				return
			case "table":
				flow.AddTable(htmlTableCells(n))
				return
			case "p", "li", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6", "dt", "dd":
				flow.AddParagraph(htmlSpans(n, headingLevel(n.Data) > 0))
				return
			}
		}
		if n.Type == html.TextNode && n.Parent != nil && (n.Parent.Data == "div" || n.Parent.Data == "body") {
			if t := strings.TrimSpace(n.Data); t != "" {
				flow.AddText(t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return flow.Document(), nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// htmlSpans flattens an element's text into spans, splitting where the
// bold state changes. Whitespace runs collapse to one space.
func htmlSpans(n *html.Node, bold bool) []layout.Span {
	var spans []layout.Span
	var extract func(*html.Node, bool)
	extract = func(n *html.Node, bold bool) {
		switch n.Type {
		case html.TextNode:
			t := collapseSpace(n.Data)
			if t == "" {
				return
			}
			if k := len(spans); k > 0 && spans[k-1].Bold == bold {
				spans[k-1].Text += t
				return
			}
			spans = append(spans, layout.Span{Text: t, Bold: bold})
			return
		case html.ElementNode:
			switch n.Data {
			case "b", "strong":
				bold = true
			case "br":
				extract(&html.Node{Type: html.TextNode, Data: " "}, bold)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c, bold)
		}
	}
	extract(n, bold)

	for len(spans) > 0 && strings.TrimSpace(spans[0].Text) == "" {
		spans = spans[1:]
	}
	if len(spans) > 0 {
		spans[0].Text = strings.TrimLeft(spans[0].Text, " ")
		last := &spans[len(spans)-1]
		last.Text = strings.TrimRight(last.Text, " ")
	}
	return spans
}

func collapseSpace(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	out := strings.Join(fields, " ")
	if len(fields) == 0 {
		return " "
	}
	if isSpaceByte(s[0]) {
		out = " " + out
	}
	if isSpaceByte(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func htmlTableCells(table *html.Node) [][]string {
	var cells [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "table":
				if n != table {
					return
				}
			case "tr":
				var row []string
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
						row = append(row, textContent(c))
					}
				}
				cells = append(cells, row)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return cells
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
