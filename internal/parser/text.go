package parser

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/contractgest/internal/layout"
)

// markerLine matches lines that open a numbered heading, a lettered or
// bracketed clause, or an underscore rule.
var markerLine = regexp.MustCompile(`^(?:\d+(?:\.\d+)*\.|\(\w+\)|[a-zA-Z]\.|[IVXLC]+\.)\s|^_{2,}`)

// TextParser handles plain text files. Blank lines separate paragraphs, and
// so does a line starting with a heading or clause marker. The lines of a
// paragraph are joined with a space.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (layout.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 && markerLine.MatchString(line) {
			paragraphs = append(paragraphs, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	flow := layout.NewFlow()
	for _, para := range paragraphs {
		flow.AddText(para)
	}
	return flow.Document(), nil
}
