package structure

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/contractgest/internal/doctree"
	"github.com/dgallion1/contractgest/internal/extract"
)

var (
	// Section headings: a run of Roman numeral letters or a dotted numeric
	// sequence, then optional title text. Case-insensitive and greedy, so
	// "Definitions" reads as number "D" with title "efinitions".
	sectionRe = regexp.MustCompile(`(?i)^\s*([IVXLCDM]+\s*|(?:\d+(?:\.\d+)*)\.?)\s*(.+)?$`)
	// Clause markers: "a.", "1.2", "1.2." or "(iv)".
	clauseRe = regexp.MustCompile(`(?s)^\s*([a-zA-Z]\.|\d+\.\d+\.?|\(\w+\))\s*(.+)?$`)
	// Underscore rules used as anonymous section breaks.
	dividerRe = regexp.MustCompile(`(?s)^\s*_{2,}\s*(.+)?$`)
)

// Action is the structural role assigned to one item.
type Action int

const (
	ActionSkip Action = iota
	ActionTable
	ActionSection
	ActionPseudoSection
	ActionDivider
	ActionClause
	ActionPreamble
	ActionContinuation
)

var actionNames = [...]string{
	ActionSkip:          "skip",
	ActionTable:         "table",
	ActionSection:       "section",
	ActionPseudoSection: "pseudo_section",
	ActionDivider:       "divider",
	ActionClause:        "clause",
	ActionPreamble:      "preamble",
	ActionContinuation:  "continuation",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Decision is the outcome of classifying one item.
type Decision struct {
	Action Action
	Number string // section number or pseudo-section label
	Title  string
	Label  string // clause label
	Text   string // clause text, preamble or continuation text
	Table  *doctree.TableData
}

// Classify applies the priority chain to it. The first item of the document
// is always skipped; after that the first matching rule wins:
//
//  1. table
//  2. section heading
//  3. clause marker before any section (pseudo-section)
//  4. underscore divider
//  5. clause marker or bold capitalized lead inside a section
//  6. preamble text before any section
//  7. continuation of the current section
func Classify(ctx Context, it Item) Decision {
	if !ctx.started {
		return Decision{Action: ActionSkip}
	}

	if it.Kind == ItemTable {
		return Decision{Action: ActionTable, Table: it.Table.Data()}
	}

	block := it.Block
	text := block.Text()

	if m := sectionRe.FindStringSubmatch(text); m != nil {
		return Decision{
			Action: ActionSection,
			Number: strings.TrimSpace(m[1]),
			Title:  extract.CleanText(m[2]),
		}
	}

	clause := clauseRe.FindStringSubmatch(text)

	if ctx.State == NoOpenSection && clause != nil {
		return Decision{
			Action: ActionPseudoSection,
			Number: extract.CleanText(clause[1]),
			Title:  extract.CleanText(clause[2]),
		}
	}

	if m := dividerRe.FindStringSubmatch(text); m != nil {
		return Decision{Action: ActionDivider, Title: extract.CleanText(m[1])}
	}

	if ctx.State == InSection && ctx.Current != nil {
		if clause != nil {
			return Decision{
				Action: ActionClause,
				Label:  extract.CleanText(clause[1]),
				Text:   extract.CleanText(clause[2]),
			}
		}
		if line, ok := firstLine(block.Lines); ok {
			lead := line.Spans[0]
			if lead.Emphasized() && hasUpper(lead.Text) {
				var rest strings.Builder
				for _, s := range line.Spans[1:] {
					rest.WriteString(s.Text)
				}
				return Decision{
					Action: ActionClause,
					Label:  strings.Trim(extract.CleanText(lead.Text), `"“”`),
					Text:   extract.CleanText(rest.String()),
				}
			}
		}
	}

	if ctx.State == NoOpenSection {
		return Decision{Action: ActionPreamble, Text: extract.CleanText(text)}
	}

	if ctx.Current != nil {
		return Decision{Action: ActionContinuation, Text: extract.CleanText(text)}
	}
	return Decision{Action: ActionSkip}
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
