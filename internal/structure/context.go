package structure

import (
	"strings"

	"github.com/dgallion1/contractgest/internal/doctree"
	"github.com/dgallion1/contractgest/internal/extract"
	"github.com/dgallion1/contractgest/internal/layout"
)

// State is the classifier state.
type State int

const (
	NoOpenSection State = iota
	InSection
)

func (s State) String() string {
	if s == InSection {
		return "in_section"
	}
	return "no_open_section"
}

// Context is the classifier state threaded across every page of one
// document. Each Step returns the next Context; the previous value shares
// storage with it and must not be reused.
type Context struct {
	State    State
	Current  *doctree.Section
	Sections []doctree.Section

	preamble []string
	footers  map[string]struct{}
	started  bool
}

// NewContext returns the initial state for a document.
func NewContext() Context {
	return Context{
		State:    NoOpenSection,
		Sections: []doctree.Section{},
		footers:  make(map[string]struct{}),
	}
}

// AddFooter appends a footer band string to the preamble unless it is empty
// or was already recorded for this document.
func (c Context) AddFooter(text string) Context {
	if text == "" {
		return c
	}
	if _, seen := c.footers[text]; seen {
		return c
	}
	if c.footers == nil {
		c.footers = make(map[string]struct{})
	}
	c.footers[text] = struct{}{}
	c.preamble = append(c.preamble, text)
	return c
}

// Step classifies it and applies the resulting transition.
func Step(c Context, it Item) Context {
	return Apply(c, Classify(c, it))
}

// Apply performs the transition for d.
func Apply(c Context, d Decision) Context {
	switch d.Action {
	case ActionSkip:
		c.started = true

	case ActionTable:
		if c.Current == nil {
			c.Current = &doctree.Section{Clauses: []doctree.Clause{}}
		}
		c.State = InSection
		if d.Table != nil {
			c.Current.Clauses = append(c.Current.Clauses, doctree.Clause{
				Index:     len(c.Current.Clauses),
				TableData: d.Table,
			})
		}

	case ActionSection, ActionPseudoSection:
		c = c.open(doctree.Str(d.Number), doctree.Str(d.Title))

	case ActionDivider:
		c = c.open(doctree.Str(""), doctree.Str(d.Title))

	case ActionClause:
		c.Current.Clauses = append(c.Current.Clauses, doctree.Clause{
			Text:  doctree.Str(d.Text),
			Label: doctree.Str(d.Label),
			Index: len(c.Current.Clauses),
		})

	case ActionPreamble:
		c.preamble = append(c.preamble, d.Text)

	case ActionContinuation:
		clauses := c.Current.Clauses
		switch {
		case len(clauses) == 0:
			c.Current.Clauses = append(clauses, doctree.Clause{
				Text:  doctree.Str(d.Text),
				Label: doctree.Str(""),
				Index: 0,
			})
		case clauses[len(clauses)-1].IsTable():
			// Prose after a table is dropped.
		default:
			last := &clauses[len(clauses)-1]
			joined := d.Text
			if last.Text != nil {
				joined = *last.Text + " " + d.Text
			}
			last.Text = &joined
		}
	}
	return c
}

// open closes the current section, if any, and starts a new one.
func (c Context) open(number, title *string) Context {
	c = c.closeCurrent()
	c.Current = &doctree.Section{Number: number, Title: title, Clauses: []doctree.Clause{}}
	c.State = InSection
	return c
}

func (c Context) closeCurrent() Context {
	if c.Current != nil {
		c.Sections = append(c.Sections, *c.Current)
		c.Current = nil
	}
	return c
}

// Finish closes any open section and returns the sections and the
// normalized preamble.
func Finish(c Context) ([]doctree.Section, string) {
	c = c.closeCurrent()
	return c.Sections, extract.CleanText(strings.Join(c.preamble, " "))
}

// firstLine returns the first line that carries at least one span.
func firstLine(lines []layout.Line) (layout.Line, bool) {
	for _, l := range lines {
		if len(l.Spans) > 0 {
			return l, true
		}
	}
	return layout.Line{}, false
}
