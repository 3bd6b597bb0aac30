package structure

import (
	"strings"
	"testing"

	"github.com/dgallion1/contractgest/internal/doctree"
	"github.com/dgallion1/contractgest/internal/layout"
)

func block(top float64, spans ...layout.Span) *layout.Block {
	bbox := layout.R(72, top, 540, top+12)
	for i := range spans {
		spans[i].BBox = bbox
	}
	return &layout.Block{
		BBox:  bbox,
		Lines: []layout.Line{{BBox: bbox, Spans: spans}},
	}
}

func textItem(text string) Item {
	b := block(0, layout.Span{Text: text})
	return Item{Kind: ItemText, BBox: b.BBox, Block: b}
}

func boldItem(lead, rest string) Item {
	b := block(0, layout.Span{Text: lead, Bold: true}, layout.Span{Text: rest})
	return Item{Kind: ItemText, BBox: b.BBox, Block: b}
}

func tableItem(cells [][]string) Item {
	t := &layout.Table{BBox: layout.R(72, 0, 540, 40), Cells: cells}
	return Item{Kind: ItemTable, BBox: t.BBox, Table: t}
}

func run(items ...Item) ([]doctree.Section, string) {
	ctx := NewContext()
	for _, it := range items {
		ctx = Step(ctx, it)
	}
	return Finish(ctx)
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestClassify_SectionWithLabeledClause(t *testing.T) {
	sections, _ := run(
		textItem("MASTER SERVICES AGREEMENT"),
		textItem("1. Definitions"),
		textItem("(a) Term means the period of this Agreement."),
	)

	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	s := sections[0]
	if deref(s.Number) != "1." {
		t.Errorf("expected number %q, got %q", "1.", deref(s.Number))
	}
	if deref(s.Title) != "Definitions" {
		t.Errorf("expected title %q, got %q", "Definitions", deref(s.Title))
	}
	if len(s.Clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(s.Clauses))
	}
	c := s.Clauses[0]
	if deref(c.Label) != "(a)" {
		t.Errorf("expected label %q, got %q", "(a)", deref(c.Label))
	}
	if !strings.HasPrefix(deref(c.Text), "Term means") {
		t.Errorf("expected text to start with %q, got %q", "Term means", deref(c.Text))
	}
	if c.Index != 0 {
		t.Errorf("expected index 0, got %d", c.Index)
	}
}

func TestClassify_DividerOpensAnonymousSection(t *testing.T) {
	sections, _ := run(
		textItem("LEASE AGREEMENT"),
		textItem("______ Schedule A"),
	)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if deref(sections[0].Number) != "" {
		t.Errorf("expected empty number, got %q", deref(sections[0].Number))
	}
	if deref(sections[0].Title) != "Schedule A" {
		t.Errorf("expected title %q, got %q", "Schedule A", deref(sections[0].Title))
	}
}

func TestClassify_TableAfterHeading(t *testing.T) {
	sections, _ := run(
		textItem("SALES AGREEMENT"),
		textItem("2. Pricing"),
		tableItem([][]string{{"Item", "Price"}, {"Widget", "10"}, {"Gadget", "20"}}),
	)
	if len(sections) != 1 || len(sections[0].Clauses) != 1 {
		t.Fatalf("expected 1 section with 1 clause, got %+v", sections)
	}
	c := sections[0].Clauses[0]
	if c.TableData == nil {
		t.Fatal("expected table data")
	}
	if c.Text != nil || c.Label != nil {
		t.Errorf("expected nil text and label, got %q / %q", deref(c.Text), deref(c.Label))
	}
	if c.Index != 0 {
		t.Errorf("expected index 0, got %d", c.Index)
	}
	if got := strings.Join(c.TableData.Columns, ","); got != "Item,Price" {
		t.Errorf("expected columns Item,Price, got %s", got)
	}
	if len(c.TableData.Data) != 2 || c.TableData.Index[1] != 1 {
		t.Errorf("unexpected table rows: %+v", c.TableData)
	}
}

func TestClassify_PseudoSectionBeforeHeading(t *testing.T) {
	sections, preamble := run(
		textItem("NON-DISCLOSURE AGREEMENT"),
		textItem("(a) Confidentiality"),
	)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if deref(sections[0].Number) != "(a)" {
		t.Errorf("expected number %q, got %q", "(a)", deref(sections[0].Number))
	}
	if deref(sections[0].Title) != "Confidentiality" {
		t.Errorf("expected title %q, got %q", "Confidentiality", deref(sections[0].Title))
	}
	if preamble != "" {
		t.Errorf("expected empty preamble, got %q", preamble)
	}
}

func TestClassify_ContinuationAfterTableDropped(t *testing.T) {
	sections, _ := run(
		textItem("TITLE"),
		textItem("3. Schedule"),
		textItem("Fees are listed below."),
		tableItem([][]string{{"Fee", "Amount"}, {"Setup", "100"}}),
		textItem("Totals exclude tax."),
	)
	clauses := sections[0].Clauses
	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(clauses))
	}
	if deref(clauses[0].Text) != "Fees are listed below." {
		t.Errorf("unexpected first clause text %q", deref(clauses[0].Text))
	}
	if !clauses[1].IsTable() {
		t.Fatal("expected second clause to hold the table")
	}
	if clauses[1].Text != nil {
		t.Errorf("expected table clause to receive no text, got %q", deref(clauses[1].Text))
	}
}

func TestClassify_ContinuationAccumulates(t *testing.T) {
	sections, _ := run(
		textItem("TITLE"),
		textItem("4. Payment"),
		textItem("Fees are due monthly."),
		textItem("Fees   accrue\ninterest."),
	)
	c := sections[0].Clauses
	if len(c) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(c))
	}
	if deref(c[0].Label) != "" {
		t.Errorf("expected empty label, got %q", deref(c[0].Label))
	}
	want := "Fees are due monthly. Fees accrue interest."
	if deref(c[0].Text) != want {
		t.Errorf("expected %q, got %q", want, deref(c[0].Text))
	}
}

func TestClassify_BoldLeadStartsClause(t *testing.T) {
	sections, _ := run(
		textItem("TITLE"),
		textItem("5. Obligations"),
		boldItem("“Payment Terms.”", " Net thirty days."),
	)
	c := sections[0].Clauses
	if len(c) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(c))
	}
	if deref(c[0].Label) != "Payment Terms." {
		t.Errorf("expected label %q, got %q", "Payment Terms.", deref(c[0].Label))
	}
	if deref(c[0].Text) != "Net thirty days." {
		t.Errorf("expected text %q, got %q", "Net thirty days.", deref(c[0].Text))
	}
}

func TestClassify_BoldLowercaseIsContinuation(t *testing.T) {
	sections, _ := run(
		textItem("TITLE"),
		textItem("5. Obligations"),
		boldItem("note", " applies."),
	)
	c := sections[0].Clauses
	if len(c) != 1 || deref(c[0].Label) != "" {
		t.Fatalf("expected one unlabeled clause, got %+v", c)
	}
}

func TestClassify_PreambleAndFirstItemSkipped(t *testing.T) {
	sections, preamble := run(
		textItem("SOFTWARE LICENSE AGREEMENT"),
		textItem("This Agreement is made between the parties."),
		textItem("Effective as of signing."),
		textItem("1. Grant"),
	)
	if preamble != "This Agreement is made between the parties. Effective as of signing." {
		t.Errorf("unexpected preamble %q", preamble)
	}
	if strings.Contains(preamble, "SOFTWARE") {
		t.Error("first item leaked into preamble")
	}
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
}

func TestClassify_FirstItemTableSkipped(t *testing.T) {
	sections, _ := run(
		tableItem([][]string{{"A", "B"}, {"1", "2"}}),
		textItem("Recitals follow."),
	)
	if len(sections) != 0 {
		t.Fatalf("expected no sections, got %d", len(sections))
	}
}

func TestClassify_OrphanTableOpensPlaceholder(t *testing.T) {
	sections, _ := run(
		textItem("TITLE"),
		tableItem([][]string{{"Party", "Role"}, {"Acme", "Vendor"}}),
		textItem("Further terms."),
	)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Number != nil || sections[0].Title != nil {
		t.Errorf("expected placeholder with nil number/title, got %q/%q", deref(sections[0].Number), deref(sections[0].Title))
	}
	if len(sections[0].Clauses) != 1 {
		t.Errorf("expected trailing prose dropped, got %d clauses", len(sections[0].Clauses))
	}
}

func TestClassify_EmptyTableOpensPlaceholderWithoutClause(t *testing.T) {
	sections, _ := run(textItem("TITLE"), tableItem(nil))
	if len(sections) != 1 || len(sections[0].Clauses) != 0 {
		t.Fatalf("expected one empty placeholder section, got %+v", sections)
	}
}

func TestClassify_RomanHeadings(t *testing.T) {
	sections, preamble := run(
		textItem("TITLE"),
		textItem("IV. Termination"),
		textItem("ii Notices"),
	)
	if preamble != "" {
		t.Errorf("expected empty preamble, got %q", preamble)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	// The period stays with the title.
	if deref(sections[0].Number) != "IV" || deref(sections[0].Title) != ". Termination" {
		t.Errorf("unexpected first section %q %q", deref(sections[0].Number), deref(sections[0].Title))
	}
	if deref(sections[1].Number) != "ii" || deref(sections[1].Title) != "Notices" {
		t.Errorf("unexpected second section %q %q", deref(sections[1].Number), deref(sections[1].Title))
	}
}

func TestClassify_NumeralLetterPrefixOpensSection(t *testing.T) {
	tests := []struct {
		text, number, title string
	}{
		{"Definitions", "D", "efinitions"},
		{"Company shall pay fees.", "C", "ompany shall pay fees."},
		{"Main obligations are listed below.", "M", "ain obligations are listed below."},
		{"did", "did", ""},
		{"MIX", "MIX", ""},
		{"  XIV   Survival", "XIV", "Survival"},
		{"1.2.3 Scope", "1.2.3", "Scope"},
		{"12 Notices", "12", "Notices"},
	}
	for _, tt := range tests {
		d := Classify(Context{started: true}, textItem(tt.text))
		if d.Action != ActionSection {
			t.Errorf("%q: expected section, got %s", tt.text, d.Action)
			continue
		}
		if d.Number != tt.number || d.Title != tt.title {
			t.Errorf("%q: expected %q/%q, got %q/%q", tt.text, tt.number, tt.title, d.Number, d.Title)
		}
	}
}

func TestClassify_NonNumeralLeadIsPreamble(t *testing.T) {
	sections, preamble := run(
		textItem("TITLE"),
		textItem("Effective as of signing."),
		textItem("Between Acme and Beta."),
	)
	if len(sections) != 0 {
		t.Fatalf("expected no sections, got %d", len(sections))
	}
	if preamble != "Effective as of signing. Between Acme and Beta." {
		t.Errorf("unexpected preamble %q", preamble)
	}
}

func TestClassify_BareNumberHeadingHasEmptyTitle(t *testing.T) {
	sections, _ := run(textItem("TITLE"), textItem("7."))
	if len(sections) != 1 || deref(sections[0].Title) != "" {
		t.Fatalf("expected one section with empty title, got %+v", sections)
	}
}

func TestClassify_ClauseIndicesContiguous(t *testing.T) {
	items := []Item{textItem("TITLE"), textItem("1. Terms")}
	for _, l := range []string{"(a) One.", "(b) Two.", "(c) Three."} {
		items = append(items, textItem(l))
	}
	items = append(items, tableItem([][]string{{"x"}, {"y"}}))
	items = append(items, textItem("(d) Four."))
	items = append(items, textItem("2. More"), textItem("(a) Again."), textItem("(b) Again."))

	sections, _ := run(items...)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	for i, s := range sections {
		for j, c := range s.Clauses {
			if c.Index != j {
				t.Errorf("section %d clause %d: expected index %d, got %d", i, j, j, c.Index)
			}
		}
	}
	if len(sections[0].Clauses) != 5 {
		t.Errorf("expected 5 clauses in first section, got %d", len(sections[0].Clauses))
	}
}

func TestClassify_SectionOrderFollowsInput(t *testing.T) {
	sections, _ := run(
		textItem("TITLE"),
		textItem("3. Third"),
		textItem("1. First"),
		textItem("2. Second"),
	)
	want := []string{"3.", "1.", "2."}
	for i, w := range want {
		if deref(sections[i].Number) != w {
			t.Errorf("section %d: expected %q, got %q", i, w, deref(sections[i].Number))
		}
	}
}

func TestContext_FooterAddedOnce(t *testing.T) {
	ctx := NewContext()
	for k := 0; k < 3; k++ {
		ctx = ctx.AddFooter("Confidential - Page footer")
	}
	ctx = ctx.AddFooter("")
	_, preamble := Finish(ctx)
	if preamble != "Confidential - Page footer" {
		t.Errorf("expected single footer, got %q", preamble)
	}
}

func TestAction_String(t *testing.T) {
	if ActionPseudoSection.String() != "pseudo_section" {
		t.Errorf("expected pseudo_section, got %s", ActionPseudoSection)
	}
	if Action(99).String() != "unknown" {
		t.Errorf("expected unknown, got %s", Action(99))
	}
}
