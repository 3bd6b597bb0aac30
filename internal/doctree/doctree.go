package doctree

// DefaultContractType is used when the title matches no known agreement kind.
const DefaultContractType = "General Agreement"

// DocumentMetadata is the root of a parsed contract.
type DocumentMetadata struct {
	Title         *string   `json:"title"`
	ContractType  string    `json:"contract_type"`
	EffectiveDate *string   `json:"effective_date"` // YYYY-MM-DD
	Preamble      string    `json:"preamble"`
	Sections      []Section `json:"sections"`
}

// New returns an empty record with defaults applied.
func New() *DocumentMetadata {
	return &DocumentMetadata{
		ContractType: DefaultContractType,
		Sections:     []Section{},
	}
}

// Section is a top-level structural unit. Number and Title are nil for the
// placeholder section opened by an orphan table.
type Section struct {
	Number  *string  `json:"number"`
	Title   *string  `json:"title"`
	Clauses []Clause `json:"clauses"`
}

// Clause carries either free text with a label or a table, never both.
type Clause struct {
	Text      *string    `json:"text"`
	Label     *string    `json:"label"`
	Index     int        `json:"index"` // Position within the section
	TableData *TableData `json:"table_data,omitempty"`
}

// TableData is a rectangular grid: header columns, row keys and row-major values.
type TableData struct {
	Columns []string   `json:"columns"`
	Index   []int      `json:"index"`
	Data    [][]string `json:"data"`
}

// IsTable reports whether the clause holds a table.
func (c Clause) IsTable() bool {
	return c.TableData != nil
}

// Str returns a pointer to s.
func Str(s string) *string {
	return &s
}
