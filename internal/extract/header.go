package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/contractgest/internal/doctree"
	"github.com/dgallion1/contractgest/internal/layout"
)

// DefaultHeaderBand is the fraction of the first page height searched for the title.
const DefaultHeaderBand = 0.25

// contractTypes is checked in order; the first keyword found in the
// upper-cased title wins.
var contractTypes = []struct {
	keyword string
	kind    string
}{
	{"OPEN SOURCE", "Open Source Agreement"},
	{"LICENSE", "License Agreement"},
	{"NON-DISCLOSURE", "Non-Disclosure Agreement"},
	{"SERVICE", "Service Agreement"},
	{"EMPLOYMENT", "Employment Contract"},
	{"SALES", "Sales Agreement"},
	{"LEASE", "Lease Agreement"},
	{"CONSULTING", "Consulting Agreement"},
	{"CONSTRUCTION", "Construction Contract"},
}

// ContractType classifies a title by keyword.
func ContractType(title string) string {
	upper := strings.ToUpper(title)
	for _, ct := range contractTypes {
		if strings.Contains(upper, ct.keyword) {
			return ct.kind
		}
	}
	return doctree.DefaultContractType
}

// ExtractHeader finds the title in the top band of the first page and
// classifies the contract type from it. It never fails: problems are logged
// and the defaults (nil title, General Agreement) are returned.
func ExtractHeader(page *layout.Page, band float64, log *slog.Logger) (title *string, contractType string) {
	contractType = doctree.DefaultContractType
	defer func() {
		if r := recover(); r != nil {
			log.Warn("header metadata extraction failed", "error", fmt.Sprint(r))
			title, contractType = nil, doctree.DefaultContractType
		}
	}()

	if page == nil {
		log.Warn("header metadata extraction skipped", "reason", "no first page")
		return nil, contractType
	}
	if band <= 0 || band > 1 {
		band = DefaultHeaderBand
	}

	clip := layout.R(0, 0, page.Width, page.Height*band)
	for _, block := range page.Clip(clip) {
		for _, line := range block.Lines {
			if t := CleanText(line.Text()); t != "" {
				return &t, ContractType(t)
			}
		}
	}

	log.Warn("no title found in header band")
	return nil, contractType
}
