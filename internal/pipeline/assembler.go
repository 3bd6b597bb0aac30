package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/contractgest/internal/doctree"
	"github.com/dgallion1/contractgest/internal/extract"
	"github.com/dgallion1/contractgest/internal/layout"
	"github.com/dgallion1/contractgest/internal/structure"
)

// Assembler builds a DocumentMetadata record from an opened document in a
// single top-to-bottom pass.
type Assembler struct {
	HeaderBand   float64
	FooterHeight float64

	log *slog.Logger
}

func NewAssembler(headerBand, footerHeight float64, log *slog.Logger) *Assembler {
	if headerBand <= 0 {
		headerBand = extract.DefaultHeaderBand
	}
	if footerHeight <= 0 {
		footerHeight = structure.DefaultFooterHeight
	}
	return &Assembler{HeaderBand: headerBand, FooterHeight: footerHeight, log: log}
}

// Assemble runs header and date extraction on the first page, then merges
// and classifies every page in order. Header and date problems are logged;
// page read failures abort with ErrBackend.
func (a *Assembler) Assemble(ctx context.Context, doc layout.Document) (*doctree.DocumentMetadata, error) {
	meta := doctree.New()
	n := doc.PageCount()
	if n == 0 {
		a.log.Warn("document has no pages")
		return meta, nil
	}

	first, err := doc.Page(0)
	if err != nil {
		return nil, fmt.Errorf("%w: read page 1: %w", ErrBackend, err)
	}
	meta.Title, meta.ContractType = extract.ExtractHeader(first, a.HeaderBand, a.log)
	meta.EffectiveDate = extract.ExtractEffectiveDate(first, a.log)
	a.log.Debug("header extracted", "contract_type", meta.ContractType, "has_title", meta.Title != nil, "has_date", meta.EffectiveDate != nil)

	state := structure.NewContext()
	excluded := 0
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := first
		if i > 0 {
			page, err = doc.Page(i)
			if err != nil {
				return nil, fmt.Errorf("%w: read page %d: %w", ErrBackend, i+1, err)
			}
		}

		res := structure.MergePage(page, a.FooterHeight)
		excluded += res.Excluded
		state = state.AddFooter(res.Footer)
		for _, it := range res.Items {
			state = structure.Step(state, it)
		}
	}

	meta.Sections, meta.Preamble = structure.Finish(state)
	a.log.Info("document assembled",
		"pages", n,
		"sections", len(meta.Sections),
		"excluded_items", excluded,
	)
	return meta, nil
}
