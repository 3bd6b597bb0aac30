package parser

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// imagePages validates the PDF with pdfcpu and reports the 1-based numbers
// of pages that reference image XObjects.
func imagePages(ra io.ReaderAt, size int64) (map[int]bool, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(io.NewSectionReader(ra, 0, size), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	if ctx.Optimize == nil {
		return nil, nil
	}
	pages := make(map[int]bool)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
			pages[pageNr] = true
		}
	}
	return pages, nil
}
