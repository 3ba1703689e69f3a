// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package split

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/ocrmark/pkg/types"
)

// PDF is a Document backed by a PDF parsed once at open time. Page ranges
// are extracted from the parsed context, so measuring a range never
// re-reads the source.
type PDF struct {
	path  string
	ctx   *model.Context
	pages int
}

var _ Document = (*PDF)(nil)

// OpenPDF reads, validates and parses the PDF at path. Any read or parse
// failure is reported as a SplitError.
func OpenPDF(path string) (*PDF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.SplitError{Path: path, Err: err}
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, &types.SplitError{Path: path, Err: fmt.Errorf("reading page tree: %w", err)}
	}
	if ctx.PageCount <= 0 {
		return nil, &types.SplitError{Path: path, Err: ErrNoPages}
	}

	return &PDF{path: path, ctx: ctx, pages: ctx.PageCount}, nil
}

// PDFOpener opens documents with OpenPDF.
var PDFOpener Opener = OpenerFunc(func(path string) (Document, error) {
	return OpenPDF(path)
})

func (p *PDF) Name() string { return p.path }

func (p *PDF) PageCount() int { return p.pages }

// Serialize writes pages first..last as a standalone PDF.
func (p *PDF) Serialize(first, last int) ([]byte, error) {
	if first < 1 || last > p.pages || first > last {
		return nil, fmt.Errorf("page range %d-%d out of bounds (1-%d)", first, last, p.pages)
	}

	extracted, err := pdfcpu.ExtractPages(p.ctx, pageNumbers(first, last), false)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := api.WriteContext(extracted, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func pageNumbers(first, last int) []int {
	nrs := make([]int, 0, last-first+1)
	for n := first; n <= last; n++ {
		nrs = append(nrs, n)
	}
	return nrs
}
