package extractor

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"docworker/internal/domain"
)

// ValidatePDF checks that content parses as a PDF with at least one page.
// Failures wrap domain.ErrMalformedContent so no extraction provider is billed for them.
func ValidatePDF(content []byte) (pages int, err error) {
	// pdfcpu panics on some truncated inputs instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("%w: pdf parser panic: %v", domain.ErrMalformedContent, r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(bytes.NewReader(content), conf); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrMalformedContent, err)
	}

	pages, err = api.PageCount(bytes.NewReader(content), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrMalformedContent, err)
	}
	if pages == 0 {
		return 0, fmt.Errorf("%w: pdf has no pages", domain.ErrMalformedContent)
	}
	return pages, nil
}
