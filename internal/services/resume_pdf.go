package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

const (
	MaxResumeBytes = 10 << 20
	MaxResumePages = 10
	PDFContentType = "application/pdf"
)

var (
	errEmptyPDF    = errors.New("pdf is empty")
	errNotPDF      = errors.New("payload is not a pdf document")
	errPDFTooLarge = fmt.Errorf("pdf exceeds %d bytes", MaxResumeBytes)
)

// ValidateResumePDF checks that data is a readable PDF within the size and
// page limits and returns its page count.
func ValidateResumePDF(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, errEmptyPDF
	}
	if len(data) > MaxResumeBytes {
		return 0, errPDFTooLarge
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, errNotPDF
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("unreadable pdf: %w", err)
	}
	pages := r.NumPage()
	if pages < 1 {
		return 0, errors.New("pdf has no pages")
	}
	if pages > MaxResumePages {
		return pages, fmt.Errorf("pdf has %d pages, at most %d allowed", pages, MaxResumePages)
	}
	return pages, nil
}
