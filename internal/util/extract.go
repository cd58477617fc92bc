package util

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// PageTexter is the part of a PDF document the extractor needs.
type PageTexter interface {
	NumPage() int
	Text(n int) (string, error)
	Close() error
}

// OpenPDF opens an in-memory PDF with MuPDF.
func OpenPDF(data []byte) (PageTexter, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ExtractPDFText reads pages in order. Text items of a page are joined by single
// spaces and pages are joined by a newline.
func ExtractPDFText(doc PageTexter) (string, error) {
	n := doc.NumPage()
	pages := make([]string, 0, n)
	for i := 0; i < n; i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, CollapseWhitespace(text))
	}
	return strings.Join(pages, "\n"), nil
}
