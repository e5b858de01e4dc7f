package report

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// FitzPageCounter counts pages with MuPDF.
type FitzPageCounter struct{}

// PageCount implements PageCounter
func (FitzPageCounter) PageCount(pdf []byte) (int, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	return doc.NumPage(), nil
}

var _ PageCounter = FitzPageCounter{}
