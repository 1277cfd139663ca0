package extractor

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

type pdfFormat struct{}

func (pdfFormat) Name() string         { return "pdf" }
func (pdfFormat) Extensions() []string { return []string{".pdf"} }
func (pdfFormat) ContentType() string  { return "application/pdf" }

// Units returns one unit per page. A page that cannot be decoded fails the
// whole document.
func (pdfFormat) Units(data []byte) ([]string, error) {
	reader := bytes.NewReader(data)

	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	numPages := pdfReader.NumPage()
	units := make([]string, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		units = append(units, text)
	}

	return units, nil
}
