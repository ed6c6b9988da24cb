// Package textextract turns uploaded files into plain text for the
// ingestion pipeline. Only PDF needs real parsing; textual formats pass
// through unchanged.
package textextract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads r and returns its plain text. The mime type decides
// the extraction strategy; unknown textual types pass through as-is.
func ExtractText(r io.Reader, mimeType string) (string, error) {
	switch {
	case mimeType == "application/pdf":
		return extractPDF(r)
	case mimeType == "" || strings.HasPrefix(mimeType, "text/"),
		mimeType == "application/json",
		mimeType == "application/csv":
		b, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported mime type %q", mimeType)
	}
}

// extractPDF returns empty string and nil error when the PDF has no
// extractable text.
func extractPDF(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
