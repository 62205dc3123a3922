// pdf.go — извлечение текста из PDF через ledongthuc/pdf.
package extractor

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor — извлечение текста из PDF-документов.
type PDFExtractor struct{}

// Extract возвращает плоский текст всех страниц документа.
func (e *PDFExtractor) Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("открытие PDF: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("извлечение текста PDF: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("чтение текста PDF: %w", err)
	}
	return buf.String(), nil
}
