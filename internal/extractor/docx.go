// docx.go — извлечение текста из DOCX.
// DOCX — zip-архив с XML внутри (OOXML); текст лежит в word/document.xml
// в элементах <w:t>, абзацы завершаются </w:p>. Достаточно archive/zip +
// encoding/xml, внешний парсер не требуется.
package extractor

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DocxExtractor — извлечение текста из DOCX-документов.
type DocxExtractor struct{}

// Extract возвращает текст документа, абзацы разделены переводом строки.
func (e *DocxExtractor) Extract(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("открытие DOCX: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("чтение word/document.xml: %w", err)
		}
		defer rc.Close()
		return extractDocumentXML(rc)
	}
	return "", errors.New("DOCX не содержит word/document.xml")
}

// extractDocumentXML собирает текст из потока document.xml.
func extractDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("разбор document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			// <w:t> — текстовый прогон, <w:tab/> — табуляция
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
