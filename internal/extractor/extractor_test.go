package extractor

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestForContentType проверяет выбор экстрактора по Content-Type.
func TestForContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantType    string
		wantErr     bool
	}{
		{MimePDF, "*extractor.PDFExtractor", false},
		{MimeDocx, "*extractor.DocxExtractor", false},
		{MimePlain, "*extractor.PlainExtractor", false},
		{"application/msword", "", true},
		{"application/octet-stream", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		ext, err := ForContentType(tc.contentType)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ForContentType(%q): ожидалась ошибка", tc.contentType)
			}
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("ForContentType(%q): ошибка не ErrUnsupported: %v", tc.contentType, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ForContentType(%q): неожиданная ошибка %v", tc.contentType, err)
			continue
		}
		if ext == nil {
			t.Errorf("ForContentType(%q): nil extractor", tc.contentType)
		}
	}
}

// TestPlainExtractor проверяет чтение текстового файла.
func TestPlainExtractor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	content := "Первая строка.\nВторая строка.\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := (&PlainExtractor{}).Extract(path)
	if err != nil {
		t.Fatalf("Extract ошибка: %v", err)
	}
	if got != content {
		t.Errorf("Extract = %q, ожидалось %q", got, content)
	}
}

// TestPlainExtractor_Missing проверяет ошибку для отсутствующего файла.
func TestPlainExtractor_Missing(t *testing.T) {
	_, err := (&PlainExtractor{}).Extract(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("ожидалась ошибка для отсутствующего файла")
	}
}

// writeTestDocx собирает минимальный DOCX (zip с word/document.xml).
func writeTestDocx(t *testing.T, documentXML string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestDocxExtractor проверяет извлечение текста и границы абзацев.
func TestDocxExtractor(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Первый абзац.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Второй</w:t></w:r><w:r><w:t xml:space="preserve"> абзац.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	got, err := (&DocxExtractor{}).Extract(writeTestDocx(t, doc))
	if err != nil {
		t.Fatalf("Extract ошибка: %v", err)
	}

	if !strings.Contains(got, "Первый абзац.") {
		t.Errorf("текст не содержит первый абзац: %q", got)
	}
	if !strings.Contains(got, "Второй абзац.") {
		t.Errorf("прогоны одного абзаца не склеены: %q", got)
	}
	// Абзацы разделены переводом строки
	first := strings.Index(got, "Первый абзац.")
	second := strings.Index(got, "Второй абзац.")
	if first >= second {
		t.Error("порядок абзацев нарушен")
	}
	if !strings.Contains(got[first:second], "\n") {
		t.Error("между абзацами нет перевода строки")
	}
}

// TestDocxExtractor_NoDocumentXML проверяет ошибку для архива без document.xml.
func TestDocxExtractor_NoDocumentXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("other.xml")
	_, _ = w.Write([]byte("<x/>"))
	_ = zw.Close()
	_ = f.Close()

	if _, err := (&DocxExtractor{}).Extract(path); err == nil {
		t.Fatal("ожидалась ошибка для DOCX без word/document.xml")
	}
}

// TestDocxExtractor_NotZip проверяет ошибку для файла, не являющегося zip.
func TestDocxExtractor_NotZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.docx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := (&DocxExtractor{}).Extract(path); err == nil {
		t.Fatal("ожидалась ошибка для не-zip файла")
	}
}
