// Пакет extractor — извлечение плоского текста из файлов разных форматов.
// Формат выбирается по заявленному Content-Type; новые форматы добавляются
// реализацией интерфейса Extractor без изменения пайплайна.
package extractor

import (
	"errors"
	"fmt"
)

// ErrUnsupported — заявленный Content-Type не поддерживается.
// Проверка независима от allow-list расширений на этапе загрузки:
// защита от несоответствия типа и расширения.
var ErrUnsupported = errors.New("формат файла не поддерживается")

// Extractor извлекает плоский текст из файла на диске.
// Пайплайн материализует байты объекта во временный файл и гарантирует
// его удаление на всех путях выхода.
type Extractor interface {
	// Extract читает файл и возвращает извлечённый текст.
	Extract(path string) (string, error)
}

// MIME-типы, поддерживаемые пайплайном.
const (
	MimePDF   = "application/pdf"
	MimeDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePlain = "text/plain"
)

// ForContentType возвращает Extractor для заявленного Content-Type
// или ErrUnsupported.
func ForContentType(contentType string) (Extractor, error) {
	switch contentType {
	case MimePDF:
		return &PDFExtractor{}, nil
	case MimeDocx:
		return &DocxExtractor{}, nil
	case MimePlain:
		return &PlainExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}
}
