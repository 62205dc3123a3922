// plain.go — извлечение текста из text/plain файлов.
package extractor

import (
	"fmt"
	"os"
)

// PlainExtractor — извлечение текста из обычных текстовых файлов.
type PlainExtractor struct{}

// Extract читает файл целиком как UTF-8 текст.
func (e *PlainExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("чтение текстового файла: %w", err)
	}
	return string(data), nil
}
