// Пакет chunker — детерминированное разбиение извлечённого текста
// на перекрывающиеся чанки для эмбеддинга и поиска.
//
// Алгоритм рекурсивный: границы чанков предпочитают естественные разрывы
// (абзац, строка, слово) и только в крайнем случае режут по символам.
// Перекрытие сохраняет непрерывность контекста на границе чанков.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// Разделители в порядке убывания приоритета. Пустая строка — жёсткий
// посимвольный разрез, применяется когда естественных разрывов нет.
var separators = []string{"\n\n", "\n", " ", ""}

// Splitter разбивает текст на чанки фиксированного целевого размера
// (в символах) с заданным перекрытием.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New создаёт Splitter. При некорректных параметрах применяются
// значения по умолчанию: размер 1000, перекрытие 200.
func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split возвращает упорядоченную последовательность чанков.
// Порядок значим: позиция чанка становится его sequenceId.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, separators)
}

// split рекурсивно разбивает текст, спускаясь по списку разделителей.
func (s *Splitter) split(text string, seps []string) []string {
	// Выбираем первый разделитель, встречающийся в тексте
	sep := seps[len(seps)-1]
	var rest []string
	for i, c := range seps {
		if c == "" || strings.Contains(text, c) {
			sep = c
			rest = seps[i+1:]
			break
		}
	}

	// Жёсткий разрез: естественных границ не осталось
	if sep == "" {
		return s.hardSplit(text)
	}

	pieces := strings.Split(text, sep)

	var final []string
	var good []string
	for _, piece := range pieces {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		// Кусок больше чанка: сначала сливаем накопленное,
		// затем разбиваем кусок следующим разделителем
		if len(good) > 0 {
			final = append(final, s.merge(good, sep)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, s.hardSplit(piece)...)
		} else {
			final = append(final, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, sep)...)
	}
	return final
}

// merge сливает мелкие куски в чанки до целевого размера,
// сохраняя хвост предыдущего чанка в качестве перекрытия.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)

	var chunks []string
	var current []string
	total := 0

	joinLen := func(extra int) int {
		n := total + extra
		if len(current) > 0 {
			n += sepLen
		}
		return n
	}

	for _, piece := range pieces {
		pl := utf8.RuneCountInString(piece)
		if joinLen(pl) > s.chunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				chunks = append(chunks, doc)
			}
			// Отбрасываем куски спереди, пока не уложимся в перекрытие
			for len(current) > 0 && (total > s.overlap || joinLen(pl) > s.chunkSize) {
				head := utf8.RuneCountInString(current[0])
				total -= head
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, piece)
		total += pl
	}

	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		chunks = append(chunks, doc)
	}
	return chunks
}

// hardSplit режет текст окнами фиксированного размера с перекрытием.
// Шаг окна = размер чанка - перекрытие, поэтому количество чанков
// равно ceil((L - overlap) / (size - overlap)).
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		return []string{text}
	}

	step := s.chunkSize - s.overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
