// Пакет embedding — вычисление векторных представлений текста.
// Один и тот же Embedder обязан использоваться и при индексации, и при
// поиске: смешение моделей эмбеддингов обесценивает оценки близости.
package embedding

import (
	"context"
	"sync"
)

// Embedder отображает текст в вектор фиксированной размерности.
type Embedder interface {
	// Embed возвращает вектор для одного текста.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch возвращает векторы для батча текстов одним запросом.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension возвращает размерность векторов.
	Dimension() int
}

var (
	sharedOnce sync.Once
	shared     Embedder
)

// Shared возвращает процессный экземпляр Embedder, создавая его при
// первом вызове. Конструктор обязан быть чистым: он выполняется не
// более одного раза за время жизни процесса.
func Shared(newFn func() Embedder) Embedder {
	sharedOnce.Do(func() {
		shared = newFn()
	})
	return shared
}
