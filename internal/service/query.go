// query.go — сервис вопрос-ответ по загруженным документам (RAG).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apierrors "github.com/bigkaa/docqa/internal/api/errors"
	"github.com/bigkaa/docqa/internal/api/middleware"
	"github.com/bigkaa/docqa/internal/domain/model"
	"github.com/bigkaa/docqa/internal/embedding"
	"github.com/bigkaa/docqa/internal/generation"
	"github.com/bigkaa/docqa/internal/repository"
)

// promptTemplate — шаблон промпта генерации. Ответ строится строго по
// переданному контексту; плейсхолдеры %s — контекст и вопрос.
const promptTemplate = `
Jawablah pertanyaan hanya berdasarkan konteks yang diberikan.
Berikan jawaban seakurat mungkin sesuai dengan pertanyaan.

<context>
%s
</context>

Pertanyaan: %s

Catatan:
Jawablah menggunakan bahasa yang sesuai dengan konteks jika user tidak memberikan arahan bahasa secara spesifik.
`

// QueryParams — параметры запроса вопрос-ответ.
type QueryParams struct {
	// OwnerID — идентификатор владельца документов
	OwnerID string
	// Question — вопрос пользователя
	Question string
}

// QueryResult — ответ генеративной модели вместе с использованным контекстом.
type QueryResult struct {
	// Answer — очищенный текст ответа
	Answer string
	// Context — чанки, переданные модели, в порядке убывания близости
	Context []model.ScoredChunk
}

// QueryService — пайплайн эмбеддинг вопроса → поиск → генерация.
type QueryService struct {
	topK      int
	files     repository.FileRepository
	docs      repository.DocumentRepository
	embedder  embedding.Embedder
	generator generation.Generator
	cache     *CacheService
	logger    *slog.Logger
}

// NewQueryService создаёт сервис вопрос-ответ.
func NewQueryService(
	topK int,
	files repository.FileRepository,
	docs repository.DocumentRepository,
	embedder embedding.Embedder,
	generator generation.Generator,
	cache *CacheService,
	logger *slog.Logger,
) *QueryService {
	return &QueryService{
		topK:      topK,
		files:     files,
		docs:      docs,
		embedder:  embedder,
		generator: generator,
		cache:     cache,
		logger:    logger.With(slog.String("component", "query_service")),
	}
}

// Answer отвечает на вопрос по документам владельца.
//
// Поток:
//  1. Валидация входа
//  2. Предусловие: у владельца есть хотя бы один загруженный файл
//  3. Эмбеддинг вопроса (через LRU-кэш)
//  4. Векторный поиск topK чанков в границах владельца
//  5. Сборка промпта и генерация ответа (с повторами)
//  6. Очистка ответа от служебных блоков рассуждений
//
// Фильтр по владельцу обязателен: чужие документы в контекст не попадают.
func (s *QueryService) Answer(ctx context.Context, params QueryParams) (*QueryResult, *Error) {
	// 1. Валидация входа
	if params.OwnerID == "" {
		return nil, newError(400, apierrors.CodeValidationError, "Идентификатор владельца не задан")
	}
	if strings.TrimSpace(params.Question) == "" {
		return nil, newError(400, apierrors.CodeValidationError, "Вопрос не задан")
	}

	// 2. Предусловие: есть загруженные файлы
	count, err := s.files.CountByOwner(ctx, params.OwnerID)
	if err != nil {
		s.logger.Error("Ошибка подсчёта файлов владельца", slog.String("error", err.Error()))
		return nil, newError(500, apierrors.CodeInternalError, "Внутренняя ошибка при проверке документов")
	}
	if count == 0 {
		return nil, newError(404, apierrors.CodeNoDocuments, "Документы не найдены, сначала загрузите файл")
	}

	// 3. Эмбеддинг вопроса через кэш
	vector, ok := s.cache.Get(params.Question)
	if !ok {
		vector, err = s.embedder.Embed(ctx, params.Question)
		if err != nil {
			s.logger.Error("Ошибка эмбеддинга вопроса", slog.String("error", err.Error()))
			return nil, newError(500, apierrors.CodeInternalError, "Ошибка вычисления эмбеддинга вопроса")
		}
		s.cache.Set(params.Question, vector)
	}

	// 4. Векторный поиск в границах владельца
	scored, err := s.docs.SimilaritySearch(ctx, vector, params.OwnerID, s.topK)
	if err != nil {
		s.logger.Error("Ошибка векторного поиска", slog.String("error", err.Error()))
		return nil, newError(500, apierrors.CodeInternalError, "Ошибка поиска по документам")
	}

	// 5. Промпт и генерация
	prompt := buildPrompt(scored, params.Question)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		middleware.GenerationAttemptsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, generation.ErrExhausted) {
			return nil, newError(502, apierrors.CodeGenerationFailed, "Модель генерации недоступна, попробуйте позже")
		}
		s.logger.Error("Ошибка генерации ответа", slog.String("error", err.Error()))
		return nil, newError(502, apierrors.CodeGenerationFailed, "Ошибка генерации ответа")
	}

	middleware.GenerationAttemptsTotal.WithLabelValues("success").Inc()
	middleware.OperationsTotal.WithLabelValues("qna", "success").Inc()
	s.logger.Info("Ответ сгенерирован",
		slog.String("owner_id", params.OwnerID),
		slog.Int("context_chunks", len(scored)),
		slog.Int("answer_len", len(answer)),
	)

	return &QueryResult{Answer: answer, Context: scored}, nil
}

// buildPrompt собирает промпт: чанки контекста разделяются пустой строкой,
// порядок — по убыванию близости.
func buildPrompt(chunks []model.ScoredChunk, question string) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return fmt.Sprintf(promptTemplate, strings.Join(parts, "\n\n"), question)
}
