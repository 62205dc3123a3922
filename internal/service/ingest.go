// ingest.go — сервис векторной индексации загруженных файлов.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	apierrors "github.com/bigkaa/docqa/internal/api/errors"
	"github.com/bigkaa/docqa/internal/api/middleware"
	"github.com/bigkaa/docqa/internal/chunker"
	"github.com/bigkaa/docqa/internal/domain/model"
	"github.com/bigkaa/docqa/internal/embedding"
	"github.com/bigkaa/docqa/internal/extractor"
	"github.com/bigkaa/docqa/internal/hasher"
	"github.com/bigkaa/docqa/internal/objstore"
	"github.com/bigkaa/docqa/internal/repository"
)

// IngestParams — параметры индексации файла.
type IngestParams struct {
	// FileHash — дайджест файла из результата загрузки
	FileHash string
	// OwnerID — идентификатор владельца
	OwnerID string
}

// IngestResult — результат индексации.
type IngestResult struct {
	// ChunksProcessed — количество записанных чанков (0 при повторном вызове)
	ChunksProcessed int
	// AlreadyProcessed — файл уже проиндексирован, запись не выполнялась
	AlreadyProcessed bool
}

// IngestService — пайплайн извлечение → чанки → эмбеддинги → запись.
type IngestService struct {
	batchSize int
	docs      repository.DocumentRepository
	store     objstore.Store
	embedder  embedding.Embedder
	splitter  *chunker.Splitter
	logger    *slog.Logger
}

// NewIngestService создаёт сервис индексации.
func NewIngestService(
	batchSize int,
	docs repository.DocumentRepository,
	store objstore.Store,
	embedder embedding.Embedder,
	splitter *chunker.Splitter,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		batchSize: batchSize,
		docs:      docs,
		store:     store,
		embedder:  embedder,
		splitter:  splitter,
		logger:    logger.With(slog.String("component", "ingest_service")),
	}
}

// Ingest индексирует загруженный файл в векторное хранилище.
//
// Поток:
//  1. Валидация входа
//  2. Проба идемпотентности: чанки пары (hash, owner) уже есть — no-op успех
//  3. Чтение байтов объекта из object storage
//  4. Выбор экстрактора по Content-Type
//  5. Материализация во временный файл (удаляется на всех путях выхода)
//  6. Извлечение текста и разбиение на чанки
//  7. Последовательные батчи: эмбеддинги батча → запись батча
//
// Запись батчей не атомарна: при сбое на середине часть чанков остаётся
// записанной, и повторный вызов пройдёт по пробе существования как no-op.
func (s *IngestService) Ingest(ctx context.Context, params IngestParams) (*IngestResult, *Error) {
	// 1. Валидация входа
	if params.FileHash == "" {
		return nil, newError(400, apierrors.CodeValidationError, "Дайджест файла не задан")
	}
	if params.OwnerID == "" {
		return nil, newError(400, apierrors.CodeValidationError, "Идентификатор владельца не задан")
	}

	// 2. Проба идемпотентности
	exists, err := s.docs.ExistsForFile(ctx, params.FileHash, params.OwnerID)
	if err != nil {
		s.logger.Error("Ошибка пробы существования чанков", slog.String("error", err.Error()))
		return nil, newError(500, apierrors.CodeInternalError, "Внутренняя ошибка при проверке индексации")
	}
	if exists {
		middleware.OperationsTotal.WithLabelValues("ingest", "skipped").Inc()
		s.logger.Info("Файл уже проиндексирован",
			slog.String("file_hash", params.FileHash),
			slog.String("owner_id", params.OwnerID),
		)
		return &IngestResult{AlreadyProcessed: true}, nil
	}

	// 3. Чтение объекта
	key := hasher.ObjectKey(params.FileHash, params.OwnerID)
	data, contentType, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return nil, newError(404, apierrors.CodeNotFound, "Файл не найден в хранилище")
		}
		s.logger.Error("Ошибка чтения объекта", slog.String("key", key), slog.String("error", err.Error()))
		return nil, newError(500, apierrors.CodeInternalError, "Ошибка чтения файла из хранилища")
	}

	// 4. Экстрактор по Content-Type
	ext, err := extractor.ForContentType(normalizeContentType(contentType))
	if err != nil {
		return nil, newError(415, apierrors.CodeUnsupportedType,
			fmt.Sprintf("Индексация для типа %q не поддерживается", contentType))
	}

	// 5. Временный файл
	tmp, err := os.CreateTemp("", "docqa-ingest-*")
	if err != nil {
		s.logger.Error("Ошибка создания временного файла", slog.String("error", err.Error()))
		return nil, newError(500, apierrors.CodeInternalError, "Внутренняя ошибка индексации")
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		s.logger.Error("Ошибка записи временного файла", slog.String("error", err.Error()))
		return nil, newError(500, apierrors.CodeInternalError, "Внутренняя ошибка индексации")
	}
	if err := tmp.Close(); err != nil {
		s.logger.Error("Ошибка закрытия временного файла", slog.String("error", err.Error()))
		return nil, newError(500, apierrors.CodeInternalError, "Внутренняя ошибка индексации")
	}

	// 6. Извлечение текста и разбиение
	text, err := ext.Extract(tmpPath)
	if err != nil {
		s.logger.Error("Ошибка извлечения текста",
			slog.String("file_hash", params.FileHash),
			slog.String("content_type", contentType),
			slog.String("error", err.Error()),
		)
		return nil, newError(500, apierrors.CodeInternalError, "Ошибка извлечения текста из файла")
	}
	pieces := s.splitter.Split(text)
	if len(pieces) == 0 {
		middleware.OperationsTotal.WithLabelValues("ingest", "empty").Inc()
		return &IngestResult{ChunksProcessed: 0}, nil
	}

	// 7. Последовательные батчи: эмбеддинги → запись
	processed := 0
	for start := 0; start < len(pieces); start += s.batchSize {
		end := min(start+s.batchSize, len(pieces))
		batch := pieces[start:end]

		vectors, err := s.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			middleware.OperationsTotal.WithLabelValues("ingest", "error").Inc()
			s.logger.Error("Ошибка вычисления эмбеддингов батча",
				slog.Int("batch_start", start),
				slog.String("error", err.Error()),
			)
			return nil, newError(500, apierrors.CodeWriteFailed,
				fmt.Sprintf("Ошибка эмбеддингов батча (записано %d чанков)", processed))
		}

		chunks := make([]model.Chunk, len(batch))
		for i, content := range batch {
			chunks[i] = model.Chunk{
				Content: content,
				Metadata: model.ChunkMetadata{
					// Нумерация чанков с 1, сквозная по документу
					SequenceID: start + i + 1,
					FileHash:   params.FileHash,
					OwnerID:    params.OwnerID,
				},
			}
		}
		if err := s.docs.InsertBatch(ctx, chunks, vectors); err != nil {
			middleware.OperationsTotal.WithLabelValues("ingest", "error").Inc()
			s.logger.Error("Ошибка записи батча векторов",
				slog.Int("batch_start", start),
				slog.String("error", err.Error()),
			)
			return nil, newError(500, apierrors.CodeWriteFailed,
				fmt.Sprintf("Ошибка записи векторов (записано %d чанков)", processed))
		}
		processed += len(batch)
	}

	middleware.OperationsTotal.WithLabelValues("ingest", "success").Inc()
	middleware.ChunksIngestedTotal.Add(float64(processed))
	s.logger.Info("Файл проиндексирован",
		slog.String("file_hash", params.FileHash),
		slog.String("owner_id", params.OwnerID),
		slog.Int("chunks", processed),
	)

	return &IngestResult{ChunksProcessed: processed}, nil
}

// normalizeContentType убирает параметры MIME-типа (charset и т.д.).
func normalizeContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}
