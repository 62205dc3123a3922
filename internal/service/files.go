// files.go — сервис реестра файлов: список и каскадное удаление.
package service

import (
	"context"
	"errors"
	"log/slog"

	apierrors "github.com/bigkaa/docqa/internal/api/errors"
	"github.com/bigkaa/docqa/internal/api/middleware"
	"github.com/bigkaa/docqa/internal/domain/model"
	"github.com/bigkaa/docqa/internal/hasher"
	"github.com/bigkaa/docqa/internal/objstore"
	"github.com/bigkaa/docqa/internal/repository"
)

// FilesService — операции над реестром загруженных файлов.
type FilesService struct {
	files  repository.FileRepository
	docs   repository.DocumentRepository
	store  objstore.Store
	logger *slog.Logger
}

// NewFilesService создаёт сервис реестра файлов.
func NewFilesService(
	files repository.FileRepository,
	docs repository.DocumentRepository,
	store objstore.Store,
	logger *slog.Logger,
) *FilesService {
	return &FilesService{
		files:  files,
		docs:   docs,
		store:  store,
		logger: logger.With(slog.String("component", "files_service")),
	}
}

// List возвращает файлы владельца, новые первыми.
func (s *FilesService) List(ctx context.Context, ownerID string) ([]*model.FileRecord, *Error) {
	if ownerID == "" {
		return nil, newError(400, apierrors.CodeValidationError, "Идентификатор владельца не задан")
	}

	records, err := s.files.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("Ошибка списка файлов", slog.String("error", err.Error()))
		return nil, newError(500, apierrors.CodeInternalError, "Внутренняя ошибка при получении списка файлов")
	}
	return records, nil
}

// Delete каскадно удаляет файл владельца: запись реестра, чанки,
// объект в object storage.
//
// Поток:
//  1. Валидация входа
//  2. Удаление записи реестра (возвращает удалённую запись)
//  3. Best-effort удаление чанков
//  4. Best-effort удаление объекта
//
// Шаги 3-4 не откатывают операцию: ошибка после удаления записи реестра
// оставляет осиротевшие данные, которые уже недостижимы для поиска и
// логируется для ручной очистки. Удаление отсутствующего файла —
// идемпотентный успех с пустой записью.
func (s *FilesService) Delete(ctx context.Context, fileHash, ownerID string) (*model.FileRecord, *Error) {
	// 1. Валидация входа
	if fileHash == "" {
		return nil, newError(400, apierrors.CodeValidationError, "Дайджест файла не задан")
	}
	if ownerID == "" {
		return nil, newError(400, apierrors.CodeValidationError, "Идентификатор владельца не задан")
	}

	// 2. Запись реестра
	record, err := s.files.DeleteByHashOwner(ctx, fileHash, ownerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Ошибка удаления записи реестра", slog.String("error", err.Error()))
		return nil, newError(500, apierrors.CodeInternalError, "Внутренняя ошибка при удалении файла")
	}

	// 3. Чанки (best-effort)
	deleted, derr := s.docs.DeleteByFile(ctx, fileHash, ownerID)
	if derr != nil {
		s.logger.Error("Ошибка удаления чанков файла",
			slog.String("file_hash", fileHash),
			slog.String("error", derr.Error()),
		)
	}

	// 4. Объект (best-effort)
	key := hasher.ObjectKey(fileHash, ownerID)
	if serr := s.store.Delete(ctx, key); serr != nil {
		s.logger.Error("Ошибка удаления объекта",
			slog.String("key", key),
			slog.String("error", serr.Error()),
		)
	}

	middleware.OperationsTotal.WithLabelValues("delete", "success").Inc()
	s.logger.Info("Файл удалён",
		slog.String("file_hash", fileHash),
		slog.String("owner_id", ownerID),
		slog.Int64("chunks_deleted", deleted),
		slog.Bool("record_found", record != nil),
	)

	return record, nil
}
