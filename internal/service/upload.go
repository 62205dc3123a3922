// upload.go — сервис приёма файлов (контент-адресуемая загрузка).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apierrors "github.com/bigkaa/docqa/internal/api/errors"
	"github.com/bigkaa/docqa/internal/api/middleware"
	"github.com/bigkaa/docqa/internal/config"
	"github.com/bigkaa/docqa/internal/domain/model"
	"github.com/bigkaa/docqa/internal/hasher"
	"github.com/bigkaa/docqa/internal/objstore"
	"github.com/bigkaa/docqa/internal/repository"
)

// allowedExtensions — допустимые расширения загружаемых файлов.
// Сопоставление регистронезависимое.
var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".txt":  {},
	".doc":  {},
	".docx": {},
	".xls":  {},
	".xlsx": {},
	".ppt":  {},
	".pptx": {},
}

// UploadParams — параметры загрузки файла.
type UploadParams struct {
	// Data — содержимое файла целиком (лимит размера проверяется здесь)
	Data []byte
	// FileName — оригинальное имя файла
	FileName string
	// ContentType — MIME-тип из multipart part
	ContentType string
	// OwnerID — идентификатор владельца
	OwnerID string
}

// UploadResult — результат загрузки.
type UploadResult struct {
	// Record — запись реестра (существующая при дедупликации)
	Record *model.FileRecord
	// Deduplicated — файл уже был загружен этим владельцем, запись не создавалась
	Deduplicated bool
}

// UploadService — сервис приёма файлов.
type UploadService struct {
	cfg    *config.Config
	files  repository.FileRepository
	store  objstore.Store
	logger *slog.Logger
}

// NewUploadService создаёт сервис приёма файлов.
func NewUploadService(
	cfg *config.Config,
	files repository.FileRepository,
	store objstore.Store,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		cfg:    cfg,
		files:  files,
		store:  store,
		logger: logger.With(slog.String("component", "upload_service")),
	}
}

// Upload выполняет контент-адресуемую загрузку файла.
//
// Поток:
//  1. Валидация входа (имя, владелец, непустое содержимое)
//  2. Проверка размера
//  3. Проверка расширения по allow-list
//  4. SHA-256 дайджест содержимого
//  5. Проба дедупликации: пара (hash, owner) уже в реестре — no-op успех
//  6. Проверка квоты владельца
//  7. Запись объекта в object storage (overwrite=false)
//  8. Верификация наличия объекта
//  9. Вставка записи реестра; при ошибке — компенсирующее удаление объекта
//
// Порядок проверок фиксирован: дедупликация идёт до квоты, поэтому
// повторная загрузка уже известного файла проходит и при исчерпанной квоте.
func (s *UploadService) Upload(ctx context.Context, params UploadParams) (*UploadResult, *Error) {
	// 1. Валидация входа
	if params.FileName == "" {
		return nil, newError(400, apierrors.CodeValidationError, "Имя файла не задано")
	}
	if params.OwnerID == "" {
		return nil, newError(400, apierrors.CodeValidationError, "Идентификатор владельца не задан")
	}
	if len(params.Data) == 0 {
		return nil, newError(400, apierrors.CodeValidationError, "Файл пуст")
	}

	// 2. Проверка размера
	if int64(len(params.Data)) > s.cfg.MaxFileSize {
		middleware.OperationsTotal.WithLabelValues("upload", "rejected").Inc()
		return nil, newError(413, apierrors.CodeFileTooLarge,
			fmt.Sprintf("Размер файла %d байт превышает максимум %d байт", len(params.Data), s.cfg.MaxFileSize))
	}

	// 3. Проверка расширения
	ext := strings.ToLower(filepath.Ext(params.FileName))
	if _, ok := allowedExtensions[ext]; !ok {
		middleware.OperationsTotal.WithLabelValues("upload", "rejected").Inc()
		return nil, newError(415, apierrors.CodeUnsupportedType,
			fmt.Sprintf("Расширение %q не поддерживается", ext))
	}

	// 4. Контент-адрес
	fileHash := hasher.Sum(params.Data)

	// 5. Проба дедупликации в границах владельца
	existing, err := s.files.GetByHashOwner(ctx, fileHash, params.OwnerID)
	if err == nil {
		middleware.OperationsTotal.WithLabelValues("upload", "deduplicated").Inc()
		s.logger.Info("Файл уже загружен, дедупликация",
			slog.String("file_hash", fileHash),
			slog.String("owner_id", params.OwnerID),
		)
		return &UploadResult{Record: existing, Deduplicated: true}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Ошибка пробы дедупликации", slog.String("error", err.Error()))
		return nil, newError(500, apierrors.CodeInternalError, "Внутренняя ошибка при проверке дедупликации")
	}

	// 6. Квота владельца
	count, err := s.files.CountByOwner(ctx, params.OwnerID)
	if err != nil {
		s.logger.Error("Ошибка подсчёта файлов владельца", slog.String("error", err.Error()))
		return nil, newError(500, apierrors.CodeInternalError, "Внутренняя ошибка при проверке квоты")
	}
	if count >= s.cfg.MaxFilesPerOwner {
		middleware.OperationsTotal.WithLabelValues("upload", "rejected").Inc()
		return nil, newError(400, apierrors.CodeQuotaExceeded,
			fmt.Sprintf("Достигнут лимит %d файлов на владельца", s.cfg.MaxFilesPerOwner))
	}

	// 7. Запись объекта (overwrite=false)
	key := hasher.ObjectKey(fileHash, params.OwnerID)
	if err := s.store.Put(ctx, key, params.Data, params.ContentType); err != nil {
		if errors.Is(err, objstore.ErrConflict) {
			middleware.OperationsTotal.WithLabelValues("upload", "conflict").Inc()
			return nil, newError(409, apierrors.CodeConflict, "Конкурентная загрузка того же файла, повторите запрос")
		}
		s.logger.Error("Ошибка записи объекта",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, newError(500, apierrors.CodeInternalError, "Ошибка записи файла в хранилище")
	}

	// 8. Верификация наличия объекта после записи
	ok, err := s.store.Exists(ctx, key)
	if err != nil || !ok {
		_ = s.store.Delete(ctx, key)
		s.logger.Error("Объект не найден после записи", slog.String("key", key))
		return nil, newError(500, apierrors.CodeInternalError, "Файл не подтверждён хранилищем")
	}

	// 9. Вставка записи реестра
	record := &model.FileRecord{
		FileID:   uuid.New().String(),
		FileName: params.FileName,
		FileHash: fileHash,
		OwnerID:  params.OwnerID,
	}
	if err := s.files.Insert(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Гонка двух загрузок: запись уже вставил конкурент, объект под
			// тем же ключом общий — удалять его нельзя. Возвращаем существующую.
			existing, getErr := s.files.GetByHashOwner(ctx, fileHash, params.OwnerID)
			if getErr == nil {
				middleware.OperationsTotal.WithLabelValues("upload", "deduplicated").Inc()
				return &UploadResult{Record: existing, Deduplicated: true}, nil
			}
			return nil, newError(500, apierrors.CodeInternalError, "Внутренняя ошибка при разрешении гонки загрузки")
		}
		// Компенсирующее удаление: объект без записи реестра — мусор.
		_ = s.store.Delete(ctx, key)
		s.logger.Error("Ошибка вставки записи реестра, объект удалён",
			slog.String("file_hash", fileHash),
			slog.String("error", err.Error()),
		)
		return nil, newError(500, apierrors.CodeInternalError, "Ошибка сохранения метаданных файла")
	}

	middleware.OperationsTotal.WithLabelValues("upload", "success").Inc()
	s.logger.Info("Файл загружен",
		slog.String("file_id", record.FileID),
		slog.String("filename", record.FileName),
		slog.String("file_hash", fileHash),
		slog.String("owner_id", params.OwnerID),
		slog.Int("size", len(params.Data)),
	)

	return &UploadResult{Record: record}, nil
}
