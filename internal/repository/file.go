// file.go — репозиторий таблицы uploaded_files.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/docqa/internal/domain/model"
)

// fileColumns — список столбцов таблицы uploaded_files для SELECT-запросов.
// DRY: одно место для всех SELECT'ов.
const fileColumns = `id, file_name, file_hash, owner_id, created_at`

// FileRepository — интерфейс доступа к реестру загруженных файлов.
type FileRepository interface {
	// Insert добавляет запись. Нарушение уникальности (file_hash, owner_id)
	// возвращается как ErrDuplicate.
	Insert(ctx context.Context, rec *model.FileRecord) error
	// GetByHashOwner возвращает запись по паре (file_hash, owner_id) или ErrNotFound.
	GetByHashOwner(ctx context.Context, fileHash, ownerID string) (*model.FileRecord, error)
	// CountByOwner возвращает количество файлов владельца (для квоты).
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	// ListByOwner возвращает файлы владельца, новые первыми.
	ListByOwner(ctx context.Context, ownerID string) ([]*model.FileRecord, error)
	// DeleteByHashOwner удаляет запись и возвращает её, либо ErrNotFound.
	DeleteByHashOwner(ctx context.Context, fileHash, ownerID string) (*model.FileRecord, error)
}

// fileRepo — реализация FileRepository через pgx.
type fileRepo struct {
	db DBTX
}

// NewFileRepository создаёт репозиторий файлов.
func NewFileRepository(db DBTX) FileRepository {
	return &fileRepo{db: db}
}

// Insert добавляет запись реестра. created_at выставляет БД.
func (r *fileRepo) Insert(ctx context.Context, rec *model.FileRecord) error {
	query := `
		INSERT INTO uploaded_files (id, file_name, file_hash, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		rec.FileID, rec.FileName, rec.FileHash, rec.OwnerID,
	).Scan(&rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("ошибка вставки записи файла: %w", err)
	}
	return nil
}

// GetByHashOwner возвращает запись по паре (file_hash, owner_id) или ErrNotFound.
func (r *fileRepo) GetByHashOwner(ctx context.Context, fileHash, ownerID string) (*model.FileRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM uploaded_files WHERE file_hash = $1 AND owner_id = $2`, fileColumns)

	rec := &model.FileRecord{}
	err := r.db.QueryRow(ctx, query, fileHash, ownerID).Scan(
		&rec.FileID, &rec.FileName, &rec.FileHash, &rec.OwnerID, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи файла: %w", err)
	}
	return rec, nil
}

// CountByOwner возвращает количество файлов владельца.
func (r *fileRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM uploaded_files WHERE owner_id = $1`, ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта файлов владельца: %w", err)
	}
	return count, nil
}

// ListByOwner возвращает файлы владельца, новые первыми.
func (r *fileRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.FileRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM uploaded_files WHERE owner_id = $1 ORDER BY created_at DESC`, fileColumns)

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ошибка списка файлов владельца: %w", err)
	}
	defer rows.Close()

	var result []*model.FileRecord
	for rows.Next() {
		rec := &model.FileRecord{}
		if err := rows.Scan(
			&rec.FileID, &rec.FileName, &rec.FileHash, &rec.OwnerID, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи файла: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// DeleteByHashOwner удаляет запись и возвращает удалённую строку.
func (r *fileRepo) DeleteByHashOwner(ctx context.Context, fileHash, ownerID string) (*model.FileRecord, error) {
	query := fmt.Sprintf(`
		DELETE FROM uploaded_files
		WHERE file_hash = $1 AND owner_id = $2
		RETURNING %s`, fileColumns)

	rec := &model.FileRecord{}
	err := r.db.QueryRow(ctx, query, fileHash, ownerID).Scan(
		&rec.FileID, &rec.FileName, &rec.FileHash, &rec.OwnerID, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка удаления записи файла: %w", err)
	}
	return rec, nil
}
