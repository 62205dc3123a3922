// document.go — репозиторий таблицы documents (чанки + векторы).
// Привязка чанка к файлу и владельцу хранится в jsonb-колонке metadata
// (ключи file_hash / user_id / id), фильтры идут по jsonb-полям.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/bigkaa/docqa/internal/domain/model"
)

// DocumentRepository — интерфейс доступа к чанкам и векторному поиску.
type DocumentRepository interface {
	// ExistsForFile — проба идемпотентности: есть ли хотя бы один чанк
	// для пары (fileHash, ownerID).
	ExistsForFile(ctx context.Context, fileHash, ownerID string) (bool, error)
	// InsertBatch пишет батч чанков с векторами одной pgx-батч-операцией.
	InsertBatch(ctx context.Context, chunks []model.Chunk, vectors [][]float32) error
	// SimilaritySearch возвращает k ближайших чанков владельца,
	// упорядоченных по убыванию косинусной близости.
	SimilaritySearch(ctx context.Context, vector []float32, ownerID string, k int) ([]model.ScoredChunk, error)
	// DeleteByFile удаляет все чанки пары (fileHash, ownerID),
	// возвращает количество удалённых.
	DeleteByFile(ctx context.Context, fileHash, ownerID string) (int64, error)
}

// documentRepo — реализация DocumentRepository через pgx.
type documentRepo struct {
	db DBTX
}

// NewDocumentRepository создаёт репозиторий чанков.
func NewDocumentRepository(db DBTX) DocumentRepository {
	return &documentRepo{db: db}
}

// ExistsForFile — существование любого чанка пары (fileHash, ownerID).
// Проверка по существованию, не по полноте набора: частично записанная
// индексация выглядит как завершённая.
func (r *documentRepo) ExistsForFile(ctx context.Context, fileHash, ownerID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM documents
			WHERE metadata->>'file_hash' = $1 AND metadata->>'user_id' = $2
		)`, fileHash, ownerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка пробы существования чанков: %w", err)
	}
	return exists, nil
}

// InsertBatch пишет батч чанков одной pgx-батч-операцией (один round-trip).
func (r *documentRepo) InsertBatch(ctx context.Context, chunks []model.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("количество чанков %d не совпадает с количеством векторов %d",
			len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, chunk := range chunks {
		meta, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("сериализация метаданных чанка %d: %w", chunk.Metadata.SequenceID, err)
		}
		batch.Queue(
			`INSERT INTO documents (content, metadata, embedding) VALUES ($1, $2, $3)`,
			chunk.Content, meta, pgvector.NewVector(vectors[i]),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("ошибка записи чанка батча (позиция %d): %w", i, err)
		}
	}
	return nil
}

// SimilaritySearch — поиск ближайших чанков по косинусному расстоянию.
// Фильтр по владельцу обязателен: это единственный механизм изоляции
// данных пользователей при поиске.
func (r *documentRepo) SimilaritySearch(ctx context.Context, vector []float32, ownerID string, k int) ([]model.ScoredChunk, error) {
	rows, err := r.db.Query(ctx, `
		SELECT content, metadata, 1 - (embedding <=> $1) AS similarity
		FROM documents
		WHERE metadata->>'user_id' = $2
		ORDER BY embedding <=> $1
		LIMIT $3`,
		pgvector.NewVector(vector), ownerID, k,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка векторного поиска: %w", err)
	}
	defer rows.Close()

	var result []model.ScoredChunk
	for rows.Next() {
		var sc model.ScoredChunk
		var meta []byte
		if err := rows.Scan(&sc.Content, &meta, &sc.Similarity); err != nil {
			return nil, fmt.Errorf("ошибка сканирования результата поиска: %w", err)
		}
		if err := json.Unmarshal(meta, &sc.Metadata); err != nil {
			return nil, fmt.Errorf("разбор метаданных чанка: %w", err)
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов поиска: %w", err)
	}
	return result, nil
}

// DeleteByFile удаляет все чанки пары (fileHash, ownerID).
func (r *documentRepo) DeleteByFile(ctx context.Context, fileHash, ownerID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM documents
		WHERE metadata->>'file_hash' = $1 AND metadata->>'user_id' = $2`,
		fileHash, ownerID,
	)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления чанков файла: %w", err)
	}
	return tag.RowsAffected(), nil
}
