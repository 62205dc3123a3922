package service

import (
	"context"

	"github.com/bigkaa/docqa/internal/domain/model"
	"github.com/bigkaa/docqa/internal/repository"
)

// --- Моки зависимостей сервисного слоя ---

// mockFileRepo — мок FileRepository для unit-тестов.
type mockFileRepo struct {
	insertFn            func(ctx context.Context, rec *model.FileRecord) error
	getByHashOwnerFn    func(ctx context.Context, fileHash, ownerID string) (*model.FileRecord, error)
	countByOwnerFn      func(ctx context.Context, ownerID string) (int, error)
	listByOwnerFn       func(ctx context.Context, ownerID string) ([]*model.FileRecord, error)
	deleteByHashOwnerFn func(ctx context.Context, fileHash, ownerID string) (*model.FileRecord, error)
}

func (m *mockFileRepo) Insert(ctx context.Context, rec *model.FileRecord) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, rec)
	}
	return nil
}

func (m *mockFileRepo) GetByHashOwner(ctx context.Context, fileHash, ownerID string) (*model.FileRecord, error) {
	if m.getByHashOwnerFn != nil {
		return m.getByHashOwnerFn(ctx, fileHash, ownerID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFileRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if m.countByOwnerFn != nil {
		return m.countByOwnerFn(ctx, ownerID)
	}
	return 0, nil
}

func (m *mockFileRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.FileRecord, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockFileRepo) DeleteByHashOwner(ctx context.Context, fileHash, ownerID string) (*model.FileRecord, error) {
	if m.deleteByHashOwnerFn != nil {
		return m.deleteByHashOwnerFn(ctx, fileHash, ownerID)
	}
	return nil, repository.ErrNotFound
}

// mockDocRepo — мок DocumentRepository для unit-тестов.
type mockDocRepo struct {
	existsForFileFn    func(ctx context.Context, fileHash, ownerID string) (bool, error)
	insertBatchFn      func(ctx context.Context, chunks []model.Chunk, vectors [][]float32) error
	similaritySearchFn func(ctx context.Context, vector []float32, ownerID string, k int) ([]model.ScoredChunk, error)
	deleteByFileFn     func(ctx context.Context, fileHash, ownerID string) (int64, error)
}

func (m *mockDocRepo) ExistsForFile(ctx context.Context, fileHash, ownerID string) (bool, error) {
	if m.existsForFileFn != nil {
		return m.existsForFileFn(ctx, fileHash, ownerID)
	}
	return false, nil
}

func (m *mockDocRepo) InsertBatch(ctx context.Context, chunks []model.Chunk, vectors [][]float32) error {
	if m.insertBatchFn != nil {
		return m.insertBatchFn(ctx, chunks, vectors)
	}
	return nil
}

func (m *mockDocRepo) SimilaritySearch(ctx context.Context, vector []float32, ownerID string, k int) ([]model.ScoredChunk, error) {
	if m.similaritySearchFn != nil {
		return m.similaritySearchFn(ctx, vector, ownerID, k)
	}
	return nil, nil
}

func (m *mockDocRepo) DeleteByFile(ctx context.Context, fileHash, ownerID string) (int64, error) {
	if m.deleteByFileFn != nil {
		return m.deleteByFileFn(ctx, fileHash, ownerID)
	}
	return 0, nil
}

// mockStore — мок objstore.Store для unit-тестов.
type mockStore struct {
	putFn    func(ctx context.Context, key string, data []byte, contentType string) error
	getFn    func(ctx context.Context, key string) ([]byte, string, error)
	deleteFn func(ctx context.Context, keys ...string) error
	existsFn func(ctx context.Context, key string) (bool, error)
}

func (m *mockStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if m.putFn != nil {
		return m.putFn(ctx, key, data, contentType)
	}
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, "", nil
}

func (m *mockStore) Delete(ctx context.Context, keys ...string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, keys...)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return true, nil
}

// mockEmbedder — мок Embedder: вектор фиксированной размерности.
type mockEmbedder struct {
	embedFn      func(ctx context.Context, text string) ([]float32, error)
	embedBatchFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.embedBatchFn != nil {
		return m.embedBatchFn(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

func (m *mockEmbedder) Dimension() int { return 3 }

// mockGenerator — мок Generator с фиксированным ответом.
type mockGenerator struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "ответ", nil
}
