package service

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	apierrors "github.com/bigkaa/docqa/internal/api/errors"
	"github.com/bigkaa/docqa/internal/chunker"
	"github.com/bigkaa/docqa/internal/domain/model"
	"github.com/bigkaa/docqa/internal/extractor"
	"github.com/bigkaa/docqa/internal/objstore"
)

// newIngestService — сервис индексации с батчем 30 и чанками 1000/200.
func newIngestService(docs *mockDocRepo, store *mockStore, emb *mockEmbedder) *IngestService {
	return NewIngestService(30, docs, store, emb, chunker.New(1000, 200), slog.Default())
}

// TestIngestService_Success проверяет полный пайплайн индексации
// текстового файла.
func TestIngestService_Success(t *testing.T) {
	var gotChunks []model.Chunk
	docs := &mockDocRepo{
		insertBatchFn: func(_ context.Context, chunks []model.Chunk, vectors [][]float32) error {
			gotChunks = append(gotChunks, chunks...)
			if len(chunks) != len(vectors) {
				t.Errorf("чанков %d, векторов %d", len(chunks), len(vectors))
			}
			return nil
		},
	}
	store := &mockStore{
		getFn: func(_ context.Context, _ string) ([]byte, string, error) {
			return []byte("Первый абзац документа.\n\nВторой абзац документа."), extractor.MimePlain, nil
		},
	}

	svc := newIngestService(docs, store, &mockEmbedder{})

	result, ierr := svc.Ingest(context.Background(), IngestParams{FileHash: "hash-1", OwnerID: "user-1"})
	if ierr != nil {
		t.Fatalf("Ingest ошибка: %v", ierr)
	}
	if result.AlreadyProcessed {
		t.Error("AlreadyProcessed = true для первой индексации")
	}
	if result.ChunksProcessed != len(gotChunks) {
		t.Errorf("ChunksProcessed = %d, записано %d", result.ChunksProcessed, len(gotChunks))
	}
	if len(gotChunks) == 0 {
		t.Fatal("чанки не записаны")
	}

	// Метаданные: сквозная нумерация с 1, привязка к файлу и владельцу
	for i, c := range gotChunks {
		if c.Metadata.SequenceID != i+1 {
			t.Errorf("чанк %d: SequenceID = %d, ожидался %d", i, c.Metadata.SequenceID, i+1)
		}
		if c.Metadata.FileHash != "hash-1" || c.Metadata.OwnerID != "user-1" {
			t.Errorf("чанк %d: метаданные %+v", i, c.Metadata)
		}
	}
}

// TestIngestService_Idempotent проверяет no-op при повторной индексации.
func TestIngestService_Idempotent(t *testing.T) {
	getCalled := false
	docs := &mockDocRepo{
		existsForFileFn: func(_ context.Context, _, _ string) (bool, error) {
			return true, nil
		},
	}
	store := &mockStore{
		getFn: func(_ context.Context, _ string) ([]byte, string, error) {
			getCalled = true
			return nil, "", nil
		},
	}

	svc := newIngestService(docs, store, &mockEmbedder{})

	result, ierr := svc.Ingest(context.Background(), IngestParams{FileHash: "hash-1", OwnerID: "user-1"})
	if ierr != nil {
		t.Fatalf("Ingest ошибка: %v", ierr)
	}
	if !result.AlreadyProcessed {
		t.Error("AlreadyProcessed = false, ожидался true")
	}
	if result.ChunksProcessed != 0 {
		t.Errorf("ChunksProcessed = %d, ожидался 0", result.ChunksProcessed)
	}
	if getCalled {
		t.Error("объект прочитан при повторной индексации, ожидался no-op")
	}
}

// TestIngestService_ObjectNotFound проверяет 404 при отсутствии объекта.
func TestIngestService_ObjectNotFound(t *testing.T) {
	store := &mockStore{
		getFn: func(_ context.Context, _ string) ([]byte, string, error) {
			return nil, "", objstore.ErrNotFound
		},
	}
	svc := newIngestService(&mockDocRepo{}, store, &mockEmbedder{})

	_, ierr := svc.Ingest(context.Background(), IngestParams{FileHash: "missing", OwnerID: "user-1"})
	if ierr == nil || ierr.StatusCode != 404 || ierr.Code != apierrors.CodeNotFound {
		t.Fatalf("ожидалось 404/NOT_FOUND, получено %v", ierr)
	}
}

// TestIngestService_UnsupportedContentType проверяет 415 для типов
// без экстрактора.
func TestIngestService_UnsupportedContentType(t *testing.T) {
	store := &mockStore{
		getFn: func(_ context.Context, _ string) ([]byte, string, error) {
			return []byte("binary"), "application/vnd.ms-excel", nil
		},
	}
	svc := newIngestService(&mockDocRepo{}, store, &mockEmbedder{})

	_, ierr := svc.Ingest(context.Background(), IngestParams{FileHash: "hash-1", OwnerID: "user-1"})
	if ierr == nil || ierr.StatusCode != 415 || ierr.Code != apierrors.CodeUnsupportedType {
		t.Fatalf("ожидалось 415/UNSUPPORTED_TYPE, получено %v", ierr)
	}
}

// TestIngestService_Batching проверяет последовательные батчи по 30
// и сквозную нумерацию через границы батчей.
func TestIngestService_Batching(t *testing.T) {
	var batchSizes []int
	var lastSeq int
	docs := &mockDocRepo{
		insertBatchFn: func(_ context.Context, chunks []model.Chunk, _ [][]float32) error {
			batchSizes = append(batchSizes, len(chunks))
			for _, c := range chunks {
				if c.Metadata.SequenceID != lastSeq+1 {
					t.Errorf("нарушение сквозной нумерации: %d после %d", c.Metadata.SequenceID, lastSeq)
				}
				lastSeq = c.Metadata.SequenceID
			}
			return nil
		},
	}

	// Текст без сепараторов: 70 жёстких чанков размера 10 (перекрытие 2)
	// 70 чанков → батчи 30, 30, 10
	text := strings.Repeat("a", 10+69*8)
	store := &mockStore{
		getFn: func(_ context.Context, _ string) ([]byte, string, error) {
			return []byte(text), extractor.MimePlain, nil
		},
	}

	svc := NewIngestService(30, docs, store, &mockEmbedder{}, chunker.New(10, 2), slog.Default())

	result, ierr := svc.Ingest(context.Background(), IngestParams{FileHash: "hash-1", OwnerID: "user-1"})
	if ierr != nil {
		t.Fatalf("Ingest ошибка: %v", ierr)
	}
	if result.ChunksProcessed != 70 {
		t.Errorf("ChunksProcessed = %d, ожидалось 70", result.ChunksProcessed)
	}
	want := []int{30, 30, 10}
	if len(batchSizes) != len(want) {
		t.Fatalf("батчей %d (%v), ожидалось %v", len(batchSizes), batchSizes, want)
	}
	for i := range want {
		if batchSizes[i] != want[i] {
			t.Errorf("батч %d: размер %d, ожидался %d", i, batchSizes[i], want[i])
		}
	}
}

// TestIngestService_WriteFailure проверяет ошибку WRITE_FAILED при
// сбое записи батча.
func TestIngestService_WriteFailure(t *testing.T) {
	docs := &mockDocRepo{
		insertBatchFn: func(_ context.Context, _ []model.Chunk, _ [][]float32) error {
			return context.DeadlineExceeded
		},
	}
	store := &mockStore{
		getFn: func(_ context.Context, _ string) ([]byte, string, error) {
			return []byte("содержимое документа"), extractor.MimePlain, nil
		},
	}
	svc := newIngestService(docs, store, &mockEmbedder{})

	_, ierr := svc.Ingest(context.Background(), IngestParams{FileHash: "hash-1", OwnerID: "user-1"})
	if ierr == nil || ierr.Code != apierrors.CodeWriteFailed {
		t.Fatalf("ожидался WRITE_FAILED, получено %v", ierr)
	}
}

// TestIngestService_ContentTypeParams проверяет, что параметры MIME-типа
// (charset) не мешают выбору экстрактора.
func TestIngestService_ContentTypeParams(t *testing.T) {
	store := &mockStore{
		getFn: func(_ context.Context, _ string) ([]byte, string, error) {
			return []byte("текст"), "text/plain; charset=utf-8", nil
		},
	}
	svc := newIngestService(&mockDocRepo{}, store, &mockEmbedder{})

	result, ierr := svc.Ingest(context.Background(), IngestParams{FileHash: "hash-1", OwnerID: "user-1"})
	if ierr != nil {
		t.Fatalf("Ingest ошибка: %v", ierr)
	}
	if result.ChunksProcessed == 0 {
		t.Error("ChunksProcessed = 0, ожидалась индексация")
	}
}
