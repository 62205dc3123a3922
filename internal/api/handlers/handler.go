// Пакет handlers — HTTP-обработчики DocQA Module.
// handler.go — общие хелперы: JSON-ответы, определение владельца,
// API-представления доменных моделей.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bigkaa/docqa/internal/api/middleware"
	"github.com/bigkaa/docqa/internal/domain/model"
)

// writeJSON записывает JSON-ответ с указанным статус-кодом.
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// resolveOwner определяет владельца запроса: sub из JWT, если auth
// включён, иначе user_id из тела запроса. При включённом auth поле
// user_id игнорируется — подменить владельца нельзя.
func resolveOwner(r *http.Request, bodyUserID string) string {
	if subject := middleware.SubjectFromContext(r.Context()); subject != "" {
		return subject
	}
	return bodyUserID
}

// apiFileRecord — API-представление записи реестра файлов.
// Имена полей повторяют колонки таблицы uploaded_files.
type apiFileRecord struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	FileHash  string    `json:"file_hash"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// domainToAPIRecord преобразует FileRecord в API-представление.
func domainToAPIRecord(rec *model.FileRecord) apiFileRecord {
	return apiFileRecord{
		ID:        rec.FileID,
		FileName:  rec.FileName,
		FileHash:  rec.FileHash,
		UserID:    rec.OwnerID,
		CreatedAt: rec.CreatedAt,
	}
}

// apiContextDoc — API-представление чанка контекста в ответе QnA.
type apiContextDoc struct {
	PageContent string              `json:"pageContent"`
	Metadata    model.ChunkMetadata `json:"metadata"`
	Similarity  float64             `json:"similarity"`
}

// domainToAPIContext преобразует результаты поиска в API-представление.
func domainToAPIContext(chunks []model.ScoredChunk) []apiContextDoc {
	docs := make([]apiContextDoc, len(chunks))
	for i, c := range chunks {
		docs[i] = apiContextDoc{
			PageContent: c.Content,
			Metadata:    c.Metadata,
			Similarity:  c.Similarity,
		}
	}
	return docs
}
