// files.go — HTTP handlers файловых операций: upload, process, list, delete.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apierrors "github.com/bigkaa/docqa/internal/api/errors"
	"github.com/bigkaa/docqa/internal/config"
	"github.com/bigkaa/docqa/internal/service"
)

// FilesHandler — обработчик файловых endpoints.
type FilesHandler struct {
	cfg       *config.Config
	uploadSvc *service.UploadService
	ingestSvc *service.IngestService
	filesSvc  *service.FilesService
}

// NewFilesHandler создаёт обработчик файловых endpoints.
func NewFilesHandler(
	cfg *config.Config,
	uploadSvc *service.UploadService,
	ingestSvc *service.IngestService,
	filesSvc *service.FilesService,
) *FilesHandler {
	return &FilesHandler{
		cfg:       cfg,
		uploadSvc: uploadSvc,
		ingestSvc: ingestSvc,
		filesSvc:  filesSvc,
	}
}

// UploadFile обрабатывает POST /api/v1/files/upload.
// Multipart form: file (обязательно), user_id (при отключённом auth).
func (h *FilesHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	// Жёсткий лимит тела: размер файла + запас на заголовки multipart
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxFileSize+1<<20)

	if err := r.ParseMultipartForm(h.cfg.MaxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.FileTooLarge(w, fmt.Sprintf("Размер запроса превышает лимит %d байт", h.cfg.MaxFileSize))
			return
		}
		apierrors.ValidationError(w, fmt.Sprintf("Ошибка парсинга multipart: %s", err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "Поле 'file' обязательно")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		apierrors.ValidationError(w, "Ошибка чтения содержимого файла")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ownerID := resolveOwner(r, r.FormValue("user_id"))
	if ownerID == "" {
		apierrors.ValidationError(w, "Поле 'user_id' обязательно")
		return
	}

	result, uploadErr := h.uploadSvc.Upload(r.Context(), service.UploadParams{
		Data:        data,
		FileName:    header.Filename,
		ContentType: contentType,
		OwnerID:     ownerID,
	})
	if uploadErr != nil {
		apierrors.WriteError(w, uploadErr.StatusCode, uploadErr.Code, uploadErr.Message)
		return
	}

	status := "Berhasil mengunggah file"
	httpStatus := http.StatusCreated
	if result.Deduplicated {
		status = "File sudah pernah diunggah"
		httpStatus = http.StatusOK
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":   status,
		"fileId":   result.Record.FileID,
		"fileHash": result.Record.FileHash,
	})
}

// processRequest — тело запроса POST /api/v1/files/process.
type processRequest struct {
	FileHash string `json:"fileHash"`
	UserID   string `json:"user_id"`
}

// ProcessFile обрабатывает POST /api/v1/files/process:
// индексация загруженного файла в векторное хранилище.
func (h *FilesHandler) ProcessFile(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное JSON-тело запроса")
		return
	}

	ownerID := resolveOwner(r, req.UserID)
	if ownerID == "" {
		apierrors.ValidationError(w, "Поле 'user_id' обязательно")
		return
	}
	if req.FileHash == "" {
		apierrors.ValidationError(w, "Поле 'fileHash' обязательно")
		return
	}

	result, ingestErr := h.ingestSvc.Ingest(r.Context(), service.IngestParams{
		FileHash: req.FileHash,
		OwnerID:  ownerID,
	})
	if ingestErr != nil {
		apierrors.WriteError(w, ingestErr.StatusCode, ingestErr.Code, ingestErr.Message)
		return
	}

	status := "Berhasil memproses vektor"
	if result.AlreadyProcessed {
		status = "Vektor sudah ada"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"details": map[string]any{
			"chunksProcessed": result.ChunksProcessed,
			"fileHash":        req.FileHash,
			"userId":          ownerID,
		},
	})
}

// listRequest — тело запроса POST /api/v1/files/list.
type listRequest struct {
	UserID string `json:"user_id"`
}

// ListFiles обрабатывает POST /api/v1/files/list: файлы владельца,
// новые первыми.
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное JSON-тело запроса")
		return
	}

	ownerID := resolveOwner(r, req.UserID)
	if ownerID == "" {
		apierrors.ValidationError(w, "Поле 'user_id' обязательно")
		return
	}

	records, listErr := h.filesSvc.List(r.Context(), ownerID)
	if listErr != nil {
		apierrors.WriteError(w, listErr.StatusCode, listErr.Code, listErr.Message)
		return
	}

	items := make([]apiFileRecord, 0, len(records))
	for _, rec := range records {
		items = append(items, domainToAPIRecord(rec))
	}

	writeJSON(w, http.StatusOK, map[string]any{"file": items})
}

// deleteRequest — тело запроса DELETE /api/v1/files.
type deleteRequest struct {
	FileHash string `json:"fileHash"`
	UserID   string `json:"user_id"`
}

// DeleteFile обрабатывает DELETE /api/v1/files: каскадное удаление
// записи реестра, чанков и объекта.
func (h *FilesHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное JSON-тело запроса")
		return
	}

	ownerID := resolveOwner(r, req.UserID)
	if ownerID == "" {
		apierrors.ValidationError(w, "Поле 'user_id' обязательно")
		return
	}
	if req.FileHash == "" {
		apierrors.ValidationError(w, "Поле 'fileHash' обязательно")
		return
	}

	record, delErr := h.filesSvc.Delete(r.Context(), req.FileHash, ownerID)
	if delErr != nil {
		apierrors.WriteError(w, delErr.StatusCode, delErr.Code, delErr.Message)
		return
	}

	// Отсутствующая запись — идемпотентный успех с null
	var body any
	if record != nil {
		body = domainToAPIRecord(record)
	}
	writeJSON(w, http.StatusOK, map[string]any{"file": body})
}
