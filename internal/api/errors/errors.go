// Пакет errors — конструкторы стандартных ошибок в формате DocQA.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors //nolint:revive // конфликт имени со stdlib допустим, пакет используется с алиасом

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок API.
const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeUnsupportedType  = "UNSUPPORTED_TYPE"
	CodeQuotaExceeded    = "QUOTA_EXCEEDED"
	CodeConflict         = "CONFLICT"
	CodeNotFound         = "NOT_FOUND"
	CodeNoDocuments      = "NO_DOCUMENTS"
	CodeWriteFailed      = "WRITE_FAILED"
	CodeGenerationFailed = "GENERATION_FAILED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeInternalError    = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате DocQA.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
// Внутренние детали (stack trace, идентификаторы) наружу не выдаются.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// FileTooLarge — 413 файл превышает лимит.
func FileTooLarge(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusRequestEntityTooLarge, CodeFileTooLarge, message)
}

// UnsupportedType — 415 формат файла не поддерживается.
func UnsupportedType(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnsupportedMediaType, CodeUnsupportedType, message)
}

// QuotaExceeded — 400 достигнут лимит загрузок владельца.
func QuotaExceeded(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeQuotaExceeded, message)
}

// Conflict — 409 гонка записи в object storage.
func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeConflict, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// NoDocuments — 404 у владельца нет загруженных документов.
func NoDocuments(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNoDocuments, message)
}

// WriteFailed — 500 ошибка пакетной записи векторов.
func WriteFailed(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeWriteFailed, message)
}

// GenerationFailed — 502 модель генерации исчерпала попытки.
func GenerationFailed(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeGenerationFailed, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden — 403 недостаточно прав.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
