// qna.go — HTTP handler вопрос-ответ по документам.
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/bigkaa/docqa/internal/api/errors"
	"github.com/bigkaa/docqa/internal/service"
)

// QnAHandler — обработчик endpoint вопрос-ответ.
type QnAHandler struct {
	querySvc *service.QueryService
}

// NewQnAHandler создаёт обработчик QnA.
func NewQnAHandler(querySvc *service.QueryService) *QnAHandler {
	return &QnAHandler{querySvc: querySvc}
}

// qnaRequest — тело запроса POST /api/v1/qna.
type qnaRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
}

// Answer обрабатывает POST /api/v1/qna: векторный поиск по документам
// владельца и генерация ответа. Ответ содержит answer и context —
// чанки, на которых ответ основан.
func (h *QnAHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req qnaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное JSON-тело запроса")
		return
	}

	ownerID := resolveOwner(r, req.UserID)
	if ownerID == "" {
		apierrors.ValidationError(w, "Поле 'user_id' обязательно")
		return
	}
	if req.Question == "" {
		apierrors.ValidationError(w, "Поле 'question' обязательно")
		return
	}

	result, qErr := h.querySvc.Answer(r.Context(), service.QueryParams{
		OwnerID:  ownerID,
		Question: req.Question,
	})
	if qErr != nil {
		apierrors.WriteError(w, qErr.StatusCode, qErr.Code, qErr.Message)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":  result.Answer,
		"context": domainToAPIContext(result.Context),
	})
}
