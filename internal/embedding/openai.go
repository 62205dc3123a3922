// openai.go — клиент OpenAI-совместимого embeddings API.
// Подходит для hosted-моделей и локальных серверов (TEI, Ollama, vLLM),
// отдающих ответ в формате {"data": [{"embedding": [...]}]}.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client — HTTP-клиент embeddings API.
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
}

// Config — параметры клиента эмбеддингов.
type Config struct {
	// BaseURL — адрес API без завершающего /embeddings
	BaseURL string
	// APIKey — Bearer-токен (опционально)
	APIKey string
	// Model — имя модели
	Model string
	// Dimension — ожидаемая размерность векторов
	Dimension int
	// Timeout — таймаут одного HTTP-запроса
	Timeout time.Duration
}

// NewClient создаёт клиент embeddings API.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		client:    &http.Client{Timeout: timeout},
	}
}

// Dimension возвращает размерность векторов.
func (c *Client) Dimension() int { return c.dimension }

// Embed возвращает вектор для одного текста.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// embedRequest — тело запроса /embeddings.
type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// embedResponse — тело ответа /embeddings (OpenAI-совместимый формат).
type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// EmbedBatch возвращает векторы для батча текстов одним HTTP-запросом.
// Порядок векторов соответствует порядку текстов.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(embedRequest{Input: texts, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса эмбеддингов: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("создание запроса эмбеддингов: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос эмбеддингов: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embeddings API вернул %s: %s", resp.Status, string(body))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("разбор ответа эмбеддингов: %w", err)
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings API вернул %d векторов, ожидалось %d",
			len(out.Data), len(texts))
	}

	// Ответ может приходить в произвольном порядке — раскладываем по index
	vectors := make([][]float32, len(texts))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embeddings API вернул некорректный index %d", d.Index)
		}
		if c.dimension > 0 && len(d.Embedding) != c.dimension {
			return nil, fmt.Errorf("размерность вектора %d не совпадает с ожидаемой %d",
				len(d.Embedding), c.dimension)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("embeddings API не вернул вектор для текста %d", i)
		}
	}
	return vectors, nil
}
