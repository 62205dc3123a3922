// Пакет generation — вызов генеративной модели для синтеза ответа.
// Клиент OpenAI-совместимого chat completions API (Groq и аналоги)
// с фиксированным бюджетом повторов и таймаутом на попытку.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrExhausted — бюджет повторов генерации исчерпан.
var ErrExhausted = errors.New("генерация не удалась: попытки исчерпаны")

// Generator синтезирует текст по промпту.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client — HTTP-клиент chat completions API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	maxRetries int
	client     *http.Client
}

// Config — параметры клиента генерации.
type Config struct {
	// BaseURL — адрес API без завершающего /chat/completions
	BaseURL string
	// APIKey — Bearer-токен
	APIKey string
	// Model — имя генеративной модели
	Model string
	// Timeout — таймаут одной попытки
	Timeout time.Duration
	// MaxRetries — количество повторов после первой попытки
	MaxRetries int
}

// NewClient создаёт клиент генеративной модели.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
		// Таймаут попытки задаётся контекстом, а не клиентом
		client: &http.Client{},
	}
}

// chatRequest — тело запроса /chat/completions.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse — тело ответа /chat/completions.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate вызывает модель с ограниченным бюджетом повторов.
// Повторяются сетевые ошибки, таймауты попытки, 429 и 5xx; ошибки 4xx
// терминальны и возвращаются как есть. ErrExhausted возвращается только
// после исчерпания бюджета повторов.
// Служебная разметка рассуждений (<think>...</think>) вырезается из ответа.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var answer string
	var terminal bool

	backoff := retry.WithMaxRetries(uint64(c.maxRetries), retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		text, retryable, err := c.complete(attemptCtx, prompt)
		if err != nil {
			if !retryable {
				terminal = true
				return err
			}
			return retry.RetryableError(err)
		}
		answer = text
		return nil
	})
	if err != nil {
		if terminal || ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %s", ErrExhausted, err.Error())
	}

	return StripThink(answer), nil
}

// complete выполняет одну попытку запроса к модели.
// Второе значение сообщает, имеет ли смысл повторять попытку.
func (c *Client) complete(ctx context.Context, prompt string) (string, bool, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("сериализация запроса генерации: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("создание запроса генерации: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		// Сетевые ошибки и таймаут попытки — повторяемые
		return "", true, fmt.Errorf("запрос генерации: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", true, fmt.Errorf("generation API вернул %s: %s", resp.Status, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", false, fmt.Errorf("generation API вернул %s: %s", resp.Status, string(body))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", true, fmt.Errorf("разбор ответа генерации: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", true, errors.New("generation API вернул пустой список choices")
	}
	return out.Choices[0].Message.Content, false, nil
}

// thinkRe — закрытые сегменты рассуждений reasoning-моделей.
var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThink вырезает сегменты <think>...</think> из ответа модели.
// Незакрытый <think> обрезается до конца текста.
func StripThink(text string) string {
	text = thinkRe.ReplaceAllString(text, "")
	if idx := strings.Index(text, "<think>"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
