// Пакет config — загрузка и валидация конфигурации DocQA Module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации DocQA Module.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- PostgreSQL (метаданные файлов + векторы чанков) ---
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// --- Object storage (S3-совместимый, MinIO) ---

	// Endpoint S3 API (например, http://minio:9000)
	S3Endpoint string
	// Регион (для MinIO — любой непустой)
	S3Region string
	// Access key
	S3AccessKey string
	// Secret key
	S3SecretKey string
	// Бакет для исходных файлов пользователей
	S3Bucket string

	// --- Политика загрузки ---

	// Максимальный размер файла в байтах
	MaxFileSize int64
	// Максимальное количество файлов на владельца
	MaxFilesPerOwner int

	// --- Разбиение на чанки ---

	// Целевой размер чанка в символах
	ChunkSize int
	// Перекрытие соседних чанков в символах
	ChunkOverlap int
	// Размер батча записи векторов
	BatchSize int

	// --- Эмбеддинги ---

	// Base URL OpenAI-совместимого embeddings API
	EmbeddingBaseURL string
	// API-ключ (опционально, для локальных моделей не нужен)
	EmbeddingAPIKey string
	// Имя модели эмбеддингов
	EmbeddingModel string
	// Размерность вектора (должна совпадать с колонкой vector(N) в БД)
	EmbeddingDim int
	// Таймаут одного запроса к embeddings API
	EmbeddingTimeout time.Duration

	// --- Генерация ответов ---

	// Base URL OpenAI-совместимого chat API
	GenerationBaseURL string
	// API-ключ генеративной модели
	GenerationAPIKey string
	// Имя генеративной модели
	GenerationModel string
	// Таймаут одной попытки генерации
	GenerationTimeout time.Duration
	// Количество повторов при ошибке генерации
	GenerationMaxRetries int
	// Количество чанков, передаваемых в контекст генерации
	RetrievalTopK int

	// --- Кэш эмбеддингов запросов ---

	// Максимальное количество записей LRU-кэша
	CacheSize int
	// TTL записи кэша
	CacheTTL time.Duration

	// --- Аутентификация (опционально) ---

	// URL JWKS endpoint; пустое значение — auth отключён,
	// владелец берётся из поля user_id запроса
	JWKSUrl string
	// Интервал обновления JWKS-ключей
	JWKSRefreshInterval time.Duration
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration

	// --- HTTP ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// DQ_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("DQ_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("DQ_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("DQ_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// DQ_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("DQ_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("DQ_LOG_LEVEL: %w", err)
	}

	// DQ_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("DQ_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("DQ_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	// DQ_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("DQ_DB_HOST")
	if err != nil {
		return nil, err
	}

	// DQ_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("DQ_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("DQ_DB_PORT: %w", err)
	}

	// DQ_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("DQ_DB_NAME")
	if err != nil {
		return nil, err
	}

	// DQ_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("DQ_DB_USER")
	if err != nil {
		return nil, err
	}

	// DQ_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("DQ_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// DQ_DB_SSLMODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("DQ_DB_SSLMODE", "disable")

	// --- Object storage ---

	// DQ_S3_ENDPOINT — обязательный
	cfg.S3Endpoint, err = getEnvRequired("DQ_S3_ENDPOINT")
	if err != nil {
		return nil, err
	}

	// DQ_S3_REGION — регион (по умолчанию us-east-1)
	cfg.S3Region = getEnvDefault("DQ_S3_REGION", "us-east-1")

	// DQ_S3_ACCESS_KEY — обязательный
	cfg.S3AccessKey, err = getEnvRequired("DQ_S3_ACCESS_KEY")
	if err != nil {
		return nil, err
	}

	// DQ_S3_SECRET_KEY — обязательный
	cfg.S3SecretKey, err = getEnvRequired("DQ_S3_SECRET_KEY")
	if err != nil {
		return nil, err
	}

	// DQ_S3_BUCKET — бакет документов (по умолчанию document-user)
	cfg.S3Bucket = getEnvDefault("DQ_S3_BUCKET", "document-user")

	// --- Политика загрузки ---

	// DQ_MAX_FILE_SIZE — максимальный размер файла (по умолчанию 4 MiB)
	cfg.MaxFileSize, err = getEnvInt64("DQ_MAX_FILE_SIZE", 4*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("DQ_MAX_FILE_SIZE: %w", err)
	}
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("DQ_MAX_FILE_SIZE: значение должно быть положительным")
	}

	// DQ_MAX_FILES_PER_OWNER — лимит файлов на владельца (по умолчанию 5)
	cfg.MaxFilesPerOwner, err = getEnvInt("DQ_MAX_FILES_PER_OWNER", 5)
	if err != nil {
		return nil, fmt.Errorf("DQ_MAX_FILES_PER_OWNER: %w", err)
	}
	if cfg.MaxFilesPerOwner < 1 {
		return nil, fmt.Errorf("DQ_MAX_FILES_PER_OWNER: значение должно быть >= 1")
	}

	// --- Чанки ---

	// DQ_CHUNK_SIZE — размер чанка в символах (по умолчанию 1000)
	cfg.ChunkSize, err = getEnvInt("DQ_CHUNK_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("DQ_CHUNK_SIZE: %w", err)
	}

	// DQ_CHUNK_OVERLAP — перекрытие чанков (по умолчанию 200)
	cfg.ChunkOverlap, err = getEnvInt("DQ_CHUNK_OVERLAP", 200)
	if err != nil {
		return nil, fmt.Errorf("DQ_CHUNK_OVERLAP: %w", err)
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("DQ_CHUNK_OVERLAP: перекрытие %d должно быть меньше размера чанка %d",
			cfg.ChunkOverlap, cfg.ChunkSize)
	}

	// DQ_BATCH_SIZE — размер батча записи векторов (по умолчанию 30)
	cfg.BatchSize, err = getEnvInt("DQ_BATCH_SIZE", 30)
	if err != nil {
		return nil, fmt.Errorf("DQ_BATCH_SIZE: %w", err)
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("DQ_BATCH_SIZE: значение должно быть >= 1")
	}

	// --- Эмбеддинги ---

	// DQ_EMBEDDING_BASE_URL — обязательный
	cfg.EmbeddingBaseURL, err = getEnvRequired("DQ_EMBEDDING_BASE_URL")
	if err != nil {
		return nil, err
	}

	// DQ_EMBEDDING_API_KEY — опционально
	cfg.EmbeddingAPIKey = getEnvDefault("DQ_EMBEDDING_API_KEY", "")

	// DQ_EMBEDDING_MODEL — модель эмбеддингов
	cfg.EmbeddingModel = getEnvDefault("DQ_EMBEDDING_MODEL", "nomic-ai/nomic-embed-text-v1")

	// DQ_EMBEDDING_DIM — размерность вектора (по умолчанию 768)
	cfg.EmbeddingDim, err = getEnvInt("DQ_EMBEDDING_DIM", 768)
	if err != nil {
		return nil, fmt.Errorf("DQ_EMBEDDING_DIM: %w", err)
	}
	if cfg.EmbeddingDim < 1 {
		return nil, fmt.Errorf("DQ_EMBEDDING_DIM: значение должно быть >= 1")
	}

	// DQ_EMBEDDING_TIMEOUT — таймаут запроса (по умолчанию 30s)
	cfg.EmbeddingTimeout, err = getEnvDuration("DQ_EMBEDDING_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_EMBEDDING_TIMEOUT: %w", err)
	}

	// --- Генерация ---

	// DQ_GENERATION_BASE_URL — обязательный (например, https://api.groq.com/openai/v1)
	cfg.GenerationBaseURL, err = getEnvRequired("DQ_GENERATION_BASE_URL")
	if err != nil {
		return nil, err
	}

	// DQ_GENERATION_API_KEY — обязательный
	cfg.GenerationAPIKey, err = getEnvRequired("DQ_GENERATION_API_KEY")
	if err != nil {
		return nil, err
	}

	// DQ_GENERATION_MODEL — генеративная модель
	cfg.GenerationModel = getEnvDefault("DQ_GENERATION_MODEL", "deepseek-r1-distill-llama-70b")

	// DQ_GENERATION_TIMEOUT — таймаут одной попытки (по умолчанию 10s)
	cfg.GenerationTimeout, err = getEnvDuration("DQ_GENERATION_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_GENERATION_TIMEOUT: %w", err)
	}

	// DQ_GENERATION_MAX_RETRIES — количество повторов (по умолчанию 3)
	cfg.GenerationMaxRetries, err = getEnvInt("DQ_GENERATION_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("DQ_GENERATION_MAX_RETRIES: %w", err)
	}
	if cfg.GenerationMaxRetries < 0 {
		return nil, fmt.Errorf("DQ_GENERATION_MAX_RETRIES: значение должно быть >= 0")
	}

	// DQ_RETRIEVAL_TOP_K — количество чанков контекста (по умолчанию 4)
	cfg.RetrievalTopK, err = getEnvInt("DQ_RETRIEVAL_TOP_K", 4)
	if err != nil {
		return nil, fmt.Errorf("DQ_RETRIEVAL_TOP_K: %w", err)
	}
	if cfg.RetrievalTopK < 1 {
		return nil, fmt.Errorf("DQ_RETRIEVAL_TOP_K: значение должно быть >= 1")
	}

	// --- Кэш ---

	// DQ_CACHE_SIZE — размер LRU-кэша эмбеддингов запросов (по умолчанию 512)
	cfg.CacheSize, err = getEnvInt("DQ_CACHE_SIZE", 512)
	if err != nil {
		return nil, fmt.Errorf("DQ_CACHE_SIZE: %w", err)
	}

	// DQ_CACHE_TTL — TTL записи кэша (по умолчанию 5m)
	cfg.CacheTTL, err = getEnvDuration("DQ_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("DQ_CACHE_TTL: %w", err)
	}

	// --- Аутентификация ---

	// DQ_JWKS_URL — опционально; пусто = auth отключён
	cfg.JWKSUrl = getEnvDefault("DQ_JWKS_URL", "")

	// DQ_JWKS_REFRESH_INTERVAL — интервал обновления ключей (по умолчанию 1h)
	cfg.JWKSRefreshInterval, err = getEnvDuration("DQ_JWKS_REFRESH_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("DQ_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// DQ_JWT_LEEWAY — допуск времени JWT (по умолчанию 30s)
	cfg.JWTLeeway, err = getEnvDuration("DQ_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_JWT_LEEWAY: %w", err)
	}

	// --- HTTP ---

	// DQ_HTTP_READ_TIMEOUT — (по умолчанию 30s)
	cfg.HTTPReadTimeout, err = getEnvDuration("DQ_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_HTTP_READ_TIMEOUT: %w", err)
	}

	// DQ_HTTP_WRITE_TIMEOUT — (по умолчанию 120s: генерация ответа может быть долгой)
	cfg.HTTPWriteTimeout, err = getEnvDuration("DQ_HTTP_WRITE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_HTTP_WRITE_TIMEOUT: %w", err)
	}

	// DQ_HTTP_IDLE_TIMEOUT — (по умолчанию 120s)
	cfg.HTTPIdleTimeout, err = getEnvDuration("DQ_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// DQ_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 10s)
	cfg.ShutdownTimeout, err = getEnvDuration("DQ_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DQ_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает DSN подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает длительность из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
