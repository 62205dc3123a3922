package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// setEnvVars устанавливает переменные окружения для теста и возвращает
// функцию очистки. Всегда вызывать defer cleanup().
func setEnvVars(t *testing.T, vars map[string]string) func() {
	t.Helper()

	originals := make(map[string]string)
	origSet := make(map[string]bool)
	for k := range vars {
		if v, ok := os.LookupEnv(k); ok {
			originals[k] = v
			origSet[k] = true
		}
	}

	for k, v := range vars {
		os.Setenv(k, v)
	}

	return func() {
		for k := range vars {
			if origSet[k] {
				os.Setenv(k, originals[k])
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

// clearAllDQEnvVars очищает все переменные окружения DQ_* для чистого теста.
func clearAllDQEnvVars(t *testing.T) func() {
	t.Helper()
	keys := []string{
		"DQ_PORT", "DQ_LOG_LEVEL", "DQ_LOG_FORMAT",
		"DQ_DB_HOST", "DQ_DB_PORT", "DQ_DB_NAME", "DQ_DB_USER", "DQ_DB_PASSWORD", "DQ_DB_SSLMODE",
		"DQ_S3_ENDPOINT", "DQ_S3_REGION", "DQ_S3_ACCESS_KEY", "DQ_S3_SECRET_KEY", "DQ_S3_BUCKET",
		"DQ_MAX_FILE_SIZE", "DQ_MAX_FILES_PER_OWNER",
		"DQ_CHUNK_SIZE", "DQ_CHUNK_OVERLAP", "DQ_BATCH_SIZE",
		"DQ_EMBEDDING_BASE_URL", "DQ_EMBEDDING_API_KEY", "DQ_EMBEDDING_MODEL",
		"DQ_EMBEDDING_DIM", "DQ_EMBEDDING_TIMEOUT",
		"DQ_GENERATION_BASE_URL", "DQ_GENERATION_API_KEY", "DQ_GENERATION_MODEL",
		"DQ_GENERATION_TIMEOUT", "DQ_GENERATION_MAX_RETRIES", "DQ_RETRIEVAL_TOP_K",
		"DQ_CACHE_SIZE", "DQ_CACHE_TTL",
		"DQ_JWKS_URL", "DQ_JWKS_REFRESH_INTERVAL", "DQ_JWT_LEEWAY",
		"DQ_HTTP_READ_TIMEOUT", "DQ_HTTP_WRITE_TIMEOUT", "DQ_HTTP_IDLE_TIMEOUT",
		"DQ_SHUTDOWN_TIMEOUT",
	}
	originals := make(map[string]string)
	origSet := make(map[string]bool)
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			originals[k] = v
			origSet[k] = true
		}
		os.Unsetenv(k)
	}
	return func() {
		for _, k := range keys {
			if origSet[k] {
				os.Setenv(k, originals[k])
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

// requiredEnvVars возвращает минимальный набор обязательных переменных.
func requiredEnvVars() map[string]string {
	return map[string]string{
		"DQ_DB_HOST":             "localhost",
		"DQ_DB_NAME":             "docqa",
		"DQ_DB_USER":             "docqa",
		"DQ_DB_PASSWORD":         "secret",
		"DQ_S3_ENDPOINT":         "http://minio:9000",
		"DQ_S3_ACCESS_KEY":       "minioadmin",
		"DQ_S3_SECRET_KEY":       "minioadmin",
		"DQ_EMBEDDING_BASE_URL":  "http://embeddings:8000/v1",
		"DQ_GENERATION_BASE_URL": "https://api.groq.com/openai/v1",
		"DQ_GENERATION_API_KEY":  "gsk-test",
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	cleanup := clearAllDQEnvVars(t)
	defer cleanup()

	cleanupVars := setEnvVars(t, requiredEnvVars())
	defer cleanupVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8080 {
		t.Errorf("Port: ожидалось 8080, получено %d", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel: ожидалось info, получено %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: ожидалось json, получено %q", cfg.LogFormat)
	}
	if cfg.MaxFileSize != 4*1024*1024 {
		t.Errorf("MaxFileSize: ожидалось 4 MiB, получено %d", cfg.MaxFileSize)
	}
	if cfg.MaxFilesPerOwner != 5 {
		t.Errorf("MaxFilesPerOwner: ожидалось 5, получено %d", cfg.MaxFilesPerOwner)
	}
	if cfg.ChunkSize != 1000 {
		t.Errorf("ChunkSize: ожидалось 1000, получено %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 200 {
		t.Errorf("ChunkOverlap: ожидалось 200, получено %d", cfg.ChunkOverlap)
	}
	if cfg.BatchSize != 30 {
		t.Errorf("BatchSize: ожидалось 30, получено %d", cfg.BatchSize)
	}
	if cfg.EmbeddingDim != 768 {
		t.Errorf("EmbeddingDim: ожидалось 768, получено %d", cfg.EmbeddingDim)
	}
	if cfg.EmbeddingModel != "nomic-ai/nomic-embed-text-v1" {
		t.Errorf("EmbeddingModel: получено %q", cfg.EmbeddingModel)
	}
	if cfg.GenerationModel != "deepseek-r1-distill-llama-70b" {
		t.Errorf("GenerationModel: получено %q", cfg.GenerationModel)
	}
	if cfg.GenerationTimeout != 10*time.Second {
		t.Errorf("GenerationTimeout: ожидалось 10s, получено %v", cfg.GenerationTimeout)
	}
	if cfg.GenerationMaxRetries != 3 {
		t.Errorf("GenerationMaxRetries: ожидалось 3, получено %d", cfg.GenerationMaxRetries)
	}
	if cfg.RetrievalTopK != 4 {
		t.Errorf("RetrievalTopK: ожидалось 4, получено %d", cfg.RetrievalTopK)
	}
	if cfg.JWKSUrl != "" {
		t.Errorf("JWKSUrl: ожидалось пусто (auth отключён), получено %q", cfg.JWKSUrl)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout: ожидалось 10s, получено %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	cleanup := clearAllDQEnvVars(t)
	defer cleanup()

	required := requiredEnvVars()
	for missing := range required {
		t.Run(missing, func(t *testing.T) {
			vars := make(map[string]string, len(required)-1)
			for k, v := range required {
				if k != missing {
					vars[k] = v
				}
			}
			cleanupVars := setEnvVars(t, vars)
			defer cleanupVars()

			if _, err := Load(); err == nil {
				t.Errorf("ожидалась ошибка при отсутствии %s", missing)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cleanup := clearAllDQEnvVars(t)
	defer cleanup()

	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"порт не число", "DQ_PORT", "abc"},
		{"порт вне диапазона", "DQ_PORT", "99999"},
		{"неизвестный уровень логов", "DQ_LOG_LEVEL", "verbose"},
		{"неизвестный формат логов", "DQ_LOG_FORMAT", "xml"},
		{"отрицательный размер файла", "DQ_MAX_FILE_SIZE", "-1"},
		{"нулевая квота", "DQ_MAX_FILES_PER_OWNER", "0"},
		{"перекрытие больше чанка", "DQ_CHUNK_OVERLAP", "2000"},
		{"некорректная длительность", "DQ_GENERATION_TIMEOUT", "10 seconds"},
		{"нулевой top-k", "DQ_RETRIEVAL_TOP_K", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := requiredEnvVars()
			vars[tt.key] = tt.val
			cleanupVars := setEnvVars(t, vars)
			defer cleanupVars()

			if _, err := Load(); err == nil {
				t.Errorf("ожидалась ошибка для %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.local",
		DBPort:     5433,
		DBName:     "docqa",
		DBUser:     "app",
		DBPassword: "pw",
		DBSSLMode:  "require",
	}

	want := "host=db.local port=5433 dbname=docqa user=app password=pw sslmode=require"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("DatabaseDSN:\nполучено %q\nожидалось %q", got, want)
	}
}
