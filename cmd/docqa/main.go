// Точка входа DocQA Module — сервис вопрос-ответ по документам.
// Загружает конфигурацию, подключается к PostgreSQL (pgvector),
// применяет миграции, создаёт S3-клиент, клиенты эмбеддингов и генерации,
// собирает сервисный слой и HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/bigkaa/docqa/internal/api/handlers"
	"github.com/bigkaa/docqa/internal/api/middleware"
	"github.com/bigkaa/docqa/internal/chunker"
	"github.com/bigkaa/docqa/internal/config"
	"github.com/bigkaa/docqa/internal/database"
	"github.com/bigkaa/docqa/internal/embedding"
	"github.com/bigkaa/docqa/internal/generation"
	"github.com/bigkaa/docqa/internal/objstore"
	"github.com/bigkaa/docqa/internal/repository"
	"github.com/bigkaa/docqa/internal/server"
	"github.com/bigkaa/docqa/internal/service"
)

func main() {
	// .env для локальной разработки; в кластере переменные задаёт deployment
	_ = godotenv.Load()

	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("DocQA Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool + pgvector)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Object storage (S3-совместимый)
	store, err := objstore.NewS3Store(ctx, objstore.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
	})
	if err != nil {
		logger.Error("Ошибка создания S3-клиента", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("S3-клиент создан",
		slog.String("endpoint", cfg.S3Endpoint),
		slog.String("bucket", cfg.S3Bucket),
	)

	// 6. Клиент эмбеддингов — один экземпляр на процесс: индексация и
	// поиск обязаны использовать одну и ту же модель
	embedder := embedding.Shared(func() embedding.Embedder {
		return embedding.NewClient(embedding.Config{
			BaseURL:   cfg.EmbeddingBaseURL,
			APIKey:    cfg.EmbeddingAPIKey,
			Model:     cfg.EmbeddingModel,
			Dimension: cfg.EmbeddingDim,
			Timeout:   cfg.EmbeddingTimeout,
		})
	})

	// 7. Клиент генерации
	generator := generation.NewClient(generation.Config{
		BaseURL:    cfg.GenerationBaseURL,
		APIKey:     cfg.GenerationAPIKey,
		Model:      cfg.GenerationModel,
		Timeout:    cfg.GenerationTimeout,
		MaxRetries: cfg.GenerationMaxRetries,
	})

	// 8. Repositories
	fileRepo := repository.NewFileRepository(pool)
	docRepo := repository.NewDocumentRepository(pool)

	// 9. Services
	splitter := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	cache := service.NewCacheService(cfg.CacheSize, cfg.CacheTTL)

	uploadSvc := service.NewUploadService(cfg, fileRepo, store, logger)
	ingestSvc := service.NewIngestService(cfg.BatchSize, docRepo, store, embedder, splitter, logger)
	querySvc := service.NewQueryService(cfg.RetrievalTopK, fileRepo, docRepo, embedder, generator, cache, logger)
	filesSvc := service.NewFilesService(fileRepo, docRepo, store, logger)

	// 10. Handlers
	filesHandler := handlers.NewFilesHandler(cfg, uploadSvc, ingestSvc, filesSvc)
	qnaHandler := handlers.NewQnAHandler(querySvc)
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool))

	// 11. Middleware: metrics → logging → JWT (опционально)
	middlewares := []func(http.Handler) http.Handler{
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	}
	if cfg.JWKSUrl != "" {
		jwtAuth, err := middleware.NewJWTAuth(middleware.JWTAuthConfig{
			JWKSURL:         cfg.JWKSUrl,
			RefreshInterval: cfg.JWKSRefreshInterval,
			JWTLeeway:       cfg.JWTLeeway,
		}, logger)
		if err != nil {
			logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
			os.Exit(1)
		}
		middlewares = append(middlewares,
			jwtAuth.Middleware("/health/live", "/health/ready", "/metrics"))
		logger.Info("JWT-аутентификация включена", slog.String("jwks_url", cfg.JWKSUrl))
	} else {
		logger.Warn("JWT-аутентификация отключена: DQ_JWKS_URL не задан, владелец берётся из user_id запроса")
	}

	// 12. HTTP-сервер (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, filesHandler, qnaHandler, healthHandler, middlewares...)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("DocQA Module остановлен")
}
