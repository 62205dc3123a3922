// logging.go — access-лог HTTP-запросов через slog.
// Записи привязываются к эндпоинтам сервиса (см. normalizePath) и к
// владельцу из JWT, когда аутентификация включена.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// ownerRef — носитель владельца запроса. Access-лог кладёт его в
// контекст до цепочки обработки, auth middleware заполняет после
// проверки токена: иначе subject, разрешённый глубже по цепочке,
// не виден снаружи.
type ownerRef struct {
	owner string
}

const contextKeyOwnerRef contextKey = "owner_ref"

// loggingResponseWriter перехватывает статус-код и размер ответа.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (lw *loggingResponseWriter) WriteHeader(code int) {
	lw.statusCode = code
	lw.ResponseWriter.WriteHeader(code)
}

func (lw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lw.ResponseWriter.Write(b)
	lw.written += int64(n)
	return n, err
}

// Unwrap позволяет http.ResponseController добраться до оригинального ResponseWriter.
func (lw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lw.ResponseWriter
}

// RequestLogger возвращает middleware access-лога. Уровень записи
// зависит от статус-кода: INFO (1xx-3xx), WARN (4xx), ERROR (5xx).
// Помимо метода и пути пишется endpoint — путь, приведённый к
// известному набору эндпоинтов сервиса, — и owner из JWT, если
// запрос прошёл аутентификацию.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "http_server"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			ref := &ownerRef{}
			r = r.WithContext(context.WithValue(r.Context(), contextKeyOwnerRef, ref))

			next.ServeHTTP(wrapped, r)

			level := slog.LevelInfo
			if wrapped.statusCode >= 500 {
				level = slog.LevelError
			} else if wrapped.statusCode >= 400 {
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("endpoint", normalizePath(r.URL.Path)),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if ref.owner != "" {
				attrs = append(attrs, slog.String("owner_id", ref.owner))
			}

			logger.LogAttrs(r.Context(), level, "HTTP запрос", attrs...)
		})
	}
}
