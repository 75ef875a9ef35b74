package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type requestClientKey struct{}

// requestClient is filled in by AuthMiddleware so the completion log can name the caller
type requestClient struct {
	id string
}

func setRequestClient(ctx context.Context, id string) {
	if rc, ok := ctx.Value(requestClientKey{}).(*requestClient); ok {
		rc.id = id
	}
}

// LoggingMiddleware logs HTTP requests and responses
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Get request ID from context (set by chi middleware.RequestID)
			requestID := middleware.GetReqID(r.Context())

			client := &requestClient{}
			r = r.WithContext(context.WithValue(r.Context(), requestClientKey{}, client))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			logger.Info("Request started",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
			)

			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			if client.id != "" {
				fields = append(fields, zap.String("client_id", client.id))
			}

			logger.Info("Request completed", fields...)
		})
	}
}
