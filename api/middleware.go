package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"insights/internal/metrics"
)

// RequestIDHeader porte l'identifiant de requête en entrée et en sortie
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID retourne l'identifiant de requête stocké dans le contexte
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func requestIDField(ctx context.Context) zap.Field {
	return zap.String("request_id", RequestID(ctx))
}

// withRequestID réutilise l'en-tête X-Request-ID ou en génère un
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// statusRecorder mémorise le statut écrit par le handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withObservability journalise chaque requête et alimente les métriques HTTP.
// La route est le motif du ServeMux, renseigné après le routage.
func withObservability(logger *zap.Logger, reg *metrics.Registry, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		reg.Requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		reg.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())

		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", duration),
			requestIDField(r.Context()),
		)
	})
}
