package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/relato-crm/relato/internal/app/auth"
	apperrors "github.com/relato-crm/relato/internal/errors"
	"github.com/relato-crm/relato/pkg/logger"
)

type ctxKey int

const callerKey ctxKey = iota

// callerID returns the authenticated user's id, or zero for unauthenticated
// paths.
func callerID(ctx context.Context) int64 {
	id, _ := ctx.Value(callerKey).(int64)
	return id
}

// authMiddleware rejects requests without a valid bearer token. Paths in the
// skip set (registration, login, health, metrics) pass through untouched.
type authMiddleware struct {
	tokens *auth.Manager
	skip   map[string]struct{}
	log    *logger.Logger
}

func newAuthMiddleware(tokens *auth.Manager, log *logger.Logger) *authMiddleware {
	return &authMiddleware{
		tokens: tokens,
		skip: map[string]struct{}{
			"/api/auth/register": {},
			"/api/auth/login":    {},
			"/healthz":           {},
			"/metrics":           {},
		},
		log: log,
	}
}

func (m *authMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.skip[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeError(w, http.StatusUnauthorized, apperrors.Unauthorized("missing bearer token"))
			return
		}

		userID, err := m.tokens.VerifyToken(token)
		if err != nil {
			m.log.WithError(err).WithField("path", r.URL.Path).Debug("token rejected")
			writeError(w, http.StatusUnauthorized, apperrors.Unauthorized("invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger tags each request with a trace id and logs method, path,
// status and latency on completion.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get("X-Trace-ID")
			if traceID == "" {
				traceID = uuid.NewString()
			}
			w.Header().Set("X-Trace-ID", traceID)

			rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"trace_id": traceID,
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Info("request handled")
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// corsMiddleware answers preflight requests and sets the allow headers for
// configured origins. An empty list or a "*" entry allows any origin.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	allowAll := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
			continue
		}
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := allowed[origin]; ok || allowAll {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Trace-ID")
					w.Header().Set("Access-Control-Max-Age", "600")
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
