package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vss-go/server/internal/common"
)

type ctxKey string

const (
	requestIDKey ctxKey = "requestID"
	userTokenKey ctxKey = "userToken"
)

// withMiddleware wraps a handler with request-ID minting, authorization,
// and access logging. Every endpoint requires a user_token, so the
// Authorizer runs here unconditionally rather than being special-cased per
// route.
func (s *Server) withMiddleware(next func(ctx context.Context, userToken string, w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := uuid.NewString()
		w.Header().Set(common.RequestIDHeaderName, requestID)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		logger := s.logger.With("request_id", requestID, "path", r.URL.Path)

		userToken, err := s.authorizer.Verify(r.Header)
		if err != nil {
			logger.Warn(ctx, "authorization failed", "error", err.Error())
			writeError(w, err)
			return
		}
		ctx = context.WithValue(ctx, userTokenKey, userToken)
		logger = logger.With("user_token", userToken)

		next(ctx, userToken, w, r)

		logger.Info(ctx, "request completed", "duration_ms", time.Since(start).Milliseconds())
	}
}
