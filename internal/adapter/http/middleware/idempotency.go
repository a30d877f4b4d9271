package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/logger"
	"github.com/iho/walletledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks responses served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	defaultIdempotencyTTL = 24 * time.Hour
	maxIdempotencyKey     = 255
)

// cachedResponse is what the store keeps for a finished request.
type cachedResponse struct {
	Body   []byte `json:"body"`
	Status int    `json:"status"`
}

// IdempotencyMiddleware handles request idempotency using Redis.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with idempotency checking.
// Responses below 500 are replayed for the key's lifetime; server errors release
// the key so the client can retry.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get(IdempotencyKeyHeader)
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		if len(header) > maxIdempotencyKey {
			writeError(w, http.StatusBadRequest, "idempotency key too long")
			return
		}

		ctx := r.Context()
		key := scopedKey(r, header)

		exists, stored, err := m.store.CheckAndSet(ctx, key, nil, m.ttl)
		if err != nil {
			logger.FromContext(ctx).Error().Err(err).Msg("idempotency check failed")
			writeError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if exists {
			var cached cachedResponse
			if json.Unmarshal(stored, &cached) != nil || cached.Status == 0 {
				writeError(w, http.StatusConflict, "request with this idempotency key is still processing")
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(IdempotencyReplayHeader, "true")
			w.WriteHeader(cached.Status)
			w.Write(cached.Body)
			return
		}

		// Capture response
		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// the request context may already be cancelled
		storeCtx := context.WithoutCancel(ctx)

		if recorder.statusCode >= http.StatusInternalServerError {
			if err := m.store.Release(storeCtx, key); err != nil {
				logger.FromContext(ctx).Warn().Err(err).Msg("failed to release idempotency key")
			}
			return
		}

		data, err := json.Marshal(cachedResponse{Status: recorder.statusCode, Body: recorder.body.Bytes()})
		if err == nil {
			err = m.store.Update(storeCtx, key, data, m.ttl)
		}
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("failed to store idempotent response")
		}
	})
}

// scopedKey binds a client key to the caller and route so keys cannot collide
// across users or endpoints.
func scopedKey(r *http.Request, key string) string {
	caller := ""
	if user, ok := domain.UserFromContext(r.Context()); ok {
		caller = user.ID
	}

	sum := sha256.Sum256([]byte(caller + "\x00" + r.Method + "\x00" + r.URL.Path + "\x00" + key))
	return hex.EncodeToString(sum[:])
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
