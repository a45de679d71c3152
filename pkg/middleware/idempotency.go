package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	apperrors "k9harmony/pkg/errors"
	httputil "k9harmony/pkg/http"
	"k9harmony/pkg/logger"

	"github.com/redis/go-redis/v9"
)

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool, error)
	Set(ctx context.Context, key string, response *CachedResponse) error
	Stop() // Stop cleanup goroutines and release resources
}

type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}

type InMemoryIdempotencyStore struct {
	mu     sync.RWMutex
	store  map[string]*CachedResponse
	ttl    time.Duration
	stopCh chan struct{}
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		store:  make(map[string]*CachedResponse),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*CachedResponse, bool, error) {
	s.mu.RLock()
	response, exists := s.store[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	if time.Since(response.CreatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.store, key)
		s.mu.Unlock()
		return nil, false, nil
	}

	return response, true, nil
}

func (s *InMemoryIdempotencyStore) Set(_ context.Context, key string, response *CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.CreatedAt = time.Now()
	s.store[key] = response
	return nil
}

func (s *InMemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, response := range s.store {
				if time.Since(response.CreatedAt) > s.ttl {
					delete(s.store, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	close(s.stopCh)
}

// RedisIdempotencyStore shares cached responses between API replicas. Expiry is left to Redis.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool, error) {
	data, err := s.client.Get(ctx, redisIdempotencyKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, err
	}
	return &cached, true, nil
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) error {
	response.CreatedAt = time.Now()
	payload, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisIdempotencyKey(key), payload, s.ttl).Err()
}

// Stop is a no-op; the client belongs to config.Client.
func (s *RedisIdempotencyStore) Stop() {}

func redisIdempotencyKey(key string) string {
	return "idempotency:" + key
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the stored 2xx response for a repeated key. Only unsafe methods are considered.
// Keys are scoped by method, path, customer and a digest of the body, so a key reused by another
// caller or with another payload reaches the handler instead of replaying someone else's response.
func Idempotency(store IdempotencyStore, headerName string, extractor CustomerExtractor, log *logger.Logger) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = "Idempotency-Key"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey, err := extractIdempotencyKey(r, headerName, extractor)
			if err != nil {
				rejectUnreadableBody(w, r, err, log)
				return
			}

			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			if handleCachedResponse(w, r, store, idempotencyKey, log) {
				return
			}

			capture := captureResponse(w)
			next.ServeHTTP(capture, r)
			cacheSuccessfulResponse(r, store, idempotencyKey, capture, w, log)
		})
	}
}

// extractIdempotencyKey buffers the body to fingerprint it and hands the handler a fresh reader.
func extractIdempotencyKey(r *http.Request, headerName string, extractor CustomerExtractor) (string, error) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return "", nil
	}
	key := r.Header.Get(headerName)
	if key == "" {
		return "", nil
	}

	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			return "", err
		}
		_ = r.Body.Close()
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	digest := sha256.Sum256(body)
	customer := extractCustomerID(r, extractor)
	return r.Method + " " + r.URL.Path + " " + customer + " " + hex.EncodeToString(digest[:]) + " " + key, nil
}

func rejectUnreadableBody(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httputil.WriteRawError(w, http.StatusRequestEntityTooLarge, apperrors.CodeInvalidInput, "Request body too large")
		return
	}
	log.Warn("Failed to read request body", "request_id", requestIDFrom(r), "error", err)
	httputil.WriteRawError(w, http.StatusBadRequest, apperrors.CodeInvalidInput, "Request body could not be read")
}

func handleCachedResponse(w http.ResponseWriter, r *http.Request, store IdempotencyStore, key string, log *logger.Logger) bool {
	cached, found, err := store.Get(r.Context(), key)
	if err != nil {
		// the handler is idempotent on its own; a cache outage only costs a replay through it
		log.Warn("Idempotency store lookup failed", "request_id", requestIDFrom(r), "error", err)
		return false
	}
	if !found {
		return false
	}

	log.Debug("Replaying cached response", "request_id", requestIDFrom(r), "path", r.URL.Path)
	replayCachedResponse(w, cached)
	return true
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

func captureResponse(w http.ResponseWriter) *responseCapture {
	return &responseCapture{
		ResponseWriter: w,
		statusCode:     200,
		body:           &bytes.Buffer{},
	}
}

func cacheSuccessfulResponse(r *http.Request, store IdempotencyStore, key string, capture *responseCapture, w http.ResponseWriter, log *logger.Logger) {
	if !shouldCacheResponse(capture.statusCode) {
		return
	}

	cached := &CachedResponse{
		StatusCode: capture.statusCode,
		Headers:    w.Header().Clone(),
		Body:       capture.body.Bytes(),
	}
	if err := store.Set(context.WithoutCancel(r.Context()), key, cached); err != nil {
		log.Warn("Failed to cache idempotent response", "request_id", requestIDFrom(r), "error", err)
	}
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
