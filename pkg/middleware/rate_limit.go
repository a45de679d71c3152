package middleware

import (
	"net/http"
	"sync"
	"time"

	apperrors "k9harmony/pkg/errors"
	httputil "k9harmony/pkg/http"
	"k9harmony/pkg/logger"
)

const CustomerIDHeader = "X-Customer-ID"

type CustomerExtractor func(r *http.Request) string

// CustomerRateLimiter is a sliding-window limiter keyed by customer id.
type CustomerRateLimiter struct {
	mu                sync.Mutex
	requests          map[string][]time.Time
	limit             int
	window            time.Duration
	customerExtractor CustomerExtractor
	log               *logger.Logger
	stopCh            chan struct{}
}

func NewCustomerRateLimiter(limit int, window time.Duration, extractor CustomerExtractor, log *logger.Logger) *CustomerRateLimiter {
	limiter := &CustomerRateLimiter{
		requests:          make(map[string][]time.Time),
		limit:             limit,
		window:            window,
		customerExtractor: extractor,
		log:               log,
		stopCh:            make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *CustomerRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for customer, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, customer)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *CustomerRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *CustomerRateLimiter) Allow(customer string) bool {
	if customer == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	timestamps := rl.requests[customer]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[customer] = valid
		return false
	}

	rl.requests[customer] = append(valid, now)
	return true
}

func CustomerRateLimit(limiter *CustomerRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			customer := extractCustomerID(r, limiter.customerExtractor)

			if customer == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(customer) {
				rejectRateLimited(w, limiter.log, r, customer)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractCustomerID(r *http.Request, extractor CustomerExtractor) string {
	if extractor == nil {
		return DefaultCustomerExtractor(r)
	}
	return extractor(r)
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, customer string) {
	log.Warn("Rate limit exceeded",
		"request_id", requestIDFrom(r),
		"customer_id", customer,
		"path", r.URL.Path,
	)

	w.Header().Set("Retry-After", "60")
	httputil.WriteRawError(w, http.StatusTooManyRequests, apperrors.CodeRateLimited, "Rate limit exceeded")
}

func DefaultCustomerExtractor(r *http.Request) string {
	return r.Header.Get(CustomerIDHeader)
}
