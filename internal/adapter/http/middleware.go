package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/apikey"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/ratelimit"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/pkg/response"
)

const (
	// CorrelationIDHeader carries the request correlation ID
	CorrelationIDHeader = "X-Correlation-ID"

	// APIKeyHeader carries the caller's API key
	APIKeyHeader = "X-API-Key"
)

// correlationMiddleware ensures every request/response carries a correlation ID
func correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(CorrelationIDHeader)
		if cid == "" {
			cid = generateCorrelationID()
		}
		w.Header().Set(CorrelationIDHeader, cid)
		next.ServeHTTP(w, r)
	})
}

func generateCorrelationID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

func loggingMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.WithFields(logrus.Fields{
				"method":         r.Method,
				"path":           r.URL.Path,
				"remote":         clientIP(r),
				"duration_ms":    time.Since(start).Milliseconds(),
				"correlation_id": w.Header().Get(CorrelationIDHeader),
			}).Info("Request handled")
		})
	}
}

func recoveryMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.WithField("panic", err).Error("Panic recovered")
					response.InternalServerError(w, "Internal Server Error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+APIKeyHeader)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// APIKeyMiddleware rejects requests lacking a valid X-API-Key. The health
// endpoint is exempt.
type APIKeyMiddleware struct {
	keys    *apikey.Store
	enabled bool
}

// NewAPIKeyMiddleware creates the API key middleware. When disabled it
// passes every request through.
func NewAPIKeyMiddleware(keys *apikey.Store, enabled bool) *APIKeyMiddleware {
	return &APIKeyMiddleware{keys: keys, enabled: enabled}
}

func (m *APIKeyMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		key := r.Header.Get(APIKeyHeader)
		if !m.keys.Validate(key) {
			response.Unauthorized(w, "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitMiddleware bounds per-IP request rates
type RateLimitMiddleware struct {
	limiter ratelimit.RateLimitService
	logger  *logrus.Logger
	limit   int
	window  time.Duration
}

// NewRateLimitMiddleware creates the rate limit middleware
func NewRateLimitMiddleware(limiter ratelimit.RateLimitService, logger *logrus.Logger, limit int, window time.Duration) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, logger: logger, limit: limit, window: window}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := fmt.Sprintf("reports:ip:%s", clientIP(r))

		allowed, err := m.limiter.Allow(ctx, key, m.limit, m.window)
		if err != nil {
			// availability over strictness: let the request through
			m.logger.WithError(err).WithField("key", key).Error("Failed to check rate limit")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			m.logger.WithFields(logrus.Fields{
				"key":  key,
				"path": r.URL.Path,
			}).Warn("Rate limit exceeded")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(m.window.Seconds())))
			response.TooManyRequests(w, "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client IP from the request
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
