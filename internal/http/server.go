// Package http exposes the budget over a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"log/slog"

	"hearth/internal/budget"
	"hearth/internal/cache"
	"hearth/internal/core"
	applog "hearth/internal/log"
	"hearth/internal/storage"
)

// SyncPublisher hands a sync request to the background worker. Nil when no
// broker is configured; the inline sync endpoint still works without one.
type SyncPublisher interface {
	PublishSyncRequest(ctx context.Context, reason string) error
}

// TokenClaimer exchanges a one-time setup token for an access URL.
type TokenClaimer interface {
	ClaimSetupToken(ctx context.Context, token string) (string, error)
}

type Server struct {
	http.Server

	store     *storage.Store
	budget    *budget.Service
	syncer    *budget.Syncer
	claimer   TokenClaimer
	publisher SyncPublisher

	rateLimiter  *rateLimiter
	summaryCache *cache.LRUCache[core.MonthSummary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and returns a ready-to-run server. publisher may
// be nil when the process runs without a message broker.
func NewServer(addr string, store *storage.Store, svc *budget.Service, syncer *budget.Syncer, claimer TokenClaimer, publisher SyncPublisher) *Server {
	mux := http.NewServeMux()

	httpLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: applog.Middleware(httpLogger)(mux),
		},
		store:        store,
		budget:       svc,
		syncer:       syncer,
		claimer:      claimer,
		publisher:    publisher,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[core.MonthSummary](24, time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/summary", s.wrap(s.handleMonthSummary))

	mux.HandleFunc("GET /api/connections", s.wrap(s.handleListConnections))
	mux.HandleFunc("POST /api/connections", s.wrap(s.handleCreateConnection))
	mux.HandleFunc("PATCH /api/connections/{id}", s.wrap(s.handleUpdateConnection))
	mux.HandleFunc("DELETE /api/connections/{id}", s.wrap(s.handleDeleteConnection))
	mux.HandleFunc("GET /api/connections/{id}/transactions", s.wrap(s.handleConnectionTransactions))

	mux.HandleFunc("GET /api/transactions", s.wrap(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.wrap(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.wrap(s.handleGetTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.wrap(s.handleDeleteTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}/category", s.wrap(s.handleAssignCategory))
	mux.HandleFunc("PUT /api/transactions/{id}/splits", s.wrap(s.handleReplaceSplits))
	mux.HandleFunc("DELETE /api/transactions/{id}/splits", s.wrap(s.handleUnsplit))

	mux.HandleFunc("GET /api/bills", s.wrap(s.handleListBills))
	mux.HandleFunc("POST /api/bills", s.wrap(s.handleCreateBill))
	mux.HandleFunc("PATCH /api/bills/{id}", s.wrap(s.handleUpdateBill))
	mux.HandleFunc("DELETE /api/bills/{id}", s.wrap(s.handleDeleteBill))
	mux.HandleFunc("POST /api/bills/rollforward", s.wrap(s.handleRollForward))

	mux.HandleFunc("GET /api/funds", s.wrap(s.handleListFunds))
	mux.HandleFunc("POST /api/funds", s.wrap(s.handleCreateFund))
	mux.HandleFunc("DELETE /api/funds/{id}", s.wrap(s.handleDeleteFund))
	mux.HandleFunc("PUT /api/funds/{id}/settings", s.wrap(s.handleUpdateFundSettings))

	mux.HandleFunc("GET /api/seal/proposal", s.wrap(s.handleSealProposal))
	mux.HandleFunc("POST /api/seal", s.wrap(s.handleSealMonth))

	mux.HandleFunc("GET /api/settings/savings-target", s.wrap(s.handleGetSavingsTarget))
	mux.HandleFunc("PUT /api/settings/savings-target", s.wrap(s.handleSetSavingsTarget))

	mux.HandleFunc("POST /api/simplefin/claim", s.wrap(s.handleSimpleFinClaim))
	mux.HandleFunc("POST /api/simplefin/sync", s.wrap(s.handleSimpleFinSync))
	mux.HandleFunc("POST /api/simplefin/sync/enqueue", s.wrap(s.handleSimpleFinEnqueue))
	mux.HandleFunc("DELETE /api/simplefin/link", s.wrap(s.handleSimpleFinDisconnect))

	return s
}

// Shutdown stops the background cleanup goroutines along with the HTTP
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// wrap applies security headers, rate limiting on mutations, and request
// logging to a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// invalidateSummaries drops every cached month summary. Called after any
// write that can change derived figures; months are few so a full flush
// is cheaper than tracking which months a write touches.
func (s *Server) invalidateSummaries() {
	s.summaryCache.Purge()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}
