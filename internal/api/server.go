// Package api serves the bazaar over HTTP.
// GET endpoints are public (read-only shop listings and reports).
// POST endpoints are either player transactions (rate-limited) or
// admin operations behind a bearer token.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/TheWindows/bazaar/internal/catalog"
	"github.com/TheWindows/bazaar/internal/market"
	"github.com/TheWindows/bazaar/internal/shop"
	"github.com/TheWindows/bazaar/internal/store"
)

// Server serves the bazaar state over HTTP.
type Server struct {
	DB       *store.DB
	Shop     *shop.Service
	Market   *market.Engine
	Sessions *shop.Sessions

	Addr        string
	AdminKey    string // Bearer token for admin POSTs. Empty = admin disabled.
	CatalogPath string

	// Current catalog; replaced wholesale on reconcile.
	catMu sync.Mutex
	cat   *catalog.Catalog
}

// SetCatalog installs the catalog used by the categories endpoint.
func (s *Server) SetCatalog(c *catalog.Catalog) {
	s.catMu.Lock()
	defer s.catMu.Unlock()
	s.cat = c
}

func (s *Server) catalogSnapshot() *catalog.Catalog {
	s.catMu.Lock()
	defer s.catMu.Unlock()
	return s.cat
}

// Handler builds the route table. Exposed separately from Start so
// tests can drive it through httptest.
func (s *Server) Handler() http.Handler {
	txLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/prices", s.handlePrices)
	mux.HandleFunc("/api/v1/prices/", s.handlePriceDetail)
	mux.HandleFunc("/api/v1/categories", s.handleCategories)
	mux.HandleFunc("/api/v1/transactions", s.handleTransactions)

	// Player transaction endpoints (POST, rate-limited).
	mux.HandleFunc("/api/v1/quote", RateLimitMiddleware(txLimiter, s.handleQuote))
	mux.HandleFunc("/api/v1/confirm", RateLimitMiddleware(txLimiter, s.handleConfirm))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/reconcile", s.adminOnly(s.handleReconcile))
	mux.HandleFunc("/api/v1/tick", s.adminOnly(s.handleTick))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(s.Addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware allows browser frontends to read the shop listings.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminOnly requires a bearer token matching AdminKey.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no admin_key configured)", http.StatusForbidden)
			return
		}

		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
