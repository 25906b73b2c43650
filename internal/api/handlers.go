package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/TheWindows/bazaar/internal/catalog"
	"github.com/TheWindows/bazaar/internal/shop"
	"github.com/TheWindows/bazaar/internal/store"
)

// handlePrices returns the full price table, keyed by item id.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	prices, err := s.DB.Prices()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read prices")
		return
	}
	writeJSON(w, map[string]any{"items": prices})
}

// handlePriceDetail returns one item's price row: GET /api/v1/prices/{item}.
func (s *Server) handlePriceDetail(w http.ResponseWriter, r *http.Request) {
	itemID := strings.TrimPrefix(r.URL.Path, "/api/v1/prices/")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	entry, err := s.DB.Price(itemID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown item: "+itemID)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read price")
		return
	}
	writeJSON(w, entry)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cat := s.catalogSnapshot()
	if cat == nil {
		writeJSON(w, map[string]any{"categories": []catalog.Category{}})
		return
	}
	writeJSON(w, map[string]any{"categories": cat.Categories})
}

// handleTransactions reports ledger rows, newest first.
// Filters: ?item= &player= &since= &until= &limit=.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit: "+v)
			return
		}
		limit = n
	}

	records, err := s.DB.Transactions(store.TransactionFilter{
		ItemID:     q.Get("item"),
		PlayerName: q.Get("player"),
		Since:      q.Get("since"),
		Until:      q.Get("until"),
		Limit:      limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read transactions")
		return
	}
	writeJSON(w, map[string]any{"transactions": records})
}

type quoteRequest struct {
	Player   string `json:"player"`
	ItemID   string `json:"item_id"`
	Type     string `json:"type"`
	Quantity int64  `json:"quantity"`
}

// handleQuote prices a pending transaction and opens a session for it.
// The quoted total is informational; the price in effect at confirm
// time is what gets charged.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Player == "" || req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "player and item_id are required")
		return
	}
	kind := store.TxKind(req.Type)
	if kind != store.TxBuy && kind != store.TxSell {
		writeError(w, http.StatusBadRequest, "type must be 'buy' or 'sell'")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	entry, err := s.DB.Price(req.ItemID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown item: "+req.ItemID)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read price")
		return
	}

	unit := entry.BuyPrice
	if kind == store.TxSell {
		unit = entry.SellPrice
	}

	sess := s.Sessions.Create(req.Player, req.ItemID, kind, req.Quantity, unit, shop.Total(unit, req.Quantity))
	writeJSON(w, sess)
}

type confirmRequest struct {
	SessionID string `json:"session_id"`
}

// handleConfirm executes the quoted transaction. A session confirms at
// most once and only before it expires.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, ok := s.Sessions.Take(req.SessionID)
	if !ok {
		writeError(w, http.StatusGone, "session unknown or expired")
		return
	}

	var (
		receipt *shop.Receipt
		err     error
	)
	if sess.Kind == store.TxBuy {
		receipt, err = s.Shop.Buy(sess.Player, sess.ItemID, sess.Quantity)
	} else {
		receipt, err = s.Shop.Sell(sess.Player, sess.ItemID, sess.Quantity)
	}

	switch {
	case errors.Is(err, shop.ErrUnknownItem):
		writeError(w, http.StatusNotFound, "unknown item: "+sess.ItemID)
	case errors.Is(err, shop.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "insufficient funds")
	case errors.Is(err, shop.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "quantity must be positive")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "transaction failed")
	default:
		writeJSON(w, receipt)
	}
}

// handleReconcile reloads the catalog file and re-seeds the price table.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	cat, err := catalog.Load(s.CatalogPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reload catalog: "+err.Error())
		return
	}

	if err := s.DB.Reconcile(cat.Items); err != nil {
		writeError(w, http.StatusInternalServerError, "reconcile: "+err.Error())
		return
	}
	s.SetCatalog(cat)

	writeJSON(w, map[string]any{
		"reconciled": len(cat.Items),
		"skipped":    cat.Skipped,
	})
}

// handleTick forces one fluctuation tick outside the usual cadence.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if err := s.Market.Tick(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
