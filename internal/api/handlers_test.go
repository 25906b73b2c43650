package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/TheWindows/bazaar/internal/catalog"
	"github.com/TheWindows/bazaar/internal/market"
	"github.com/TheWindows/bazaar/internal/shop"
	"github.com/TheWindows/bazaar/internal/store"
)

func newTestServer(t *testing.T) (*Server, *shop.MemoryWallet) {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "bazaar.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	items := []catalog.Item{{
		ID:       "stone",
		Category: "blocks",
		Buy:      5,
		Sell:     0.42,
		MinPrice: 4,
		MaxPrice: 6,
	}}
	if err := db.Reconcile(items); err != nil {
		t.Fatalf("seed prices: %v", err)
	}

	wallet := shop.NewMemoryWallet()
	srv := &Server{
		DB:       db,
		Shop:     shop.NewService(db, wallet),
		Market:   market.New(db, market.Policy{Enabled: true, MaxFluctuation: 0.1}, nil),
		Sessions: shop.NewSessions(0),
		AdminKey: "sesame",
	}
	srv.SetCatalog(&catalog.Catalog{
		Categories: []catalog.Category{{ID: "blocks", DisplayName: "Blocks", Icon: "stone", ItemCount: 1}},
		Items:      items,
	})
	return srv, wallet
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPricesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/prices", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Items map[string]store.PriceEntry `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Items["stone"].BuyPrice != 5 {
		t.Errorf("unexpected listing: %+v", resp.Items)
	}
}

func TestPriceDetailNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/prices/bedrock", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestQuoteConfirmBuyFlow(t *testing.T) {
	srv, wallet := newTestServer(t)
	handler := srv.Handler()
	wallet.Credit("Alice", 100)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/quote", map[string]any{
		"player": "Alice", "item_id": "stone", "type": "buy", "quantity": 10,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("quote status = %d: %s", rec.Code, rec.Body.String())
	}

	var sess shop.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if sess.Total != 50 {
		t.Errorf("quoted total = %v, want 50", sess.Total)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/confirm", map[string]any{
		"session_id": sess.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d: %s", rec.Code, rec.Body.String())
	}

	if balance, _ := wallet.Balance("Alice"); balance != 50 {
		t.Errorf("balance after confirm = %v, want 50", balance)
	}

	// Replaying the session must not double-charge.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/confirm", map[string]any{
		"session_id": sess.ID,
	})
	if rec.Code != http.StatusGone {
		t.Errorf("replayed confirm status = %d, want 410", rec.Code)
	}
}

func TestConfirmInsufficientFunds(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/quote", map[string]any{
		"player": "Poor", "item_id": "stone", "type": "buy", "quantity": 1,
	})
	var sess shop.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode quote: %v", err)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/confirm", map[string]any{
		"session_id": sess.ID,
	})
	if rec.Code != http.StatusPaymentRequired {
		t.Errorf("status = %d, want 402", rec.Code)
	}
}

func TestQuoteRejectsBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	cases := []map[string]any{
		{"item_id": "stone", "type": "buy", "quantity": 1},              // no player
		{"player": "Alice", "item_id": "stone", "type": "steal", "quantity": 1}, // bad type
		{"player": "Alice", "item_id": "stone", "type": "buy", "quantity": 0},   // bad quantity
	}
	for i, body := range cases {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/quote", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, rec.Code)
		}
	}
}

func TestAdminTickRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/tick", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated tick status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tick", nil)
	req.Header.Set("Authorization", "Bearer sesame")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("authenticated tick status = %d: %s", rec2.Code, rec2.Body.String())
	}

	// The forced tick must have kept stone inside its bounds.
	entry, err := srv.DB.Price("stone")
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if entry.BuyPrice < 4 || entry.BuyPrice > 6 {
		t.Errorf("buy price %v outside [4, 6] after tick", entry.BuyPrice)
	}
}

func TestTransactionsReport(t *testing.T) {
	srv, wallet := newTestServer(t)
	handler := srv.Handler()
	wallet.Credit("Alice", 100)

	if _, err := srv.Shop.Buy("Alice", "stone", 2); err != nil {
		t.Fatalf("buy: %v", err)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/transactions?player=Alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Transactions []store.TransactionRecord `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Transactions) != 1 || resp.Transactions[0].ItemID != "stone" {
		t.Errorf("unexpected report: %+v", resp.Transactions)
	}
}
