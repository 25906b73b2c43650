package store

import (
	"testing"
)

func TestRecordTransactionAppendsInOrder(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordTransaction("stone", "Alice", TxBuy, 10, 50.0); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := db.RecordTransaction("stone", "Bob", TxSell, 3, 1.26); err != nil {
		t.Fatalf("record: %v", err)
	}

	records, err := db.Transactions(TransactionFilter{})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(records))
	}

	// Newest first: Bob's row, then Alice's.
	if records[0].ID != 2 || records[1].ID != 1 {
		t.Errorf("ids not strictly increasing in call order: %d, %d", records[1].ID, records[0].ID)
	}

	first := records[1]
	if first.ItemID != "stone" || first.PlayerName != "Alice" || first.Kind != TxBuy ||
		first.Amount != 10 || first.TotalPrice != 50.0 {
		t.Errorf("row fields do not match call: %+v", first)
	}
	if first.Timestamp == "" {
		t.Error("timestamp not defaulted at insert")
	}
}

func TestRecordTransactionRejectsBadInput(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordTransaction("stone", "Alice", TxBuy, 0, 1); err == nil {
		t.Error("zero amount accepted")
	}
	if err := db.RecordTransaction("stone", "Alice", TxBuy, -5, 1); err == nil {
		t.Error("negative amount accepted")
	}
	if err := db.RecordTransaction("stone", "Alice", "steal", 1, 1); err == nil {
		t.Error("unknown transaction kind accepted")
	}

	records, err := db.Transactions(TransactionFilter{})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("rejected calls still appended rows: %d", len(records))
	}
}

func TestTransactionsFilter(t *testing.T) {
	db := openTestDB(t)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	must(db.RecordTransaction("stone", "Alice", TxBuy, 1, 5))
	must(db.RecordTransaction("apple", "Alice", TxBuy, 2, 8))
	must(db.RecordTransaction("stone", "Bob", TxSell, 4, 1.68))

	byItem, err := db.Transactions(TransactionFilter{ItemID: "stone"})
	if err != nil {
		t.Fatalf("filter by item: %v", err)
	}
	if len(byItem) != 2 {
		t.Errorf("stone rows = %d, want 2", len(byItem))
	}

	byPlayer, err := db.Transactions(TransactionFilter{PlayerName: "Alice"})
	if err != nil {
		t.Fatalf("filter by player: %v", err)
	}
	if len(byPlayer) != 2 {
		t.Errorf("Alice rows = %d, want 2", len(byPlayer))
	}

	both, err := db.Transactions(TransactionFilter{ItemID: "stone", PlayerName: "Alice"})
	if err != nil {
		t.Fatalf("filter by both: %v", err)
	}
	if len(both) != 1 || both[0].ID != 1 {
		t.Errorf("combined filter = %+v, want only row 1", both)
	}

	limited, err := db.Transactions(TransactionFilter{Limit: 1})
	if err != nil {
		t.Fatalf("limit: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != 3 {
		t.Errorf("limit 1 should return newest row, got %+v", limited)
	}
}
