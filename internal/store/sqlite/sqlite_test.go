package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mindcare/mindcare-server/internal/model"
	"github.com/mindcare/mindcare-server/internal/store"
	"github.com/mindcare/mindcare-server/internal/store/storetest"
)

func makeSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "mindcare-test.db"))
	if err != nil {
		t.Fatalf("sqlite open: %v", err)
	}
	return s
}

func TestSQLiteStore_Compliance(t *testing.T) {
	storetest.Run(t, makeSQLiteStore)
}

func TestSQLiteStore_ClosedHandleIsUnavailable(t *testing.T) {
	ctx := context.Background()

	db, err := Open(filepath.Join(t.TempDir(), "mindcare-test.db"))
	if err != nil {
		t.Fatalf("sqlite open: %v", err)
	}
	s := NewWithDB(db)
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := s.Risks().List(ctx, model.ListRisksRequest{UserID: "u1", Limit: 10}); !model.IsStoreUnavailable(err) {
		t.Fatalf("risks list on closed handle: got %v, want store-unavailable", err)
	}
	if _, err := s.Alerts().List(ctx, 10); !model.IsStoreUnavailable(err) {
		t.Fatalf("alerts list on closed handle: got %v, want store-unavailable", err)
	}
	if err := s.Alerts().UpdateStatus(ctx, "x", "resolved"); !model.IsStoreUnavailable(err) {
		t.Fatalf("update status on closed handle: got %v, want store-unavailable", err)
	}
}
