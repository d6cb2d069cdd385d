package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mindcare/mindcare-server/internal/model"
	"github.com/mindcare/mindcare-server/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// EnsureSchema must tolerate concurrent and repeated calls.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.EnsureSchema(ctx); err != nil {
				t.Errorf("EnsureSchema race: %v", err)
			}
		}()
	}
	wg.Wait()
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema repeat: %v", err)
	}

	userID := "u-" + uuid.New().String()
	email := userID + "@example.test"

	// Users
	u := &model.User{UserID: userID, Email: email, Region: "bd"}
	if _, err := s.Users().Create(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if got, err := s.Users().Get(ctx, userID); err != nil || got == nil || got.UserID != userID {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Get(ctx, "missing-"+userID); !model.IsNotFoundError(err) {
		t.Fatalf("GetUser missing: want NotFoundError, got %v", err)
	}

	// Risks: ordering is by detected_at descending
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		r := &model.RiskRecord{
			UserID:     userID,
			RiskLevel:  "moderate",
			RiskScore:  float64(i + 1),
			RiskType:   "self-harm-language",
			DetectedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if _, err := s.Risks().Create(ctx, r); err != nil {
			t.Fatalf("CreateRisk %d: %v", i, err)
		}
	}
	lst, err := s.Risks().List(ctx, model.ListRisksRequest{UserID: userID, Limit: 10})
	if err != nil || len(lst) != 3 {
		t.Fatalf("ListRisks: n=%d err=%v", len(lst), err)
	}
	for i := 1; i < len(lst); i++ {
		if lst[i].DetectedAt.After(lst[i-1].DetectedAt) {
			t.Fatalf("ListRisks order: %v after %v", lst[i].DetectedAt, lst[i-1].DetectedAt)
		}
	}
	if capped, err := s.Risks().List(ctx, model.ListRisksRequest{UserID: userID, Limit: 2}); err != nil || len(capped) != 2 {
		t.Fatalf("ListRisks limit: n=%d err=%v", len(capped), err)
	}

	// Alerts
	a1, err := s.Alerts().Create(ctx, &model.EmergencyAlert{
		UserID:    userID,
		RiskLevel: "high",
		IsHeavy:   true,
		Excerpt:   "first",
		FullText:  "first full text",
		Status:    model.AlertStatusNew,
		Meta:      map[string]interface{}{"moodLevel": float64(2)},
		CreatedAt: base,
	})
	if err != nil {
		t.Fatalf("CreateAlert a1: %v", err)
	}
	if a1.AlertID == "" {
		t.Fatalf("CreateAlert: empty alert id")
	}
	a2, err := s.Alerts().Create(ctx, &model.EmergencyAlert{
		UserID:    userID,
		RiskLevel: "low",
		Excerpt:   "second",
		Status:    model.AlertStatusNew,
		CreatedAt: base.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateAlert a2: %v", err)
	}

	alerts, err := s.Alerts().List(ctx, 200)
	if err != nil || len(alerts) != 2 {
		t.Fatalf("ListAlerts: n=%d err=%v", len(alerts), err)
	}
	if alerts[0].AlertID != a2.AlertID {
		t.Fatalf("ListAlerts order: newest first, got %s", alerts[0].AlertID)
	}

	got, err := s.Alerts().Get(ctx, a1.AlertID)
	if err != nil || got.Excerpt != "first" {
		t.Fatalf("GetAlert: got=%v err=%v", got, err)
	}
	if got.Meta == nil || got.Meta["moodLevel"] != float64(2) {
		t.Fatalf("GetAlert meta roundtrip: %v", got.Meta)
	}

	if err := s.Alerts().UpdateStatus(ctx, a1.AlertID, model.AlertStatusResolved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got, err := s.Alerts().Get(ctx, a1.AlertID); err != nil || got.Status != model.AlertStatusResolved {
		t.Fatalf("UpdateStatus readback: got=%v err=%v", got, err)
	}

	if err := s.Alerts().UpdateStatus(ctx, uuid.New().String(), model.AlertStatusResolved); !model.IsNotFoundError(err) {
		t.Fatalf("UpdateStatus missing: want NotFoundError, got %v", err)
	}
}
