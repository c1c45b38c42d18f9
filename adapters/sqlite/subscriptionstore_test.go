package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/artpar/homekeep/adapters/sqlite"
	"github.com/artpar/homekeep/domain/billing"
	"github.com/artpar/homekeep/ports"
	"github.com/shopspring/decimal"
)

func trialSub(id, userID string, created time.Time) billing.Subscription {
	end := created.AddDate(0, 0, 7)
	promoEnd := created.AddDate(0, 1, 0)
	return billing.Subscription{
		ID:                  id,
		UserID:              userID,
		ToolID:              "calendar",
		Name:                "Family Calendar",
		Price:               decimal.RequireFromString("4.99"),
		Status:              billing.StatusTrial,
		CreatedAt:           created,
		TrialEndDate:        &end,
		PromoCode:           "SPRING25",
		PromoExpirationDate: &promoEnd,
	}
}

func TestSubscriptionStore_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSubscriptionStore(db)
	ctx := context.Background()

	created := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	sub := trialSub("sub_1", "user-1", created)

	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Get(ctx, "sub_1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.UserID != "user-1" || got.ToolID != "calendar" || got.Name != "Family Calendar" {
		t.Errorf("identity fields = %q/%q/%q", got.UserID, got.ToolID, got.Name)
	}
	if !got.Price.Equal(decimal.RequireFromString("4.99")) {
		t.Errorf("Price = %s, want 4.99", got.Price)
	}
	if got.Status != billing.StatusTrial {
		t.Errorf("Status = %s, want trial", got.Status)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if got.TrialEndDate == nil || !got.TrialEndDate.Equal(*sub.TrialEndDate) {
		t.Errorf("TrialEndDate = %v, want %v", got.TrialEndDate, sub.TrialEndDate)
	}
	if got.PromoCode != "SPRING25" {
		t.Errorf("PromoCode = %q, want SPRING25", got.PromoCode)
	}
	if got.PromoExpirationDate == nil || !got.PromoExpirationDate.Equal(*sub.PromoExpirationDate) {
		t.Errorf("PromoExpirationDate = %v, want %v", got.PromoExpirationDate, sub.PromoExpirationDate)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestSubscriptionStore_OptionalFieldsEmpty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSubscriptionStore(db)
	ctx := context.Background()

	sub := billing.Subscription{
		ID:        "sub_a",
		UserID:    "user-1",
		Name:      "Grocery List",
		Price:     decimal.RequireFromString("1234.5"),
		Status:    billing.StatusActive,
		CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Get(ctx, "sub_a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.TrialEndDate != nil || got.PromoExpirationDate != nil || got.PromoCode != "" {
		t.Errorf("optional fields should be empty: %+v", got)
	}
	if got.Price.String() != "1234.5" {
		t.Errorf("Price = %s, want 1234.5", got.Price)
	}
}

func TestSubscriptionStore_Get_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSubscriptionStore(db)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSubscriptionStore_Create_Duplicate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSubscriptionStore(db)
	ctx := context.Background()

	sub := trialSub("sub_1", "user-1", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Create(ctx, sub); !errors.Is(err, ports.ErrDuplicate) {
		t.Errorf("second Create err = %v, want ErrDuplicate", err)
	}
}

func TestSubscriptionStore_ListByUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSubscriptionStore(db)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, sub := range []billing.Subscription{
		trialSub("sub_2", "user-1", base.AddDate(0, 0, 2)),
		trialSub("sub_1", "user-1", base),
		trialSub("sub_x", "user-2", base),
	} {
		if err := store.Create(ctx, sub); err != nil {
			t.Fatalf("Create %s failed: %v", sub.ID, err)
		}
	}

	subs, err := store.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("len = %d, want 2", len(subs))
	}
	if subs[0].ID != "sub_1" || subs[1].ID != "sub_2" {
		t.Errorf("order = %s, %s; want sub_1, sub_2", subs[0].ID, subs[1].ID)
	}

	empty, err := store.ListByUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("len = %d, want 0", len(empty))
	}
}

func TestSubscriptionStore_Update(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSubscriptionStore(db)
	ctx := context.Background()

	sub := trialSub("sub_1", "user-1", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sub.Status = billing.StatusCancelled
	sub.Price = decimal.RequireFromString("6")
	if err := store.Update(ctx, sub); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := store.Get(ctx, "sub_1")
	if got.Status != billing.StatusCancelled {
		t.Errorf("Status = %s, want cancelled", got.Status)
	}
	if !got.Price.Equal(decimal.NewFromInt(6)) {
		t.Errorf("Price = %s, want 6", got.Price)
	}

	missing := sub
	missing.ID = "missing"
	if err := store.Update(ctx, missing); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Update missing err = %v, want ErrNotFound", err)
	}
}

func TestSubscriptionStore_Delete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSubscriptionStore(db)
	ctx := context.Background()

	sub := trialSub("sub_1", "user-1", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Delete(ctx, "sub_1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "sub_1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "sub_1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestSubscriptionStore_RejectsUnknownStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewSubscriptionStore(db)

	sub := trialSub("sub_1", "user-1", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	sub.Status = "paused"
	if err := store.Create(context.Background(), sub); err == nil {
		t.Error("expected CHECK constraint failure for unknown status")
	}
}
