package pgstore

import (
	"context"
	"os"
	"testing"
	"time"

	"leaveadvisor/internal/domain/leave"
	"leaveadvisor/internal/platform/seed"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, dbURL)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := seed.Default(ctx, store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func TestPostgresStoreReads(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	e, err := store.GetEmployee(ctx, "EMP002")
	if err != nil {
		t.Fatalf("get employee: %v", err)
	}
	if e.Department != "Engineering" || e.JoinDate != leave.NewDate(2023, time.January, 15) {
		t.Fatalf("unexpected employee %+v", e)
	}
	if _, err := store.GetEmployee(ctx, "EMP404"); err != leave.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	b, err := store.GetBalance(ctx, "EMP002", leave.TypeMaternity, 1999)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if b.TotalDays != 0 || b.Year != 1999 {
		t.Fatalf("missing balance should be zero, got %+v", b)
	}

	leaves, err := store.TeamLeaves(ctx, "Engineering", leave.NewDate(2025, time.March, 12), leave.NewDate(2025, time.March, 20))
	if err != nil {
		t.Fatalf("team leaves: %v", err)
	}
	found := false
	for _, r := range leaves {
		if r.ID == "REQ001" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected REQ001 to overlap, got %+v", leaves)
	}

	policies, err := store.ListPolicies(ctx)
	if err != nil {
		t.Fatalf("list policies: %v", err)
	}
	if len(policies) < 6 {
		t.Fatalf("expected seeded policies, got %d", len(policies))
	}

	rows, err := store.DepartmentBalances(ctx, "Engineering", 2025)
	if err != nil {
		t.Fatalf("department balances: %v", err)
	}
	if len(rows) == 0 {
		t.Fatalf("expected department rows")
	}
}

func TestPostgresHolidayUpsert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	date := leave.NewDate(2031, time.July, 4)
	t.Cleanup(func() { _, _ = store.DeleteHoliday(ctx, "ZZ", date) })

	created, err := store.UpsertHoliday(ctx, leave.Holiday{Date: date, Name: "First", Country: "ZZ"})
	if err != nil || !created {
		t.Fatalf("expected created, got %v %v", created, err)
	}
	created, err = store.UpsertHoliday(ctx, leave.Holiday{Date: date, Name: "Renamed", Country: "ZZ"})
	if err != nil || created {
		t.Fatalf("expected update, got %v %v", created, err)
	}
	holidays, err := store.ListHolidays(ctx, "ZZ")
	if err != nil || len(holidays) != 1 || holidays[0].Name != "Renamed" {
		t.Fatalf("unexpected holidays %+v %v", holidays, err)
	}
	deleted, err := store.DeleteHoliday(ctx, "ZZ", date)
	if err != nil || !deleted {
		t.Fatalf("expected delete, got %v %v", deleted, err)
	}
}
