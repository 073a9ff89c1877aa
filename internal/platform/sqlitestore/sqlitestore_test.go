package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaveadvisor/internal/domain/leave"
	"leaveadvisor/internal/platform/seed"
)

func openSeeded(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	store, err := Open(ctx, MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, seed.Default(ctx, store))
	return store
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := openSeeded(t)
	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, seed.Default(context.Background(), store))

	policies, err := store.ListPolicies(context.Background())
	require.NoError(t, err)
	assert.Len(t, policies, 6)
}

func TestFileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leave.db")
	store, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, seed.Default(ctx, store))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Ping(ctx))

	e, err := reopened.GetEmployee(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, "Ahmed Al-Rashid", e.Name)
}

func TestGetEmployee(t *testing.T) {
	store := openSeeded(t)
	ctx := context.Background()

	e, err := store.GetEmployee(ctx, "EMP002")
	require.NoError(t, err)
	assert.Equal(t, "Engineering", e.Department)
	require.NotNil(t, e.ManagerID)
	assert.Equal(t, "MGR001", *e.ManagerID)
	assert.Equal(t, leave.NewDate(2023, time.January, 15), e.JoinDate)

	mgr, err := store.GetEmployee(ctx, "MGR001")
	require.NoError(t, err)
	assert.Nil(t, mgr.ManagerID)

	_, err = store.GetEmployee(ctx, "EMP404")
	require.ErrorIs(t, err, leave.ErrNotFound)
}

func TestGetBalance(t *testing.T) {
	store := openSeeded(t)
	ctx := context.Background()

	b, err := store.GetBalance(ctx, "EMP002", leave.TypeAnnual, 2025)
	require.NoError(t, err)
	assert.Equal(t, 13.0, b.Available())

	missing, err := store.GetBalance(ctx, "EMP002", leave.TypeMaternity, 2025)
	require.NoError(t, err)
	assert.Equal(t, leave.Balance{EmployeeID: "EMP002", LeaveType: leave.TypeMaternity, Year: 2025}, missing)
}

func TestHolidayUpsertAndDelete(t *testing.T) {
	store := openSeeded(t)
	ctx := context.Background()
	date := leave.NewDate(2025, time.September, 23)

	created, err := store.UpsertHoliday(ctx, leave.Holiday{Date: date, Name: "Saudi National Day", Country: "SA"})
	require.NoError(t, err)
	assert.False(t, created)

	created, err = store.UpsertHoliday(ctx, leave.Holiday{Date: date, Name: "Union Day", Country: "AE"})
	require.NoError(t, err)
	assert.True(t, created)

	sa, err := store.ListHolidays(ctx, "SA")
	require.NoError(t, err)
	require.Len(t, sa, 3)
	assert.Equal(t, "Saudi National Day", sa[2].Name)
	assert.True(t, sa[0].Date.Before(sa[1].Date))

	deleted, err := store.DeleteHoliday(ctx, "AE", date)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = store.DeleteHoliday(ctx, "AE", date)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTeamLeavesOverlap(t *testing.T) {
	store := openSeeded(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertRequest(ctx, leave.Request{
		ID:         "REQ900",
		EmployeeID: "EMP001",
		LeaveType:  leave.TypeAnnual,
		StartDate:  leave.NewDate(2025, time.March, 12),
		EndDate:    leave.NewDate(2025, time.March, 12),
		Status:     leave.StatusRejected,
	}))

	tests := []struct {
		name       string
		start, end leave.Date
		want       int
	}{
		{"touches last day", leave.NewDate(2025, time.March, 12), leave.NewDate(2025, time.March, 14), 1},
		{"touches first day", leave.NewDate(2025, time.March, 5), leave.NewDate(2025, time.March, 10), 1},
		{"after", leave.NewDate(2025, time.March, 13), leave.NewDate(2025, time.March, 14), 0},
		{"before", leave.NewDate(2025, time.March, 1), leave.NewDate(2025, time.March, 9), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.TeamLeaves(ctx, "Engineering", tt.start, tt.end)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	other, err := store.TeamLeaves(ctx, "Finance", leave.NewDate(2025, time.March, 1), leave.NewDate(2025, time.March, 31))
	require.NoError(t, err)
	assert.Empty(t, other)

	got, err := store.TeamLeaves(ctx, "Engineering", leave.NewDate(2025, time.March, 10), leave.NewDate(2025, time.March, 10))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "REQ001", got[0].ID)
	assert.Equal(t, "Family visit", got[0].Reason)
	assert.Equal(t, time.Date(2025, time.February, 20, 9, 0, 0, 0, time.UTC), got[0].SubmittedAt)
}

func TestListPolicies(t *testing.T) {
	store := openSeeded(t)

	policies, err := store.ListPolicies(context.Background())
	require.NoError(t, err)
	require.Len(t, policies, 6)
	assert.Equal(t, "POL001", policies[0].ID)
	require.NotNil(t, policies[0].LeaveType)
	assert.Equal(t, leave.TypeAnnual, *policies[0].LeaveType)
	require.NotNil(t, policies[0].Unit)
	assert.Equal(t, "working_days", *policies[0].Unit)
	assert.False(t, policies[0].Blocking)
	assert.True(t, policies[1].Blocking)
	assert.Nil(t, policies[5].LeaveType)
	assert.Nil(t, policies[5].Threshold)
}

func TestTeamCalendar(t *testing.T) {
	store := openSeeded(t)
	ctx := context.Background()

	entries, err := store.TeamCalendar(ctx, leave.NewDate(2025, time.March, 1))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Sara Al-Mutairi", entries[0].EmployeeName)
	assert.Equal(t, "Engineering", entries[0].Department)

	later, err := store.TeamCalendar(ctx, leave.NewDate(2025, time.March, 13))
	require.NoError(t, err)
	assert.Empty(t, later)
}

func TestReportQueries(t *testing.T) {
	store := openSeeded(t)
	ctx := context.Background()

	rows, err := store.DepartmentBalances(ctx, "Engineering", 2025)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "EMP001", rows[0].EmployeeID)
	assert.Equal(t, leave.TypeAnnual, rows[0].LeaveType)
	assert.Equal(t, leave.TypeSick, rows[1].LeaveType)

	balances, err := store.EmployeeBalances(ctx, "EMP001", 2025)
	require.NoError(t, err)
	assert.Len(t, balances, 2)

	none, err := store.EmployeeBalances(ctx, "EMP001", 2019)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpsertRequestAssignsID(t *testing.T) {
	store := openSeeded(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertRequest(ctx, leave.Request{
		ID:         leave.UnsavedRequestID,
		EmployeeID: "EMP001",
		LeaveType:  leave.TypeSick,
		StartDate:  leave.NewDate(2025, time.June, 2),
		EndDate:    leave.NewDate(2025, time.June, 3),
		Status:     leave.StatusApproved,
	}))

	got, err := store.TeamLeaves(ctx, "Engineering", leave.NewDate(2025, time.June, 1), leave.NewDate(2025, time.June, 30))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEqual(t, leave.UnsavedRequestID, got[0].ID)
	assert.Empty(t, got[0].Reason)
}
