package leave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeStore struct {
	mu          sync.Mutex
	employees   map[string]Employee
	balances    map[string]Balance
	holidays    map[string][]Holiday
	requests    []Request
	policies    []PolicyRecord
	calendar    []CalendarEntry
	balanceErr  error
	employeeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees: map[string]Employee{
			"EMP001": {ID: "EMP001", Name: "Ahmed Al-Rashid", Department: "Engineering", AnnualLeaveDays: 21, SickLeaveDays: 15, JoinDate: NewDate(2020, time.January, 15)},
			"EMP002": {ID: "EMP002", Name: "Sara Al-Otaibi", Department: "Engineering", AnnualLeaveDays: 21, SickLeaveDays: 15, JoinDate: NewDate(2021, time.March, 1)},
			"EMP003": {ID: "EMP003", Name: "Khalid Al-Harbi", Department: "Finance", AnnualLeaveDays: 21, SickLeaveDays: 15, JoinDate: NewDate(2019, time.June, 10)},
		},
		balances: map[string]Balance{},
		holidays: map[string][]Holiday{},
	}
}

func balanceKey(employeeID string, leaveType Type, year int) string {
	return fmt.Sprintf("%s/%s/%d", employeeID, leaveType, year)
}

func (f *fakeStore) setBalance(b Balance) {
	f.balances[balanceKey(b.EmployeeID, b.LeaveType, b.Year)] = b
}

func (f *fakeStore) GetEmployee(_ context.Context, id string) (Employee, error) {
	if f.employeeErr != nil {
		return Employee{}, f.employeeErr
	}
	e, ok := f.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) ListHolidays(_ context.Context, country string) ([]Holiday, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Holiday(nil), f.holidays[country]...), nil
}

func (f *fakeStore) UpsertHoliday(_ context.Context, h Holiday) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.holidays[h.Country]
	for i := range list {
		if list[i].Date == h.Date {
			list[i].Name = h.Name
			return false, nil
		}
	}
	f.holidays[h.Country] = append(list, h)
	return true, nil
}

func (f *fakeStore) DeleteHoliday(_ context.Context, country string, date Date) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.holidays[country]
	for i := range list {
		if list[i].Date == date {
			f.holidays[country] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetBalance(_ context.Context, employeeID string, leaveType Type, year int) (Balance, error) {
	if f.balanceErr != nil {
		return Balance{}, f.balanceErr
	}
	if b, ok := f.balances[balanceKey(employeeID, leaveType, year)]; ok {
		return b, nil
	}
	return Balance{EmployeeID: employeeID, LeaveType: leaveType, Year: year}, nil
}

func (f *fakeStore) TeamLeaves(_ context.Context, department string, start, end Date) ([]Request, error) {
	var out []Request
	for _, r := range f.requests {
		if f.employees[r.EmployeeID].Department != department {
			continue
		}
		if r.Status != StatusPending && r.Status != StatusApproved {
			continue
		}
		if r.StartDate.After(end) || r.EndDate.Before(start) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) ListPolicies(context.Context) ([]PolicyRecord, error) {
	return f.policies, nil
}

func (f *fakeStore) TeamCalendar(_ context.Context, from Date) ([]CalendarEntry, error) {
	var out []CalendarEntry
	for _, e := range f.calendar {
		if !e.EndDate.Before(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

type recordingObserver struct {
	recommendation Recommendation
	score          int
	calls          int
}

func (o *recordingObserver) AnalysisCompleted(rec Recommendation, score int) {
	o.recommendation = rec
	o.score = score
	o.calls++
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
}

func newTestService(store *fakeStore, opts ...Option) *Service {
	return NewService(store, append([]Option{WithClock(fixedNow)}, opts...)...)
}

func TestAnalyzeApprovesCleanRequest(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	store.setBalance(Balance{EmployeeID: "EMP001", LeaveType: TypeAnnual, Year: 2025, TotalDays: 21, UsedDays: 5})
	observer := &recordingObserver{}
	svc := newTestService(store, WithObserver(observer))

	result, err := svc.Analyze(context.Background(), AnalyzeInput{
		EmployeeID: "EMP001",
		LeaveType:  "Annual",
		StartDate:  "2025-03-17",
		EndDate:    "2025-03-19",
		Reason:     "family visit",
	})
	require.NoError(t, err)

	assert.Equal(t, RecommendApprove, result.Recommendation)
	assert.Equal(t, []string{"All checks passed"}, result.RecommendationReasons)
	assert.Equal(t, 0, result.RiskScore)
	assert.Equal(t, 3, result.Request.WorkingDays)
	assert.Equal(t, UnsavedRequestID, result.Request.ID)
	assert.Equal(t, StatusPending, result.Request.Status)
	assert.Equal(t, TypeAnnual, result.Request.LeaveType)
	assert.Equal(t, fixedNow(), result.Request.SubmittedAt)
	assert.Equal(t, float64(16), result.Balance.Available())
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.PolicyViolations)

	assert.Equal(t, 1, observer.calls)
	assert.Equal(t, RecommendApprove, observer.recommendation)
}

func TestAnalyzeRejectsShortfall(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	store.setBalance(Balance{EmployeeID: "EMP001", LeaveType: TypeAnnual, Year: 2025, TotalDays: 21, UsedDays: 11})
	svc := newTestService(store)

	// 2025-03-17 .. 2025-04-01 is 12 working days
	result, err := svc.Analyze(context.Background(), AnalyzeInput{
		EmployeeID: "EMP001",
		LeaveType:  "annual",
		StartDate:  "2025-03-17",
		EndDate:    "2025-04-01",
	})
	require.NoError(t, err)

	want := "Insufficient balance: 10 days available, 12 requested"
	assert.Equal(t, 12, result.Request.WorkingDays)
	assert.Equal(t, RecommendReject, result.Recommendation)
	assert.Equal(t, []string{want, want}, result.RecommendationReasons)
	assert.Equal(t, 90, result.RiskScore)
	require.Len(t, result.PolicyViolations, 1)
	assert.Equal(t, RuleInsufficientBalance, result.PolicyViolations[0].Rule)
}

func TestAnalyzeCountsHolidaysAndConflicts(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	store.setBalance(Balance{EmployeeID: "EMP001", LeaveType: TypeAnnual, Year: 2025, TotalDays: 21})
	store.holidays["SA"] = []Holiday{{Date: NewDate(2025, time.March, 18), Name: "Test Day", Country: "SA"}}
	store.requests = []Request{
		{ID: "REQ001", EmployeeID: "EMP002", LeaveType: TypeAnnual, StartDate: NewDate(2025, time.March, 19), EndDate: NewDate(2025, time.March, 21), Status: StatusPending},
		{ID: "REQ002", EmployeeID: "EMP001", LeaveType: TypeAnnual, StartDate: NewDate(2025, time.March, 17), EndDate: NewDate(2025, time.March, 17), Status: StatusApproved},
		{ID: "REQ003", EmployeeID: "EMP003", LeaveType: TypeAnnual, StartDate: NewDate(2025, time.March, 17), EndDate: NewDate(2025, time.March, 19), Status: StatusApproved},
		{ID: "REQ004", EmployeeID: "EMP002", LeaveType: TypeSick, StartDate: NewDate(2025, time.March, 17), EndDate: NewDate(2025, time.March, 17), Status: StatusRejected},
	}
	svc := newTestService(store)

	result, err := svc.Analyze(context.Background(), AnalyzeInput{
		EmployeeID: "EMP001",
		LeaveType:  "annual",
		StartDate:  "2025-03-17",
		EndDate:    "2025-03-19",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Request.WorkingDays)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, Conflict{
		Type:                ConflictTeamMemberAbsent,
		Description:         "Overlap with EMP002 (annual)",
		Severity:            SeverityMedium,
		ConflictingEmployee: "EMP002",
	}, result.Conflicts[0])
	assert.Equal(t, 10, result.RiskScore)
	assert.Equal(t, RecommendApprove, result.Recommendation)
}

func TestAnalyzeUnknownEmployee(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := newTestService(newFakeStore())
	_, err := svc.Analyze(context.Background(), AnalyzeInput{
		EmployeeID: "EMP404",
		LeaveType:  "annual",
		StartDate:  "2025-03-17",
		EndDate:    "2025-03-19",
	})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "EMP404")
}

func TestAnalyzeDataAccessFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	store.balanceErr = errors.New("connection reset")
	svc := newTestService(store)

	_, err := svc.Analyze(context.Background(), AnalyzeInput{
		EmployeeID: "EMP001",
		LeaveType:  "annual",
		StartDate:  "2025-03-17",
		EndDate:    "2025-03-19",
	})
	require.ErrorIs(t, err, ErrDataAccess)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

type stalledHolidayStore struct {
	*fakeStore
}

func (s stalledHolidayStore) ListHolidays(ctx context.Context, _ string) ([]Holiday, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAnalyzeTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := NewService(stalledHolidayStore{newFakeStore()}, WithClock(fixedNow), WithTimeout(20*time.Millisecond))
	_, err := svc.Analyze(context.Background(), AnalyzeInput{
		EmployeeID: "EMP001",
		LeaveType:  "annual",
		StartDate:  "2025-03-17",
		EndDate:    "2025-03-19",
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrDataAccess)
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	svc := newTestService(newFakeStore())
	tests := []struct {
		name string
		in   AnalyzeInput
		msg  string
	}{
		{"missing employee", AnalyzeInput{LeaveType: "annual", StartDate: "2025-03-17", EndDate: "2025-03-19"}, "employee_id is required"},
		{"bad type", AnalyzeInput{EmployeeID: "EMP001", LeaveType: "vacation", StartDate: "2025-03-17", EndDate: "2025-03-19"}, "leave_type must be one of annual, sick, maternity, paternity, unpaid, emergency"},
		{"bad date", AnalyzeInput{EmployeeID: "EMP001", LeaveType: "annual", StartDate: "17/03/2025", EndDate: "2025-03-19"}, "start_date must be a valid date in YYYY-MM-DD format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Analyze(context.Background(), tt.in)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestAnalyzeReversedRangeCountsZeroDays(t *testing.T) {
	store := newFakeStore()
	store.setBalance(Balance{EmployeeID: "EMP001", LeaveType: TypeAnnual, Year: 2025, TotalDays: 21})
	svc := newTestService(store)

	result, err := svc.Analyze(context.Background(), AnalyzeInput{
		EmployeeID: "EMP001",
		LeaveType:  "annual",
		StartDate:  "2025-03-19",
		EndDate:    "2025-03-17",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Request.WorkingDays)
}

func TestCheckBalanceDefaults(t *testing.T) {
	store := newFakeStore()
	store.setBalance(Balance{EmployeeID: "EMP001", LeaveType: TypeAnnual, Year: 2025, TotalDays: 21, UsedDays: 3, PendingDays: 1})
	svc := newTestService(store)

	balance, err := svc.CheckBalance(context.Background(), BalanceInput{EmployeeID: "EMP001"})
	require.NoError(t, err)
	assert.Equal(t, 2025, balance.Year)
	assert.Equal(t, TypeAnnual, balance.LeaveType)
	assert.Equal(t, float64(17), balance.Available())

	missing, err := svc.CheckBalance(context.Background(), BalanceInput{EmployeeID: "EMP001", LeaveType: "sick", Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, float64(0), missing.TotalDays)
	assert.Equal(t, float64(0), missing.Available())
}

func TestTeamConflictsExcludesSelf(t *testing.T) {
	store := newFakeStore()
	store.requests = []Request{
		{ID: "REQ001", EmployeeID: "EMP002", LeaveType: TypeAnnual, StartDate: NewDate(2025, time.March, 10), EndDate: NewDate(2025, time.March, 12), Status: StatusPending},
		{ID: "REQ002", EmployeeID: "EMP001", LeaveType: TypeAnnual, StartDate: NewDate(2025, time.March, 11), EndDate: NewDate(2025, time.March, 11), Status: StatusApproved},
	}
	svc := newTestService(store)

	out, err := svc.TeamConflicts(context.Background(), ConflictsInput{EmployeeID: "EMP001", StartDate: "2025-03-12", EndDate: "2025-03-14"})
	require.NoError(t, err)
	assert.Equal(t, "Engineering", out.Department)
	assert.Equal(t, 1, out.ConflictCount)
	require.Len(t, out.OverlappingRequests, 1)
	assert.Equal(t, "REQ001", out.OverlappingRequests[0].ID)

	_, err = svc.TeamConflicts(context.Background(), ConflictsInput{EmployeeID: "EMP404", StartDate: "2025-03-12", EndDate: "2025-03-14"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestValidatePolicyUsesSuppliedFacts(t *testing.T) {
	svc := newTestService(newFakeStore())
	days := 16
	available := 20.0

	violations, err := svc.ValidatePolicy(ValidatePolicyInput{
		Employee:    EmployeeInput{ID: "EMP777", JoinDate: "2024-12-15"},
		LeaveType:   "annual",
		StartDate:   "2025-03-04",
		EndDate:     "2025-03-25",
		WorkingDays: &days,
		Available:   &available,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{RuleMinNotice, RuleProbationBlock, RuleMaxConsecutive}, rulesOf(violations))

	_, err = svc.ValidatePolicy(ValidatePolicyInput{
		Employee:  EmployeeInput{ID: "EMP777", JoinDate: "2024-12-15"},
		LeaveType: "annual",
		StartDate: "2025-03-04",
		EndDate:   "2025-03-25",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "working_days is required")
}

func TestPoliciesAndCalendarNeverNil(t *testing.T) {
	store := newFakeStore()
	store.calendar = []CalendarEntry{
		{Request: Request{ID: "OLD", EndDate: NewDate(2025, time.February, 1)}},
		{Request: Request{ID: "NOW", EndDate: NewDate(2025, time.March, 3)}},
	}
	svc := newTestService(store)

	policies, err := svc.Policies(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, policies)
	assert.Empty(t, policies)

	entries, err := svc.TeamCalendar(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "NOW", entries[0].ID)
}
