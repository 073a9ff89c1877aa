package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaveadvisor/internal/domain/leave"
)

type recordingSeeder struct {
	employees []leave.Employee
	balances  []leave.Balance
	holidays  []leave.Holiday
	policies  []leave.PolicyRecord
	requests  []leave.Request
	failOn    string
}

func (r *recordingSeeder) UpsertEmployee(_ context.Context, e leave.Employee) error {
	if r.failOn == "employee" {
		return errors.New("constraint violation")
	}
	r.employees = append(r.employees, e)
	return nil
}

func (r *recordingSeeder) UpsertBalance(_ context.Context, b leave.Balance) error {
	r.balances = append(r.balances, b)
	return nil
}

func (r *recordingSeeder) UpsertHoliday(_ context.Context, h leave.Holiday) (bool, error) {
	r.holidays = append(r.holidays, h)
	return true, nil
}

func (r *recordingSeeder) UpsertPolicy(_ context.Context, p leave.PolicyRecord) error {
	r.policies = append(r.policies, p)
	return nil
}

func (r *recordingSeeder) UpsertRequest(_ context.Context, req leave.Request) error {
	r.requests = append(r.requests, req)
	return nil
}

func TestDefaultFixtureParses(t *testing.T) {
	f, err := DefaultFixture()
	require.NoError(t, err)
	assert.Len(t, f.Employees, 3)
	assert.Len(t, f.Policies, 6)
	assert.Len(t, f.Requests, 1)

	rules := make([]string, len(f.Policies))
	for i, p := range f.Policies {
		rules[i] = p.Rule
	}
	assert.Equal(t, []string{
		leave.RuleMinNotice,
		leave.RuleProbationBlock,
		leave.RuleMaxConsecutive,
		leave.RuleSickNoteRequired,
		leave.RuleYearEndBlackout,
		leave.RuleInsufficientBalance,
	}, rules)
	assert.Nil(t, f.Policies[5].LeaveType)
	require.NotNil(t, f.Policies[0].Threshold)
	assert.Equal(t, 3, *f.Policies[0].Threshold)
}

func TestDefaultAppliesInOrder(t *testing.T) {
	seeder := &recordingSeeder{}
	require.NoError(t, Default(context.Background(), seeder))

	require.Len(t, seeder.employees, 3)
	assert.Equal(t, "MGR001", seeder.employees[0].ID)
	assert.Nil(t, seeder.employees[0].ManagerID)
	require.NotNil(t, seeder.employees[1].ManagerID)
	assert.Equal(t, "MGR001", *seeder.employees[1].ManagerID)
	assert.Equal(t, leave.NewDate(2022, time.March, 1), seeder.employees[1].JoinDate)

	assert.Len(t, seeder.balances, 3)
	assert.Len(t, seeder.holidays, 3)
	assert.Len(t, seeder.policies, 6)

	require.Len(t, seeder.requests, 1)
	req := seeder.requests[0]
	assert.Equal(t, "REQ001", req.ID)
	assert.Equal(t, leave.StatusPending, req.Status)
	assert.Equal(t, leave.NewDate(2025, time.March, 10), req.StartDate)
	assert.Equal(t, time.Date(2025, time.February, 20, 9, 0, 0, 0, time.UTC), req.SubmittedAt.UTC())
}

func TestApplyStopsOnError(t *testing.T) {
	seeder := &recordingSeeder{failOn: "employee"}
	err := Default(context.Background(), seeder)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed employee MGR001")
	assert.Empty(t, seeder.balances)
}

func TestParseFixtureRejectsBadDates(t *testing.T) {
	f, err := ParseFixture([]byte("holidays:\n  - {date: \"23/09/2025\", name: National Day, country: SA}\n"))
	require.NoError(t, err)

	err = Apply(context.Background(), &recordingSeeder{}, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "National Day")

	_, err = ParseFixture([]byte("employees: {"))
	require.Error(t, err)
}
