package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"leaveadvisor/internal/domain/leave"
)

//go:embed fixture.yaml
var defaultFixture []byte

// Seeder is the write side a store exposes for fixtures. Every call is an
// upsert so seeding can run on every start.
type Seeder interface {
	UpsertEmployee(ctx context.Context, employee leave.Employee) error
	UpsertBalance(ctx context.Context, balance leave.Balance) error
	UpsertHoliday(ctx context.Context, holiday leave.Holiday) (bool, error)
	UpsertPolicy(ctx context.Context, policy leave.PolicyRecord) error
	UpsertRequest(ctx context.Context, request leave.Request) error
}

type Fixture struct {
	Employees []employeeRow        `yaml:"employees"`
	Balances  []balanceRow         `yaml:"balances"`
	Holidays  []holidayRow         `yaml:"holidays"`
	Policies  []leave.PolicyRecord `yaml:"policies"`
	Requests  []requestRow         `yaml:"requests"`
}

type employeeRow struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Department      string  `yaml:"department"`
	ManagerID       *string `yaml:"manager_id"`
	AnnualLeaveDays float64 `yaml:"annual_leave_days"`
	SickLeaveDays   float64 `yaml:"sick_leave_days"`
	JoinDate        string  `yaml:"join_date"`
}

type balanceRow struct {
	EmployeeID  string     `yaml:"employee_id"`
	LeaveType   leave.Type `yaml:"leave_type"`
	Year        int        `yaml:"year"`
	TotalDays   float64    `yaml:"total_days"`
	UsedDays    float64    `yaml:"used_days"`
	PendingDays float64    `yaml:"pending_days"`
}

type holidayRow struct {
	Date    string `yaml:"date"`
	Name    string `yaml:"name"`
	Country string `yaml:"country"`
}

type requestRow struct {
	ID          string       `yaml:"id"`
	EmployeeID  string       `yaml:"employee_id"`
	LeaveType   leave.Type   `yaml:"leave_type"`
	StartDate   string       `yaml:"start_date"`
	EndDate     string       `yaml:"end_date"`
	WorkingDays int          `yaml:"working_days"`
	Reason      string       `yaml:"reason"`
	Status      leave.Status `yaml:"status"`
	SubmittedAt time.Time    `yaml:"submitted_at"`
}

func DefaultFixture() (Fixture, error) {
	return ParseFixture(defaultFixture)
}

func ParseFixture(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

// Apply writes the fixture in dependency order: managers before reports,
// employees before balances and requests.
func Apply(ctx context.Context, s Seeder, f Fixture) error {
	for _, row := range f.Employees {
		joined, err := leave.ParseDate(row.JoinDate)
		if err != nil {
			return fmt.Errorf("employee %s join_date: %w", row.ID, err)
		}
		err = s.UpsertEmployee(ctx, leave.Employee{
			ID:              row.ID,
			Name:            row.Name,
			Department:      row.Department,
			ManagerID:       row.ManagerID,
			AnnualLeaveDays: row.AnnualLeaveDays,
			SickLeaveDays:   row.SickLeaveDays,
			JoinDate:        joined,
		})
		if err != nil {
			return fmt.Errorf("seed employee %s: %w", row.ID, err)
		}
	}
	for _, row := range f.Balances {
		b := leave.Balance{
			EmployeeID:  row.EmployeeID,
			LeaveType:   row.LeaveType,
			Year:        row.Year,
			TotalDays:   row.TotalDays,
			UsedDays:    row.UsedDays,
			PendingDays: row.PendingDays,
		}
		if err := s.UpsertBalance(ctx, b); err != nil {
			return fmt.Errorf("seed balance %s/%s/%d: %w", b.EmployeeID, b.LeaveType, b.Year, err)
		}
	}
	for _, row := range f.Holidays {
		date, err := leave.ParseDate(row.Date)
		if err != nil {
			return fmt.Errorf("holiday %q date: %w", row.Name, err)
		}
		if _, err := s.UpsertHoliday(ctx, leave.Holiday{Date: date, Name: row.Name, Country: row.Country}); err != nil {
			return fmt.Errorf("seed holiday %s: %w", row.Date, err)
		}
	}
	for _, p := range f.Policies {
		if err := s.UpsertPolicy(ctx, p); err != nil {
			return fmt.Errorf("seed policy %s: %w", p.Rule, err)
		}
	}
	for _, row := range f.Requests {
		start, err := leave.ParseDate(row.StartDate)
		if err != nil {
			return fmt.Errorf("request %s start_date: %w", row.ID, err)
		}
		end, err := leave.ParseDate(row.EndDate)
		if err != nil {
			return fmt.Errorf("request %s end_date: %w", row.ID, err)
		}
		err = s.UpsertRequest(ctx, leave.Request{
			ID:          row.ID,
			EmployeeID:  row.EmployeeID,
			LeaveType:   row.LeaveType,
			StartDate:   start,
			EndDate:     end,
			WorkingDays: row.WorkingDays,
			Reason:      row.Reason,
			Status:      row.Status,
			SubmittedAt: row.SubmittedAt,
		})
		if err != nil {
			return fmt.Errorf("seed request %s: %w", row.ID, err)
		}
	}
	slog.Info("seed applied",
		"employees", len(f.Employees),
		"balances", len(f.Balances),
		"holidays", len(f.Holidays),
		"policies", len(f.Policies),
		"requests", len(f.Requests),
	)
	return nil
}

// Default applies the embedded fixture.
func Default(ctx context.Context, s Seeder) error {
	f, err := DefaultFixture()
	if err != nil {
		return err
	}
	return Apply(ctx, s, f)
}
