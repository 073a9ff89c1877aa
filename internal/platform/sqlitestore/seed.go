package sqlitestore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leaveadvisor/internal/domain/leave"
)

func (s *Store) UpsertEmployee(ctx context.Context, e leave.Employee) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, department, manager_id, annual_leave_days, sick_leave_days, join_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
		  name = excluded.name,
		  department = excluded.department,
		  manager_id = excluded.manager_id,
		  annual_leave_days = excluded.annual_leave_days,
		  sick_leave_days = excluded.sick_leave_days,
		  join_date = excluded.join_date`,
		e.ID, e.Name, e.Department, e.ManagerID, e.AnnualLeaveDays, e.SickLeaveDays, e.JoinDate.String())
	return err
}

func (s *Store) UpsertBalance(ctx context.Context, b leave.Balance) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_balances (employee_id, leave_type, year, total_days, used_days, pending_days)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, leave_type, year) DO UPDATE SET
		  total_days = excluded.total_days,
		  used_days = excluded.used_days,
		  pending_days = excluded.pending_days`,
		b.EmployeeID, string(b.LeaveType), b.Year, b.TotalDays, b.UsedDays, b.PendingDays)
	return err
}

func (s *Store) UpsertPolicy(ctx context.Context, p leave.PolicyRecord) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	var leaveType *string
	if p.LeaveType != nil {
		v := string(*p.LeaveType)
		leaveType = &v
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_policies (id, rule, leave_type, description, threshold, unit, blocking)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (rule) DO UPDATE SET
		  leave_type = excluded.leave_type,
		  description = excluded.description,
		  threshold = excluded.threshold,
		  unit = excluded.unit,
		  blocking = excluded.blocking`,
		p.ID, p.Rule, leaveType, p.Description, p.Threshold, p.Unit, p.Blocking)
	return err
}

func (s *Store) UpsertRequest(ctx context.Context, r leave.Request) error {
	if r.ID == "" || r.ID == leave.UnsavedRequestID {
		r.ID = uuid.NewString()
	}
	submitted := r.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, working_days, reason, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?)
		ON CONFLICT (id) DO UPDATE SET
		  leave_type = excluded.leave_type,
		  start_date = excluded.start_date,
		  end_date = excluded.end_date,
		  working_days = excluded.working_days,
		  reason = excluded.reason,
		  status = excluded.status`,
		r.ID, r.EmployeeID, string(r.LeaveType), r.StartDate.String(), r.EndDate.String(),
		r.WorkingDays, r.Reason, string(r.Status), submitted.UTC().Format(time.RFC3339))
	return err
}
