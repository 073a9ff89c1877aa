package pgstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leaveadvisor/internal/domain/leave"
)

func (s *Store) UpsertEmployee(ctx context.Context, e leave.Employee) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO employees (id, name, department, manager_id, annual_leave_days, sick_leave_days, join_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
		  name = EXCLUDED.name,
		  department = EXCLUDED.department,
		  manager_id = EXCLUDED.manager_id,
		  annual_leave_days = EXCLUDED.annual_leave_days,
		  sick_leave_days = EXCLUDED.sick_leave_days,
		  join_date = EXCLUDED.join_date`,
		e.ID, e.Name, e.Department, e.ManagerID, e.AnnualLeaveDays, e.SickLeaveDays, e.JoinDate.Time())
	return err
}

func (s *Store) UpsertBalance(ctx context.Context, b leave.Balance) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leave_balances (employee_id, leave_type, year, total_days, used_days, pending_days)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (employee_id, leave_type, year) DO UPDATE SET
		  total_days = EXCLUDED.total_days,
		  used_days = EXCLUDED.used_days,
		  pending_days = EXCLUDED.pending_days`,
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
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leave_policies (id, rule, leave_type, description, threshold, unit, blocking)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (rule) DO UPDATE SET
		  leave_type = EXCLUDED.leave_type,
		  description = EXCLUDED.description,
		  threshold = EXCLUDED.threshold,
		  unit = EXCLUDED.unit,
		  blocking = EXCLUDED.blocking`,
		p.ID, p.Rule, leaveType, p.Description, p.Threshold, p.Unit, p.Blocking)
	return err
}

func (s *Store) UpsertRequest(ctx context.Context, r leave.Request) error {
	if r.ID == "" || r.ID == leave.UnsavedRequestID {
		r.ID = uuid.NewString()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, working_days, reason, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
		ON CONFLICT (id) DO UPDATE SET
		  leave_type = EXCLUDED.leave_type,
		  start_date = EXCLUDED.start_date,
		  end_date = EXCLUDED.end_date,
		  working_days = EXCLUDED.working_days,
		  reason = EXCLUDED.reason,
		  status = EXCLUDED.status`,
		r.ID, r.EmployeeID, string(r.LeaveType), r.StartDate.Time(), r.EndDate.Time(),
		r.WorkingDays, r.Reason, string(r.Status), r.SubmittedAt)
	return err
}
