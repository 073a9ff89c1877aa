package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"leaveadvisor/internal/domain/leave"
)

const requestColumns = "lr.id, lr.employee_id, lr.leave_type, lr.start_date, lr.end_date, lr.working_days, COALESCE(lr.reason, ''), lr.status, lr.submitted_at"

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (leave.Employee, error) {
	var (
		e      leave.Employee
		joined time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, department, manager_id, annual_leave_days, sick_leave_days, join_date
		FROM employees WHERE id = $1`, employeeID,
	).Scan(&e.ID, &e.Name, &e.Department, &e.ManagerID, &e.AnnualLeaveDays, &e.SickLeaveDays, &joined)
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.Employee{}, leave.ErrNotFound
	}
	if err != nil {
		return leave.Employee{}, err
	}
	e.JoinDate = leave.DateOf(joined)
	return e, nil
}

func (s *Store) ListHolidays(ctx context.Context, country string) ([]leave.Holiday, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT holiday_date, name, country FROM public_holidays
		WHERE country = $1 ORDER BY holiday_date`, country)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Holiday
	for rows.Next() {
		var (
			h    leave.Holiday
			date time.Time
		)
		if err := rows.Scan(&date, &h.Name, &h.Country); err != nil {
			return nil, err
		}
		h.Date = leave.DateOf(date)
		out = append(out, h)
	}
	return out, rows.Err()
}

// UpsertHoliday reports created=true only when no row existed for (date, country).
func (s *Store) UpsertHoliday(ctx context.Context, holiday leave.Holiday) (bool, error) {
	var created bool
	err := s.pool.QueryRow(ctx, `
		INSERT INTO public_holidays (id, holiday_date, name, country)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (holiday_date, country) DO UPDATE SET name = EXCLUDED.name
		RETURNING (xmax = 0)`,
		uuid.NewString(), holiday.Date.Time(), holiday.Name, holiday.Country,
	).Scan(&created)
	return created, err
}

func (s *Store) DeleteHoliday(ctx context.Context, country string, date leave.Date) (bool, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM public_holidays WHERE holiday_date = $1 AND country = $2", date.Time(), country)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) GetBalance(ctx context.Context, employeeID string, leaveType leave.Type, year int) (leave.Balance, error) {
	b := leave.Balance{EmployeeID: employeeID, LeaveType: leaveType, Year: year}
	err := s.pool.QueryRow(ctx, `
		SELECT total_days, used_days, pending_days FROM leave_balances
		WHERE employee_id = $1 AND leave_type = $2 AND year = $3`,
		employeeID, string(leaveType), year,
	).Scan(&b.TotalDays, &b.UsedDays, &b.PendingDays)
	if errors.Is(err, pgx.ErrNoRows) {
		return b, nil
	}
	if err != nil {
		return leave.Balance{}, err
	}
	return b, nil
}

func (s *Store) TeamLeaves(ctx context.Context, department string, start, end leave.Date) ([]leave.Request, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM leave_requests lr
		JOIN employees e ON lr.employee_id = e.id
		WHERE e.department = $1
		  AND lr.start_date <= $3 AND lr.end_date >= $2
		  AND lr.status IN ('pending', 'approved')
		ORDER BY lr.start_date, lr.id`,
		department, start.Time(), end.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *Store) ListPolicies(ctx context.Context) ([]leave.PolicyRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, rule, leave_type, description, threshold, blocking, unit
		FROM leave_policies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.PolicyRecord
	for rows.Next() {
		var (
			p         leave.PolicyRecord
			leaveType *string
		)
		if err := rows.Scan(&p.ID, &p.Rule, &leaveType, &p.Description, &p.Threshold, &p.Blocking, &p.Unit); err != nil {
			return nil, err
		}
		if leaveType != nil {
			t := leave.Type(*leaveType)
			p.LeaveType = &t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) TeamCalendar(ctx context.Context, from leave.Date) ([]leave.CalendarEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+requestColumns+`, e.name, e.department
		FROM leave_requests lr
		JOIN employees e ON lr.employee_id = e.id
		WHERE lr.status IN ('pending', 'approved')
		  AND lr.end_date >= $1
		ORDER BY lr.start_date, lr.id`, from.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.CalendarEntry
	for rows.Next() {
		var (
			entry      leave.CalendarEntry
			start, end time.Time
		)
		err := rows.Scan(
			&entry.ID, &entry.EmployeeID, &entry.LeaveType, &start, &end, &entry.WorkingDays,
			&entry.Reason, &entry.Status, &entry.SubmittedAt, &entry.EmployeeName, &entry.Department,
		)
		if err != nil {
			return nil, err
		}
		entry.StartDate, entry.EndDate = leave.DateOf(start), leave.DateOf(end)
		out = append(out, entry)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (leave.Request, error) {
	var (
		req        leave.Request
		start, end time.Time
	)
	err := row.Scan(&req.ID, &req.EmployeeID, &req.LeaveType, &start, &end, &req.WorkingDays, &req.Reason, &req.Status, &req.SubmittedAt)
	if err != nil {
		return leave.Request{}, err
	}
	req.StartDate, req.EndDate = leave.DateOf(start), leave.DateOf(end)
	return req, nil
}
