package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"leaveadvisor/internal/domain/leave"
)

const requestColumns = "lr.id, lr.employee_id, lr.leave_type, lr.start_date, lr.end_date, lr.working_days, COALESCE(lr.reason, ''), lr.status, lr.submitted_at"

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (leave.Employee, error) {
	var (
		e      leave.Employee
		joined string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, department, manager_id, annual_leave_days, sick_leave_days, join_date
		FROM employees WHERE id = ?`, employeeID,
	).Scan(&e.ID, &e.Name, &e.Department, &e.ManagerID, &e.AnnualLeaveDays, &e.SickLeaveDays, &joined)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.Employee{}, leave.ErrNotFound
	}
	if err != nil {
		return leave.Employee{}, err
	}
	if e.JoinDate, err = leave.ParseDate(joined); err != nil {
		return leave.Employee{}, err
	}
	return e, nil
}

func (s *Store) ListHolidays(ctx context.Context, country string) ([]leave.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT holiday_date, name, country FROM public_holidays
		WHERE country = ? ORDER BY holiday_date`, country)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Holiday
	for rows.Next() {
		var (
			h    leave.Holiday
			date string
		)
		if err := rows.Scan(&date, &h.Name, &h.Country); err != nil {
			return nil, err
		}
		if h.Date, err = leave.ParseDate(date); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) UpsertHoliday(ctx context.Context, holiday leave.Holiday) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM public_holidays WHERE holiday_date = ? AND country = ?",
		holiday.Date.String(), holiday.Country,
	).Scan(&existing)
	if err != nil {
		return false, err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO public_holidays (id, holiday_date, name, country)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (holiday_date, country) DO UPDATE SET name = excluded.name`,
		uuid.NewString(), holiday.Date.String(), holiday.Name, holiday.Country)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return existing == 0, nil
}

func (s *Store) DeleteHoliday(ctx context.Context, country string, date leave.Date) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM public_holidays WHERE holiday_date = ? AND country = ?", date.String(), country)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) GetBalance(ctx context.Context, employeeID string, leaveType leave.Type, year int) (leave.Balance, error) {
	b := leave.Balance{EmployeeID: employeeID, LeaveType: leaveType, Year: year}
	err := s.db.QueryRowContext(ctx, `
		SELECT total_days, used_days, pending_days FROM leave_balances
		WHERE employee_id = ? AND leave_type = ? AND year = ?`,
		employeeID, string(leaveType), year,
	).Scan(&b.TotalDays, &b.UsedDays, &b.PendingDays)
	if errors.Is(err, sql.ErrNoRows) {
		return b, nil
	}
	if err != nil {
		return leave.Balance{}, err
	}
	return b, nil
}

// TeamLeaves relies on YYYY-MM-DD text ordering matching date ordering.
func (s *Store) TeamLeaves(ctx context.Context, department string, start, end leave.Date) ([]leave.Request, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+requestColumns+`
		FROM leave_requests lr
		JOIN employees e ON lr.employee_id = e.id
		WHERE e.department = ?
		  AND lr.start_date <= ? AND lr.end_date >= ?
		  AND lr.status IN ('pending', 'approved')
		ORDER BY lr.start_date, lr.id`,
		department, end.String(), start.String())
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
	rows, err := s.db.QueryContext(ctx, `
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
			leaveType sql.NullString
			threshold sql.NullInt64
			unit      sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Rule, &leaveType, &p.Description, &threshold, &p.Blocking, &unit); err != nil {
			return nil, err
		}
		if leaveType.Valid {
			t := leave.Type(leaveType.String)
			p.LeaveType = &t
		}
		if threshold.Valid {
			v := int(threshold.Int64)
			p.Threshold = &v
		}
		if unit.Valid {
			p.Unit = &unit.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) TeamCalendar(ctx context.Context, from leave.Date) ([]leave.CalendarEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+requestColumns+`, e.name, e.department
		FROM leave_requests lr
		JOIN employees e ON lr.employee_id = e.id
		WHERE lr.status IN ('pending', 'approved')
		  AND lr.end_date >= ?
		ORDER BY lr.start_date, lr.id`, from.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.CalendarEntry
	for rows.Next() {
		var entry leave.CalendarEntry
		req, err := scanRequest(rows, &entry.EmployeeName, &entry.Department)
		if err != nil {
			return nil, err
		}
		entry.Request = req
		out = append(out, entry)
	}
	return out, rows.Err()
}

func scanRequest(row scanner, extra ...any) (leave.Request, error) {
	var (
		req                   leave.Request
		start, end, submitted string
	)
	dest := append([]any{&req.ID, &req.EmployeeID, &req.LeaveType, &start, &end, &req.WorkingDays, &req.Reason, &req.Status, &submitted}, extra...)
	if err := row.Scan(dest...); err != nil {
		return leave.Request{}, err
	}
	var err error
	if req.StartDate, err = leave.ParseDate(start); err != nil {
		return leave.Request{}, err
	}
	if req.EndDate, err = leave.ParseDate(end); err != nil {
		return leave.Request{}, err
	}
	if req.SubmittedAt, err = time.Parse(time.RFC3339, submitted); err != nil {
		return leave.Request{}, err
	}
	return req, nil
}
