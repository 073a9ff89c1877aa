package sqlitestore

import (
	"context"

	"leaveadvisor/internal/domain/leave"
	"leaveadvisor/internal/domain/reports"
)

func (s *Store) DepartmentBalances(ctx context.Context, department string, year int) ([]reports.BalanceRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.name, lb.leave_type, lb.total_days, lb.used_days, lb.pending_days
		FROM employees e
		JOIN leave_balances lb ON e.id = lb.employee_id
		WHERE e.department = ? AND lb.year = ?
		ORDER BY e.id, lb.leave_type`, department, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []reports.BalanceRow
	for rows.Next() {
		var r reports.BalanceRow
		if err := rows.Scan(&r.EmployeeID, &r.EmployeeName, &r.LeaveType, &r.TotalDays, &r.UsedDays, &r.PendingDays); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) EmployeeBalances(ctx context.Context, employeeID string, year int) ([]leave.Balance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, leave_type, year, total_days, used_days, pending_days
		FROM leave_balances
		WHERE employee_id = ? AND year = ?
		ORDER BY leave_type`, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Balance
	for rows.Next() {
		var b leave.Balance
		if err := rows.Scan(&b.EmployeeID, &b.LeaveType, &b.Year, &b.TotalDays, &b.UsedDays, &b.PendingDays); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
