package reports

import (
	"context"

	"leaveadvisor/internal/domain/leave"
)

type StoreAPI interface {
	// DepartmentBalances joins employees of department with their balances for year.
	DepartmentBalances(ctx context.Context, department string, year int) ([]BalanceRow, error)
	EmployeeBalances(ctx context.Context, employeeID string, year int) ([]leave.Balance, error)
}
