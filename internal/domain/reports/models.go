package reports

import "leaveadvisor/internal/domain/leave"

const (
	TypeSummary  = "summary"
	TypeDetailed = "detailed"
	TypeBalance  = "balance"

	FormatJSON = "json"
	FormatPDF  = "pdf"
)

type Input struct {
	Department string `json:"department,omitempty" jsonschema:"department name; takes precedence over employee_id"`
	EmployeeID string `json:"employee_id,omitempty" jsonschema:"employee ID for a single-employee report"`
	Year       int    `json:"year,omitempty" validate:"omitempty,min=1900,max=9999" jsonschema:"report year, defaults to the current year"`
	ReportType string `json:"report_type,omitempty" validate:"omitempty,oneof=summary detailed balance" jsonschema:"summary, detailed or balance"`
	Format     string `json:"format,omitempty" validate:"omitempty,oneof=json pdf" jsonschema:"json (default) or pdf"`
}

// BalanceRow is one (employee, leave type) line of a department report.
type BalanceRow struct {
	EmployeeID    string     `json:"employee_id"`
	EmployeeName  string     `json:"name"`
	LeaveType     leave.Type `json:"leave_type"`
	TotalDays     float64    `json:"total_days"`
	UsedDays      float64    `json:"used_days"`
	PendingDays   float64    `json:"pending_days"`
	AvailableDays *float64   `json:"available_days,omitempty"`
}

type Summary struct {
	TotalEmployees  int     `json:"total_employees"`
	TotalUsedDays   float64 `json:"total_used_days"`
	AverageUsedDays float64 `json:"average_used_days"`
}

type Report struct {
	Scope      string          `json:"scope"`
	Department string          `json:"department,omitempty"`
	EmployeeID string          `json:"employee_id,omitempty"`
	Year       int             `json:"year"`
	ReportType string          `json:"report_type"`
	Rows       []BalanceRow    `json:"report,omitempty"`
	Balances   []leave.Balance `json:"balances,omitempty"`
	Summary    *Summary        `json:"summary,omitempty"`
	File       string          `json:"file,omitempty"`
}
