package reports

import (
	"context"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"leaveadvisor/internal/domain/leave"
)

const (
	ScopeDepartment = "department"
	ScopeEmployee   = "employee"
)

type Service struct {
	Store    StoreAPI
	Renderer *PDFRenderer
	Now      func() time.Time
}

func NewService(store StoreAPI, renderer *PDFRenderer) *Service {
	return &Service{Store: store, Renderer: renderer, Now: time.Now}
}

// Generate builds a department report when a department is given, otherwise an
// employee report. One of the two scopes is required.
func (s *Service) Generate(ctx context.Context, in Input) (Report, error) {
	if err := leave.Validate(in); err != nil {
		return Report{}, err
	}
	year := in.Year
	if year == 0 {
		year = s.Now().Year()
	}
	reportType := in.ReportType
	if reportType == "" {
		reportType = TypeDetailed
	}
	department := strings.TrimSpace(in.Department)
	employeeID := strings.TrimSpace(in.EmployeeID)

	var report Report
	switch {
	case department != "":
		rows, err := s.Store.DepartmentBalances(ctx, department, year)
		if err != nil {
			return Report{}, leave.DataAccess("department balances", err)
		}
		report = departmentReport(department, year, reportType, rows)
	case employeeID != "":
		balances, err := s.Store.EmployeeBalances(ctx, employeeID, year)
		if err != nil {
			return Report{}, leave.DataAccess("employee balances", err)
		}
		report = employeeReport(employeeID, year, reportType, balances)
	default:
		return Report{}, leave.InvalidInput("department or employee_id is required")
	}

	if in.Format == FormatPDF {
		if s.Renderer == nil {
			return Report{}, leave.InvalidInput("pdf output is not enabled")
		}
		file, err := s.Renderer.Render(report, s.Now())
		if err != nil {
			return Report{}, err
		}
		report.File = file
	}
	return report, nil
}

func departmentReport(department string, year int, reportType string, rows []BalanceRow) Report {
	report := Report{
		Scope:      ScopeDepartment,
		Department: department,
		Year:       year,
		ReportType: reportType,
	}
	usedByEmployee := map[string]float64{}
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, seen := usedByEmployee[row.EmployeeID]; !seen {
			order = append(order, row.EmployeeID)
		}
		usedByEmployee[row.EmployeeID] += row.UsedDays
	}
	perEmployee := make([]float64, 0, len(order))
	for _, id := range order {
		perEmployee = append(perEmployee, usedByEmployee[id])
	}
	report.Summary = summarize(perEmployee)

	switch reportType {
	case TypeDetailed:
		report.Rows = rows
	case TypeBalance:
		withAvailable := make([]BalanceRow, len(rows))
		for i, row := range rows {
			available := row.TotalDays - row.UsedDays - row.PendingDays
			row.AvailableDays = &available
			withAvailable[i] = row
		}
		report.Rows = withAvailable
	}
	return report
}

func employeeReport(employeeID string, year int, reportType string, balances []leave.Balance) Report {
	report := Report{
		Scope:      ScopeEmployee,
		EmployeeID: employeeID,
		Year:       year,
		ReportType: reportType,
	}
	var used []float64
	if len(balances) > 0 {
		total := 0.0
		for _, b := range balances {
			total += b.UsedDays
		}
		used = []float64{total}
	}
	report.Summary = summarize(used)
	if reportType != TypeSummary {
		report.Balances = balances
	}
	return report
}

func summarize(usedPerEmployee []float64) *Summary {
	summary := &Summary{TotalEmployees: len(usedPerEmployee)}
	if len(usedPerEmployee) == 0 {
		return summary
	}
	for _, v := range usedPerEmployee {
		summary.TotalUsedDays += v
	}
	summary.AverageUsedDays = stat.Mean(usedPerEmployee, nil)
	return summary
}
