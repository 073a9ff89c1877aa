package reports

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"leaveadvisor/internal/domain/leave"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

type PDFRenderer struct {
	Dir string
}

func NewPDFRenderer(dir string) *PDFRenderer {
	return &PDFRenderer{Dir: dir}
}

// Render writes report as a PDF under Dir and returns the file path.
func (r *PDFRenderer) Render(report Report, at time.Time) (string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", err
	}
	label, subject := "Department", report.Department
	if report.Scope == ScopeEmployee {
		label, subject = "Employee", report.EmployeeID
	}
	name := fmt.Sprintf("leave-report-%s-%d-%s.pdf",
		strings.Trim(unsafeFileChars.ReplaceAllString(subject, "-"), "-"),
		report.Year,
		at.UTC().Format("20060102T150405"),
	)
	filePath := filepath.Join(r.Dir, name)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Leave report (%s)", report.ReportType))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("%s: %s", label, subject))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Year: %d", report.Year))
	pdf.Ln(10)

	if report.Summary != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Employees: %d", report.Summary.TotalEmployees))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Used days: %s", leave.FormatDays(report.Summary.TotalUsedDays)))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Average used per employee: %.1f", report.Summary.AverageUsedDays))
		pdf.Ln(10)
	}

	if len(report.Rows) > 0 {
		writeTable(pdf, []string{"Employee", "Type", "Total", "Used", "Pending"}, len(report.Rows), func(i int) []string {
			row := report.Rows[i]
			return []string{row.EmployeeName, string(row.LeaveType), leave.FormatDays(row.TotalDays), leave.FormatDays(row.UsedDays), leave.FormatDays(row.PendingDays)}
		})
	}
	if len(report.Balances) > 0 {
		writeTable(pdf, []string{"Type", "Total", "Used", "Pending", "Available"}, len(report.Balances), func(i int) []string {
			b := report.Balances[i]
			return []string{string(b.LeaveType), leave.FormatDays(b.TotalDays), leave.FormatDays(b.UsedDays), leave.FormatDays(b.PendingDays), leave.FormatDays(b.Available())}
		})
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

// Prune removes rendered reports last modified before cutoff and returns how many went.
func (r *PDFRenderer) Prune(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(r.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "leave-report-") || filepath.Ext(entry.Name()) != ".pdf" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return deleted, err
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(r.Dir, entry.Name())); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func writeTable(pdf *gofpdf.Fpdf, header []string, n int, row func(int) []string) {
	const width = 36.0
	pdf.SetFont("Helvetica", "B", 11)
	for _, h := range header {
		pdf.CellFormat(width, 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 11)
	for i := 0; i < n; i++ {
		for _, cell := range row(i) {
			pdf.CellFormat(width, 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}
