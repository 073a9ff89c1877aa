package reportshandler

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"leaveadvisor/internal/domain/reports"
	"leaveadvisor/internal/transport/http/api"
	"leaveadvisor/internal/transport/http/middleware"
	"leaveadvisor/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/leave", h.handleLeaveReport)
	})
}

// handleLeaveReport returns JSON, or streams the rendered file when format=pdf.
func (h *Handler) handleLeaveReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	v := shared.NewValidator()
	v.Enum("report_type", query.Get("report_type"), []string{reports.TypeSummary, reports.TypeDetailed, reports.TypeBalance}, "must be summary, detailed or balance")
	v.Enum("format", query.Get("format"), []string{reports.FormatJSON, reports.FormatPDF}, "must be json or pdf")
	year := v.Year("year", query.Get("year"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	report, err := h.Service.Generate(r.Context(), reports.Input{
		Department: query.Get("department"),
		EmployeeID: query.Get("employee_id"),
		Year:       year,
		ReportType: query.Get("report_type"),
		Format:     query.Get("format"),
	})
	if err != nil {
		shared.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if report.File != "" && query.Get("download") == "true" {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(report.File)+`"`)
		http.ServeFile(w, r, report.File)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}
