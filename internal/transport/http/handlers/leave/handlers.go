package leavehandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"leaveadvisor/internal/domain/advisory"
	"leaveadvisor/internal/domain/leave"
	"leaveadvisor/internal/transport/http/api"
	"leaveadvisor/internal/transport/http/middleware"
	"leaveadvisor/internal/transport/http/shared"
)

type Handler struct {
	Service  *leave.Service
	Advisory *advisory.Service
}

func NewHandler(service *leave.Service, advisorySvc *advisory.Service) *Handler {
	return &Handler{Service: service, Advisory: advisorySvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Post("/analyze", h.handleAnalyze)
		r.Post("/reason/analyze", h.handleAnalyzeReason)
		r.Get("/balance", h.handleBalance)
		r.Get("/conflicts", h.handleConflicts)
		r.Post("/policy/validate", h.handleValidatePolicy)
		r.Get("/policies", h.handleListPolicies)
		r.Get("/calendar", h.handleCalendar)
		r.Get("/holidays", h.handleListHolidays)
		r.Post("/holidays", h.handleAddHoliday)
		r.Delete("/holidays/{date}", h.handleDeleteHoliday)
	})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload leave.AnalyzeInput
	if !decode(w, r, &payload) {
		return
	}
	result, err := h.Service.Analyze(r.Context(), payload)
	if err != nil {
		shared.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAnalyzeReason(w http.ResponseWriter, r *http.Request) {
	var payload advisory.Input
	if !decode(w, r, &payload) {
		return
	}
	result, err := h.Advisory.AnalyzeReason(r.Context(), payload)
	if err != nil {
		shared.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	v := shared.NewValidator()
	v.Required("employee_id", query.Get("employee_id"), "is required")
	v.Enum("leave_type", query.Get("leave_type"), typeNames(), "must be a known leave type")
	year := v.Year("year", query.Get("year"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	balance, err := h.Service.CheckBalance(r.Context(), leave.BalanceInput{
		EmployeeID: strings.TrimSpace(query.Get("employee_id")),
		LeaveType:  query.Get("leave_type"),
		Year:       year,
	})
	if err != nil {
		shared.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleConflicts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	v := shared.NewValidator()
	v.Required("employee_id", query.Get("employee_id"), "is required")
	v.Date("start_date", query.Get("start_date"))
	v.Date("end_date", query.Get("end_date"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	conflicts, err := h.Service.TeamConflicts(r.Context(), leave.ConflictsInput{
		EmployeeID: strings.TrimSpace(query.Get("employee_id")),
		StartDate:  query.Get("start_date"),
		EndDate:    query.Get("end_date"),
	})
	if err != nil {
		shared.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, conflicts, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleValidatePolicy(w http.ResponseWriter, r *http.Request) {
	var payload leave.ValidatePolicyInput
	if !decode(w, r, &payload) {
		return
	}
	violations, err := h.Service.ValidatePolicy(payload)
	if err != nil {
		shared.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"violations": violations,
		"valid":      len(violations) == 0,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Service.Policies(r.Context())
	if err != nil {
		shared.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, policies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.TeamCalendar(r.Context())
	if err != nil {
		shared.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	h.manageHolidays(w, r, leave.HolidaysInput{
		Action:  leave.HolidayActionList,
		Country: r.URL.Query().Get("country"),
	})
}

func (h *Handler) handleAddHoliday(w http.ResponseWriter, r *http.Request) {
	var payload leave.HolidaysInput
	if !decode(w, r, &payload) {
		return
	}
	payload.Action = leave.HolidayActionAdd
	h.manageHolidays(w, r, payload)
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	h.manageHolidays(w, r, leave.HolidaysInput{
		Action:      leave.HolidayActionDelete,
		HolidayDate: chi.URLParam(r, "date"),
		Country:     r.URL.Query().Get("country"),
	})
}

func (h *Handler) manageHolidays(w http.ResponseWriter, r *http.Request, in leave.HolidaysInput) {
	result, err := h.Service.ManageHolidays(r.Context(), in)
	if err != nil {
		shared.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	status := http.StatusOK
	if result.Created != nil && *result.Created {
		status = http.StatusCreated
	}
	api.WriteJSON(w, status, api.Envelope{Success: true, Data: result, RequestID: middleware.GetRequestID(r.Context())})
}

func typeNames() []string {
	names := make([]string, len(leave.Types))
	for i, t := range leave.Types {
		names[i] = string(t)
	}
	return names
}
