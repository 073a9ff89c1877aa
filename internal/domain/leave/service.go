package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultCountry = "SA"

// Observer receives analysis outcomes, typically for metrics.
type Observer interface {
	AnalysisCompleted(recommendation Recommendation, riskScore int)
}

type Service struct {
	Store    StoreAPI
	Country  string
	Now      func() time.Time
	Observer Observer
	Timeout  time.Duration
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.Now = now
		}
	}
}

func WithCountry(country string) Option {
	return func(s *Service) {
		if strings.TrimSpace(country) != "" {
			s.Country = strings.ToUpper(strings.TrimSpace(country))
		}
	}
}

// WithTimeout bounds each Analyze call. Zero leaves the caller's deadline alone.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.Timeout = timeout
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(s *Service) {
		s.Observer = observer
	}
}

func NewService(store StoreAPI, opts ...Option) *Service {
	s := &Service{Store: store, Country: DefaultCountry, Now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the full pipeline for one prospective request. Nothing is persisted.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (AnalysisResult, error) {
	if err := Validate(in); err != nil {
		return AnalysisResult{}, err
	}
	start, _ := ParseDate(in.StartDate)
	end, _ := ParseDate(in.EndDate)
	leaveType := ParseType(in.LeaveType, TypeAnnual)
	now := s.Now()

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	employee, err := s.employee(ctx, in.EmployeeID)
	if err != nil {
		return AnalysisResult{}, err
	}

	var (
		holidays   []Holiday
		balance    Balance
		teamLeaves []Request
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.Store.ListHolidays(gctx, s.Country)
		if err != nil {
			return DataAccess("fetch holidays", err)
		}
		holidays = out
		return nil
	})
	g.Go(func() error {
		out, err := s.Store.GetBalance(gctx, employee.ID, leaveType, start.Year())
		if err != nil {
			return DataAccess("fetch balance", err)
		}
		balance = out
		return nil
	})
	g.Go(func() error {
		out, err := s.Store.TeamLeaves(gctx, employee.Department, start, end)
		if err != nil {
			return DataAccess("fetch team leaves", err)
		}
		teamLeaves = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return AnalysisResult{}, err
	}

	workingDays := WorkingDays(start, end, HolidaySetOf(holidays))
	available := balance.Available()
	conflicts := ConflictsFrom(teamLeaves, employee.ID)

	violations := EvaluatePolicies(PolicyContext{
		Employee:      employee,
		LeaveType:     leaveType,
		StartDate:     start,
		EndDate:       end,
		Reason:        in.Reason,
		WorkingDays:   workingDays,
		AvailableDays: available,
		Now:           now,
	})
	score := RiskScore(conflicts, violations, available, workingDays)
	recommendation, reasons := Recommend(score, violations, available, workingDays)

	result := AnalysisResult{
		Request: Request{
			ID:          UnsavedRequestID,
			EmployeeID:  employee.ID,
			LeaveType:   leaveType,
			StartDate:   start,
			EndDate:     end,
			WorkingDays: workingDays,
			Reason:      in.Reason,
			Status:      StatusPending,
			SubmittedAt: now.UTC(),
		},
		Employee:              employee,
		Balance:               balance,
		Conflicts:             conflicts,
		PolicyViolations:      violations,
		Recommendation:        recommendation,
		RecommendationReasons: reasons,
		RiskScore:             score,
	}

	slog.Info("leave analysis completed",
		"employeeId", employee.ID,
		"leaveType", leaveType,
		"workingDays", workingDays,
		"violations", len(violations),
		"conflicts", len(conflicts),
		"riskScore", score,
		"recommendation", recommendation,
	)
	if s.Observer != nil {
		s.Observer.AnalysisCompleted(recommendation, score)
	}
	return result, nil
}

// ConflictsFrom maps other employees' overlapping requests to medium-severity conflicts.
func ConflictsFrom(teamLeaves []Request, employeeID string) []Conflict {
	conflicts := make([]Conflict, 0, len(teamLeaves))
	for _, req := range teamLeaves {
		if req.EmployeeID == employeeID {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Type:                ConflictTeamMemberAbsent,
			Description:         fmt.Sprintf("Overlap with %s (%s)", req.EmployeeID, req.LeaveType),
			Severity:            SeverityMedium,
			ConflictingEmployee: req.EmployeeID,
		})
	}
	return conflicts
}

func (s *Service) CheckBalance(ctx context.Context, in BalanceInput) (Balance, error) {
	if err := Validate(in); err != nil {
		return Balance{}, err
	}
	year := in.Year
	if year == 0 {
		year = s.Now().Year()
	}
	balance, err := s.Store.GetBalance(ctx, in.EmployeeID, ParseType(in.LeaveType, TypeAnnual), year)
	if err != nil {
		return Balance{}, DataAccess("fetch balance", err)
	}
	return balance, nil
}

func (s *Service) TeamConflicts(ctx context.Context, in ConflictsInput) (TeamConflicts, error) {
	if err := Validate(in); err != nil {
		return TeamConflicts{}, err
	}
	start, _ := ParseDate(in.StartDate)
	end, _ := ParseDate(in.EndDate)

	employee, err := s.employee(ctx, in.EmployeeID)
	if err != nil {
		return TeamConflicts{}, err
	}
	leaves, err := s.Store.TeamLeaves(ctx, employee.Department, start, end)
	if err != nil {
		return TeamConflicts{}, DataAccess("fetch team leaves", err)
	}

	overlapping := make([]Request, 0, len(leaves))
	for _, req := range leaves {
		if req.EmployeeID != employee.ID {
			overlapping = append(overlapping, req)
		}
	}
	return TeamConflicts{
		Department:          employee.Department,
		OverlappingRequests: overlapping,
		ConflictCount:       len(overlapping),
	}, nil
}

// ValidatePolicy evaluates the rule set against caller-supplied facts only.
func (s *Service) ValidatePolicy(in ValidatePolicyInput) ([]Violation, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	start, _ := ParseDate(in.StartDate)
	end, _ := ParseDate(in.EndDate)
	joined, _ := ParseDate(in.Employee.JoinDate)

	return EvaluatePolicies(PolicyContext{
		Employee: Employee{
			ID:              in.Employee.ID,
			Name:            in.Employee.Name,
			Department:      in.Employee.Department,
			ManagerID:       in.Employee.ManagerID,
			AnnualLeaveDays: in.Employee.AnnualLeaveDays,
			SickLeaveDays:   in.Employee.SickLeaveDays,
			JoinDate:        joined,
		},
		LeaveType:     ParseType(in.LeaveType, TypeAnnual),
		StartDate:     start,
		EndDate:       end,
		Reason:        in.Reason,
		WorkingDays:   *in.WorkingDays,
		AvailableDays: *in.Available,
		Now:           s.Now(),
	}), nil
}

func (s *Service) Policies(ctx context.Context) ([]PolicyRecord, error) {
	policies, err := s.Store.ListPolicies(ctx)
	if err != nil {
		return nil, DataAccess("list policies", err)
	}
	if policies == nil {
		policies = []PolicyRecord{}
	}
	return policies, nil
}

// TeamCalendar lists active requests that have not ended before today.
func (s *Service) TeamCalendar(ctx context.Context) ([]CalendarEntry, error) {
	entries, err := s.Store.TeamCalendar(ctx, DateOf(s.Now()))
	if err != nil {
		return nil, DataAccess("team calendar", err)
	}
	if entries == nil {
		entries = []CalendarEntry{}
	}
	return entries, nil
}

func (s *Service) employee(ctx context.Context, employeeID string) (Employee, error) {
	employee, err := s.Store.GetEmployee(ctx, employeeID)
	if errors.Is(err, ErrNotFound) {
		return Employee{}, NotFound("employee", employeeID)
	}
	if err != nil {
		return Employee{}, DataAccess("fetch employee", err)
	}
	return employee, nil
}
