package leave

import (
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

type Type string

const (
	TypeAnnual    Type = "annual"
	TypeSick      Type = "sick"
	TypeMaternity Type = "maternity"
	TypePaternity Type = "paternity"
	TypeUnpaid    Type = "unpaid"
	TypeEmergency Type = "emergency"
)

var Types = []Type{TypeAnnual, TypeSick, TypeMaternity, TypePaternity, TypeUnpaid, TypeEmergency}

func (t Type) Valid() bool {
	for _, candidate := range Types {
		if t == candidate {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses are the request states that occupy a calendar slot.
var ActiveStatuses = []Status{StatusPending, StatusApproved}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type ConflictType string

const (
	ConflictTeamMemberAbsent ConflictType = "team_member_absent"
	ConflictCriticalPeriod   ConflictType = "critical_period"
	ConflictMinimumCoverage  ConflictType = "minimum_coverage"
)

type Recommendation string

const (
	RecommendApprove Recommendation = "approve"
	RecommendReject  Recommendation = "reject"
	RecommendReview  Recommendation = "review"
)

// UnsavedRequestID marks a request synthesized for analysis that was never persisted.
const UnsavedRequestID = "NEW"

type Employee struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Department      string  `json:"department"`
	ManagerID       *string `json:"manager_id"`
	AnnualLeaveDays float64 `json:"annual_leave_days"`
	SickLeaveDays   float64 `json:"sick_leave_days"`
	JoinDate        Date    `json:"join_date"`
}

type Balance struct {
	EmployeeID  string
	LeaveType   Type
	Year        int
	TotalDays   float64
	UsedDays    float64
	PendingDays float64
}

// Available is always derived; it is never clamped at zero.
func (b Balance) Available() float64 {
	return b.TotalDays - b.UsedDays - b.PendingDays
}

type balanceJSON struct {
	EmployeeID    string  `json:"employee_id"`
	LeaveType     Type    `json:"leave_type"`
	Year          int     `json:"year"`
	TotalDays     float64 `json:"total_days"`
	UsedDays      float64 `json:"used_days"`
	PendingDays   float64 `json:"pending_days"`
	AvailableDays float64 `json:"available_days"`
}

func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(balanceJSON{
		EmployeeID:    b.EmployeeID,
		LeaveType:     b.LeaveType,
		Year:          b.Year,
		TotalDays:     b.TotalDays,
		UsedDays:      b.UsedDays,
		PendingDays:   b.PendingDays,
		AvailableDays: b.Available(),
	})
}

// UnmarshalJSON ignores any incoming available_days.
func (b *Balance) UnmarshalJSON(data []byte) error {
	var raw balanceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Balance{
		EmployeeID:  raw.EmployeeID,
		LeaveType:   raw.LeaveType,
		Year:        raw.Year,
		TotalDays:   raw.TotalDays,
		UsedDays:    raw.UsedDays,
		PendingDays: raw.PendingDays,
	}
	return nil
}

type Request struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employee_id"`
	LeaveType   Type      `json:"leave_type"`
	StartDate   Date      `json:"start_date"`
	EndDate     Date      `json:"end_date"`
	WorkingDays int       `json:"working_days"`
	Reason      string    `json:"reason,omitempty"`
	Status      Status    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Violation struct {
	Rule        string `json:"rule"`
	Description string `json:"description"`
	Blocking    bool   `json:"blocking"`
}

type Conflict struct {
	Type                ConflictType `json:"type"`
	Description         string       `json:"description"`
	Severity            Severity     `json:"severity"`
	ConflictingEmployee string       `json:"conflicting_employee,omitempty"`
}

// AnalysisResult keeps camelCase keys for its verdict fields; nested records stay snake_case.
type AnalysisResult struct {
	Request               Request        `json:"request"`
	Employee              Employee       `json:"employee"`
	Balance               Balance        `json:"balance"`
	Conflicts             []Conflict     `json:"conflicts"`
	PolicyViolations      []Violation    `json:"policyViolations"`
	Recommendation        Recommendation `json:"recommendation"`
	RecommendationReasons []string       `json:"recommendationReasons"`
	RiskScore             int            `json:"riskScore"`
}

type TeamConflicts struct {
	Department          string    `json:"department"`
	OverlappingRequests []Request `json:"overlapping_requests"`
	ConflictCount       int       `json:"conflict_count"`
}

type Holiday struct {
	Date    Date   `json:"date"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// PolicyRecord is a policy row as stored; the evaluated rule set is fixed in code.
type PolicyRecord struct {
	ID          string  `json:"id" yaml:"id"`
	Rule        string  `json:"rule" yaml:"rule"`
	LeaveType   *Type   `json:"leave_type,omitempty" yaml:"leave_type"`
	Description string  `json:"description" yaml:"description"`
	Threshold   *int    `json:"threshold,omitempty" yaml:"threshold"`
	Blocking    bool    `json:"blocking" yaml:"blocking"`
	Unit        *string `json:"unit,omitempty" yaml:"unit"`
}

type CalendarEntry struct {
	Request
	EmployeeName string `json:"name"`
	Department   string `json:"department"`
}

// FormatDays renders a day count without a trailing ".0" for whole values.
func FormatDays(days float64) string {
	return strconv.FormatFloat(days, 'f', -1, 64)
}
