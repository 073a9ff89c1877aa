package advisory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"leaveadvisor/internal/domain/leave"
)

const NoticeNotConfigured = "Reason analysis is not configured. Skipping advanced reason analysis."

type Input struct {
	Reason    string `json:"reason" validate:"required" jsonschema:"free-text reason given by the employee"`
	LeaveType string `json:"leave_type" validate:"required,leavetype" jsonschema:"one of annual, sick, maternity, paternity, unpaid, emergency"`
}

// Assessment is the advisory view of a reason. Fields are hints only and
// never feed the recommendation pipeline.
type Assessment struct {
	Sentiment   string   `json:"sentiment,omitempty"`
	RiskLevel   *float64 `json:"risk_level,omitempty"`
	ManagerNote string   `json:"manager_note,omitempty"`
	IsVague     *bool    `json:"is_vague,omitempty"`
	RawResponse string   `json:"raw_response,omitempty"`
}

type Result struct {
	Analyzed   bool        `json:"analyzed"`
	Assessment *Assessment `json:"assessment,omitempty"`
	Notice     string      `json:"notice,omitempty"`
}

// Advisor is the optional natural-language collaborator.
type Advisor interface {
	AssessReason(ctx context.Context, reason string, leaveType leave.Type) (Assessment, error)
}

type Service struct {
	Advisor Advisor
	Timeout time.Duration
}

func NewService(advisor Advisor, timeout time.Duration) *Service {
	return &Service{Advisor: advisor, Timeout: timeout}
}

// AnalyzeReason never fails because of the advisor. An absent or failing
// advisor yields a notice instead of an assessment.
func (s *Service) AnalyzeReason(ctx context.Context, in Input) (Result, error) {
	if err := leave.Validate(in); err != nil {
		return Result{}, err
	}
	if s.Advisor == nil {
		return Result{Notice: NoticeNotConfigured}, nil
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	assessment, err := s.Advisor.AssessReason(ctx, in.Reason, leave.ParseType(in.LeaveType, leave.TypeAnnual))
	if err != nil {
		if !errors.Is(err, leave.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", leave.ErrUpstreamUnavailable, err)
		}
		slog.Warn("reason analysis unavailable", "error", err)
		return Result{Notice: fmt.Sprintf("Reason not analyzed: %v", err)}, nil
	}
	return Result{Analyzed: true, Assessment: &assessment}, nil
}

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseAssessment extracts the first JSON object from a model reply, which may
// be wrapped in markdown fences. Unparseable replies are kept verbatim.
func ParseAssessment(text string) Assessment {
	match := jsonObject.FindString(text)
	if match != "" {
		var a Assessment
		if err := json.Unmarshal([]byte(match), &a); err == nil {
			return a
		}
	}
	return Assessment{RawResponse: strings.TrimSpace(text)}
}
