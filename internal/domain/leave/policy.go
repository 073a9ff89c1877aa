package leave

import (
	"fmt"
	"strings"
	"time"
)

const (
	RuleMinNotice           = "min_notice"
	RuleProbationBlock      = "probation_block"
	RuleMaxConsecutive      = "max_consecutive"
	RuleSickNoteRequired    = "sick_note_required"
	RuleYearEndBlackout     = "year_end_blackout"
	RuleInsufficientBalance = "insufficient_balance"
)

const (
	MinNoticeBusinessDays  = 3
	ProbationMonths        = 3
	MaxConsecutiveDays     = 15
	SickNoteThresholdDays  = 2
	insufficientBalanceFmt = "Insufficient balance: %s days available, %d requested"
)

// PolicyContext is everything the rule set may look at. Now is the evaluation instant.
type PolicyContext struct {
	Employee      Employee
	LeaveType     Type
	StartDate     Date
	EndDate       Date
	Reason        string
	WorkingDays   int
	AvailableDays float64
	Now           time.Time
}

type rule func(PolicyContext) (Violation, bool)

// rules is evaluated in this exact order; output order follows it.
var rules = []rule{
	minNoticeRule,
	probationRule,
	maxConsecutiveRule,
	sickNoteRule,
	yearEndBlackoutRule,
	insufficientBalanceRule,
}

// EvaluatePolicies runs every rule unconditionally and returns all violations in rule order.
func EvaluatePolicies(pc PolicyContext) []Violation {
	violations := make([]Violation, 0, len(rules))
	for _, r := range rules {
		if v, fired := r(pc); fired {
			violations = append(violations, v)
		}
	}
	return violations
}

func minNoticeRule(pc PolicyContext) (Violation, bool) {
	if pc.LeaveType != TypeAnnual {
		return Violation{}, false
	}
	if BusinessDaysBetween(DateOf(pc.Now), pc.StartDate) >= MinNoticeBusinessDays {
		return Violation{}, false
	}
	return Violation{
		Rule:        RuleMinNotice,
		Description: fmt.Sprintf("Annual leave requires %d working days advance notice", MinNoticeBusinessDays),
		Blocking:    false,
	}, true
}

func probationRule(pc PolicyContext) (Violation, bool) {
	if pc.LeaveType != TypeAnnual {
		return Violation{}, false
	}
	if WholeMonthsBetween(pc.Employee.JoinDate, DateOf(pc.Now)) >= ProbationMonths {
		return Violation{}, false
	}
	return Violation{
		Rule:        RuleProbationBlock,
		Description: fmt.Sprintf("Employees on probation (< %d months) cannot take annual leave", ProbationMonths),
		Blocking:    true,
	}, true
}

func maxConsecutiveRule(pc PolicyContext) (Violation, bool) {
	if pc.LeaveType != TypeAnnual || pc.WorkingDays <= MaxConsecutiveDays {
		return Violation{}, false
	}
	return Violation{
		Rule:        RuleMaxConsecutive,
		Description: fmt.Sprintf("Maximum %d consecutive working days per request", MaxConsecutiveDays),
		Blocking:    true,
	}, true
}

func sickNoteRule(pc PolicyContext) (Violation, bool) {
	if pc.LeaveType != TypeSick || pc.WorkingDays <= SickNoteThresholdDays || strings.TrimSpace(pc.Reason) != "" {
		return Violation{}, false
	}
	return Violation{
		Rule:        RuleSickNoteRequired,
		Description: fmt.Sprintf("Medical certificate/reason required for sick leave > %d days", SickNoteThresholdDays),
		Blocking:    false,
	}, true
}

func yearEndBlackoutRule(pc PolicyContext) (Violation, bool) {
	if pc.LeaveType != TypeAnnual {
		return Violation{}, false
	}
	if !InYearEndBlackout(pc.StartDate) && !InYearEndBlackout(pc.EndDate) {
		return Violation{}, false
	}
	return Violation{
		Rule:        RuleYearEndBlackout,
		Description: "Leave not permitted during year-end closing (Dec 28 - Jan 2)",
		Blocking:    true,
	}, true
}

func insufficientBalanceRule(pc PolicyContext) (Violation, bool) {
	if !Shortfall(pc.AvailableDays, pc.WorkingDays) {
		return Violation{}, false
	}
	return Violation{
		Rule:        RuleInsufficientBalance,
		Description: InsufficientBalanceMessage(pc.AvailableDays, pc.WorkingDays),
		Blocking:    true,
	}, true
}

// InYearEndBlackout matches Dec 28 through Jan 2 of any year.
func InYearEndBlackout(d Date) bool {
	if d.IsZero() {
		return false
	}
	switch d.Month() {
	case time.December:
		return d.Day() >= 28
	case time.January:
		return d.Day() <= 2
	}
	return false
}

func InsufficientBalanceMessage(available float64, requested int) string {
	return fmt.Sprintf(insufficientBalanceFmt, FormatDays(available), requested)
}

func Shortfall(available float64, requested int) bool {
	return available < float64(requested)
}
