package leave

const (
	maxRiskScore         = 100
	shortfallWeight      = 50
	highConflictWeight   = 20
	mediumConflictWeight = 10
	blockingWeight       = 40
	nonBlockingWeight    = 5
	reviewThreshold      = 40
	reviewReason         = "High risk due to conflicts or policy warnings — manual review recommended"
	approveReason        = "All checks passed"
)

// RiskScore adds up conflict, violation and shortfall weights and clamps at 100.
// A shortfall is counted here and again through the insufficient_balance violation.
func RiskScore(conflicts []Conflict, violations []Violation, available float64, requested int) int {
	score := 0
	if Shortfall(available, requested) {
		score += shortfallWeight
	}
	for _, c := range conflicts {
		switch c.Severity {
		case SeverityHigh:
			score += highConflictWeight
		case SeverityMedium:
			score += mediumConflictWeight
		}
	}
	for _, v := range violations {
		if v.Blocking {
			score += blockingWeight
		} else {
			score += nonBlockingWeight
		}
	}
	return min(score, maxRiskScore)
}

// Recommend picks reject, review or approve in that priority order.
func Recommend(score int, violations []Violation, available float64, requested int) (Recommendation, []string) {
	shortfall := Shortfall(available, requested)
	blocking := make([]string, 0, len(violations))
	for _, v := range violations {
		if v.Blocking {
			blocking = append(blocking, v.Description)
		}
	}

	if shortfall || len(blocking) > 0 {
		reasons := make([]string, 0, len(blocking)+1)
		if shortfall {
			reasons = append(reasons, InsufficientBalanceMessage(available, requested))
		}
		return RecommendReject, append(reasons, blocking...)
	}
	if score > reviewThreshold {
		return RecommendReview, []string{reviewReason}
	}
	return RecommendApprove, []string{approveReason}
}
