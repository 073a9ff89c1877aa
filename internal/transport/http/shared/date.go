package shared

import (
	"strings"

	"leaveadvisor/internal/domain/leave"
)

// ParseDate accepts RFC3339 or YYYY-MM-DD; blank input yields the zero date.
func ParseDate(value string) (leave.Date, error) {
	if strings.TrimSpace(value) == "" {
		return leave.Date{}, nil
	}
	return leave.ParseDate(value)
}
