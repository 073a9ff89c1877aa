package leave

import "context"

// StoreAPI is the data-access collaborator. Implementations must be safe for
// concurrent use; GetEmployee reports a missing row as ErrNotFound.
type StoreAPI interface {
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	ListHolidays(ctx context.Context, country string) ([]Holiday, error)
	UpsertHoliday(ctx context.Context, holiday Holiday) (bool, error)
	DeleteHoliday(ctx context.Context, country string, date Date) (bool, error)
	// GetBalance returns a zero balance when no row exists for the key.
	GetBalance(ctx context.Context, employeeID string, leaveType Type, year int) (Balance, error)
	// TeamLeaves lists pending/approved requests in department overlapping [start, end].
	TeamLeaves(ctx context.Context, department string, start, end Date) ([]Request, error)
	ListPolicies(ctx context.Context) ([]PolicyRecord, error)
	// TeamCalendar lists pending/approved requests ending on or after from.
	TeamCalendar(ctx context.Context, from Date) ([]CalendarEntry, error)
}
