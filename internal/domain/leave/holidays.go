package leave

import (
	"context"
	"fmt"
	"strings"
)

const (
	HolidayActionAdd    = "add"
	HolidayActionDelete = "delete"
	HolidayActionList   = "list"
)

type HolidaysResult struct {
	Action   string    `json:"action"`
	Country  string    `json:"country"`
	Holidays []Holiday `json:"holidays,omitempty"`
	Created  *bool     `json:"created,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// ManageHolidays lists, upserts or deletes public holidays for one country.
// Adding an existing date renames it rather than inserting a duplicate.
func (s *Service) ManageHolidays(ctx context.Context, in HolidaysInput) (HolidaysResult, error) {
	if err := Validate(in); err != nil {
		return HolidaysResult{}, err
	}
	country := s.Country
	if c := strings.TrimSpace(in.Country); c != "" {
		country = strings.ToUpper(c)
	}
	result := HolidaysResult{Action: in.Action, Country: country}

	switch in.Action {
	case HolidayActionList:
		holidays, err := s.Store.ListHolidays(ctx, country)
		if err != nil {
			return HolidaysResult{}, DataAccess("list holidays", err)
		}
		if holidays == nil {
			holidays = []Holiday{}
		}
		result.Holidays = holidays
		return result, nil

	case HolidayActionAdd:
		if strings.TrimSpace(in.HolidayDate) == "" {
			return HolidaysResult{}, InvalidInput("holiday_date is required for 'add' action")
		}
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return HolidaysResult{}, InvalidInput("holiday name is required for 'add' action")
		}
		date, _ := ParseDate(in.HolidayDate)
		created, err := s.Store.UpsertHoliday(ctx, Holiday{Date: date, Name: name, Country: country})
		if err != nil {
			return HolidaysResult{}, DataAccess("upsert holiday", err)
		}
		result.Created = &created
		result.Message = fmt.Sprintf("Successfully added/updated holiday: %s on %s", name, date)
		return result, nil

	case HolidayActionDelete:
		if strings.TrimSpace(in.HolidayDate) == "" {
			return HolidaysResult{}, InvalidInput("holiday_date is required for 'delete' action")
		}
		date, _ := ParseDate(in.HolidayDate)
		deleted, err := s.Store.DeleteHoliday(ctx, country, date)
		if err != nil {
			return HolidaysResult{}, DataAccess("delete holiday", err)
		}
		if !deleted {
			result.Message = fmt.Sprintf("No holiday on %s for %s", date, country)
			return result, nil
		}
		result.Message = fmt.Sprintf("Successfully deleted holiday on %s", date)
		return result, nil
	}

	return HolidaysResult{}, InvalidInput("unknown action: %s", in.Action)
}
