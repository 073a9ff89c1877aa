package leave

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type AnalyzeInput struct {
	EmployeeID string `json:"employee_id" validate:"required" jsonschema:"Employee ID"`
	LeaveType  string `json:"leave_type" validate:"required,leavetype" jsonschema:"one of annual, sick, maternity, paternity, unpaid, emergency"`
	StartDate  string `json:"start_date" validate:"required,isodate" jsonschema:"first day of leave, YYYY-MM-DD"`
	EndDate    string `json:"end_date" validate:"required,isodate" jsonschema:"last day of leave, YYYY-MM-DD"`
	Reason     string `json:"reason,omitempty" jsonschema:"free-text reason"`
}

type BalanceInput struct {
	EmployeeID string `json:"employee_id" validate:"required" jsonschema:"Employee ID"`
	LeaveType  string `json:"leave_type,omitempty" validate:"omitempty,leavetype" jsonschema:"leave type, defaults to annual"`
	Year       int    `json:"year,omitempty" validate:"omitempty,min=1900,max=9999" jsonschema:"balance year, defaults to the current year"`
}

type ConflictsInput struct {
	EmployeeID string `json:"employee_id" validate:"required" jsonschema:"Employee ID"`
	StartDate  string `json:"start_date" validate:"required,isodate" jsonschema:"YYYY-MM-DD"`
	EndDate    string `json:"end_date" validate:"required,isodate" jsonschema:"YYYY-MM-DD"`
}

type EmployeeInput struct {
	ID              string  `json:"id" validate:"required"`
	Name            string  `json:"name,omitempty"`
	Department      string  `json:"department,omitempty"`
	ManagerID       *string `json:"manager_id,omitempty"`
	AnnualLeaveDays float64 `json:"annual_leave_days,omitempty"`
	SickLeaveDays   float64 `json:"sick_leave_days,omitempty"`
	JoinDate        string  `json:"join_date" validate:"required,isodate" jsonschema:"YYYY-MM-DD"`
}

type ValidatePolicyInput struct {
	Employee    EmployeeInput `json:"employee" validate:"required"`
	LeaveType   string        `json:"leave_type" validate:"required,leavetype"`
	StartDate   string        `json:"start_date" validate:"required,isodate" jsonschema:"YYYY-MM-DD"`
	EndDate     string        `json:"end_date" validate:"required,isodate" jsonschema:"YYYY-MM-DD"`
	Reason      string        `json:"reason,omitempty"`
	WorkingDays *int          `json:"working_days" validate:"required,min=0" jsonschema:"requested working days"`
	Available   *float64      `json:"available" validate:"required" jsonschema:"available balance in days"`
}

type HolidaysInput struct {
	Action      string `json:"action" validate:"required,oneof=add delete list" jsonschema:"add, delete or list"`
	HolidayDate string `json:"holiday_date,omitempty" validate:"omitempty,isodate" jsonschema:"YYYY-MM-DD, required for add and delete"`
	Name        string `json:"name,omitempty" jsonschema:"holiday name, required for add"`
	Country     string `json:"country,omitempty" validate:"omitempty,alpha,len=2" jsonschema:"ISO country code, defaults to the configured region"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("leavetype", func(fl validator.FieldLevel) bool {
			return Type(strings.ToLower(strings.TrimSpace(fl.Field().String()))).Valid()
		})
		validate = v
	})
	return validate
}

// Validate checks an operation input struct and maps failures to ErrInvalidInput.
func Validate(input any) error {
	err := inputValidator().Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	issues := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, fieldIssue(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(issues, "; "))
}

func fieldIssue(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), structPrefix(fe))
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "isodate":
		return field + " must be a valid date in YYYY-MM-DD format"
	case "leavetype":
		return fmt.Sprintf("%s must be one of %s", field, joinTypes())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
}

func structPrefix(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[:idx+1]
	}
	return ""
}

func joinTypes() string {
	names := make([]string, len(Types))
	for i, t := range Types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// ParseType normalizes a validated leave type, falling back when blank.
func ParseType(raw string, fallback Type) Type {
	value := Type(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return fallback
	}
	return value
}
