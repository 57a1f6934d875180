package errors

import (
	"campaign-kpi/models"
	stderrors "errors"
	"fmt"
)

// ParseError wraps a specific error with context about where it occurred.
type ParseError struct {
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RecordError reports a daily record dropped before aggregation because it
// violates a data-integrity rule.
type RecordError struct {
	Record models.DailyRecord
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("rejected record %s (hours=%v): %v", e.Record.Date, e.Record.Hours, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Reason returns a short label for the integrity rule e violates.
func (e *RecordError) Reason() string {
	switch {
	case stderrors.Is(e.Err, ErrNegativeHours):
		return "negative_hours"
	case stderrors.Is(e.Err, ErrInvalidHours):
		return "invalid_hours"
	case stderrors.Is(e.Err, ErrDuplicateDate):
		return "duplicate_date"
	case stderrors.Is(e.Err, ErrInvalidDate):
		return "invalid_date"
	default:
		return "other"
	}
}

// Input errors
var (
	ErrInvalidFieldCount = fmt.Errorf("invalid field count")
	ErrInvalidCampaign   = fmt.Errorf("invalid campaign id")
	ErrInvalidDate       = fmt.Errorf("invalid date")
	ErrInvalidHours      = fmt.Errorf("invalid hours")
	ErrNegativeHours     = fmt.Errorf("negative hours")
	ErrDuplicateDate     = fmt.Errorf("duplicate date")
)

// Query and configuration errors
var (
	ErrInvalidRange      = fmt.Errorf("invalid date range")
	ErrInvalidUnit       = fmt.Errorf("invalid grouping unit")
	ErrInvalidRate       = fmt.Errorf("invalid daily rate")
	ErrInvalidThresholds = fmt.Errorf("invalid badge thresholds")
	ErrCampaignNotFound  = fmt.Errorf("campaign not found")
	ErrUnknownTier       = fmt.Errorf("unknown badge tier")
)
