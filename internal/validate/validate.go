// Package validate checks a single time entry candidate before it is saved.
package validate

import (
	"errors"
	"strings"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

// Rule failures, in the order they are checked.
var (
	ErrMissingWorker   = errors.New("worker name is required")
	ErrMissingDate     = errors.New("date is required")
	ErrMissingClockIn  = errors.New("clock-in time is required")
	ErrMissingClockOut = errors.New("clock-out time is required")
	ErrBadClockIn      = errors.New("clock-in is not a valid HH:mm time")
	ErrBadClockOut     = errors.New("clock-out is not a valid HH:mm time")
	ErrNotAfter        = errors.New("clock-out must be after clock-in")
)

// Error reports the first rule an entry failed.
type Error struct {
	Rule error
}

func (e *Error) Error() string { return e.Rule.Error() }

func (e *Error) Unwrap() error { return e.Rule }

// IsValidationError reports whether err came from Entry.
func IsValidationError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// Entry returns nil when e is valid, otherwise an *Error naming the first
// failing rule. Later rules are not evaluated.
func Entry(e model.TimeEntry) error {
	switch {
	case blank(e.PersonName):
		return &Error{Rule: ErrMissingWorker}
	case blank(e.Date):
		return &Error{Rule: ErrMissingDate}
	case blank(e.ClockIn):
		return &Error{Rule: ErrMissingClockIn}
	case blank(e.ClockOut):
		return &Error{Rule: ErrMissingClockOut}
	}

	in, err := timecalc.ParseTimeOfDay(e.ClockIn)
	if err != nil {
		return &Error{Rule: ErrBadClockIn}
	}
	out, err := timecalc.ParseTimeOfDay(e.ClockOut)
	if err != nil {
		return &Error{Rule: ErrBadClockOut}
	}
	if !out.After(in) {
		return &Error{Rule: ErrNotAfter}
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
