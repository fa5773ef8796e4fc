package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date returns the UTC midnight of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TruncateDay drops the clock part of t, keeping its calendar day in UTC.
func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return Date(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string. The field name is used in the validation error.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: fmt.Sprintf("must be a date in %s format", DateLayout)}
	}
	return t, nil
}

// Stay is a half-open interval of nights [CheckIn, CheckOut).
// A stay ending on the day another begins does not overlap it.
type Stay struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

func NewStay(checkIn, checkOut time.Time) Stay {
	return Stay{CheckIn: TruncateDay(checkIn), CheckOut: TruncateDay(checkOut)}
}

// StayFor returns the stay starting at start and lasting the given number of nights.
func StayFor(start time.Time, nights int) Stay {
	start = TruncateDay(start)
	return Stay{CheckIn: start, CheckOut: start.AddDate(0, 0, nights)}
}

func (s Stay) Validate() error {
	if s.CheckIn.IsZero() {
		return &ValidationError{Field: "check_in", Reason: "is required"}
	}
	if s.CheckOut.IsZero() {
		return &ValidationError{Field: "check_out", Reason: "is required"}
	}
	if !s.CheckIn.Before(s.CheckOut) {
		return &ValidationError{Field: "check_out", Reason: "must be after check-in"}
	}
	return nil
}

func (s Stay) Nights() int {
	return int(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
}

func (s Stay) Overlaps(other Stay) bool {
	return s.CheckIn.Before(other.CheckOut) && s.CheckOut.After(other.CheckIn)
}

func (s Stay) String() string {
	return "[" + s.CheckIn.Format(DateLayout) + ", " + s.CheckOut.Format(DateLayout) + ")"
}
