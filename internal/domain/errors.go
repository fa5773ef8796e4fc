package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is. The structured errors below unwrap to them.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrCapacity    = errors.New("not enough capacity")
	ErrForbidden   = errors.New("forbidden")
	ErrBusy        = errors.New("resource busy")
	ErrConsistency = errors.New("consistency fault")
)

// ValidationError reports malformed input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Reason
	}
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports an unknown resource id. Kind is "room", "flight", "hotel_booking"...
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// CapacityError is the normal negative outcome of a reservation: the room is
// occupied for the requested stay or the flight has too few seats left.
type CapacityError struct {
	Kind      string
	ID        int64
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	if e.Kind == "room" {
		return fmt.Sprintf("room %d is not available for the selected dates", e.ID)
	}
	return fmt.Sprintf("%s %d has %d seats available, %d requested", e.Kind, e.ID, e.Available, e.Requested)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

// ForbiddenError reports a failed access policy check.
type ForbiddenError struct {
	PrincipalID int64
	Kind        string
	ID          int64
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("principal %d may not access %s %d", e.PrincipalID, e.Kind, e.ID)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// BusyError reports that a resource lock could not be acquired within the wait bound.
type BusyError struct {
	Key string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("resource %s is busy, retry later", e.Key)
}

func (e *BusyError) Unwrap() error { return ErrBusy }

// ConsistencyFault is an internal invariant violation. It fails the operation
// and is logged; the data is never silently corrected.
type ConsistencyFault struct {
	Kind   string
	ID     int64
	Detail string
}

func (e *ConsistencyFault) Error() string {
	return fmt.Sprintf("consistency fault on %s %d: %s", e.Kind, e.ID, e.Detail)
}

func (e *ConsistencyFault) Unwrap() error { return ErrConsistency }

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrCapacity) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound)
}

// IsRetryable reports whether the same request may succeed later.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBusy)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
