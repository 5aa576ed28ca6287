package ledger

import (
	"fmt"

	"hotel_reputation/internal/domain"
)

// FormatError means a ledger file exists but cannot be trusted; callers must not save over it.
type FormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("ledger %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// NotFoundError is returned by SetCell when the row or column was never ensured.
type NotFoundError struct {
	Hotel domain.HotelKey
	Date  domain.DateColumn
	Row   bool // true: row missing, false: column missing
}

func (e *NotFoundError) Error() string {
	if e.Row {
		return fmt.Sprintf("ledger: hotel %q not found", e.Hotel)
	}
	return fmt.Sprintf("ledger: date column %s not found", e.Date)
}

func (e *NotFoundError) Is(target error) bool { return target == domain.ErrNotFound }
