package refkind

import (
	"errors"
	"fmt"
)

// MoveError enumerates why an accessor could not be moved out of a slot. The
// set is closed: callers switch on NotFound and BorrowedMutably only.
type MoveError uint8

const (
	// NotFound reports that there is no accessor to move: the location does
	// not exist, or the slot there was emptied by an earlier exclusive move.
	NotFound MoveError = iota + 1
	// BorrowedMutably reports that an exclusive accessor was requested from a
	// slot that only holds a shared one.
	BorrowedMutably
)

func (e MoveError) Error() string {
	switch e {
	case NotFound:
		return "refkind: not found"
	case BorrowedMutably:
		return "refkind: borrowed mutably"
	default:
		return fmt.Sprintf("refkind: move error(%d)", uint8(e))
	}
}

func (e MoveError) String() string {
	switch e {
	case NotFound:
		return "NotFound"
	case BorrowedMutably:
		return "BorrowedMutably"
	default:
		return "Unknown"
	}
}

// ErrOccupied is returned by the TryInsert family when the key already holds
// a slot.
var ErrOccupied = errors.New("refkind: key already occupied")

// Op names the collection operation that produced an event or error.
type Op string

const (
	OpMoveRef Op = "move_ref"
	OpMoveMut Op = "move_mut"
)

// AccessError decorates a MoveError with the collection location it happened
// at. Missing separates "no slot at this location" from "slot present but
// empty or of the wrong kind"; both carry the same MoveError kind.
type AccessError struct {
	Op      Op
	Key     any
	Missing bool
	Err     MoveError
}

func (e *AccessError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("refkind: %s key=%s: %s", e.Op, describeKey(e.Key), e.Err.String())
	if e.Missing {
		msg += " (no such location)"
	}
	return msg
}

func (e *AccessError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsMissing reports whether err was caused by a location that holds no slot.
func IsMissing(err error) bool {
	var accessErr *AccessError
	if errors.As(err, &accessErr) {
		return accessErr.Missing
	}
	return false
}

// KindOf extracts the MoveError kind from err.
func KindOf(err error) (MoveError, bool) {
	var kind MoveError
	if errors.As(err, &kind) {
		return kind, true
	}
	return 0, false
}

func describeKey(key any) string {
	switch k := key.(type) {
	case nil:
		return "<none>"
	case string:
		return fmt.Sprintf("%q", k)
	default:
		return fmt.Sprintf("%v", k)
	}
}

func missingError(op Op, key any) error {
	return &AccessError{Op: op, Key: key, Missing: true, Err: NotFound}
}

func wrapAccessError(op Op, key any, err error) error {
	if err == nil {
		return nil
	}
	var accessErr *AccessError
	if errors.As(err, &accessErr) {
		if accessErr.Op == "" {
			accessErr.Op = op
		}
		if accessErr.Key == nil {
			accessErr.Key = key
		}
		return accessErr
	}
	kind, ok := KindOf(err)
	if !ok {
		return fmt.Errorf("refkind: %s key=%s: %w", op, describeKey(key), err)
	}
	return &AccessError{Op: op, Key: key, Err: kind}
}
