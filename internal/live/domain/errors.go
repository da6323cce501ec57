package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned when a session is already open for the board.
	ErrConflict = errors.New("live session already open for board")
	// ErrSessionNotFound is returned when no session is open where one was expected.
	ErrSessionNotFound = errors.New("live session not found")
	// ErrBoardNotFound is returned when the board does not exist.
	ErrBoardNotFound = errors.New("board not found")
	// ErrInvalidArgument is returned for malformed requests (e.g. empty kick target).
	ErrInvalidArgument = errors.New("invalid argument")
)

// DenyReason is a machine-readable authorization failure.
type DenyReason string

const (
	ReasonBoardUnavailable DenyReason = "BOARD_UNAVAILABLE"
	ReasonNotOwner         DenyReason = "NOT_OWNER"
	ReasonOutsideWindow    DenyReason = "OUTSIDE_WINDOW"
	ReasonNotAMember       DenyReason = "NOT_A_MEMBER"
	ReasonRoomFull         DenyReason = "ROOM_FULL"
)

// WindowDetail refines ReasonOutsideWindow.
type WindowDetail string

const (
	TooEarly WindowDetail = "TOO_EARLY"
	TooLate  WindowDetail = "TOO_LATE"
	WrongDay WindowDetail = "WRONG_DAY"
)

// Decision is the gate's verdict. The zero value is not an allow; use Allow().
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Detail  WindowDetail
}

// Allow returns an allowing decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a denying decision with reason and optional detail.
func Deny(reason DenyReason, detail WindowDetail) Decision {
	return Decision{Reason: reason, Detail: detail}
}

// Err converts a denying decision into a *DenyError; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DenyError{Reason: d.Reason, Detail: d.Detail}
}

// DenyError is an authorization failure the caller can correct.
type DenyError struct {
	Reason DenyReason
	Detail WindowDetail
}

func (e *DenyError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("denied: %s (%s)", e.Reason, e.Detail)
	}
	return fmt.Sprintf("denied: %s", e.Reason)
}

// AdapterError is a failed or timed-out control plane call. Detail carries the
// control plane's own error text so operators can decide whether to retry.
type AdapterError struct {
	Op     string
	Detail string
	Err    error
}

func (e *AdapterError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("control plane %s failed: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("control plane %s failed", e.Op)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// IsDenied reports whether err is a *DenyError with the given reason.
func IsDenied(err error, reason DenyReason) bool {
	var d *DenyError
	return errors.As(err, &d) && d.Reason == reason
}
