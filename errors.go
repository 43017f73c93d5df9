// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package phys2d

import "fmt"

// Kind distinguishes the error conditions phys2d can raise. Each is
// raised for a disjoint failure condition; no numeric codes are shared
// across kinds.
type Kind int

const (
	// WrongState: a structural mutation was attempted while the world
	// was locked (mid-step or mid-callback).
	WrongState Kind = iota
	// LengthError: creating a body/joint would exceed the id domain.
	LengthError
	// InvalidArgument: a shape/fixture/joint definition is malformed.
	InvalidArgument
	// OutOfRange: an index argument (joint anchor, TOI query) is invalid.
	OutOfRange
	// DomainError: a derived quantity that must be finite was NaN/Inf.
	DomainError
)

func (k Kind) String() string {
	switch k {
	case WrongState:
		return "WrongState"
	case LengthError:
		return "LengthError"
	case InvalidArgument:
		return "InvalidArgument"
	case OutOfRange:
		return "OutOfRange"
	case DomainError:
		return "DomainError"
	default:
		return "Unknown"
	}
}

// Error is phys2d's single error type, carrying a Kind so callers can
// branch with errors.As/a type switch rather than string matching.
// Grounded in idiomatic modern Go error design rather than the teacher:
// gazed/vu predates error-wrapping conventions and mostly logs-and-clamps
// instead of returning errors; see DESIGN.md.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "CreateBody"
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("phys2d: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("phys2d: %s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Is allows errors.Is(err, ErrLocked)-style comparisons against another
// *Error, matching on Kind rather than identity or message text.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func newError(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ErrLocked is returned by structural mutators called while the world is
// mid-step.
var ErrLocked = &Error{Kind: WrongState, Op: "World", Msg: "world is locked"}
