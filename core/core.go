/*
Package core defines the error taxonomy shared by all custodian layers. The
orchestration components return *Error values and the HTTP layer maps their
Kind to a status code.
*/
package core

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error by the rule it violated.
type Kind int

const (
	KindUnknown Kind = iota
	SyntacticallyInvalid
	SemanticallyInvalid
	NotFound
	Conflict
	NotImplemented
	Upstream
)

var kindNames = [...]string{
	KindUnknown:          "unknown",
	SyntacticallyInvalid: "syntactically invalid input",
	SemanticallyInvalid:  "semantically invalid input",
	NotFound:             "not found",
	Conflict:             "conflict",
	NotImplemented:       "not implemented",
	Upstream:             "upstream error",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// Error is the typed error of the custodian. Op is the operation name, ID the
// wallet or entry identifier the error concerns, and Msg the user facing
// message. Err is the optional cause.
type Error struct {
	Kind Kind
	Op   string
	ID   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else {
		b.WriteString(e.Kind.String())
		if e.ID != "" {
			b.WriteString(" (")
			b.WriteString(e.ID)
			b.WriteString(")")
		}
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so that errors.Is(err, &Error{Kind: NotFound})
// works for any wrapped custodian error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.ID == "" && t.Msg == ""
}

// Message returns the user facing message without operation and cause.
func (e *Error) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.ID != "" {
		return fmt.Sprintf("%s (%s)", e.Kind, e.ID)
	}
	return e.Kind.String()
}

// Sentinels for errors.Is checks.
var (
	ErrSyntacticallyInvalid = &Error{Kind: SyntacticallyInvalid}
	ErrSemanticallyInvalid  = &Error{Kind: SemanticallyInvalid}
	ErrNotFound             = &Error{Kind: NotFound}
	ErrConflict             = &Error{Kind: Conflict}
	ErrNotImplemented       = &Error{Kind: NotImplemented}
	ErrUpstream             = &Error{Kind: Upstream}
)

// KindOf returns the kind of the first *Error in the chain, KindUnknown if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user facing message of the first *Error in the chain
// or the plain error text.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}

func newErr(k Kind, op, id, format string, a ...any) *Error {
	msg := format
	if len(a) > 0 {
		msg = fmt.Sprintf(format, a...)
	}
	return &Error{Kind: k, Op: op, ID: id, Msg: msg}
}

func SyntaxErr(op, format string, a ...any) *Error {
	return newErr(SyntacticallyInvalid, op, "", format, a...)
}

func SemanticErr(op, id, format string, a ...any) *Error {
	return newErr(SemanticallyInvalid, op, id, format, a...)
}

func NotFoundErr(op, id, format string, a ...any) *Error {
	return newErr(NotFound, op, id, format, a...)
}

func ConflictErr(op, id, format string, a ...any) *Error {
	return newErr(Conflict, op, id, format, a...)
}

func NotImplementedErr(op, id, format string, a ...any) *Error {
	return newErr(NotImplemented, op, id, format, a...)
}

// UpstreamErr wraps a failure of the identity agent or of a store write that
// followed a successful agent call. An err that is already a custodian error
// keeps its kind.
func UpstreamErr(op, id string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindUnknown {
		return err
	}
	return &Error{Kind: Upstream, Op: op, ID: id, Err: err}
}
