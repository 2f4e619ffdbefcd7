package flow

import (
	"fmt"

	"github.com/Spok95/absence-bot/internal/dialog"
)

type ResultKind int

const (
	ResultContinue ResultKind = iota + 1
	ResultComplete
	ResultRejected
)

// Result is what a step or command asks the engine to do with the user's state.
type Result struct {
	Kind    ResultKind
	Next    dialog.State
	Payload dialog.Payload
	Err     *Error

	outcome string
}

// Continue stores next as the user's state.
func Continue(next dialog.State, p dialog.Payload) Result {
	return Result{Kind: ResultContinue, Next: next, Payload: p}
}

// Complete closes the open flow, if any.
func Complete() Result {
	return Result{Kind: ResultComplete}
}

func cancelled() Result {
	return Result{Kind: ResultComplete, outcome: "cancelled"}
}

// Reject answers with err.Msg; the state stays unless err.Abort is set.
func Reject(err *Error) Result {
	return Result{Kind: ResultRejected, Err: err}
}

type ErrorKind int

const (
	Validation ErrorKind = iota + 1
	Precondition
	NotFound
	Conflict
	Transport
)

func (k ErrorKind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Precondition:
		return "precondition"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Transport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is a user-facing rejection. Msg is sent to the user as is.
type Error struct {
	Kind  ErrorKind
	Msg   string
	Abort bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func invalid(msg string) *Error      { return &Error{Kind: Validation, Msg: msg} }
func precondition(msg string) *Error { return &Error{Kind: Precondition, Msg: msg} }
func notFound(msg string) *Error     { return &Error{Kind: NotFound, Msg: msg} }
func conflict(msg string) *Error     { return &Error{Kind: Conflict, Msg: msg} }
func transport(msg string) *Error    { return &Error{Kind: Transport, Msg: msg} }

// aborted closes the flow after the message.
func aborted(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Abort: true}
}
