package types

import (
	"errors"
	"fmt"
)

// Exit codes used when unwinding a guidebook.
const (
	ExitOK          = 0
	ExitInterrupted = 130
)

var (
	// ErrEarlyExit marks a deliberate stop; it is not a failure. Match it
	// with errors.Is, never by message.
	ErrEarlyExit = errors.New("early exit")

	// ErrCanceled is returned by prompt providers when the user dismisses a
	// question.
	ErrCanceled = errors.New("operation canceled")
)

// EarlyExitError unwinds the graph walk with an exit code.
type EarlyExitError struct {
	Code int
}

func (e *EarlyExitError) Error() string {
	return fmt.Sprintf("early exit with code %d", e.Code)
}

func (e *EarlyExitError) Is(target error) bool {
	return target == ErrEarlyExit
}

// EarlyExit returns an error that stops the current run with the given code.
func EarlyExit(code int) error {
	return &EarlyExitError{Code: code}
}

// IsEarlyExit returns the exit code carried by err, if any.
func IsEarlyExit(err error) (int, bool) {
	var early *EarlyExitError
	if errors.As(err, &early) {
		return early.Code, true
	}
	return 0, false
}

// UnansweredError reports a question that run mode cannot answer.
type UnansweredError struct {
	GroupContext string
	Title        string
}

func (e *UnansweredError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("no prior answer for question %q (%s); run in guide mode to answer it", e.Title, e.GroupContext)
	}
	return fmt.Sprintf("no prior answer for question %s; run in guide mode to answer it", e.GroupContext)
}

// UnknownOptionError reports an answer that matches no option of a choice.
type UnknownOptionError struct {
	GroupContext string
	Answer       string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("answer %q is not an option of %s", e.Answer, e.GroupContext)
}

func NewUnansweredError(groupContext, title string) error {
	return &UnansweredError{GroupContext: groupContext, Title: title}
}

func NewUnknownOptionError(groupContext, answer string) error {
	return &UnknownOptionError{GroupContext: groupContext, Answer: answer}
}
