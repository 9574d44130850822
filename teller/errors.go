package teller

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArgCount       = errors.New("wrong number of arguments")
	ErrInvalidArg     = errors.New("invalid argument")
	ErrInterrupted    = errors.New("interrupted")
	ErrNoKeyboard     = errors.New("no keyboard source")
)

// CommandError wraps a failure of a single script command
type CommandError struct {
	Name string
	Err  error
}

func (e *CommandError) Error() string { return fmt.Sprintf("%s: %v", e.Name, e.Err) }
func (e *CommandError) Unwrap() error { return e.Err }

// ArgCountError reports an arity mismatch; it matches ErrArgCount
type ArgCountError struct {
	Command string
	Want    string
	Got     int
}

func (e *ArgCountError) Error() string {
	return fmt.Sprintf("'%s' takes %s, got %d", e.Command, e.Want, e.Got)
}

func (e *ArgCountError) Is(target error) bool { return target == ErrArgCount }

// invalidArg builds an ErrInvalidArg with context
func invalidArg(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArg, fmt.Sprintf(format, a...))
}
