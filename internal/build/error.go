package build

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOpenAction is returned when an error is recorded before any action
	ErrNoOpenAction = errors.New("no open action to attach error to")

	// ErrIllegalTransition is wrapped by every rejected state transition
	ErrIllegalTransition = errors.New("illegal build state transition")
)

// Error is a compile error reported by the build tool
type Error struct {
	// File is the source path as printed by the compiler
	File string `json:"file" yaml:"file"`

	// Line is the 1-based line number
	Line int `json:"line" yaml:"line"`

	// Column is the 1-based column number
	Column int `json:"column" yaml:"column"`

	// Message is the diagnostic text following "error: "
	Message string `json:"message" yaml:"message"`
}

func (e Error) String() string {
	return fmt.Sprintf("%s:%d:%d: error: %s", e.File, e.Line, e.Column, e.Message)
}

// TransitionError describes a rejected lifecycle transition
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move build from %s to %s: %v", e.From, e.To, ErrIllegalTransition)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}
