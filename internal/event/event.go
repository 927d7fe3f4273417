// Package event provides the named-event dispatcher shared by the line
// translator, the build reporter and any observers of a build.
package event

import (
	"errors"
	"fmt"
)

// Name identifies a build lifecycle event.
type Name string

// Events raised by the line translator.
const (
	BuildStarted       Name = "build_started"
	BuildAction        Name = "build_action"
	BuildErrorDetected Name = "build_error_detected"
	BuildSucceeded     Name = "build_succeeded"
	BuildFailed        Name = "build_failed"
	BuildActionFailed  Name = "build_action_failed"
)

// Events re-emitted by the build reporter.
const (
	BuildActionStarted  Name = "build_action_started"
	BuildActionFinished Name = "build_action_finished"
	BuildFinished       Name = "build_finished"
)

// ErrNoHandler is returned when a required event has no registered handler.
var ErrNoHandler = errors.New("no handler registered")

// MissingHandlerError reports a required event that nobody was listening for
type MissingHandlerError struct {
	Event Name
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("required event %q: %v", e.Event, ErrNoHandler)
}

func (e *MissingHandlerError) Unwrap() error {
	return ErrNoHandler
}

// Event is a single notification. Payload depends on Name:
//
//	build_started (translator)   build.Metadata
//	build_started (reporter)     *build.Build
//	build_action                 build.ActionDescriptor
//	build_action_failed          build.ActionDescriptor
//	build_error_detected         build.Error
//	build_action_started         *build.Action
//	build_action_finished        *build.Action
//	build_finished               *build.Build
//	build_succeeded/build_failed nil
type Event struct {
	Name    Name
	Payload any
}

// Handler receives an event. A non-nil error stops dispatch and is returned
// to whoever raised the event.
type Handler func(Event) error
