// Package build holds the in-memory model of a single build tool invocation.
//
// A Build owns an ordered list of actions in the order the tool emitted them,
// and each action owns the compile errors reported while it was open. The
// build moves from running to exactly one of successful or failed; the finish
// time is stamped by that transition and never again.
package build

import (
	"slices"
	"time"
)

// Metadata describes the build as announced by the tool's start banner
type Metadata struct {
	// Project is the project name from the banner
	Project string

	// Target is the target being built
	Target string

	// Configuration is the build configuration (e.g., Debug, Release)
	Configuration string

	// Default is true when the tool fell back to its default configuration
	Default bool
}

// Build is one full invocation of the build tool
type Build struct {
	Project              string
	Target               string
	Configuration        string
	DefaultConfiguration bool

	// StartedAt is when the start banner was seen
	StartedAt time.Time

	// FinishedAt is zero until the build reaches a terminal state
	FinishedAt time.Time

	state   State
	actions []*Action
	now     func() time.Time
}

// Option configures a new Build
type Option func(*Build)

// WithClock replaces time.Now for the start and finish timestamps
func WithClock(now func() time.Time) Option {
	return func(b *Build) {
		b.now = now
	}
}

// New starts a build in the running state
func New(meta Metadata, opts ...Option) *Build {
	b := &Build{
		Project:              meta.Project,
		Target:               meta.Target,
		Configuration:        meta.Configuration,
		DefaultConfiguration: meta.Default,
		state:                Running,
		now:                  time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	b.StartedAt = b.now()

	return b
}

// State returns the current lifecycle state
func (b *Build) State() State {
	return b.state
}

// Finished reports whether the build reached a terminal state
func (b *Build) Finished() bool {
	return b.state.IsTerminal()
}

// Duration returns the time between start and finish.
// ok is false while the build is still running.
func (b *Build) Duration() (d time.Duration, ok bool) {
	if !b.Finished() {
		return 0, false
	}

	return b.FinishedAt.Sub(b.StartedAt), true
}

// AddAction appends a new action and returns it
func (b *Build) AddAction(d ActionDescriptor) *Action {
	a := newAction(d)
	b.actions = append(b.actions, a)

	return a
}

// LastAction returns the most recently added action, or nil
func (b *Build) LastAction() *Action {
	if len(b.actions) == 0 {
		return nil
	}

	return b.actions[len(b.actions)-1]
}

// Actions returns the actions in emission order.
// The slice is a copy; the actions themselves are shared.
func (b *Build) Actions() []*Action {
	return slices.Clone(b.actions)
}

// FailedActions returns the actions flagged as failed
func (b *Build) FailedActions() []*Action {
	var failed []*Action
	for _, a := range b.actions {
		if a.Failed {
			failed = append(failed, a)
		}
	}

	return failed
}

// ActionsWithErrors returns the actions that recorded at least one error
func (b *Build) ActionsWithErrors() []*Action {
	var out []*Action
	for _, a := range b.actions {
		if a.HasErrors() {
			out = append(out, a)
		}
	}

	return out
}

// ErrorCount returns the total number of errors across all actions
func (b *Build) ErrorCount() int {
	n := 0
	for _, a := range b.actions {
		n += len(a.Errors)
	}

	return n
}

// ActionWithDescriptor finds the first action matching d, or nil
func (b *Build) ActionWithDescriptor(d ActionDescriptor) *Action {
	for _, a := range b.actions {
		if a.Matches(d) {
			return a
		}
	}

	return nil
}

// RecordError attaches e to the last action
func (b *Build) RecordError(e Error) error {
	a := b.LastAction()
	if a == nil {
		return ErrNoOpenAction
	}

	a.addError(e)

	return nil
}

// MarkActionFailed flags the action matching d as failed.
// It returns false when no action matches; the lookup is not retried later.
func (b *Build) MarkActionFailed(d ActionDescriptor) bool {
	a := b.ActionWithDescriptor(d)
	if a == nil {
		return false
	}

	a.Failed = true

	return true
}

// Succeed moves a running build to successful
func (b *Build) Succeed() error {
	return b.transition(Successful)
}

// Fail moves a running build to failed
func (b *Build) Fail() error {
	return b.transition(Failed)
}

func (b *Build) transition(to State) error {
	if !canTransition(b.state, to) {
		return &TransitionError{From: b.state, To: to}
	}

	b.state = to
	b.FinishedAt = b.now()

	return nil
}
