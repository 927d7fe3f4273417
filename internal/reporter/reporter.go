// Package reporter aggregates translator events into a build.Build.
//
// The translator never says when an action ends. The reporter derives that:
// an action is finished when the next one starts or when the build ends, and
// it re-emits build_action_finished for observers at those points.
package reporter

import (
	"errors"
	"fmt"
	"time"

	"github.com/Norgate-AV/xcb/internal/build"
	"github.com/Norgate-AV/xcb/internal/event"
	"github.com/Norgate-AV/xcb/internal/output"
)

// ErrNoBuild is returned for events that need a build before build_started
var ErrNoBuild = errors.New("no build in progress")

// Reporter holds the build currently being reported on
type Reporter struct {
	build  *build.Build
	events *event.Bus
	strict bool
	now    func() time.Time
}

// Option configures a Reporter
type Option func(*Reporter)

// WithStrict makes the reporter fail on events it cannot place (an error
// line with no open action, action lines before the build banner) instead
// of dropping them.
func WithStrict(strict bool) Option {
	return func(r *Reporter) {
		r.strict = strict
	}
}

// WithClock sets the clock used for build timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// New creates a reporter with no build
func New(opts ...Option) *Reporter {
	r := &Reporter{
		events: event.NewBus(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Build returns the current build, or nil before the first build_started
func (r *Reporter) Build() *build.Build {
	return r.build
}

// Events returns the bus on which the reporter re-emits build_started,
// build_action_started, build_action_finished and build_finished.
func (r *Reporter) Events() *event.Bus {
	return r.events
}

// Subscribe registers the reporter as the handler for translator events on bus
func (r *Reporter) Subscribe(bus *event.Bus) {
	bus.On(event.BuildStarted, r.handle(r.buildStarted))
	bus.On(event.BuildAction, r.handle(r.buildAction))
	bus.On(event.BuildErrorDetected, r.handle(r.buildErrorDetected))
	bus.On(event.BuildSucceeded, r.handle(r.buildSucceeded))
	bus.On(event.BuildFailed, r.handle(r.buildFailed))
	bus.On(event.BuildActionFailed, r.handle(r.buildActionFailed))
}

func (r *Reporter) handle(fn func(any) error) event.Handler {
	return func(e event.Event) error {
		if err := fn(e.Payload); err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}

		return nil
	}
}

func (r *Reporter) buildStarted(payload any) error {
	meta, ok := payload.(build.Metadata)
	if !ok {
		return payloadError(payload, build.Metadata{})
	}

	r.build = build.New(meta, build.WithClock(r.now))
	output.Debug("build started",
		"project", meta.Project,
		"target", meta.Target,
		"configuration", meta.Configuration,
		"default", meta.Default,
	)

	return r.events.Notify(event.BuildStarted, r.build)
}

func (r *Reporter) buildAction(payload any) error {
	d, ok := payload.(build.ActionDescriptor)
	if !ok {
		return payloadError(payload, build.ActionDescriptor{})
	}

	if r.build == nil {
		return r.drop("action before build started", "action", d.String())
	}

	if last := r.build.LastAction(); last != nil {
		if err := r.events.Notify(event.BuildActionFinished, last); err != nil {
			return err
		}
	}

	a := r.build.AddAction(d)

	return r.events.Notify(event.BuildActionStarted, a)
}

func (r *Reporter) buildErrorDetected(payload any) error {
	e, ok := payload.(build.Error)
	if !ok {
		return payloadError(payload, build.Error{})
	}

	if r.build == nil {
		return r.drop("error before build started", "error", e.String())
	}

	if err := r.build.RecordError(e); err != nil {
		if errors.Is(err, build.ErrNoOpenAction) {
			return r.dropErr(err, "error", e.String())
		}

		return err
	}

	return nil
}

func (r *Reporter) buildActionFailed(payload any) error {
	d, ok := payload.(build.ActionDescriptor)
	if !ok {
		return payloadError(payload, build.ActionDescriptor{})
	}

	if r.build == nil {
		return r.drop("failed action before build started", "action", d.String())
	}

	if !r.build.MarkActionFailed(d) {
		output.Debug("failed action not seen in this build", "action", d.String())
	}

	return nil
}

func (r *Reporter) buildSucceeded(any) error {
	if r.build == nil {
		return ErrNoBuild
	}

	if err := r.build.Succeed(); err != nil {
		return err
	}

	return r.buildFinished()
}

func (r *Reporter) buildFailed(any) error {
	if r.build == nil {
		return ErrNoBuild
	}

	if err := r.build.Fail(); err != nil {
		return err
	}

	return r.buildFinished()
}

func (r *Reporter) buildFinished() error {
	if last := r.build.LastAction(); last != nil {
		if err := r.events.Notify(event.BuildActionFinished, last); err != nil {
			return err
		}
	}

	output.Debug("build finished", "state", r.build.State(), "actions", len(r.build.Actions()))

	return r.events.Notify(event.BuildFinished, r.build)
}

// drop discards an event that has nowhere to go. Strict reporters fail instead.
func (r *Reporter) drop(msg string, keyvals ...interface{}) error {
	return r.dropErr(fmt.Errorf("%s: %w", msg, ErrNoBuild), keyvals...)
}

func (r *Reporter) dropErr(err error, keyvals ...interface{}) error {
	if r.strict {
		return err
	}

	output.Debug("dropping event: "+err.Error(), keyvals...)

	return nil
}

func payloadError(got, want any) error {
	return fmt.Errorf("unexpected payload %T, want %T", got, want)
}
