// Package pipeline connects a line translator to a build reporter.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/Norgate-AV/xcb/internal/build"
	"github.com/Norgate-AV/xcb/internal/event"
	"github.com/Norgate-AV/xcb/internal/output"
	"github.com/Norgate-AV/xcb/internal/reporter"
	"github.com/Norgate-AV/xcb/internal/translate"
)

// maxLineSize bounds a single output line; linker command lines get long
const maxLineSize = 4 * 1024 * 1024

// Pipeline feeds lines through a translator into a reporter.
// It processes one line at a time and is not safe for concurrent use.
type Pipeline struct {
	bus        *event.Bus
	translator *translate.Translator
	reporter   *reporter.Reporter
	builds     []*build.Build
	lines      int
}

// New creates a pipeline whose reporter is configured with opts
func New(opts ...reporter.Option) *Pipeline {
	bus := event.NewBus()
	r := reporter.New(opts...)
	r.Subscribe(bus)

	p := &Pipeline{
		bus:        bus,
		translator: translate.New(bus),
		reporter:   r,
	}

	r.Events().On(event.BuildStarted, p.collect)
	// runs after the reporter has looked in the current build
	bus.On(event.BuildActionFailed, p.markFailedInEarlierBuilds)

	return p
}

// Events is where observers subscribe to build progress
func (p *Pipeline) Events() *event.Bus {
	return p.reporter.Events()
}

// Build returns the build seen so far, or nil
func (p *Pipeline) Build() *build.Build {
	return p.reporter.Build()
}

// Builds returns every build seen so far, oldest first. xcodebuild prints
// one banner per target, so a run with several targets has several builds.
func (p *Pipeline) Builds() []*build.Build {
	return slices.Clone(p.builds)
}

// Lines returns how many lines have been fed
func (p *Pipeline) Lines() int {
	return p.lines
}

// Feed processes a single line
func (p *Pipeline) Feed(line string) error {
	p.lines++

	if err := p.translator.Translate(line); err != nil {
		return fmt.Errorf("line %d: %w", p.lines, err)
	}

	return nil
}

func (p *Pipeline) collect(e event.Event) error {
	if b, ok := e.Payload.(*build.Build); ok {
		p.builds = append(p.builds, b)
	}

	return nil
}

// markFailedInEarlierBuilds places failure report lines that name an action
// of a target built before the current one.
func (p *Pipeline) markFailedInEarlierBuilds(e event.Event) error {
	d, ok := e.Payload.(build.ActionDescriptor)
	if !ok || len(p.builds) < 2 {
		return nil
	}

	if p.Build().ActionWithDescriptor(d) != nil {
		return nil
	}

	for i := len(p.builds) - 2; i >= 0; i-- {
		if p.builds[i].MarkActionFailed(d) {
			return nil
		}
	}

	return nil
}

// Run feeds every line of r until EOF, an error, or ctx is done.
// The build keeps whatever state it reached when Run returns.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := p.Feed(scanner.Text()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading build output: %w", err)
	}

	// a trailing blank line must not turn the next stream's first line into an action
	if st := p.translator.State(); st != (translate.State{}) {
		output.Debug("output ended with the translator mid-block",
			"expecting_action", st.ExpectingActionLine,
			"in_failure_report", st.ExpectingErrorReportBody,
		)
		p.translator.Reset()
	}

	return nil
}
