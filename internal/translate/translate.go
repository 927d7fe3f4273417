// Package translate turns xcodebuild output into build lifecycle events.
//
// A Translator looks at one line at a time and raises at most one event per
// line. It remembers two things between lines: whether the previous line was
// blank (so this one starts an action) and whether it is inside the failed
// command report that xcodebuild prints at the end of a failed build.
package translate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Norgate-AV/xcb/internal/build"
	"github.com/Norgate-AV/xcb/internal/event"
)

var (
	// ** BUILD SUCCEEDED ** / ** BUILD FAILED **
	buildResultRe = regexp.MustCompile(`^\*\* BUILD (\w+) \*\*`)

	// === BUILD TARGET App OF PROJECT App WITH CONFIGURATION Debug ===
	buildBannerRe   = regexp.MustCompile(`^=== BUILD`)
	targetRe        = regexp.MustCompile(`TARGET (\w+)`)
	projectRe       = regexp.MustCompile(`PROJECT (\w+)`)
	defaultConfigRe = regexp.MustCompile(`DEFAULT CONFIGURATION \((\w+)\)`)
	configRe        = regexp.MustCompile(`CONFIGURATION (\w+)`)

	// /src/Foo.m:12:5: error: use of undeclared identifier 'x'
	compileErrorRe = regexp.MustCompile(`^(.*?):(\d+):(\d+): error: (.*)$`)

	failedCommandsRe = regexp.MustCompile(`^The following build commands failed:`)

	// (1 failure) / (3 failures)
	failureSummaryRe = regexp.MustCompile(`^\(\d+ failures?\)`)
)

// Notifier receives the events raised by a Translator. *event.Bus satisfies it.
type Notifier interface {
	Notify(name event.Name, payload any, opts ...event.NotifyOption) error
}

// State is the translator's memory between lines
type State struct {
	ExpectingActionLine      bool
	ExpectingErrorReportBody bool
}

// Translator classifies build tool output lines
type Translator struct {
	notifier Notifier
	state    State
}

// New creates a translator that raises events on n
func New(n Notifier) *Translator {
	return &Translator{notifier: n}
}

// State returns the current line expectations
func (t *Translator) State() State {
	return t.state
}

// Reset forgets any pending expectations
func (t *Translator) Reset() {
	t.state = State{}
}

// Translate classifies a single line, with or without its line terminator,
// and raises the matching event. Lines that match nothing are ignored.
// Errors from the notifier are returned as is.
func (t *Translator) Translate(line string) error {
	line = strings.TrimRight(line, "\r\n")

	if m := buildResultRe.FindStringSubmatch(line); m != nil {
		return t.buildEnded(m[1])
	}

	if t.state.ExpectingActionLine {
		t.state.ExpectingActionLine = false
		if strings.TrimSpace(line) == "" {
			return nil
		}

		return t.notifier.Notify(event.BuildAction, build.ParseActionDescriptor(line))
	}

	if t.state.ExpectingErrorReportBody {
		if failureSummaryRe.MatchString(line) {
			t.state.ExpectingErrorReportBody = false
			return nil
		}

		// a blank line would be an empty descriptor, which matches no action
		if strings.TrimSpace(line) == "" {
			return nil
		}

		return t.notifier.Notify(event.BuildActionFailed, build.ParseActionDescriptor(line))
	}

	switch {
	case buildBannerRe.MatchString(line):
		return t.buildStarted(line)
	case compileErrorRe.MatchString(line):
		return t.buildError(compileErrorRe.FindStringSubmatch(line))
	case failedCommandsRe.MatchString(line):
		t.state.ExpectingErrorReportBody = true
	case line == "":
		t.state.ExpectingActionLine = true
	}

	return nil
}

func (t *Translator) buildEnded(result string) error {
	if strings.Contains(result, "SUCCEEDED") {
		return t.notifier.Notify(event.BuildSucceeded, nil, event.Required())
	}

	return t.notifier.Notify(event.BuildFailed, nil, event.Required())
}

func (t *Translator) buildStarted(line string) error {
	meta := build.Metadata{
		Target:  firstGroup(targetRe, line),
		Project: firstGroup(projectRe, line),
	}

	if m := defaultConfigRe.FindStringSubmatch(line); m != nil {
		meta.Configuration = m[1]
		meta.Default = true
	} else {
		meta.Configuration = firstGroup(configRe, line)
	}

	return t.notifier.Notify(event.BuildStarted, meta, event.Required())
}

func (t *Translator) buildError(m []string) error {
	// the regexp only admits digits here
	lineNo, _ := strconv.Atoi(m[2])
	col, _ := strconv.Atoi(m[3])

	return t.notifier.Notify(event.BuildErrorDetected, build.Error{
		File:    m[1],
		Line:    lineNo,
		Column:  col,
		Message: m[4],
	})
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}

	return ""
}
