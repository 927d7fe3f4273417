package render

import (
	"fmt"
	"io"

	"github.com/Norgate-AV/xcb/internal/build"
	"github.com/Norgate-AV/xcb/internal/event"
	"github.com/charmbracelet/lipgloss"
)

// maxActionWidth truncates long action lines (linker invocations mostly)
const maxActionWidth = 100

// carriage return plus ANSI erase-line
const clearLine = "\r\x1b[K"

// Console prints build progress as the reporter re-emits events
type Console struct {
	w      io.Writer
	styles  styles
	live    bool
	pending bool // a progress line is waiting to be erased
}

// ConsoleOption configures a Console
type ConsoleOption func(*Console)

// WithLiveProgress shows the running action on a line that is rewritten in
// place. Only use it when nothing else writes to the same terminal.
func WithLiveProgress(live bool) ConsoleOption {
	return func(c *Console) {
		c.live = live
	}
}

// NewConsole creates a console writing to w. Colours are used only when w
// is a terminal that supports them.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		w:      w,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Attach subscribes the console to the reporter events on bus
func (c *Console) Attach(bus *event.Bus) {
	bus.On(event.BuildStarted, c.buildStarted)
	bus.On(event.BuildActionStarted, c.actionStarted)
	bus.On(event.BuildActionFinished, c.actionFinished)
	bus.On(event.BuildFinished, c.buildFinished)
}

func (c *Console) buildStarted(e event.Event) error {
	b, ok := e.Payload.(*build.Build)
	if !ok {
		return nil
	}

	if err := c.clearPending(); err != nil {
		return err
	}

	config := b.Configuration
	if b.DefaultConfiguration {
		config += ", default"
	}

	_, err := fmt.Fprintf(c.w, "%s Building %s/%s %s\n",
		c.styles.noun.Render(iconRun),
		c.styles.noun.Render(b.Project),
		c.styles.noun.Render(b.Target),
		c.styles.dim.Render("["+config+"]"),
	)

	return err
}

func (c *Console) actionStarted(e event.Event) error {
	a, ok := e.Payload.(*build.Action)
	if !ok || !c.live {
		return nil
	}

	if err := c.clearPending(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(c.w, "  %s %s", c.styles.noun.Render(iconRun), truncate(a.String(), maxActionWidth)); err != nil {
		return err
	}

	c.pending = true

	return nil
}

func (c *Console) actionFinished(e event.Event) error {
	a, ok := e.Payload.(*build.Action)
	if !ok {
		return nil
	}

	if err := c.clearPending(); err != nil {
		return err
	}

	icon := c.styles.ok.Render(iconOK)
	if a.HasErrors() {
		icon = c.styles.fail.Render(iconFail)
	}

	if _, err := fmt.Fprintf(c.w, "  %s %s\n", icon, truncate(a.String(), maxActionWidth)); err != nil {
		return err
	}

	for _, be := range a.Errors {
		loc := fmt.Sprintf("%s:%d:%d:", be.File, be.Line, be.Column)
		if _, err := fmt.Fprintf(c.w, "      %s %s\n", c.styles.dim.Render(loc), c.styles.fail.Render(be.Message)); err != nil {
			return err
		}
	}

	return nil
}

func (c *Console) buildFinished(e event.Event) error {
	b, ok := e.Payload.(*build.Build)
	if !ok {
		return nil
	}

	if err := c.clearPending(); err != nil {
		return err
	}

	var line string
	switch b.State() {
	case build.Successful:
		line = c.styles.ok.Render(iconOK + " Build succeeded")
	default:
		line = c.styles.fail.Render(iconFail + " Build failed")
	}

	if d, ok := b.Duration(); ok {
		line += c.styles.dim.Render(" in " + formatDuration(d))
	}

	_, err := fmt.Fprintln(c.w, c.styles.summary.Render(line))

	return err
}

// clearPending erases an unfinished progress line. A new banner replaces the
// build without finishing its last action, so the line can be left open.
func (c *Console) clearPending() error {
	if !c.pending {
		return nil
	}

	c.pending = false
	_, err := io.WriteString(c.w, clearLine)

	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}
