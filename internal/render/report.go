package render

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/Norgate-AV/xcb/internal/build"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Report formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists every supported report format
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// IsValidFormat reports whether f names a supported report format
func IsValidFormat(f string) bool {
	return slices.Contains(Formats, f)
}

// Report is a serialisable snapshot of a build
type Report struct {
	Project              string         `json:"project" yaml:"project"`
	Target               string         `json:"target" yaml:"target"`
	Configuration        string         `json:"configuration" yaml:"configuration"`
	DefaultConfiguration bool           `json:"default_configuration" yaml:"default_configuration"`
	State                string         `json:"state" yaml:"state"`
	StartedAt            time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt           *time.Time     `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	DurationSeconds      *float64       `json:"duration_seconds,omitempty" yaml:"duration_seconds,omitempty"`
	ErrorCount           int            `json:"error_count" yaml:"error_count"`
	Actions              []ActionReport `json:"actions" yaml:"actions"`
}

// ActionReport is one action within a Report
type ActionReport struct {
	Type      string        `json:"type" yaml:"type"`
	Arguments []string      `json:"arguments" yaml:"arguments"`
	Failed    bool          `json:"failed" yaml:"failed"`
	Errors    []build.Error `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewReport snapshots b
func NewReport(b *build.Build) Report {
	r := Report{
		Project:              b.Project,
		Target:               b.Target,
		Configuration:        b.Configuration,
		DefaultConfiguration: b.DefaultConfiguration,
		State:                b.State().String(),
		StartedAt:            b.StartedAt,
		ErrorCount:           b.ErrorCount(),
		Actions:              []ActionReport{},
	}

	if d, ok := b.Duration(); ok {
		finished := b.FinishedAt
		seconds := d.Seconds()
		r.FinishedAt = &finished
		r.DurationSeconds = &seconds
	}

	for _, a := range b.Actions() {
		r.Actions = append(r.Actions, ActionReport{
			Type:      a.Type(),
			Arguments: a.Arguments(),
			Failed:    a.Failed,
			Errors:    slices.Clone(a.Errors),
		})
	}

	return r
}

// NewReports snapshots every build in order
func NewReports(builds []*build.Build) []Report {
	reports := make([]Report, 0, len(builds))
	for _, b := range builds {
		reports = append(reports, NewReport(b))
	}

	return reports
}

// WriteReport writes builds to w in the given format. JSON and YAML hold a
// list with one entry per build; text prints one section per build.
func WriteReport(w io.Writer, builds []*build.Build, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewReports(builds))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewReports(builds)); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		for i, b := range builds {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}

			if err := writeText(w, b); err != nil {
				return err
			}
		}

		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func writeText(w io.Writer, b *build.Build) error {
	st := newStyles(lipgloss.NewRenderer(w))

	config := b.Configuration
	if b.DefaultConfiguration {
		config += " (default)"
	}

	duration := "-"
	if d, ok := b.Duration(); ok {
		duration = formatDuration(d)
	}

	failed := b.FailedActions()
	withErrors := b.ActionsWithErrors()

	var sb strings.Builder
	row := func(label, value string) {
		sb.WriteString(st.label.Render(fmt.Sprintf("%-15s", label)))
		sb.WriteString(value)
		sb.WriteString("\n")
	}

	row("Project:", b.Project)
	row("Target:", b.Target)
	row("Configuration:", config)
	row("State:", st.state(b.State()).Render(b.State().String()))
	row("Duration:", duration)
	row("Actions:", fmt.Sprintf("%d (%d failed, %d errors)", len(b.Actions()), len(failed), b.ErrorCount()))

	if len(failed) > 0 {
		sb.WriteString("\nFailed actions:\n")
		for _, a := range failed {
			fmt.Fprintf(&sb, "  %s %s\n", st.fail.Render(iconFail), a.String())
		}
	}

	if len(withErrors) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, a := range withErrors {
			for _, e := range a.Errors {
				fmt.Fprintf(&sb, "  %s %s\n", st.dim.Render(fmt.Sprintf("%s:%d:%d:", e.File, e.Line, e.Column)), e.Message)
			}
		}
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// formatDuration renders d the way build summaries usually show it
func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}

	return fmt.Sprintf("%.2fs", d.Seconds())
}
