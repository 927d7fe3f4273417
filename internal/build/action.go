package build

import (
	"slices"
	"strings"
)

// ActionDescriptor identifies an action by its type token and arguments
type ActionDescriptor struct {
	// Type is the first token of the action line (e.g., CompileC, Ld)
	Type string

	// Arguments are the remaining whitespace separated tokens
	Arguments []string
}

// ParseActionDescriptor splits a line into an action type and its arguments.
// An empty or blank line yields a zero descriptor.
func ParseActionDescriptor(line string) ActionDescriptor {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return ActionDescriptor{}
	}

	return ActionDescriptor{
		Type:      parts[0],
		Arguments: parts[1:],
	}
}

// Equal reports whether both descriptors have the same type and the same
// arguments in the same order.
func (d ActionDescriptor) Equal(other ActionDescriptor) bool {
	return d.Type == other.Type && slices.Equal(d.Arguments, other.Arguments)
}

func (d ActionDescriptor) String() string {
	if len(d.Arguments) == 0 {
		return d.Type
	}

	return d.Type + " " + strings.Join(d.Arguments, " ")
}

// Action is one unit of work performed by the build tool.
// Type and arguments never change once created; the failed flag and the
// error list may be updated until the build is discarded.
type Action struct {
	typ       string
	arguments []string

	// Failed is set when the tool lists this action in its failure report
	Failed bool

	// Errors holds compile errors reported while this action was open
	Errors []Error
}

func newAction(d ActionDescriptor) *Action {
	return &Action{
		typ:       d.Type,
		arguments: slices.Clone(d.Arguments),
	}
}

// Type returns the action verb, e.g. CompileC
func (a *Action) Type() string {
	return a.typ
}

// Arguments returns a copy of the action arguments
func (a *Action) Arguments() []string {
	return slices.Clone(a.arguments)
}

// Descriptor returns the type and arguments the action was created from
func (a *Action) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: a.typ, Arguments: a.Arguments()}
}

// Matches compares the action with d structurally. Two distinct actions
// with identical type and arguments are indistinguishable here.
func (a *Action) Matches(d ActionDescriptor) bool {
	return a.typ == d.Type && slices.Equal(a.arguments, d.Arguments)
}

// HasErrors reports whether any error was recorded against the action
func (a *Action) HasErrors() bool {
	return len(a.Errors) > 0
}

func (a *Action) addError(e Error) {
	a.Errors = append(a.Errors, e)
}

func (a *Action) String() string {
	return a.Descriptor().String()
}
