package cmd

import (
	"errors"
	"fmt"
)

// errNoBuild means the output held no "=== BUILD" banner
var errNoBuild = errors.New("no build found in output")

// ExitError carries the process exit status for a finished command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
