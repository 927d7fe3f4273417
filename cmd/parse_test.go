package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Norgate-AV/xcb/internal/build"
	"github.com/Norgate-AV/xcb/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "build.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestParse_File(t *testing.T) {
	isolate(t)

	stdout, stderr, err := execute(t, "parse", writeLog(t, successLog))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Demo")
	assert.Contains(t, stdout, "Release")
	assert.Contains(t, stderr, "Building Demo/App")
}

func TestParse_Stdin(t *testing.T) {
	for _, args := range [][]string{{"parse"}, {"parse", "-"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			isolate(t)

			var outBuf, errBuf bytes.Buffer
			root := NewRootCmd()
			root.SetIn(strings.NewReader(successLog))
			root.SetOut(&outBuf)
			root.SetErr(&errBuf)
			root.SetArgs(append(args, "-f", "yaml"))

			require.NoError(t, root.Execute())
			assert.Contains(t, outBuf.String(), "state: successful")
		})
	}
}

func TestParse_FailedBuild(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "parse", "-f", "text", writeLog(t, failureLog))

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, err.Error(), build.Failed.String())

	assert.Contains(t, stdout, "expected identifier")
}

func TestParse_TruncatedLog(t *testing.T) {
	isolate(t)

	truncated := successLog[:strings.Index(successLog, "** BUILD")]
	_, _, err := execute(t, "parse", writeLog(t, truncated))

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, err.Error(), build.Running.String())
}

func TestParse_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		isolate(t)

		_, _, err := execute(t, "parse", filepath.Join(t.TempDir(), "absent.log"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open log")
	})

	t.Run("no build in log", func(t *testing.T) {
		isolate(t)

		_, _, err := execute(t, "parse", writeLog(t, "Command line invocation:\n    xcodebuild -list\n"))
		assert.ErrorIs(t, err, errNoBuild)
	})

	t.Run("result before any build", func(t *testing.T) {
		isolate(t)

		_, _, err := execute(t, "parse", writeLog(t, "** BUILD SUCCEEDED **\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 1")
	})

	t.Run("strict rejects unattributed errors", func(t *testing.T) {
		isolate(t)

		log := "main.m:1:1: error: stray\n" + successLog
		_, _, err := execute(t, "parse", writeLog(t, log))
		require.NoError(t, err)

		_, _, err = execute(t, "parse", "--strict", writeLog(t, log))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 1")
	})

	t.Run("too many args", func(t *testing.T) {
		isolate(t)

		_, _, err := execute(t, "parse", "a.log", "b.log")
		require.Error(t, err)
	})
}

func TestVersion(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "xcb "+version.String()+"\n", stdout)
}
