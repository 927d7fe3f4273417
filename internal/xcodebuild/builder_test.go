package xcodebuild

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Norgate-AV/xcb/internal/build"
	"github.com/Norgate-AV/xcb/internal/config"
	"github.com/Norgate-AV/xcb/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCommander is a mock implementation of Commander for testing
type MockCommander struct {
	stdout   string
	pipeErr  error
	startErr error
	waitErr  error
	started  bool
	waited   bool
	name     string
	args     []string
}

func (m *MockCommander) StdoutPipe() (io.ReadCloser, error) {
	if m.pipeErr != nil {
		return nil, m.pipeErr
	}

	return io.NopCloser(strings.NewReader(m.stdout)), nil
}

func (m *MockCommander) Start() error {
	m.started = true
	return m.startErr
}

func (m *MockCommander) Wait() error {
	m.waited = true
	return m.waitErr
}

type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return "exit status"
}

func (e exitCodeError) ExitCode() int {
	return e.code
}

func newTestBuilder(mock *MockCommander) *CommandBuilder {
	return &CommandBuilder{
		execCommand: func(_ context.Context, name string, args ...string) Commander {
			mock.name = name
			mock.args = args
			return mock
		},
		stderr: io.Discard,
	}
}

const succeededLog = `=== BUILD TARGET App OF PROJECT Demo WITH THE DEFAULT CONFIGURATION (Release) ===

CompileC build/main.o main.m normal x86_64 objective-c com.apple.compilers.llvm.clang.1_0.compiler
    cd /src

Ld build/App normal x86_64
    cd /src

** BUILD SUCCEEDED **
`

const failedLog = `=== BUILD TARGET App OF PROJECT Demo WITH THE DEFAULT CONFIGURATION (Release) ===

CompileC build/main.o main.m normal x86_64 objective-c com.apple.compilers.llvm.clang.1_0.compiler
    cd /src
main.m:3:1: error: expected identifier

** BUILD FAILED **

The following build commands failed:
	CompileC build/main.o main.m normal x86_64 objective-c com.apple.compilers.llvm.clang.1_0.compiler
(1 failure)
`

func TestCommandBuilder_BuildCommandArgs(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    []string
		wantErr bool
	}{
		{
			name: "no options",
			cfg:  &config.Config{},
			want: nil,
		},
		{
			name: "all options",
			cfg: &config.Config{
				Project:       "/src/App.xcodeproj",
				Targets:       []string{"App", "AppTests"},
				Configuration: "Release",
				SDK:           "iphonesimulator",
				ExtraArgs:     []string{"CODE_SIGNING_ALLOWED=NO", "clean", "build"},
			},
			want: []string{
				"-project", "/src/App.xcodeproj",
				"-target", "App",
				"-target", "AppTests",
				"-configuration", "Release",
				"-sdk", "iphonesimulator",
				"CODE_SIGNING_ALLOWED=NO", "clean", "build",
			},
		},
		{
			name: "configuration only",
			cfg:  &config.Config{Configuration: "Debug"},
			want: []string{"-configuration", "Debug"},
		},
		{
			name:    "project without xcodeproj extension",
			cfg:     &config.Config{Project: "/src/App.xcworkspace"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := NewCommandBuilder()
			got, err := cb.BuildCommandArgs(tt.cfg)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandBuilder_ExecuteCommand(t *testing.T) {
	t.Run("successful build", func(t *testing.T) {
		mock := &MockCommander{stdout: succeededLog}
		cb := newTestBuilder(mock)
		p := pipeline.New()
		var echo bytes.Buffer

		err := cb.ExecuteCommand(context.Background(), "xcodebuild", []string{"-configuration", "Release"}, p, &echo)
		require.NoError(t, err)

		assert.True(t, mock.started)
		assert.True(t, mock.waited)
		assert.Equal(t, "xcodebuild", mock.name)
		assert.Equal(t, []string{"-configuration", "Release"}, mock.args)
		assert.Equal(t, succeededLog, echo.String())

		require.NotNil(t, p.Build())
		assert.Equal(t, build.Successful, p.Build().State())
		assert.Len(t, p.Build().Actions(), 2)
	})

	t.Run("failed build maps exit code", func(t *testing.T) {
		mock := &MockCommander{stdout: failedLog, waitErr: exitCodeError{code: 65}}
		cb := newTestBuilder(mock)
		p := pipeline.New()

		err := cb.ExecuteCommand(context.Background(), "xcodebuild", nil, p, nil)
		require.Error(t, err)

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 65, exitErr.Code)
		assert.Contains(t, err.Error(), "code 65")

		require.NotNil(t, p.Build())
		assert.Equal(t, build.Failed, p.Build().State())
		failed := p.Build().FailedActions()
		require.Len(t, failed, 1)
		require.Len(t, failed[0].Errors, 1)
		assert.Equal(t, "expected identifier", failed[0].Errors[0].Message)
	})

	t.Run("zero exit code is success", func(t *testing.T) {
		mock := &MockCommander{stdout: succeededLog, waitErr: exitCodeError{code: 0}}
		cb := newTestBuilder(mock)

		err := cb.ExecuteCommand(context.Background(), "xcodebuild", nil, pipeline.New(), nil)
		assert.NoError(t, err)
	})

	t.Run("wait error without exit code", func(t *testing.T) {
		waitErr := errors.New("signal: killed")
		mock := &MockCommander{stdout: succeededLog, waitErr: waitErr}
		cb := newTestBuilder(mock)

		err := cb.ExecuteCommand(context.Background(), "xcodebuild", nil, pipeline.New(), nil)
		assert.ErrorIs(t, err, waitErr)
	})

	t.Run("start failure", func(t *testing.T) {
		mock := &MockCommander{startErr: errors.New("executable file not found")}
		cb := newTestBuilder(mock)

		err := cb.ExecuteCommand(context.Background(), "xcodebuild", nil, pipeline.New(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to start xcodebuild")
		assert.False(t, mock.waited)
	})

	t.Run("stdout pipe failure", func(t *testing.T) {
		mock := &MockCommander{pipeErr: errors.New("no pipe")}
		cb := newTestBuilder(mock)

		err := cb.ExecuteCommand(context.Background(), "xcodebuild", nil, pipeline.New(), nil)
		require.Error(t, err)
		assert.False(t, mock.started)
	})

	t.Run("translation error takes precedence over exit status", func(t *testing.T) {
		// a result line with no build open
		mock := &MockCommander{stdout: "** BUILD SUCCEEDED **\nmore output\n", waitErr: exitCodeError{code: 65}}
		cb := newTestBuilder(mock)

		err := cb.ExecuteCommand(context.Background(), "xcodebuild", nil, pipeline.New(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to process xcodebuild output")

		var exitErr *ExitError
		assert.False(t, errors.As(err, &exitErr))
		assert.True(t, mock.waited)
	})
}

func TestCommandBuilder_Run(t *testing.T) {
	cfg := &config.Config{
		XcodebuildPath: "/usr/bin/xcodebuild",
		Targets:        []string{"App"},
		Configuration:  "Release",
	}

	t.Run("echoes output to sink", func(t *testing.T) {
		mock := &MockCommander{stdout: succeededLog}
		cb := newTestBuilder(mock)
		var sink bytes.Buffer

		err := cb.Run(context.Background(), cfg, &sink, pipeline.New())
		require.NoError(t, err)

		assert.Equal(t, "/usr/bin/xcodebuild", mock.name)
		assert.Equal(t, []string{"-target", "App", "-configuration", "Release"}, mock.args)
		assert.Equal(t, succeededLog, sink.String())
	})

	t.Run("silent keeps sink empty", func(t *testing.T) {
		mock := &MockCommander{stdout: succeededLog}
		cb := newTestBuilder(mock)
		var sink bytes.Buffer

		silent := *cfg
		silent.Silent = true

		p := pipeline.New()
		err := cb.Run(context.Background(), &silent, &sink, p)
		require.NoError(t, err)

		assert.Empty(t, sink.String())
		assert.Equal(t, build.Successful, p.Build().State())
	})

	t.Run("invalid project never starts xcodebuild", func(t *testing.T) {
		mock := &MockCommander{stdout: succeededLog}
		cb := newTestBuilder(mock)

		bad := *cfg
		bad.Project = "/src/App.xcworkspace"

		err := cb.Run(context.Background(), &bad, io.Discard, pipeline.New())
		require.Error(t, err)
		assert.False(t, mock.started)
	})
}

func TestExitError(t *testing.T) {
	inner := exitCodeError{code: 66}
	err := &ExitError{Code: 66, Err: inner}

	assert.Equal(t, "xcodebuild exited with code 66: Cannot open input (project, workspace or scheme not found)", err.Error())
	assert.ErrorIs(t, err, inner)
}
