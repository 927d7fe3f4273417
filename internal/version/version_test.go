package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	orig := [3]string{Version, Commit, BuildTime}
	defer func() { Version, Commit, BuildTime = orig[0], orig[1], orig[2] }()

	Version, Commit, BuildTime = "v1.2.0", "abc1234", "2026-10-01T12:00:00Z"

	assert.Equal(t, "v1.2.0 (abc1234) 2026-10-01T12:00:00Z "+runtime.GOOS+"/"+runtime.GOARCH, String())
}
