package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuild(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = origVersion, origCommit, origDate })
	Version, Commit, Date = version, commit, date
}

func TestGetInfo(t *testing.T) {
	withBuild(t, "1.4.0", "0123456789abcdef", "2026-01-02")

	info := GetInfo()
	assert.Equal(t, "1.4.0", info.Short())
	assert.Equal(t, "0123456789abcdef", info.Commit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name   string
		commit string
		want   string
	}{
		{name: "long commit is shortened", commit: "0123456789abcdef", want: "taskboard 1.4.0 (01234567) built 2026-01-02 with go1.24 for linux/amd64"},
		{name: "short commit kept", commit: "abc", want: "taskboard 1.4.0 (abc) built 2026-01-02 with go1.24 for linux/amd64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Info{Version: "1.4.0", Commit: tt.commit, Date: "2026-01-02", GoVersion: "go1.24", Platform: "linux/amd64"}
			assert.Equal(t, tt.want, info.String())
		})
	}
}

func TestUserAgent(t *testing.T) {
	withBuild(t, "dev", "unknown", "unknown")
	assert.Equal(t, "taskboard/dev", UserAgent())

	Version = "2.0.1"
	assert.Equal(t, "taskboard/2.0.1", UserAgent())
}
