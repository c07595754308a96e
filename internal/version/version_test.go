package version

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withBuild(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })
	Version, GitCommit, BuildDate = version, commit, date
}

func TestCurrent(t *testing.T) {
	withBuild(t, "0.3.1", "abcdef1234567", "2026-03-01T10:20:30Z")

	b, err := Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), b.SemVer.Minor())
	assert.Equal(t, "abcdef1234567", b.Commit)
	assert.True(t, time.Date(2026, 3, 1, 10, 20, 30, 0, time.UTC).Equal(b.BuiltAt))
	assert.Equal(t, runtime.Version(), b.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, b.Platform)
}

func TestCurrent_InvalidVersion(t *testing.T) {
	withBuild(t, "garbage", "", "")

	_, err := Current()
	assert.Error(t, err)
	assert.Equal(t, "Hainzelman vgarbage (invalid version)", String())
	assert.Contains(t, Detailed(), "Error:")
}

func TestParseBuildDate(t *testing.T) {
	tests := []struct {
		date string
		want time.Time
	}{
		{"2026-03-01T10:20:30Z", time.Date(2026, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"2026-03-01 10:20:30", time.Date(2026, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"yesterday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.True(t, tt.want.Equal(parseBuildDate(tt.date)))
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name   string
		commit string
		date   string
		want   string
	}{
		{"local build", "", "", "Hainzelman v0.3.0"},
		{"release build", "abcdef1234567", "2026-03-01T10:20:30Z", "Hainzelman v0.3.0, commit abcdef1, built 2026-03-01"},
		{"short commit", "abc", "", "Hainzelman v0.3.0, commit abc"},
		{"unparsable date is left out", "", "last tuesday", "Hainzelman v0.3.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuild(t, "0.3.0", tt.commit, tt.date)
			assert.Equal(t, tt.want, String())
		})
	}
}

func TestDetailed(t *testing.T) {
	withBuild(t, "0.3.0+7.abc", "abc", "2026-03-01")

	lines := strings.Split(Detailed(), "\n")
	assert.Equal(t, []string{
		"Hainzelman v0.3.0+7.abc",
		"Commit: abc",
		"Built: 2026-03-01T00:00:00Z",
		"Build Metadata: 7.abc",
		"Go Version: " + runtime.Version(),
		"Platform: " + runtime.GOOS + "/" + runtime.GOARCH,
	}, lines)
}

func TestDetailed_LocalBuild(t *testing.T) {
	withBuild(t, "0.3.0", "", "")

	detailed := Detailed()
	assert.Contains(t, detailed, "Commit: -\n")
	assert.Contains(t, detailed, "Built: -\n")
	assert.NotContains(t, detailed, "Build Metadata")
}

func TestUserAgent(t *testing.T) {
	withBuild(t, "1.2.3-rc.1+9", "", "")
	assert.Equal(t, "hainzelman/1.2.3 ("+runtime.GOOS+"/"+runtime.GOARCH+")", UserAgent())

	Version = "dev"
	assert.Equal(t, "hainzelman/dev ("+runtime.GOOS+"/"+runtime.GOARCH+")", UserAgent())
}
