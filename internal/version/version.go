// Package version reports the build of the widget host: the one-line and
// detailed strings of the version command and the User-Agent of backend
// requests. Version, GitCommit and BuildDate are set with -ldflags -X.
package version

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

var (
	// Version is the semantic version of the build.
	Version = "0.3.0"
	// GitCommit is empty for local builds.
	GitCommit = ""
	// BuildDate is RFC 3339 or YYYY-MM-DD; empty for local builds.
	BuildDate = ""
)

// ProductName prefixes the User-Agent.
const ProductName = "hainzelman"

const displayName = "Hainzelman"

// shortCommitLen matches git's abbreviated hashes.
const shortCommitLen = 7

var buildDateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// Build describes the running binary.
type Build struct {
	SemVer    *semver.Version
	Commit    string
	BuiltAt   time.Time // zero when BuildDate is missing or unparsable
	GoVersion string
	Platform  string
}

// Current parses the injected build variables.
func Current() (*Build, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid build version %q: %w", Version, err)
	}
	return &Build{
		SemVer:    sv,
		Commit:    GitCommit,
		BuiltAt:   parseBuildDate(BuildDate),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}, nil
}

// String is the one-line form printed by `hainzelman version`.
func String() string {
	b, err := Current()
	if err != nil {
		return fmt.Sprintf("%s v%s (invalid version)", displayName, Version)
	}

	parts := []string{fmt.Sprintf("%s v%s", displayName, b.SemVer.Original())}
	if b.Commit != "" {
		parts = append(parts, "commit "+abbreviate(b.Commit))
	}
	if !b.BuiltAt.IsZero() {
		parts = append(parts, "built "+b.BuiltAt.Format("2006-01-02"))
	}
	return strings.Join(parts, ", ")
}

// Detailed is the multi-line form printed by `hainzelman version --detailed`.
func Detailed() string {
	b, err := Current()
	if err != nil {
		return fmt.Sprintf("%s v%s\nError: %v", displayName, Version, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s v%s\n", displayName, b.SemVer.Original())
	fmt.Fprintf(&sb, "Commit: %s\n", orDash(b.Commit))
	if b.BuiltAt.IsZero() {
		fmt.Fprintf(&sb, "Built: %s\n", orDash(BuildDate))
	} else {
		fmt.Fprintf(&sb, "Built: %s\n", b.BuiltAt.UTC().Format(time.RFC3339))
	}
	if meta := b.SemVer.Metadata(); meta != "" {
		fmt.Fprintf(&sb, "Build Metadata: %s\n", meta)
	}
	fmt.Fprintf(&sb, "Go Version: %s\n", b.GoVersion)
	fmt.Fprintf(&sb, "Platform: %s", b.Platform)
	return sb.String()
}

// UserAgent returns "hainzelman/<major.minor.patch> (<os>/<arch>)".
// Prerelease and build metadata are left out.
func UserAgent() string {
	base := Version
	if sv, err := semver.NewVersion(Version); err == nil {
		base = fmt.Sprintf("%d.%d.%d", sv.Major(), sv.Minor(), sv.Patch())
	}
	return fmt.Sprintf("%s/%s (%s/%s)", ProductName, base, runtime.GOOS, runtime.GOARCH)
}

func parseBuildDate(value string) time.Time {
	for _, layout := range buildDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func abbreviate(commit string) string {
	if len(commit) > shortCommitLen {
		return commit[:shortCommitLen]
	}
	return commit
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
