// Package update reads version strings and checks for newer releases.
package update

import (
	"context"
	"net/url"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/netroute/netroute/internal/endpoint"
	"github.com/netroute/netroute/internal/router"
)

const (
	// DefaultReleasesURL is the default URL for checking releases.
	DefaultReleasesURL = "https://api.github.com/repos/netroute/netroute/releases/latest"
	CheckTimeout       = 5 * time.Second
)

// ReleasesURL is the URL to check for releases. Can be overridden in tests.
var ReleasesURL = DefaultReleasesURL

type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

type CheckResult struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateURL       string
	UpdateAvailable bool
}

// Info is a parsed version string. Fields other than Raw are empty when the
// version is not semantic.
type Info struct {
	Raw        string `json:"version"`
	Canonical  string `json:"canonical,omitempty"`
	Major      string `json:"major,omitempty"`
	Prerelease string `json:"prerelease,omitempty"`
	Build      string `json:"build,omitempty"`
}

// Valid reports whether the version is semantic.
func (i Info) Valid() bool { return i.Canonical != "" }

// Parse reads v with or without its leading "v".
func Parse(v string) Info {
	info := Info{Raw: v}
	n := normalizeVersion(v)
	if !semver.IsValid(n) {
		return info
	}
	info.Canonical = semver.Canonical(n)
	info.Major = semver.Major(n)
	info.Prerelease = semver.Prerelease(n)
	info.Build = semver.Build(n)
	return info
}

// releaseEndpoint describes the latest-release lookup.
func releaseEndpoint() (endpoint.Descriptor, error) {
	base, err := url.Parse(ReleasesURL)
	if err != nil {
		return endpoint.Descriptor{}, err
	}
	return endpoint.Descriptor{
		Base:  base,
		Verb:  endpoint.Get,
		Extra: map[string]string{"Accept": "application/vnd.github.v3+json"},
	}, nil
}

// CheckForUpdate asks r for the latest release and compares it with
// currentVersion. Returns nil if the check fails - never blocks the CLI.
func CheckForUpdate(ctx context.Context, r *router.Router, currentVersion string) *CheckResult {
	if currentVersion == "dev" || currentVersion == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	ep, err := releaseEndpoint()
	if err != nil {
		return nil
	}
	release, err := router.Fetch[Release](ctx, r, ep)
	if err != nil {
		return nil
	}

	current := normalizeVersion(currentVersion)
	latest := normalizeVersion(release.TagName)

	result := &CheckResult{
		CurrentVersion: currentVersion,
		LatestVersion:  strings.TrimPrefix(release.TagName, "v"),
		UpdateURL:      release.HTMLURL,
	}

	if semver.IsValid(current) && semver.IsValid(latest) {
		result.UpdateAvailable = semver.Compare(latest, current) > 0
	}

	return result
}

func normalizeVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
