package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Version is the apichain release, overridden at build time with
// -ldflags "-X github.com/studiowebux/apichain/internal/version.Version=..."
var Version = "0.1.0"

const (
	// DefaultReleasesURL is queried by CheckForUpdate
	DefaultReleasesURL = "https://api.github.com/repos/studiowebux/apichain/releases/latest"
	checkTimeout       = 5 * time.Second
)

// release is the subset of the GitHub release payload we read
type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Update describes the latest published release
type Update struct {
	Latest    string // without the "v" prefix
	URL       string
	Available bool // Latest is newer than the running version
}

// UserAgent is the User-Agent header sent by the API client
func UserAgent() string {
	return "apichain/" + Version
}

// String describes the build
func String() string {
	return fmt.Sprintf("apichain %s (%s %s/%s)", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// CheckForUpdate fetches the latest release from releasesURL and compares it with current
func CheckForUpdate(ctx context.Context, releasesURL, current string) (*Update, error) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent())
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	u := &Update{
		Latest: strings.TrimPrefix(rel.TagName, "v"),
		URL:    rel.HTMLURL,
	}
	u.Available = u.Latest != "" && compareVersions(u.Latest, strings.TrimPrefix(current, "v")) > 0
	return u, nil
}

// compareVersions compares the numeric parts of two versions and returns
// -1, 0 or 1. Missing parts count as zero; pre-release and build suffixes
// ("-dev", "+build1") are ignored.
func compareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	for i := range max(len(pa), len(pb)) {
		x, y := partAt(pa, i), partAt(pb, i)
		switch {
		case x > y:
			return 1
		case x < y:
			return -1
		}
	}
	return 0
}

func partAt(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

// versionParts splits "1.2.3-rc1" into [1 2 3], skipping non-numeric parts
func versionParts(v string) []int {
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}

	var parts []int
	for _, p := range strings.Split(v, ".") {
		if n, err := strconv.Atoi(p); err == nil {
			parts = append(parts, n)
		}
	}
	return parts
}
