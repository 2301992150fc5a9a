package update

import (
	"net/http"
	"time"
)

// CheckInterval is the minimum duration between automatic update checks.
const CheckInterval = 24 * time.Hour

// DevVersion is the version string of builds without release ldflags.
const DevVersion = "dev"

// ReleaseInfo holds metadata about a GitHub release.
type ReleaseInfo struct {
	TagName     string  `json:"tag_name"`
	HTMLURL     string  `json:"html_url"`
	PublishedAt string  `json:"published_at"`
	Assets      []Asset `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// UpdateState persists the last check timestamp and latest known version.
// Stored separately from the preference file to avoid races.
type UpdateState struct {
	LastCheck     int64  `json:"last_check"`
	LatestVersion string `json:"latest_version"`
}

// Progress receives download progress in percent (0-100).
type Progress func(percent int)

// Updater checks a release feed, stages downloads and replaces the running
// binary.
type Updater struct {
	APIURL     string
	StatePath  string
	StagingDir string
	// BinaryName is the release asset name for this platform.
	BinaryName string
	// Executable is the file replaced on install; empty means os.Executable.
	Executable string

	Client *http.Client
}

// New returns an Updater with the default asset name and HTTP client.
func New(apiURL, statePath, stagingDir string) *Updater {
	return &Updater{
		APIURL:     apiURL,
		StatePath:  statePath,
		StagingDir: stagingDir,
		BinaryName: platformBinaryName(),
		Client:     &http.Client{Timeout: 120 * time.Second},
	}
}

// IsDevelopment reports whether v is a development build.
func IsDevelopment(v string) bool {
	return v == "" || v == DevVersion
}
