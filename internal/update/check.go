package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	goversion "github.com/hashicorp/go-version"
)

// LoadState reads the persisted update state. A missing file is not an error.
func (u *Updater) LoadState() (UpdateState, error) {
	var s UpdateState
	data, err := os.ReadFile(u.StatePath)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	_ = json.Unmarshal(data, &s)
	return s, nil
}

// SaveState persists the update state.
func (u *Updater) SaveState(s UpdateState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(u.StatePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(u.StatePath, data, 0o644)
}

// ShouldCheck reports whether enough time has passed since the last check.
func ShouldCheck(s UpdateState) bool {
	if s.LastCheck == 0 {
		return true
	}
	return time.Since(time.Unix(s.LastCheck, 0)) >= CheckInterval
}

// CheckLatestVersion queries the release feed and records the result.
func (u *Updater) CheckLatestVersion(ctx context.Context) (*ReleaseInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.APIURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release feed returned HTTP %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	if release.TagName == "" {
		return nil, fmt.Errorf("release feed returned no tag")
	}

	_ = u.SaveState(UpdateState{
		LastCheck:     time.Now().Unix(),
		LatestVersion: release.TagName,
	})
	return &release, nil
}

// CompareVersions returns true if available is newer than current.
// Both accept an optional "v" prefix and pre-release suffixes.
func CompareVersions(current, available string) bool {
	cur, err := goversion.NewVersion(current)
	if err != nil {
		return false
	}
	avail, err := goversion.NewVersion(available)
	if err != nil {
		return false
	}
	return avail.GreaterThan(cur)
}

// Normalize strips a leading "v" and canonicalizes a version string. Inputs
// that do not parse are returned unchanged.
func Normalize(v string) string {
	parsed, err := goversion.NewVersion(v)
	if err != nil {
		return v
	}
	return parsed.String()
}
