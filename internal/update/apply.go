package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// platformBinaryName returns the expected release asset for the current platform.
func platformBinaryName() string {
	name := fmt.Sprintf("panelctl-%s-%s", runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

// assetURL finds this platform's asset in the release.
func (u *Updater) assetURL(release *ReleaseInfo) (string, int64, error) {
	for _, a := range release.Assets {
		if a.Name == u.BinaryName {
			return a.BrowserDownloadURL, a.Size, nil
		}
	}
	return "", 0, fmt.Errorf("release %s has no asset %s", release.TagName, u.BinaryName)
}

// StagedPath is where a completed download waits for install.
func (u *Updater) StagedPath() string {
	return filepath.Join(u.StagingDir, u.BinaryName)
}

// Download fetches the release asset into the staging directory and returns
// its path. progress may be nil.
func (u *Updater) Download(ctx context.Context, release *ReleaseInfo, progress Progress) (string, error) {
	url, size, err := u.assetURL(release)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned HTTP %d", resp.StatusCode)
	}
	if resp.ContentLength > 0 {
		size = resp.ContentLength
	}

	if err := os.MkdirAll(u.StagingDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	f, err := os.CreateTemp(u.StagingDir, "panelctl-update-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := f.Name()

	var body io.Reader = resp.Body
	if progress != nil && size > 0 {
		body = &progressReader{r: resp.Body, total: size, fn: progress, last: -1}
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write failed: %w", err)
	}
	f.Close()

	if err := os.Chmod(tmpPath, 0o755); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	dest := u.StagedPath()
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if progress != nil {
		progress(100)
	}
	return dest, nil
}

type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int
	fn    Progress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	pct := int(p.read * 100 / p.total)
	if pct > 99 {
		pct = 99 // 100 is reported once the file is in place
	}
	if pct != p.last {
		p.last = pct
		p.fn(pct)
	}
	return n, err
}

// HasStaged reports whether a completed download is waiting.
func (u *Updater) HasStaged() bool {
	_, err := os.Stat(u.StagedPath())
	return err == nil
}

// ApplyStaged replaces the executable with the staged download and clears
// the staging directory.
func (u *Updater) ApplyStaged() error {
	staged := u.StagedPath()
	if _, err := os.Stat(staged); err != nil {
		return fmt.Errorf("no staged update: %w", err)
	}
	if err := u.ReplaceSelf(staged); err != nil {
		return err
	}
	_ = os.RemoveAll(u.StagingDir)
	return nil
}

// ClearStaged removes any staged download.
func (u *Updater) ClearStaged() error {
	return os.RemoveAll(u.StagingDir)
}

// ReplaceSelf replaces the target executable with newBinaryPath.
func (u *Updater) ReplaceSelf(newBinaryPath string) error {
	self, err := u.executable()
	if err != nil {
		return err
	}

	if runtime.GOOS == "windows" {
		// Windows: can't overwrite running binary; rename current to .old first
		oldPath := self + ".old"
		_ = os.Remove(oldPath)
		if err := os.Rename(self, oldPath); err != nil {
			return fmt.Errorf("cannot rename current binary: %w (try running as admin)", err)
		}
		if err := copyFile(newBinaryPath, self); err != nil {
			_ = os.Rename(oldPath, self)
			return fmt.Errorf("cannot write new binary: %w", err)
		}
		_ = os.Remove(oldPath)
		return nil
	}

	if err := os.Rename(newBinaryPath, self); err != nil {
		// cross-device staging dir
		if err := copyFile(newBinaryPath, self); err != nil {
			return fmt.Errorf("cannot replace binary: %w", err)
		}
		os.Remove(newBinaryPath)
	}
	return nil
}

func (u *Updater) executable() (string, error) {
	if u.Executable != "" {
		return u.Executable, nil
	}
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cannot determine executable path: %w", err)
	}
	self, err = filepath.EvalSymlinks(self)
	if err != nil {
		return "", fmt.Errorf("cannot resolve symlinks: %w", err)
	}
	return self, nil
}

// copyFile copies src to dst, preserving permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
