package update

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		current   string
		available string
		want      bool
	}{
		{"v1.0.0", "v1.0.1", true},
		{"v1.0.0", "v1.1.0", true},
		{"v1.0.0", "v2.0.0", true},
		{"v1.2.3", "v1.2.3", false},
		{"v1.2.3", "v1.2.2", false},
		{"v2.0.0", "v1.9.9", false},
		{"1.0.0", "1.0.1", true},       // without v prefix
		{"v1.0.0", "1.0.1", true},      // mixed prefix
		{"v1.0.0-rc1", "v1.0.0", true}, // release beats its pre-release
		{"invalid", "v1.0.0", false},
		{"v1.0.0", "invalid", false},
		{"dev", "v1.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.current+"_vs_"+tt.available, func(t *testing.T) {
			got := CompareVersions(tt.current, tt.available)
			if got != tt.want {
				t.Errorf("CompareVersions(%q, %q) = %v, want %v", tt.current, tt.available, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"v2.0.0", "2.0.0"},
		{"2.0.0", "2.0.0"},
		{"v1.2.3-rc1", "1.2.3-rc1"},
		{"dev", "dev"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShouldCheck(t *testing.T) {
	tests := []struct {
		name  string
		state UpdateState
		want  bool
	}{
		{"zero value", UpdateState{}, true},
		{"old timestamp", UpdateState{LastCheck: 1000000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldCheck(tt.state)
			if got != tt.want {
				t.Errorf("ShouldCheck() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlatformBinaryName(t *testing.T) {
	name := platformBinaryName()
	want := "panelctl-" + runtime.GOOS + "-" + runtime.GOARCH
	if runtime.GOOS == "windows" {
		want += ".exe"
	}
	if name != want {
		t.Errorf("platformBinaryName() = %q, want %q", name, want)
	}
}

func TestIsDevelopment(t *testing.T) {
	if !IsDevelopment("dev") || !IsDevelopment("") {
		t.Error("dev and empty versions should be development builds")
	}
	if IsDevelopment("1.2.3") {
		t.Error("1.2.3 should not be a development build")
	}
}

// newFeed serves a latest-release document and one binary asset.
func newFeed(t *testing.T, tag string, payload []byte) (*httptest.Server, *Updater) {
	t.Helper()
	u := New("", "", "")
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ReleaseInfo{
			TagName: tag,
			Assets: []Asset{
				{Name: "something-else", BrowserDownloadURL: srv.URL + "/wrong"},
				{Name: u.BinaryName, BrowserDownloadURL: srv.URL + "/asset", Size: int64(len(payload))},
			},
		})
	})
	mux.HandleFunc("/asset", func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})

	dir := t.TempDir()
	u.APIURL = srv.URL + "/latest"
	u.StatePath = filepath.Join(dir, ".update-state.json")
	u.StagingDir = filepath.Join(dir, "update")
	return srv, u
}

func TestCheckLatestVersion_SavesState(t *testing.T) {
	_, u := newFeed(t, "v2.0.0", nil)

	release, err := u.CheckLatestVersion(context.Background())
	if err != nil {
		t.Fatalf("CheckLatestVersion: %v", err)
	}
	if release.TagName != "v2.0.0" {
		t.Fatalf("tag = %q", release.TagName)
	}

	state, err := u.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state.LatestVersion != "v2.0.0" || state.LastCheck == 0 {
		t.Errorf("state = %+v", state)
	}
}

func TestCheckLatestVersion_DecodesAssets(t *testing.T) {
	payload := []byte("binary")
	srv, u := newFeed(t, "v2.0.0", payload)

	release, err := u.CheckLatestVersion(context.Background())
	if err != nil {
		t.Fatalf("CheckLatestVersion: %v", err)
	}
	want := []Asset{
		{Name: "something-else", BrowserDownloadURL: srv.URL + "/wrong"},
		{Name: u.BinaryName, BrowserDownloadURL: srv.URL + "/asset", Size: int64(len(payload))},
	}
	if diff := cmp.Diff(want, release.Assets); diff != "" {
		t.Errorf("assets mismatch (-want +got):\n%s", diff)
	}

	url, size, err := u.assetURL(release)
	if err != nil {
		t.Fatalf("assetURL: %v", err)
	}
	if diff := cmp.Diff([]any{srv.URL + "/asset", int64(len(payload))}, []any{url, size}); diff != "" {
		t.Errorf("asset selection mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckLatestVersion_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	u := New(srv.URL, filepath.Join(t.TempDir(), "state.json"), t.TempDir())
	_, err := u.CheckLatestVersion(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected HTTP 403 error, got %v", err)
	}
}

func TestDownloadAndApplyStaged(t *testing.T) {
	payload := []byte(strings.Repeat("x", 64*1024))
	_, u := newFeed(t, "v2.0.0", payload)

	release, err := u.CheckLatestVersion(context.Background())
	if err != nil {
		t.Fatalf("CheckLatestVersion: %v", err)
	}

	var seen []int
	path, err := u.Download(context.Background(), release, func(p int) { seen = append(seen, p) })
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != u.StagedPath() || !u.HasStaged() {
		t.Fatalf("download not staged at %s", u.StagedPath())
	}
	if len(seen) == 0 || seen[len(seen)-1] != 100 {
		t.Errorf("progress = %v, want to end at 100", seen)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Errorf("progress went backwards: %v", seen)
		}
	}

	target := filepath.Join(t.TempDir(), "panelctl")
	if err := os.WriteFile(target, []byte("old"), 0o755); err != nil {
		t.Fatal(err)
	}
	u.Executable = target

	if err := u.ApplyStaged(); err != nil {
		t.Fatalf("ApplyStaged: %v", err)
	}
	got, _ := os.ReadFile(target)
	if string(got) != string(payload) {
		t.Errorf("executable not replaced (%d bytes)", len(got))
	}
	if u.HasStaged() {
		t.Error("staging dir should be cleared after apply")
	}
}

func TestDownload_MissingAsset(t *testing.T) {
	u := New("", "", t.TempDir())
	_, err := u.Download(context.Background(), &ReleaseInfo{TagName: "v1.0.0"}, nil)
	if err == nil {
		t.Fatal("expected error for release without platform asset")
	}
}

func TestApplyStaged_NothingStaged(t *testing.T) {
	u := New("", "", t.TempDir())
	if err := u.ApplyStaged(); err == nil {
		t.Fatal("expected error when nothing is staged")
	}
}
