package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoChecker_AnnouncesOnce(t *testing.T) {
	f := newFixture(t, "1.0.0", "v1.1.0")
	a := NewAutoChecker(f.host, "@hourly")

	a.Check(context.Background())
	a.Check(context.Background())

	assert.Equal(t, []string{"Update available"}, f.notifier.titles())
}

func TestAutoChecker_QuietWhenUpToDate(t *testing.T) {
	f := newFixture(t, "1.1.0", "v1.1.0")
	a := NewAutoChecker(f.host, "@hourly")

	a.Check(context.Background())
	assert.Empty(t, f.notifier.titles())
}

func TestAutoChecker_RunHonorsCheckInterval(t *testing.T) {
	f := newFixture(t, "1.0.0", "v1.1.0")
	a := NewAutoChecker(f.host, "@hourly")

	// A check just happened, so the scheduled run is skipped.
	_, err := f.host.CheckForUpdates(context.Background())
	require.NoError(t, err)
	a.run()
	assert.Empty(t, f.notifier.titles())
}

func TestAutoChecker_StartStop(t *testing.T) {
	f := newFixture(t, "1.0.0", "v1.1.0")

	require.Error(t, NewAutoChecker(f.host, "not a schedule").Start())

	a := NewAutoChecker(f.host, "@every 1h")
	require.NoError(t, a.Start())

	done := make(chan struct{})
	go func() {
		a.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}
