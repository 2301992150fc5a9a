package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"panelctl/internal/update"
)

// AutoChecker runs background update checks on a cron schedule and notifies
// when a new release appears. Each release is announced once.
type AutoChecker struct {
	host *Host
	spec string

	mu        sync.Mutex
	cron      *cron.Cron
	announced string
}

// NewAutoChecker returns a checker for h firing on spec (standard cron or
// "@every <duration>").
func NewAutoChecker(h *Host, spec string) *AutoChecker {
	return &AutoChecker{host: h, spec: spec}
}

// Start registers the schedule and begins dispatching it.
func (a *AutoChecker) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := cron.New()
	if _, err := c.AddFunc(a.spec, a.run); err != nil {
		return fmt.Errorf("schedule %q: %w", a.spec, err)
	}
	c.Start()
	a.cron = c
	log.WithField("schedule", a.spec).Info("[autocheck] started")
	return nil
}

// Stop shuts down the cron runner, waiting for a running check to finish.
func (a *AutoChecker) Stop() {
	a.mu.Lock()
	c := a.cron
	a.cron = nil
	a.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
		log.Info("[autocheck] stopped")
	}
}

func (a *AutoChecker) run() {
	state, err := a.host.updater.LoadState()
	if err != nil {
		log.WithError(err).Warn("[autocheck] read update state")
	}
	if !update.ShouldCheck(state) {
		log.Debug("[autocheck] checked recently, skipping")
		return
	}
	a.Check(context.Background())
}

// Check performs one check now.
func (a *AutoChecker) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	r, err := a.host.CheckForUpdates(ctx)
	if err != nil || r.Error != "" || !r.UpdateAvailable {
		return
	}

	a.mu.Lock()
	seen := a.announced == r.Version
	a.announced = r.Version
	a.mu.Unlock()
	if seen {
		return
	}
	a.host.sendNotification("Update available", fmt.Sprintf("Version %s is ready to download from the control panel.", r.Version))
}
