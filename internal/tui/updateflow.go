package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"panelctl/internal/bridge"
)

func versionText(v string) string {
	if v == "" {
		v = "Unknown"
	}
	return "v" + v
}

func availableText(v string) string { return fmt.Sprintf("Update available: v%s", v) }
func readyText(v string) string     { return fmt.Sprintf("Download complete! Click to install v%s", v) }

// activateUpdate is the single click handler of the update button. The
// phase, not the label, picks the operation.
func (m Model) activateUpdate() (Model, tea.Cmd) {
	if m.updateDisabled() {
		return m, nil
	}
	if !m.acquire(flowUpdate) {
		return m, nil
	}
	switch m.session.effective() {
	case PhaseUpdateAvailable:
		return m.startDownload()
	case PhaseReadyToInstall:
		return m.startInstall()
	default:
		return m.startCheck()
	}
}

func (m Model) startCheck() (Model, tea.Cmd) {
	m.setPhase(PhaseChecking)
	m.session.pendingVersion = ""
	return m, checkForUpdates(m.opts.Bridge)
}

func (m Model) handleCheckResult(msg checkResultMsg) (Model, tea.Cmd) {
	if m.session.phase != PhaseChecking {
		return m, nil
	}
	m.release(flowUpdate)
	t := m.opts.Timing
	r := msg.result

	switch {
	case msg.err != nil:
		log.WithError(msg.err).Error("failed to check for updates")
		m.write(flowUpdate, "Error checking for updates")
		m.fail(PhaseIdle)
		return m, tea.Batch(
			m.revertToVersion(t.CheckErrorRevert),
			m.revertPhase(t.CheckErrorRevert, PhaseIdle),
		)

	case r.Error != "":
		m.write(flowUpdate, r.Error)
		m.fail(PhaseIdle)
		return m, tea.Batch(
			m.revertText(t.CheckErrorRevert, versionText(r.Version)),
			m.revertPhase(t.CheckErrorRevert, PhaseIdle),
		)

	case r.IsDevelopment:
		text := r.Message
		if text == "" {
			text = "Development mode"
		}
		m.write(flowUpdate, text)
		m.setPhase(PhaseIdle)
		return m, m.revertText(t.DevMessageRevert, versionText(r.Version))

	case r.UpdateAvailable:
		m.session.pendingVersion = r.Version
		m.write(flowUpdate, availableText(r.Version))
		m.setPhase(PhaseUpdateAvailable)
		return m, nil

	default:
		v := r.Version
		if v == "" {
			v = r.CurrentVersion
		}
		m.write(flowUpdate, versionText(v)+" (Latest)")
		m.setPhase(PhaseUpToDate)
		return m, m.revertPhase(t.UpToDateRevert, PhaseIdle)
	}
}

func (m Model) startDownload() (Model, tea.Cmd) {
	m.setPhase(PhaseDownloading)
	m.write(flowUpdate, "Downloading update...")
	return m, downloadUpdate(m.opts.Bridge)
}

func (m Model) handleDownloadResult(msg downloadResultMsg) (Model, tea.Cmd) {
	if m.session.phase != PhaseDownloading {
		return m, nil
	}
	switch {
	case msg.err != nil:
		log.WithError(msg.err).Error("failed to download update")
		return m.downloadFailed("Error downloading update")
	case msg.result.Error != "":
		return m.downloadFailed("Error: " + msg.result.Error)
	}
	// The host reports completion with an event. The timer only covers a
	// host that never sends one.
	return m, m.armDownloadFallback()
}

func (m *Model) armDownloadFallback() tea.Cmd {
	m.session.gen++
	return m.opts.Schedule(m.opts.Timing.DownloadFallback, downloadFallbackMsg{gen: m.session.gen})
}

func (m Model) downloadFailed(text string) (Model, tea.Cmd) {
	m.release(flowUpdate)
	d := m.opts.Timing.DownloadErrorRevert
	m.write(flowUpdate, text)
	m.fail(PhaseUpdateAvailable)
	return m, tea.Batch(
		m.revertText(d, availableText(m.session.pendingVersion)),
		m.revertPhase(d, PhaseUpdateAvailable),
	)
}

func (m Model) enterReady() (Model, tea.Cmd) {
	m.setPhase(PhaseReadyToInstall)
	m.write(flowUpdate, readyText(m.session.pendingVersion))
	m.release(flowUpdate)
	return m, nil
}

func (m Model) handleDownloadFallback(msg downloadFallbackMsg) (Model, tea.Cmd) {
	if m.session.phase != PhaseDownloading || msg.gen != m.session.gen {
		return m, nil
	}
	log.Debug("no completion event from host, assuming download finished")
	return m.enterReady()
}

func (m Model) handleHostEvent(ev bridge.Event) (Model, tea.Cmd) {
	if m.session.phase != PhaseDownloading {
		log.WithField("event", ev.Name).Debug("host event outside download")
		return m, nil
	}
	switch ev.Name {
	case bridge.EventDownloadProgress:
		var p bridge.ProgressPayload
		if err := ev.Decode(&p); err != nil {
			log.WithError(err).Warn("bad progress payload")
			return m, nil
		}
		m.write(flowUpdate, fmt.Sprintf("Downloading update... %d%%", p.Percent))
		return m, m.armDownloadFallback()

	case bridge.EventUpdateDownloaded:
		var p bridge.DownloadedPayload
		if err := ev.Decode(&p); err == nil && m.session.pendingVersion == "" {
			m.session.pendingVersion = p.Version
		}
		return m.enterReady()

	case bridge.EventUpdateError:
		var p bridge.ErrorPayload
		if err := ev.Decode(&p); err != nil || p.Message == "" {
			return m.downloadFailed("Error downloading update")
		}
		return m.downloadFailed("Error: " + p.Message)
	}
	return m, nil
}

func (m Model) startInstall() (Model, tea.Cmd) {
	m.setPhase(PhaseInstalling)
	m.write(flowUpdate, "Installing update and restarting...")
	return m, installUpdate(m.opts.Bridge)
}

func (m Model) handleInstallResult(msg installResultMsg) (Model, tea.Cmd) {
	if m.session.phase != PhaseInstalling {
		return m, nil
	}
	switch {
	case msg.err != nil:
		log.WithError(msg.err).Error("failed to install update")
		return m.installFailed("Error installing update")
	case msg.result.Error != "":
		return m.installFailed("Error: " + msg.result.Error)
	}
	// Terminal for this session. The host restarts the process.
	m.write(flowUpdate, "Installing update...")
	return m, nil
}

func (m Model) installFailed(text string) (Model, tea.Cmd) {
	m.release(flowUpdate)
	d := m.opts.Timing.InstallErrorRevert
	m.write(flowUpdate, text)
	m.fail(PhaseReadyToInstall)
	return m, tea.Batch(
		m.revertText(d, readyText(m.session.pendingVersion)),
		m.revertPhase(d, PhaseReadyToInstall),
	)
}

func (m Model) handleTextRevert(msg textRevertMsg) (Model, tea.Cmd) {
	if msg.gen != m.display.gen {
		return m, nil
	}
	if msg.fetchVersion {
		return m, loadVersion(m.opts.Bridge, m.display.gen)
	}
	m.write(flowUpdate, msg.text)
	return m, nil
}

func (m Model) handlePhaseRevert(msg phaseRevertMsg) (Model, tea.Cmd) {
	if msg.gen != m.session.gen {
		return m, nil
	}
	m.setPhase(msg.to)
	return m, nil
}

func (m Model) handleVersionLoaded(msg versionLoadedMsg) (Model, tea.Cmd) {
	if msg.gen != m.display.gen {
		return m, nil
	}
	if msg.err != nil {
		log.WithError(msg.err).Error("failed to load version")
		m.write(flowUpdate, "Unknown")
		return m, nil
	}
	m.version = msg.version
	m.write(flowUpdate, versionText(msg.version))
	return m, nil
}
