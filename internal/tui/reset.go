package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

const (
	resetWarning = "Are you sure you want to reset the app? This will clear all local data and cookies. This action cannot be undone."
	resetDone    = "App has been reset successfully. The app will reload."
	resetFailed  = "Failed to reset app. Please try again."

	labelReset     = "Reset App"
	labelResetting = "Resetting..."
	labelResetDone = "Reset Complete"
)

type modalKind int

const (
	modalConfirm modalKind = iota
	modalNotice
)

// modal captures input until answered. Async results keep flowing while it
// is open.
type modal struct {
	kind   modalKind
	text   string
	reload bool // schedule a reload once the notice is dismissed
}

type resetButton struct {
	label    string
	disabled bool
}

// activateReset opens the confirmation. resetApp is only ever sent from
// confirmReset.
func (m Model) activateReset() (Model, tea.Cmd) {
	if m.resetDisabled() {
		return m, nil
	}
	m.modal = &modal{kind: modalConfirm, text: resetWarning}
	return m, nil
}

func (m Model) confirmReset(yes bool) (Model, tea.Cmd) {
	m.modal = nil
	if !yes {
		return m, nil
	}
	if !m.acquire(flowReset) {
		return m, nil
	}
	m.reset = resetButton{label: labelResetting, disabled: true}
	return m, resetApp(m.opts.Bridge)
}

func (m Model) handleResetResult(msg resetResultMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		log.WithError(msg.err).Error("failed to reset app")
		m.reset = resetButton{label: labelReset}
		m.release(flowReset)
		m.modal = &modal{kind: modalNotice, text: resetFailed}
		return m, nil
	}
	// The button stays disabled and the flow keeps the display until the
	// reload replaces the whole model.
	m.reset.label = labelResetDone
	m.modal = &modal{kind: modalNotice, text: resetDone, reload: true}
	return m, nil
}

func (m Model) dismissNotice() (Model, tea.Cmd) {
	md := m.modal
	m.modal = nil
	if md != nil && md.reload {
		return m, m.opts.Schedule(m.opts.Timing.ReloadDelay, reloadMsg{})
	}
	return m, nil
}

// reload rebuilds the panel from host state, as if freshly opened. The
// generations carry over, one past the old ones, so timers armed before the
// reload stay stale.
func (m Model) reload() (Model, tea.Cmd) {
	fresh := newModel(m.opts)
	fresh.display.gen = m.display.gen + 1
	fresh.session.gen = m.session.gen + 1
	fresh.width, fresh.height = m.width, m.height
	fresh.help.Width = m.help.Width
	fresh.disconnected = m.disconnected
	return fresh, fresh.load()
}
