package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

func (m Model) handleRPCLoaded(msg rpcLoadedMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		log.WithError(msg.err).Error("failed to load Discord RPC state")
		return m, nil
	}
	if !m.rpcPending {
		m.rpcEnabled = msg.enabled
	}
	return m, nil
}

// activateToggle flips the switch optimistically and sends the new value.
func (m Model) activateToggle() (Model, tea.Cmd) {
	if m.rpcPending {
		return m, nil
	}
	m.rpcEnabled = !m.rpcEnabled
	m.rpcPending = true
	return m, saveRPC(m.opts.Bridge, m.rpcEnabled)
}

func (m Model) handleRPCSaved(msg rpcSavedMsg) (Model, tea.Cmd) {
	m.rpcPending = false
	if msg.err != nil {
		log.WithError(msg.err).Error("failed to update Discord RPC state")
		m.rpcEnabled = !msg.enabled
	}
	return m, nil
}
