package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

// flow identifies which of the panel's behaviors holds the display.
type flow int

const (
	flowNone flow = iota
	flowToggle
	flowUpdate
	flowReset
)

func (f flow) String() string {
	switch f {
	case flowToggle:
		return "toggle"
	case flowUpdate:
		return "update"
	case flowReset:
		return "reset"
	}
	return "none"
}

// display is the shared status text under the version heading. Every write
// bumps gen so revert timers armed before it become no-ops.
type display struct {
	text string
	gen  uint64
}

// acquire marks f as the active flow. It fails while another flow is busy.
func (m *Model) acquire(f flow) bool {
	if m.active != flowNone && m.active != f {
		log.WithFields(log.Fields{"flow": f, "active": m.active}).Debug("flow refused, another flow is active")
		return false
	}
	m.active = f
	return true
}

func (m *Model) release(f flow) {
	if m.active == f {
		m.active = flowNone
	}
}

// write replaces the display text on behalf of f.
func (m *Model) write(f flow, text string) bool {
	if m.active != flowNone && m.active != f {
		log.WithFields(log.Fields{"flow": f, "active": m.active}).Debug("display write dropped")
		return false
	}
	m.display.text = text
	m.display.gen++
	return true
}

// setPhase moves the update session and invalidates timers armed for the
// previous phase.
func (m *Model) setPhase(p Phase) {
	m.session.phase = p
	m.session.gen++
}

// fail enters PhaseError on top of origin.
func (m *Model) fail(origin Phase) {
	m.session.origin = origin
	m.setPhase(PhaseError)
}

// revertText arms a timer restoring the display to text unless something
// writes to it first.
func (m *Model) revertText(d time.Duration, text string) tea.Cmd {
	return m.opts.Schedule(d, textRevertMsg{gen: m.display.gen, text: text})
}

// revertToVersion is revertText with the installed version fetched from the
// host at fire time.
func (m *Model) revertToVersion(d time.Duration) tea.Cmd {
	return m.opts.Schedule(d, textRevertMsg{gen: m.display.gen, fetchVersion: true})
}

// revertPhase arms a timer moving the session to p unless the phase changes
// first.
func (m *Model) revertPhase(d time.Duration, p Phase) tea.Cmd {
	return m.opts.Schedule(d, phaseRevertMsg{gen: m.session.gen, to: p})
}

func tick(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}
