package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" ⬡ panelctl "))
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Control Panel"))
	b.WriteString("\n\n")

	rows := []string{
		m.row(controlToggle, "Discord Rich Presence", m.renderSwitch()),
		m.row(controlUpdate, "Updates", m.renderButton(controlUpdate, m.session.Label(), m.updateDisabled(), false)),
		m.row(-1, "Version", m.renderDisplay()),
		m.row(controlReset, "Reset", m.renderButton(controlReset, m.reset.label, m.resetDisabled(), true)),
	}
	panel := panelStyle.Render(strings.Join(rows, "\n\n"))

	if m.modal != nil {
		panel = lipgloss.JoinVertical(lipgloss.Left, panel, "", m.renderModal())
	}
	b.WriteString(panel)

	if m.disconnected {
		b.WriteString("\n")
		b.WriteString(statusErrorStyle.Render("Host disconnected. Restart the panel to reconnect."))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(keys)))

	return appStyle.Render(b.String())
}

func (m Model) row(c control, label, value string) string {
	cursor := "  "
	if c == m.focus && m.modal == nil {
		cursor = cursorStyle.Render("▸ ")
	}
	return cursor + labelStyle.Render(label) + value
}

func (m Model) renderSwitch() string {
	s := switchOffStyle.Render("○ off")
	if m.rpcEnabled {
		s = switchOnStyle.Render("● on")
	}
	if m.rpcPending {
		s += subtitleStyle.Render("  saving...")
	}
	return s
}

func (m Model) renderButton(c control, label string, disabled, danger bool) string {
	switch {
	case disabled:
		return disabledButtonStyle.Render(label)
	case c == m.focus && danger:
		return dangerButtonStyle.Render(label)
	case c == m.focus:
		return focusedButtonStyle.Render(label)
	}
	return buttonStyle.Render(label)
}

func (m Model) renderDisplay() string {
	if m.session.phase == PhaseError {
		return statusWarnStyle.Render(m.display.text)
	}
	return valueStyle.Render(m.display.text)
}

// updateDisabled reports whether the update button ignores clicks, either
// from its own phase or because another flow holds the display.
func (m Model) updateDisabled() bool {
	return m.session.Disabled() || (m.active != flowNone && m.active != flowUpdate)
}

func (m Model) resetDisabled() bool {
	return m.reset.disabled || (m.active != flowNone && m.active != flowReset)
}

func (m Model) renderModal() string {
	var hint string
	switch m.modal.kind {
	case modalConfirm:
		hint = "[y] reset  [n] cancel"
	default:
		hint = "[enter] ok"
	}
	return modalStyle.Render(m.modal.text + "\n\n" + subtitleStyle.Render(hint))
}
