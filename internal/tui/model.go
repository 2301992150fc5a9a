package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"panelctl/internal/bridge"
	"panelctl/internal/config"
)

type control int

const (
	controlToggle control = iota
	controlUpdate
	controlReset
	controlCount
)

// Options configures the panel.
type Options struct {
	Bridge bridge.API
	// Events streams host notifications. Nil disables the subscription and
	// leaves the download fallback timer as the only completion signal.
	Events <-chan bridge.Event
	Timing config.Timing
	// Schedule delivers msg after d. Defaults to tea.Tick.
	Schedule func(d time.Duration, msg tea.Msg) tea.Cmd
}

// Model is the control panel.
type Model struct {
	opts   Options
	help   help.Model
	width  int
	height int
	focus  control

	active  flow
	display display
	version string
	session updateSession

	rpcEnabled bool
	rpcPending bool

	reset resetButton
	modal *modal

	disconnected bool
}

// New returns a panel that loads its state from opts.Bridge on Init.
func New(opts Options) Model {
	if opts.Schedule == nil {
		opts.Schedule = tick
	}
	return newModel(opts)
}

func newModel(opts Options) Model {
	return Model{
		opts:    opts,
		help:    help.New(),
		focus:   controlToggle,
		display: display{text: "Loading..."},
		reset:   resetButton{label: labelReset},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), waitForEvent(m.opts.Events))
}

// load fetches the toggle value and the installed version.
func (m Model) load() tea.Cmd {
	return tea.Batch(loadRPC(m.opts.Bridge), loadVersion(m.opts.Bridge, m.display.gen))
}

// Phase reports the update flow's current phase.
func (m Model) Phase() Phase { return m.session.phase }

// ButtonLabel is the update button's text.
func (m Model) ButtonLabel() string { return m.session.Label() }

// DisplayText is the status line under the version heading.
func (m Model) DisplayText() string { return m.display.text }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case rpcLoadedMsg:
		return m.handleRPCLoaded(msg)
	case rpcSavedMsg:
		return m.handleRPCSaved(msg)
	case versionLoadedMsg:
		return m.handleVersionLoaded(msg)
	case checkResultMsg:
		return m.handleCheckResult(msg)
	case downloadResultMsg:
		return m.handleDownloadResult(msg)
	case installResultMsg:
		return m.handleInstallResult(msg)
	case resetResultMsg:
		return m.handleResetResult(msg)

	case hostEventMsg:
		next, cmd := m.handleHostEvent(msg.event)
		return next, tea.Batch(cmd, waitForEvent(m.opts.Events))

	case eventsClosedMsg:
		log.Warn("host event stream closed")
		m.disconnected = true
		return m, nil

	case textRevertMsg:
		return m.handleTextRevert(msg)
	case phaseRevertMsg:
		return m.handlePhaseRevert(msg)
	case downloadFallbackMsg:
		return m.handleDownloadFallback(msg)
	case reloadMsg:
		return m.reload()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.modal != nil {
		switch m.modal.kind {
		case modalConfirm:
			switch {
			case key.Matches(msg, keys.Confirm):
				return m.confirmReset(true)
			case key.Matches(msg, keys.Cancel):
				return m.confirmReset(false)
			}
		case modalNotice:
			if key.Matches(msg, keys.Enter) || key.Matches(msg, keys.Cancel) {
				return m.dismissNotice()
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, keys.Up):
		m.focus = (m.focus + controlCount - 1) % controlCount
	case key.Matches(msg, keys.Down):
		m.focus = (m.focus + 1) % controlCount
	case key.Matches(msg, keys.Enter):
		return m.activate(m.focus)
	case key.Matches(msg, keys.Toggle):
		m.focus = controlToggle
		return m.activate(controlToggle)
	case key.Matches(msg, keys.Update):
		m.focus = controlUpdate
		return m.activate(controlUpdate)
	case key.Matches(msg, keys.Reset):
		m.focus = controlReset
		return m.activate(controlReset)
	}
	return m, nil
}

func (m Model) activate(c control) (tea.Model, tea.Cmd) {
	switch c {
	case controlToggle:
		return m.activateToggle()
	case controlUpdate:
		return m.activateUpdate()
	case controlReset:
		return m.activateReset()
	}
	return m, nil
}

// Run starts the panel on the alternate screen and blocks until it quits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
