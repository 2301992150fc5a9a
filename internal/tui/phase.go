package tui

// Phase is a state of the update flow. The button label is derived from it,
// never the reverse.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseChecking
	PhaseUpdateAvailable
	PhaseDownloading
	PhaseReadyToInstall
	PhaseInstalling
	PhaseUpToDate
	// PhaseError shows a transient error. The button behaves like the
	// session's origin phase until the error times out.
	PhaseError
)

// Button labels.
const (
	LabelCheck      = "Check for Updates"
	LabelChecking   = "Checking..."
	LabelInstall    = "Install"
	LabelDownload   = "Downloading..."
	LabelRestart    = "Install & Restart"
	LabelInstalling = "Installing..."
	LabelUpToDate   = "Up to Date"
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseChecking:
		return "checking"
	case PhaseUpdateAvailable:
		return "update-available"
	case PhaseDownloading:
		return "downloading"
	case PhaseReadyToInstall:
		return "ready-to-install"
	case PhaseInstalling:
		return "installing"
	case PhaseUpToDate:
		return "up-to-date"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// busy reports whether the button is disabled in this phase.
func (p Phase) busy() bool {
	switch p {
	case PhaseChecking, PhaseDownloading, PhaseInstalling, PhaseUpToDate:
		return true
	}
	return false
}

// updateSession is the state of the update flow. gen is bumped on every
// phase change so timers armed for an earlier phase can tell they are stale.
type updateSession struct {
	phase          Phase
	origin         Phase // resting phase behind PhaseError
	pendingVersion string
	gen            uint64
}

// effective returns the phase whose label and click behavior apply.
func (s updateSession) effective() Phase {
	if s.phase == PhaseError {
		return s.origin
	}
	return s.phase
}

// Label returns the button text for the session.
func (s updateSession) Label() string {
	switch s.effective() {
	case PhaseChecking:
		return LabelChecking
	case PhaseUpdateAvailable:
		return LabelInstall
	case PhaseDownloading:
		return LabelDownload
	case PhaseReadyToInstall:
		return LabelRestart
	case PhaseInstalling:
		return LabelInstalling
	case PhaseUpToDate:
		return LabelUpToDate
	}
	return LabelCheck
}

// Disabled reports whether clicks are ignored.
func (s updateSession) Disabled() bool {
	return s.effective().busy()
}
