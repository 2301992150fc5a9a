package notify

import (
	"errors"
	"fmt"
	"strings"
)

// Notification is a short message raised by the host process.
type Notification struct {
	Title   string
	Message string
}

// Notifier sends notifications.
type Notifier interface {
	Send(n Notification) error
	Name() string
}

// NewDesktopNotifier returns a platform-specific desktop notification sender.
func NewDesktopNotifier() Notifier {
	return newPlatformNotifier()
}

type discard struct{}

func (discard) Send(Notification) error { return nil }
func (discard) Name() string            { return "discard" }

// Discard returns a Notifier that drops everything.
func Discard() Notifier { return discard{} }

// MultiNotifier fans a notification out to every sink it holds.
type MultiNotifier struct {
	sinks []Notifier
}

// NewMultiNotifier creates a MultiNotifier. A nil sink is skipped.
func NewMultiNotifier(ns ...Notifier) *MultiNotifier {
	m := &MultiNotifier{}
	for _, n := range ns {
		if n != nil {
			m.sinks = append(m.sinks, n)
		}
	}
	return m
}

// Send delivers n to every sink, even after one fails. Failures come back
// joined and prefixed with the sink name.
func (m *MultiNotifier) Send(n Notification) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Send(n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Name lists the sinks, for example "multi(linux,webhook)".
func (m *MultiNotifier) Name() string {
	names := make([]string, 0, len(m.sinks))
	for _, n := range m.sinks {
		names = append(names, n.Name())
	}
	return "multi(" + strings.Join(names, ",") + ")"
}
