package logging

import (
	"runtime"
	"time"

	gosentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

// enabled tracks whether sentry was successfully initialized.
var enabled bool

// InitSentry reports errors logged through logrus to Sentry. An empty dsn
// leaves reporting off and every other function here a no-op.
func InitSentry(dsn, version, process string) error {
	if dsn == "" {
		enabled = false
		return nil
	}

	err := gosentry.Init(gosentry.ClientOptions{
		Dsn:              dsn,
		Release:          "panelctl@" + version,
		AttachStacktrace: true,
		SampleRate:       1.0,
	})
	if err != nil {
		return err
	}

	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetTag("process", process)
		scope.SetTag("version", version)
	})

	log.AddHook(sentryHook{})
	enabled = true
	return nil
}

// Flush waits up to 2 seconds for buffered events to be sent.
func Flush() {
	if !enabled {
		return
	}
	gosentry.Flush(2 * time.Second)
}

// RecoverPanic captures a panic to Sentry, flushes, then re-panics.
// Usage: defer logging.RecoverPanic()
func RecoverPanic() {
	if !enabled {
		return
	}
	if err := recover(); err != nil {
		gosentry.CurrentHub().Recover(err)
		gosentry.Flush(2 * time.Second)
		panic(err)
	}
}

// sentryHook turns errors into events and warnings into breadcrumbs.
type sentryHook struct{}

func (sentryHook) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel}
}

func (sentryHook) Fire(e *log.Entry) error {
	if e.Level == log.WarnLevel {
		gosentry.AddBreadcrumb(&gosentry.Breadcrumb{
			Level:    gosentry.LevelWarning,
			Category: "log",
			Message:  e.Message,
			Data:     breadcrumbData(e.Data),
		})
		return nil
	}

	hub := gosentry.CurrentHub().Clone()
	hub.WithScope(func(scope *gosentry.Scope) {
		for k, v := range e.Data {
			if k == log.ErrorKey {
				continue
			}
			scope.SetExtra(k, v)
		}
		if err, ok := e.Data[log.ErrorKey].(error); ok {
			scope.SetExtra("message", e.Message)
			hub.CaptureException(err)
			return
		}
		hub.CaptureMessage(e.Message)
	})
	return nil
}

func breadcrumbData(fields log.Fields) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}
	data := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}
	return data
}
