package logging

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init parses the level and points the standard logrus logger at logPath.
// "console" writes to stderr; the panel never uses it because the terminal
// belongs to the TUI.
func Init(level, logPath string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Errorf("failed parsing log-level %s: %s", level, err)
		return err
	}

	var out io.Writer = os.Stderr
	if logPath != "" && logPath != "console" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return err
		}
		out = &lumberjack.Logger{
			Filename:   filepath.ToSlash(logPath),
			MaxSize:    5, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
	}

	log.SetOutput(out)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   logPath != "console",
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	log.SetLevel(lvl)
	return nil
}
