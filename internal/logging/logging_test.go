package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "panel.log")
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	require.NoError(t, Init("debug", path))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	log.WithField("flow", "update").Info("check started")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "check started")
	assert.Contains(t, string(data), "flow=update")
}

func TestInit_BadLevel(t *testing.T) {
	assert.Error(t, Init("loud", "console"))
}
