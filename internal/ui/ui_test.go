package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Out
	Out = &buf
	t.Cleanup(func() { Out = prev })
	return &buf
}

func TestShowError(t *testing.T) {
	buf := capture(t)

	ShowError("Failed to load config", errors.New("bad yaml"))
	ShowError("Host unreachable", nil)

	assert.Contains(t, buf.String(), "Failed to load config: bad yaml")
	assert.Contains(t, buf.String(), "Host unreachable\n")
}

func TestShowHeader(t *testing.T) {
	buf := capture(t)

	ShowHeader("panelctl")
	assert.Equal(t, " ──────────\n panelctl\n ──────────\n", buf.String())
}

func TestShowFormats(t *testing.T) {
	buf := capture(t)

	ShowSuccess("listening on %s", "127.0.0.1:47600")
	ShowInfo("version %s", "1.0.0")
	ShowWarning("%d staged", 1)

	out := buf.String()
	assert.Contains(t, out, "listening on 127.0.0.1:47600")
	assert.Contains(t, out, "version 1.0.0")
	assert.Contains(t, out, "1 staged")
}
