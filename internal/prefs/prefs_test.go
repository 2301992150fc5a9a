package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_MissingFileGivesDefaults(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "preferences.yaml"))
	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
}

func TestStore_UpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.yaml")
	s := NewStore(path)

	require.NoError(t, s.Update(func(p *Preferences) { p.DiscordRPCEnabled = true }))

	p, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.True(t, p.DiscordRPCEnabled)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "discordRpcEnabled: true")
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.yaml")
	require.NoError(t, os.WriteFile(path, []byte("discordRpcEnabled: [oops"), 0o644))

	p, err := NewStore(path).Load()
	assert.Error(t, err)
	assert.Equal(t, Defaults(), p)
}

func TestStore_Remove(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "preferences.yaml"))
	require.NoError(t, s.Update(func(p *Preferences) { p.DiscordRPCEnabled = true }))
	require.NoError(t, s.Remove())
	require.NoError(t, s.Remove())

	p, err := s.Load()
	require.NoError(t, err)
	assert.False(t, p.DiscordRPCEnabled)
}
