// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, BungieAPIKey, "  abc123def  \n")
				writeFile(t, dir, "other-key", "xyz")
				return dir
			},
			want: map[string]string{
				BungieAPIKey: "abc123def",
				"other-key":  "xyz",
			},
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, BungieAPIKey, "   \n\t ")
				return dir
			},
			want: map[string]string{},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				writeFile(t, dir, BungieAPIKey, "real")
				return dir
			},
			want: map[string]string{BungieAPIKey: "real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFileIsLogged(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, BungieAPIKey, "good")
	bad := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(bad, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(bad, 0o644) })

	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	got, err := Load(dir, log)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{BungieAPIKey: "good"}, got)
	assert.Contains(t, buf.String(), "could not read secret")
	assert.Contains(t, buf.String(), "bad-key")
}

func TestResolveAPIKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BungieAPIKey, "from-file\n")

	t.Run("explicit wins", func(t *testing.T) {
		key, err := ResolveAPIKey(" from-flag ", dir, nil)
		require.NoError(t, err)
		assert.Equal(t, "from-flag", key)
	})

	t.Run("falls back to file", func(t *testing.T) {
		key, err := ResolveAPIKey("", dir, nil)
		require.NoError(t, err)
		assert.Equal(t, "from-file", key)
	})

	t.Run("nothing configured", func(t *testing.T) {
		var buf bytes.Buffer
		log := logrus.New()
		log.SetOutput(&buf)

		key, err := ResolveAPIKey("", t.TempDir(), log)
		require.NoError(t, err)
		assert.Empty(t, key)
		assert.Contains(t, buf.String(), "no Bungie API key configured")
	})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
