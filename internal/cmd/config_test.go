package cmd_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Alia5/rcpad/internal/cmd"
	th "github.com/Alia5/rcpad/internal/testing"

	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"
)

func TestConfigInitFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		decode func([]byte) (map[string]any, error)
	}{
		{
			name:   "json",
			format: "json",
			decode: func(b []byte) (map[string]any, error) {
				m := map[string]any{}
				return m, json.Unmarshal(b, &m)
			},
		},
		{
			name:   "yaml",
			format: "yaml",
			decode: func(b []byte) (map[string]any, error) {
				m := map[string]any{}
				return m, yaml.Unmarshal(b, &m)
			},
		},
		{
			name:   "toml",
			format: "toml",
			decode: func(b []byte) (map[string]any, error) {
				tree, err := toml.LoadBytes(b)
				if err != nil {
					return nil, err
				}
				return tree.ToMap(), nil
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "panel."+tt.format)
			c := &cmd.ConfigInit{Command: "panel", Format: tt.format, Output: dest}
			require.NoError(t, c.Run(th.Quiet()))

			data, err := os.ReadFile(dest)
			require.NoError(t, err)
			m, err := tt.decode(data)
			require.NoError(t, err)

			linkCfg, ok := m["link"].(map[string]any)
			require.True(t, ok, "link section missing: %v", m)
			assert.Equal(t, "ws://192.168.4.1:1024/", linkCfg["address"])
			assert.Equal(t, "2s", linkCfg["reconnect_delay"])
			assert.Contains(t, m, "max_distance")
			assert.Contains(t, m, "deadzone")
			assert.Contains(t, m, "width")
			assert.Equal(t, false, m["fullscreen"])
		})
	}
}

func TestConfigInitVehicle(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "vehicle.json")
	c := &cmd.ConfigInit{Command: "vehicle", Format: "json", Output: dest}
	require.NoError(t, c.Run(th.Quiet()))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var m map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, ":1024", m["vehicle"]["addr"])
	assert.Equal(t, "2s", m["vehicle"]["shutdown_timeout"])
}

func TestConfigInitDefaultsToUserConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("AppData", dir)

	c := &cmd.ConfigInit{Command: "term", Format: "toml"}
	require.NoError(t, c.Run(th.Quiet()))

	data, err := os.ReadFile(filepath.Join(dir, "rcpad", "term.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "refresh")
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "term.yaml")
	require.NoError(t, os.WriteFile(dest, []byte("keep: true\n"), 0o644))

	c := &cmd.ConfigInit{Command: "term", Format: "yaml", Output: dest}
	assert.Error(t, c.Run(th.Quiet()))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "keep: true\n", string(data))

	c.Force = true
	require.NoError(t, c.Run(th.Quiet()))
	data, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "refresh: 16ms")
}

func TestConfigInitRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, (&cmd.ConfigInit{Command: "panel", Format: "ini", Output: filepath.Join(dir, "a")}).Run(th.Quiet()))
	assert.Error(t, (&cmd.ConfigInit{Command: "server", Format: "json", Output: filepath.Join(dir, "b")}).Run(th.Quiet()))
}
