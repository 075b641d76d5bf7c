package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/emitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartialFileFallsBackToDefaults(t *testing.T) {
	c, err := Decode([]byte(`
asset_dirs = ["shaders", "more"]
backends = ["vulkan"]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"shaders", "more"}, c.AssetDirs)
	assert.Equal(t, []string{"vulkan"}, c.Backends)
	assert.Equal(t, defaultWorkers, c.Workers)
	assert.Equal(t, defaultLogLevel, c.LogLevel)
	assert.Equal(t, defaultOutputDir, c.OutputDir)
	assert.Empty(t, c.SharedLibrary)
	assert.False(t, c.Watch)
}

func TestEmptyFileIsDefault(t *testing.T) {
	c, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", `colour = "red"`},
		{"bad backend", `backends = ["metal"]`},
		{"bad level", `log_level = "loud"`},
		{"negative workers", `workers = -2`},
		{"malformed", `asset_dirs = [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParsedBackendsDropsDuplicates(t *testing.T) {
	c := Config{Backends: []string{"Vulkan", "opengl", "vulkan"}}
	backends, err := c.ParsedBackends()
	require.NoError(t, err)
	assert.Equal(t, []emitter.Backend{emitter.BackendVulkan, emitter.BackendOpenGL}, backends)
}

func TestLevel(t *testing.T) {
	c := Default()
	c.LogLevel = "DEBUG"
	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = 8\nwatch = true\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Workers)
	assert.True(t, c.Watch)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestEncodeRoundTrip(t *testing.T) {
	c := Default()
	c.SharedLibrary = "lib/shared.glsl"
	data, err := c.Encode()
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}
