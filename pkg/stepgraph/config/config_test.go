package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfig_TypedAccessors returns values or defaults per type.
func TestConfig_TypedAccessors(t *testing.T) {
	cfg := New(map[string]any{
		"name":    "analyzer",
		"enabled": true,
		"days":    30,
		"ratio":   1.5,
	})

	assert.Equal(t, "analyzer", cfg.String("name", "fallback"))
	assert.Equal(t, "fallback", cfg.String("missing", "fallback"))
	assert.True(t, cfg.Bool("enabled", false))
	assert.False(t, cfg.Bool("missing", false))
	assert.Equal(t, 30, cfg.Int("days", 7))
	assert.Equal(t, 7, cfg.Int("missing", 7))
	assert.Equal(t, 1.5, cfg.Float("ratio", 0))
	assert.True(t, cfg.Has("name"))
	assert.False(t, cfg.Has("missing"))
}

// TestConfig_NumericCoercion accepts the numeric types YAML and JSON
// decoders produce.
func TestConfig_NumericCoercion(t *testing.T) {
	cfg := New(map[string]any{
		"from_json": float64(42),
		"from_yaml": int64(42),
	})

	assert.Equal(t, 42, cfg.Int("from_json", 0))
	assert.Equal(t, 42, cfg.Int("from_yaml", 0))
	assert.Equal(t, 42.0, cfg.Float("from_yaml", 0))
}

// TestConfig_Duration accepts duration strings and numeric seconds.
func TestConfig_Duration(t *testing.T) {
	cfg := New(map[string]any{
		"as_string":  "1m30s",
		"as_int":     10,
		"as_float":   1.5,
		"as_garbage": "not a duration",
	})

	assert.Equal(t, 90*time.Second, cfg.Duration("as_string", 0))
	assert.Equal(t, 10*time.Second, cfg.Duration("as_int", 0))
	assert.Equal(t, 1500*time.Millisecond, cfg.Duration("as_float", 0))
	assert.Equal(t, time.Minute, cfg.Duration("as_garbage", time.Minute))
	assert.Equal(t, time.Minute, cfg.Duration("missing", time.Minute))
}

// TestConfig_Sub returns nested sections and tolerates absent ones.
func TestConfig_Sub(t *testing.T) {
	cfg := New(map[string]any{
		"agent": map[string]any{
			"model": "gpt-4o-mini",
		},
	})

	assert.Equal(t, "gpt-4o-mini", cfg.Sub("agent").String("model", ""))
	assert.Equal(t, "default", cfg.Sub("missing").String("model", "default"))
}

// TestFromYAML parses YAML into a Config.
func TestFromYAML(t *testing.T) {
	cfg, err := FromYAML([]byte("model: gpt-4o-mini\ndays: 30\nagent:\n  verbose: true\n"))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.String("model", ""))
	assert.Equal(t, 30, cfg.Int("days", 0))
	assert.True(t, cfg.Sub("agent").Bool("verbose", false))
}

// TestFromJSON parses JSON into a Config.
func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{"model": "gpt-4o-mini", "days": 30}`))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.String("model", ""))
	assert.Equal(t, 30, cfg.Int("days", 0))
}

// TestFromFile picks the decoder by extension.
func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("model: a\n"), 0o644))
	jsonPath := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"model": "b"}`), 0o644))

	yamlCfg, err := FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "a", yamlCfg.String("model", ""))

	jsonCfg, err := FromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "b", jsonCfg.String("model", ""))

	_, err = FromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
