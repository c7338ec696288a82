package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/liftlog/internal/ordering"
)

// isolate points every config lookup at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, v := range []string{
		"LIFTLOG_CONFIG_PATH",
		"LIFTLOG_DB_PATH",
		"LIFTLOG_LOG_LEVEL",
		"LIFTLOG_LOG_FILE",
		"LIFTLOG_LOG_JSON",
		"LIFTLOG_REORDER_SCOPE",
		"LIFTLOG_ROW_HEIGHT",
	} {
		t.Setenv(v, "")
	}
	return dir
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "liftlog", "liftlog.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(dir, "liftlog", "liftlog.log"), cfg.Log.File)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, ordering.ScopeGroup, cfg.ReorderScope())
	assert.Equal(t, 1, cfg.Ordering.RowHeight)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, filepath.Join(dir, "liftlog", "config.yaml"), `
database:
  path: /tmp/gym.db
log:
  level: debug
  json: true
ordering:
  scope: workout
  row_height: 2
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/gym.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, ordering.ScopeWorkout, cfg.ReorderScope())
	assert.Equal(t, 2, cfg.Ordering.RowHeight)
	// Keys missing from the file keep their defaults.
	assert.Equal(t, filepath.Join(dir, "liftlog", "liftlog.log"), cfg.Log.File)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeConfig(t, path, "log:\n  level: debug\n")
	t.Setenv("LIFTLOG_CONFIG_PATH", path)
	t.Setenv("LIFTLOG_LOG_LEVEL", "warn")
	t.Setenv("LIFTLOG_DB_PATH", "/data/liftlog.db")
	t.Setenv("LIFTLOG_REORDER_SCOPE", "workout")
	t.Setenv("LIFTLOG_ROW_HEIGHT", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/data/liftlog.db", cfg.Database.Path)
	assert.Equal(t, ordering.ScopeWorkout, cfg.ReorderScope())
	assert.Equal(t, 3, cfg.Ordering.RowHeight)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad level", "log:\n  level: loud\n"},
		{"bad scope", "ordering:\n  scope: global\n"},
		{"bad row height", "ordering:\n  row_height: 0\n"},
		{"empty db path", "database:\n  path: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeConfig(t, filepath.Join(dir, "liftlog", "config.yaml"), tt.body)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, filepath.Join(dir, "liftlog", "config.yaml"), "log: [unterminated")
	_, err := Load()
	assert.ErrorContains(t, err, "parsing config file")
}

func TestLoadFromFile_Missing(t *testing.T) {
	isolate(t)
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestLoadFromFile_ExpandsHome(t *testing.T) {
	dir := isolate(t)
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "c.yaml")
	writeConfig(t, path, "database:\n  path: ~/lift.db\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lift.db"), cfg.Database.Path)
}

func TestMarshalRoundTrip(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, *cfg, back)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/lifter")
	assert.Equal(t, "/home/lifter", ExpandPath("~"))
	assert.Equal(t, "/home/lifter/x.db", ExpandPath("~/x.db"))
	assert.Equal(t, "/abs/x.db", ExpandPath("/abs/x.db"))
	assert.Equal(t, "", ExpandPath(""))
}
