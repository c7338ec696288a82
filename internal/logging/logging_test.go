package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("WARN"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(""))
	assert.Equal(t, logrus.InfoLevel, GetLevel("chatty"))
}

func TestSetupWritesToFile(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	})

	path := filepath.Join(t.TempDir(), "logs", "liftlog")
	closer := Setup(SetupParams{LogFileName: path, LogLevel: "debug", LogFormatJSON: true})
	logrus.Debugf("hello %s", "file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello file"`)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestSetupWithoutFile(t *testing.T) {
	t.Cleanup(func() { logrus.SetLevel(logrus.InfoLevel) })

	closer := Setup(SetupParams{LogLevel: "error"})
	assert.NoError(t, closer.Close())
	assert.Equal(t, logrus.ErrorLevel, logrus.GetLevel())
	assert.Equal(t, os.Stderr, logrus.StandardLogger().Out)
}
