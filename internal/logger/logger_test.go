package logger

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovelybooks/collector/internal/config"
)

func TestSetupFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "collector.log")

	closer, err := Setup(config.LogConfig{
		Level:    "warn",
		Format:   "json",
		Output:   "file",
		FilePath: path,
		MaxSize:  1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { log.SetOutput(os.Stdout) })

	log.Warn("written to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Equal(t, log.WarnLevel, log.GetLevel())
}

func TestSetupRejectsUnknownValues(t *testing.T) {
	_, err := Setup(config.LogConfig{Level: "info", Format: "xml", Output: "stdout"})
	assert.Error(t, err)

	_, err = Setup(config.LogConfig{Level: "info", Format: "text", Output: "syslog"})
	assert.Error(t, err)

	_, err = Setup(config.LogConfig{Level: "info", Format: "text", Output: "file"})
	assert.Error(t, err)
}

func TestSetupFallsBackToInfo(t *testing.T) {
	_, err := Setup(config.LogConfig{Level: "loud", Format: "text", Output: "stderr"})
	require.NoError(t, err)
	t.Cleanup(func() { log.SetOutput(os.Stdout) })

	assert.Equal(t, log.InfoLevel, log.GetLevel())
}
