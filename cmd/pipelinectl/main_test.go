package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging(t *testing.T) {
	require.NoError(t, setupLogging(true, true, ""))
	assert.Equal(t, zerolog.GlobalLevel(), zerolog.DebugLevel)
	require.NoError(t, setupLogging(false, true, ""))
	assert.Equal(t, zerolog.GlobalLevel(), zerolog.InfoLevel)
}

func TestSetupLogging_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pipelinectl.log")
	require.NoError(t, setupLogging(false, true, path))
	t.Cleanup(func() {
		_ = logFile.Close()
		logFile = nil
	})

	log.Info().Msg("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
