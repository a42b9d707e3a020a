package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claimdesk/internal/config"
)

func TestInitConfig_ReadsConfigFile(t *testing.T) {
	resetViper(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  backend: sqlite
llm:
  provider: mock
  rate_limit: 5
`), 0o600))

	cfgFile = path
	t.Cleanup(func() { cfgFile = "" })

	require.NoError(t, initConfig(nil, nil))
	assert.Equal(t, "sqlite", viper.GetString(config.KeyStorageBackend))
	assert.Equal(t, "mock", viper.GetString(config.KeyLLMProvider))
	assert.Equal(t, 5, viper.GetInt(config.KeyLLMRateLimit))
	assert.Equal(t, "info", viper.GetString(config.KeyLogLevel))
}

func TestInitConfig_EnvOverride(t *testing.T) {
	resetViper(t)
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { cfgFile = "" })
	t.Setenv("CLAIMDESK_LLM_PROVIDER", "anthropic")

	// An explicit config file that does not exist is an error.
	require.Error(t, initConfig(nil, nil))

	resetViper(t)
	cfgFile = ""
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, initConfig(nil, nil))
	assert.Equal(t, "anthropic", viper.GetString(config.KeyLLMProvider))
}

func TestInitConfig_InvalidLogLevel(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", t.TempDir())
	viper.Set(config.KeyLogLevel, "loud")

	assert.Error(t, initConfig(nil, nil))
}

func TestRootCmd_Demo(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"demo", "--log-level", "error"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "CLAIM REJECTED: Fraud suspected")
}
