package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/starterkit/pkg/config"
)

type testServerConfig struct {
	Host string `env:"TEST_SERVER_HOST" envDefault:"localhost"`
	Port int    `env:"TEST_SERVER_PORT" envDefault:"8080"`
}

type testRequiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN,required"`
}

func TestLoadDefaults(t *testing.T) {
	config.ResetCache()

	var cfg testServerConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadFromEnvironment(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_SERVER_HOST", "0.0.0.0")
	t.Setenv("TEST_SERVER_PORT", "9090")

	var cfg testServerConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadCachesPerType(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_SERVER_PORT", "9191")

	var first testServerConfig
	require.NoError(t, config.Load(&first))

	// A later change to the environment must not affect the cached value.
	t.Setenv("TEST_SERVER_PORT", "1234")
	var second testServerConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first.Port, second.Port)
}

func TestLoadMissingRequired(t *testing.T) {
	config.ResetCache()

	var cfg testRequiredConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoadNilPointer(t *testing.T) {
	config.ResetCache()

	var cfg *testServerConfig
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}

func TestMustLoadPanics(t *testing.T) {
	config.ResetCache()

	assert.Panics(t, func() {
		var cfg testRequiredConfig
		config.MustLoad(&cfg)
	})
}

func TestLoadEnvMissingFile(t *testing.T) {
	err := config.LoadEnv("testdata/does-not-exist.env")
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
}
