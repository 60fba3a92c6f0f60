package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigDefaults(t *testing.T) {
	config := InitConfig("")

	assert.NotEmpty(t, config.DataDir)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, 4, config.Script.Par)
	assert.Equal(t, int64(450), config.Cache.TotalBudget)
	assert.False(t, config.Cache.TxIndex)
	assert.Equal(t, 0, config.Cache.FilterIndexes)
	assert.True(t, config.Cache.Compression)
	assert.Equal(t, 64, config.Cache.MaxOpenFiles)
}

func TestInitConfigFromFile(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "globenew.yml")
	content := []byte("log:\n  level: debug\ncache:\n  totalbudget: 1024\n  txindex: true\n")
	require.NoError(t, os.WriteFile(confPath, content, 0644))

	config := InitConfig(confPath)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, int64(1024), config.Cache.TotalBudget)
	assert.True(t, config.Cache.TxIndex)
	// Unset keys keep their defaults.
	assert.Equal(t, 4, config.Script.Par)
}

func TestInitArgs(t *testing.T) {
	opts, err := InitArgs([]string{
		"--datadir", "/tmp/chain", "--dbcache", "2048", "--txindex",
		"--nocompression", "--par", "8", "--loglevel", "warn",
	})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/chain", opts.DataDir)
	assert.Equal(t, int64(2048), opts.DBCache)
	assert.True(t, opts.TxIndex)
	assert.True(t, opts.NoCompression)
	assert.Equal(t, 8, opts.ScriptPar)
	assert.Equal(t, "warn", opts.LogLevel)

	_, err = InitArgs([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestInitArgsSentinels(t *testing.T) {
	opts, err := InitArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), opts.DBCache)
	assert.Equal(t, -1, opts.FilterIndexes)
	assert.Equal(t, -1, opts.MaxOpenFiles)
	assert.Equal(t, -1, opts.ScriptPar)
}

func TestApplyArgs(t *testing.T) {
	config := InitConfig("")
	defaults := *config

	// Unset options leave the configuration untouched.
	opts, err := InitArgs(nil)
	require.NoError(t, err)
	ApplyArgs(config, opts)
	assert.Equal(t, defaults.Cache, config.Cache)
	assert.Equal(t, defaults.Script, config.Script)

	opts, err = InitArgs([]string{
		"--dbcache", "100", "--txindex", "--filterindexes", "2",
		"--nocompression", "--maxopenfiles", "256", "--par", "2",
	})
	require.NoError(t, err)
	ApplyArgs(config, opts)
	assert.Equal(t, int64(100), config.Cache.TotalBudget)
	assert.True(t, config.Cache.TxIndex)
	assert.Equal(t, 2, config.Cache.FilterIndexes)
	assert.False(t, config.Cache.Compression)
	assert.Equal(t, 256, config.Cache.MaxOpenFiles)
	assert.Equal(t, 2, config.Script.Par)
	// DataDir was not given and stays as loaded.
	assert.Equal(t, defaults.DataDir, config.DataDir)
}

func TestDataPath(t *testing.T) {
	config := InitConfig("")
	saved := config.DataDir
	defer func() { Cfg.DataDir = saved }()

	Cfg.DataDir = t.TempDir()
	p := DataPath("blocks", "index")
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(Cfg.DataDir, "blocks", "index"), p)
}
