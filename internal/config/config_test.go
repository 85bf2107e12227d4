package config

import (
	"os"
	"path/filepath"
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "heaplru.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, []int{1024}, cfg.ReplayCapacities())
}

func TestLoad_FileWithComments(t *testing.T) {
	path := writeFile(t, `{
		// sweep a few sizes
		"capacities": [2, 4, 8,],
		"keys": 64,
		"log_level": "debug",
	}`)

	cfg, err := Load(path, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 4, 8}, cfg.ReplayCapacities())
	assert.Equal(t, 64, cfg.Keys)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Default().Accesses, cfg.Accesses, "unset fields keep defaults")
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, `{"capacity": 10, "keys": 20, "accesses": 30}`)
	environ := []string{"HEAPLRU_KEYS=200", "HEAPLRU_ACCESSES=300", "UNRELATED=x"}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--accesses=3000"}))

	cfg, err := Load(path, environ, fs)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Capacity, "file beats defaults")
	assert.Equal(t, 200, cfg.Keys, "env beats file")
	assert.Equal(t, 3000, cfg.Accesses, "flag beats env")
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", []string{"HEAPLRU_CAPACITY=7"}, fs)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Capacity)
}

func TestLoad_EnvSlice(t *testing.T) {
	cfg, err := Load("", []string{"HEAPLRU_CAPACITIES=1,2,3", "HEAPLRU_PREFILL=true"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, cfg.Capacities)
	assert.True(t, cfg.Prefill)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"), nil, nil)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad JSONC", func(t *testing.T) {
		_, err := Load(writeFile(t, `{"capacity": `), nil, nil)
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("bad env", func(t *testing.T) {
		_, err := Load("", []string{"HEAPLRU_KEYS=many"}, nil)
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := Load("", []string{"HEAPLRU_CAPACITY=0"}, nil)
		require.ErrorIs(t, err, ErrInvalid)
	})
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"capacity":   func(c *Config) { c.Capacity = -1 },
		"capacities": func(c *Config) { c.Capacities = []int{4, 0} },
		"keys":       func(c *Config) { c.Keys = 0 },
		"accesses":   func(c *Config) { c.Accesses = 0 },
		"log level":  func(c *Config) { c.LogLevel = "loud" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	require.NoError(t, Default().Validate())
}
