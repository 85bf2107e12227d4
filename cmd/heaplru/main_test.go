package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heaplru/internal/config"
	"heaplru/internal/trace"
)

func TestRunDemo(t *testing.T) {
	require.NoError(t, runDemo(logr.Discard()))
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer

	err := writeResults(&buf, []trace.Result{
		{Accesses: 100, Keys: 10, Capacity: 2, Misses: 25},
	})
	require.NoError(t, err)

	assert.Equal(t, "accesses;keys;capacity;misses;missrate\n100;10;2;25;0.250000\n", buf.String())
}

func TestReplayCommand(t *testing.T) {
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"replay", "--capacities=2,4,8", "--keys=8", "--accesses=200", "--log-level=error"})

	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "200;8;2;"), lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "200;8;8;"), lines[3])
}

func TestRootCommand_RejectsInvalidConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"demo", "--capacity=0"})

	err := cmd.Execute()
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestNewLogger(t *testing.T) {
	for _, dev := range []bool{false, true} {
		cfg := config.Default()
		cfg.LogLevel = "debug"
		cfg.Development = dev

		log, flush, err := newLogger(cfg)
		require.NoError(t, err)
		assert.True(t, log.V(1).Enabled(), "debug level enables V(1)")
		_ = flush()
	}
}
