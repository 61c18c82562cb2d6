package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_StopsAfterDuration(t *testing.T) {
	db := filepath.Join(t.TempDir(), "run.db")

	out, err := execute(t, "run", "--duration", "100ms", "--db", db, "--format", "json")
	require.NoError(t, err)

	var summary RunSummary
	decodeData(t, out, &summary)
	assert.NotEmpty(t, summary.RunID)
	assert.Positive(t, summary.Ticks)
	assert.GreaterOrEqual(t, summary.Events, 2*int(summary.Ticks))

	out, err = execute(t, "verify", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ run "+summary.RunID)
}

func TestRun_BadConfig(t *testing.T) {
	path := writeFile(t, "bad.cue", `clock: frame_interval_ms: 0`)

	_, err := execute(t, "run", "--duration", "10ms", "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
