package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDir_Fixtures(t *testing.T) {
	res, err := RunDir("testdata/scenarios")
	require.NoError(t, err)

	assert.Equal(t, 7, res.Total)
	assert.Equal(t, res.Total, res.Passed)
	assert.True(t, res.Pass())
	assert.Empty(t, res.Failures)
}

func TestRunDir_CountsFailures(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("a_pass.yaml", `
name: a_pass
description: one tick
steps: [{ ticks: 1 }]
assertions: [{ type: event_count, kind: Tick, count: 1 }]
`)
	write("b_fail.yml", `
name: b_fail
description: wrong count
steps: [{ ticks: 1 }]
assertions: [{ type: event_count, kind: Tick, count: 5 }]
`)
	write("c_broken.yaml", "name: [")
	write("notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	res, err := RunDir(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Passed)
	assert.Equal(t, 2, res.Failed)
	assert.False(t, res.Pass())
	require.Len(t, res.Failures, 2)
	assert.Equal(t, "b_fail", res.Failures[0].Name)
	assert.Equal(t, filepath.Join(dir, "c_broken.yaml"), res.Failures[1].Path)
	assert.Empty(t, res.Failures[1].Name)
}

func TestRunDir_MissingDir(t *testing.T) {
	_, err := RunDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
