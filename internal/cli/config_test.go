package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigValidate_Valid(t *testing.T) {
	path := writeFile(t, "ok.cue", `seed: 7
clock: start_minute: 540
`)

	out, err := execute(t, "config", "validate", path, "--format", "json")
	require.NoError(t, err)

	var result ConfigValidation
	decodeData(t, out, &result)
	assert.True(t, result.Valid)
	assert.Equal(t, path, result.File)
	assert.NotEmpty(t, result.Hash)
	assert.Empty(t, result.Reason)
}

func TestConfigValidate_HashIsStable(t *testing.T) {
	cue := writeFile(t, "a.cue", `seed: 7`)
	js := writeFile(t, "a.json", `{"seed": 7}`)

	var fromCUE, fromJSON ConfigValidation
	out, err := execute(t, "config", "validate", cue, "--format", "json")
	require.NoError(t, err)
	decodeData(t, out, &fromCUE)
	out, err = execute(t, "config", "validate", js, "--format", "json")
	require.NoError(t, err)
	decodeData(t, out, &fromJSON)

	assert.Equal(t, fromCUE.Hash, fromJSON.Hash)
}

func TestConfigValidate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"out of range", `clock: start_minute: 5000`},
		{"unknown field", `bogus: 1`},
		{"syntax", `clock: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.cue", tt.content)

			out, err := execute(t, "config", "validate", path)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "✗ "+path)
		})
	}
}

func TestConfigValidate_MissingFile(t *testing.T) {
	_, err := execute(t, "config", "validate", filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigShow(t *testing.T) {
	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"clock": {`)
	assert.Contains(t, out, `"start_minute"`)

	path := writeFile(t, "seeded.cue", `seed: 99`)
	out, err = execute(t, "config", "show", "--config", path, "--format", "json")
	require.NoError(t, err)

	var shown map[string]any
	decodeData(t, out, &shown)
	assert.EqualValues(t, 99, shown["seed"])
}

func TestConfigShow_BadConfig(t *testing.T) {
	path := writeFile(t, "bad.cue", `seed: -1`)

	_, err := execute(t, "config", "show", "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigSchema(t *testing.T) {
	out, err := execute(t, "config", "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "inboxsim configuration", schema["title"])
	assert.Contains(t, schema["properties"], "clock")
}
