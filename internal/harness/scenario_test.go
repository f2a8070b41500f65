package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/fruit_basics.yaml")
	require.NoError(t, err)

	assert.Equal(t, "fruit_basics", s.Name)
	assert.Equal(t, "00000000-0000-7000-8000-000000000001", s.RunID)
	assert.Len(t, s.Setup, 3)
	assert.Len(t, s.Steps, 9)
	assert.Len(t, s.Assertions, 5)

	require.NotNil(t, s.Steps[1].Expect)
	require.NotNil(t, s.Steps[1].Expect.Value)
	assert.Equal(t, "1", *s.Steps[1].Expect.Value)
	assert.Equal(t, map[string]string{"apple": "1", "apricot": "2"}, s.Steps[2].Expect.Entries)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: tiny
description: one step
steps:
  - op: count
`), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", s.Name)
	assert.Empty(t, s.RunID)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: y\nstep:\n  - op: count\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: y\nsteps:\n  - op: count\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nsteps:\n  - op: count\n",
			want: "description is required",
		},
		{
			name: "no steps",
			yaml: "name: x\ndescription: y\n",
			want: "steps list is required",
		},
		{
			name: "unknown op",
			yaml: "name: x\ndescription: y\nsteps:\n  - op: upsert\n",
			want: `unknown op "upsert"`,
		},
		{
			name: "empty setup value",
			yaml: "name: x\ndescription: y\nsetup:\n  - { key: a, value: \"\" }\nsteps:\n  - op: count\n",
			want: "setup[0]: key and value are required",
		},
		{
			name: "unknown driver",
			yaml: "name: x\ndescription: y\noptions: { driver: pg }\nsteps:\n  - op: count\n",
			want: "unknown driver",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: y\nsteps:\n  - op: count\nassertions:\n  - { type: trace_order }\n",
			want: "unknown assertion type",
		},
		{
			name: "exists without key",
			yaml: "name: x\ndescription: y\nsteps:\n  - op: count\nassertions:\n  - { type: exists }\n",
			want: "key is required for exists",
		},
		{
			name: "count without count",
			yaml: "name: x\ndescription: y\nsteps:\n  - op: count\nassertions:\n  - { type: count }\n",
			want: "non-negative count is required",
		},
		{
			name: "value without value",
			yaml: "name: x\ndescription: y\nsteps:\n  - op: count\nassertions:\n  - { type: value, key: a }\n",
			want: "key and value are required for value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
