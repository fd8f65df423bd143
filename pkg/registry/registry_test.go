// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	for _, taskType := range []string{"parse-housing-preferences", "calculate-housing-score", "apply-housing-ranking"} {
		a, ok := reg.Find(taskType)
		require.True(t, ok, taskType)
		assert.NotEmpty(t, a.InputSchema)
		assert.NotEmpty(t, a.ErrorCodes)
	}

	_, ok := reg.Find("send-email")
	assert.False(t, ok)
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"2","activities":[{"id":"a","taskType":"a"}]}`), 0o600))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2", reg.Version)
	assert.Len(t, reg.Activities, 1)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	a, _ := reg.Find("apply-housing-ranking")
	d, err := a.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, "10s", d.String())

	tests := []struct {
		name    string
		reg     ActivityRegistry
		wantErr string
	}{
		{"empty", ActivityRegistry{}, "no activities"},
		{"duplicate", ActivityRegistry{Activities: []Activity{
			{ID: "a", DisplayName: "A", TaskType: "a", Category: "housing"},
			{ID: "a", DisplayName: "A", TaskType: "a", Category: "housing"},
		}}, "duplicate"},
		{"missing task type", ActivityRegistry{Activities: []Activity{{ID: "a", DisplayName: "A", Category: "housing"}}}, "TaskType"},
		{"bad timeout", ActivityRegistry{Activities: []Activity{{ID: "a", DisplayName: "A", TaskType: "a", Category: "housing", Timeout: "soon"}}}, "invalid timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
