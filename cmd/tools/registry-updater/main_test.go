package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-intake-workers/pkg/registry"
)

const bundledRegistry = "../../../pkg/registry/activities.json"

func copyRegistry(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(bundledRegistry)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "activities.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestValidateRegistry_Bundled(t *testing.T) {
	reg, err := validateRegistry(bundledRegistry)
	require.NoError(t, err)
	assert.Len(t, reg.Activities, 6)
}

func TestValidateRegistry_DuplicateTaskType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "version": "1.0.0",
  "activities": [
    {"id": "a", "displayName": "A", "taskType": "score-eligibility", "timeout": "10s"},
    {"id": "b", "displayName": "B", "taskType": "score-eligibility", "timeout": "10s"}
  ]
}`), 0644))

	_, err := validateRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate task type")
}

func TestValidateRegistry_RejectsBadActivities(t *testing.T) {
	tests := []struct {
		name     string
		activity string
		want     string
	}{
		{
			"unknown error code",
			`{"id": "a", "taskType": "score-eligibility", "timeout": "10s", "errorCodes": ["PAYMENT_DECLINED"]}`,
			"unknown error code PAYMENT_DECLINED",
		},
		{
			"broken output schema",
			`{"id": "a", "taskType": "score-eligibility", "timeout": "10s", "outputSchema": {"type": 7}}`,
			"activity a output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "registry.json")
			require.NoError(t, os.WriteFile(path, []byte(`{"version": "1.0.0", "activities": [`+tt.activity+`]}`), 0644))

			_, err := validateRegistry(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUpdateActivity(t *testing.T) {
	path := copyRegistry(t)

	require.NoError(t, updateActivity(path, "loan.eligibility.score", "timeout", "45s"))
	require.NoError(t, updateActivity(path, "loan.eligibility.score", "retries", "5"))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	activity, ok := reg.Find("score-eligibility")
	require.True(t, ok)
	assert.Equal(t, "45s", activity.Timeout)
	assert.Equal(t, 5, activity.Retries)
}

func TestUpdateActivity_Rejects(t *testing.T) {
	path := copyRegistry(t)

	tests := []struct {
		name  string
		id    string
		field string
		value string
		want  string
	}{
		{"unknown activity", "loan.missing", "status", "verified", "not found"},
		{"unknown field", "loan.eligibility.score", "category", "x", "unknown field"},
		{"bad timeout", "loan.eligibility.score", "timeout", "soon", "invalid timeout"},
		{"bad retries", "loan.eligibility.score", "retries", "many", "invalid retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := updateActivity(path, tt.id, tt.field, tt.value)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestListActivities(t *testing.T) {
	reg, err := registry.LoadRegistry(bundledRegistry)
	require.NoError(t, err)

	lines := listActivities(reg)
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "loan.compliance.evaluate"))
}
