package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenSecret(t *testing.T) {
	first, err := execute(t, "gen-secret")
	require.NoError(t, err)
	second, err := execute(t, "gen-secret")
	require.NoError(t, err)

	assert.Len(t, strings.TrimSpace(first), 43)
	assert.NotEqual(t, first, second)
}

func TestArgumentValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "set-admin needs an email", args: []string{"set-admin"}},
		{name: "import-csv needs a file", args: []string{"import-csv"}},
		{name: "cleanup takes no arguments", args: []string{"cleanup-households", "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestImportMissingFile(t *testing.T) {
	_, err := execute(t, "import-csv", "/nonexistent/family.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open csv")
}
