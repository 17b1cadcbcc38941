package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixturesCUE = `package fixtures

fixture: kid: {
	type: "Child"
	fields: {
		id:        1
		name:      "parent"
		childName: "kid"
		age:       4
	}
}

fixture: groceries: {
	type: "Listing"
	fields: {
		name: "groceries"
		list: ["eggs"]
	}
}
`

// writeFixtures creates a fixture directory holding src.
func writeFixtures(t *testing.T, src string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "fixtures")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fixtures.cue"), []byte(src), 0644))
	return dir
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

// dataMap returns the response payload as a JSON object.
func dataMap(t *testing.T, resp CLIResponse) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

// dataList returns the response payload as a JSON array of objects.
func dataList(t *testing.T, resp CLIResponse) []map[string]any {
	t.Helper()
	raw, ok := resp.Data.([]any)
	require.True(t, ok, "data is %T", resp.Data)
	list := make([]map[string]any, len(raw))
	for i, item := range raw {
		list[i], ok = item.(map[string]any)
		require.True(t, ok)
	}
	return list
}
