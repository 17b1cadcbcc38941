package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_Valid(t *testing.T) {
	dir := writeFixtures(t, fixturesCUE)

	out, err := execute(t, "validate", "--fixtures", dir)
	require.NoError(t, err)
	assert.Equal(t, "✓ 2 fixture(s) valid\n", out)

	out, err = execute(t, "validate", "--fixtures", dir, "--format", "json")
	require.NoError(t, err)
	data := dataMap(t, decodeResponse(t, out))
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, []any{"groceries", "kid"}, data["fixtures"])
}

func TestValidateCommand_Invalid(t *testing.T) {
	dir := writeFixtures(t, `package fixtures

fixture: ok: {
	type: "Base"
	fields: id: 1
}

fixture: ghost: {
	type: "Ghost"
	fields: {}
}

fixture: typo: {
	type: "Base"
	fields: nmae: "x"
}

fixture: bad: {
	type: "Base"
	fields: id: "one"
}
`)

	out, err := execute(t, "validate", "--fixtures", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	data := dataMap(t, decodeResponse(t, out))
	assert.Equal(t, false, data["valid"])

	codes := map[string]string{}
	for _, raw := range data["errors"].([]any) {
		e := raw.(map[string]any)
		codes[e["fixture"].(string)] = e["code"].(string)
	}
	assert.Equal(t, map[string]string{
		"bad":   "FORMAT_ERROR",
		"ghost": ErrCodeNotFound,
		"typo":  "MEMBER_NOT_FOUND",
	}, codes)
}

func TestValidateCommand_MissingDirectory(t *testing.T) {
	_, err := execute(t, "validate", "--fixtures", t.TempDir()+"/none")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommand_CUEError(t *testing.T) {
	dir := writeFixtures(t, "package fixtures\n\nfixture: {\n")

	out, err := execute(t, "validate", "--fixtures", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeLoadFailed, decodeResponse(t, out).Error.Code)
}
