package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesCommand_JSON(t *testing.T) {
	out, err := execute(t, "types", "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)

	byName := map[string]map[string]any{}
	for _, item := range dataList(t, resp) {
		byName[item["name"].(string)] = item
	}
	require.Contains(t, byName, "Child")
	assert.Equal(t, "Base", byName["Child"]["parent"])
	assert.Equal(t, float64(5), byName["Child"]["fields"])
	assert.NotContains(t, byName["Base"], "parent")
	assert.Equal(t, float64(0), byName["Empty"]["fields"])
}

func TestTypesCommand_Text(t *testing.T) {
	out, err := execute(t, "types")
	require.NoError(t, err)

	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "Child")
	assert.Contains(t, out, "Measures")
}

func TestFieldsCommand(t *testing.T) {
	out, err := execute(t, "fields", "Child", "--format", "json")
	require.NoError(t, err)

	fields := dataList(t, decodeResponse(t, out))
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f["name"].(string)
	}
	assert.Equal(t, []string{"childName", "age", "id", "name", "date"}, names)
	assert.Equal(t, "int32", fields[1]["type"])
	assert.Equal(t, "Base", fields[2]["owner"])
	assert.Equal(t, "time.Time", fields[4]["type"])
}

func TestFieldsCommand_Static(t *testing.T) {
	out, err := execute(t, "fields", "WithStatic")
	require.NoError(t, err)

	assert.Contains(t, out, "PREFIX")
	assert.Contains(t, out, "static")
}

func TestFieldsCommand_UnknownType(t *testing.T) {
	out, err := execute(t, "fields", "Nope", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, `unknown type "Nope"`)
}

func TestOpsCommand(t *testing.T) {
	out, err := execute(t, "ops", "Child", "--format", "json")
	require.NoError(t, err)

	ops := dataList(t, decodeResponse(t, out))
	require.NotEmpty(t, ops)
	assert.Equal(t, "greet", ops[0]["name"])
	assert.Equal(t, true, ops[0]["registered"])
	assert.Equal(t, float64(1), ops[0]["params"])

	owners := map[string]string{}
	for _, op := range ops {
		owners[op["name"].(string)] = op["owner"].(string)
	}
	assert.Equal(t, "Base", owners["describe"])
	assert.Equal(t, "Base", owners["SetID"])
}

func TestOpsCommand_Text(t *testing.T) {
	out, err := execute(t, "ops", "Child")
	require.NoError(t, err)

	assert.Contains(t, out, "OPERATION")
	assert.Contains(t, out, "registered")
	assert.Contains(t, out, "SetAge")
}
