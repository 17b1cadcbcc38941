package introspect_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/introspect/internal/introspect"
	"github.com/roach88/introspect/internal/records"
)

type bag struct {
	tags   []string
	counts map[string]int32
	pair   [2]float64
	when   time.Time
	label  kind
	extra  *int16
}

type kind string

func TestAssignValues_DecodedShapes(t *testing.T) {
	in := introspect.New()
	b := &bag{}

	err := in.AssignValues(b, map[string]any{
		"tags":   []any{"a", "b"},
		"counts": map[string]any{"x": int64(1), "y": "2"},
		"pair":   []any{1, "2.5"},
		"when":   "2024-05-06T07:08:09Z",
		"label":  "named",
		"extra":  "12",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, b.tags)
	assert.Equal(t, map[string]int32{"x": 1, "y": 2}, b.counts)
	assert.Equal(t, [2]float64{1, 2.5}, b.pair)
	assert.True(t, b.when.Equal(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)))
	assert.Equal(t, kind("named"), b.label)
	require.NotNil(t, b.extra)
	assert.Equal(t, int16(12), *b.extra)
}

func TestAssignValues_NilStoresZero(t *testing.T) {
	in := introspect.New()
	b := &bag{tags: []string{"x"}, when: time.Now()}

	require.NoError(t, in.AssignValues(b, map[string]any{"tags": nil, "when": nil}))

	assert.Nil(t, b.tags)
	assert.True(t, b.when.IsZero())
}

func TestAssignValues_Child(t *testing.T) {
	in := newInspector(t)
	child := &records.Child{}

	err := in.AssignValues(child, map[string]any{
		"id":        "7",
		"name":      "parent",
		"childName": "kid",
		"age":       9.0,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), child.ID())
	assert.Equal(t, "parent", child.Name())
	assert.Equal(t, "kid", child.ChildName())
	assert.Equal(t, int32(9), child.Age())
}

func TestAssignValues_Errors(t *testing.T) {
	in := introspect.New()

	err := in.AssignValues(&bag{}, map[string]any{"missing": 1})
	assert.True(t, introspect.IsMemberNotFound(err))

	err = in.AssignValues(&bag{}, map[string]any{"when": "yesterday"})
	assert.True(t, introspect.IsFormatError(err))

	err = in.AssignValues(&bag{}, map[string]any{"pair": []any{1}})
	assert.True(t, introspect.IsTypeMismatch(err))

	err = in.AssignValues(&bag{}, map[string]any{"counts": map[string]any{"x": "many"}})
	require.True(t, introspect.IsFormatError(err))
	var ie *introspect.Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "counts", ie.Member)
	assert.Equal(t, "bag", ie.Type)

	err = in.AssignValues(bag{}, map[string]any{"tags": []any{"a"}})
	assert.True(t, introspect.IsAccessDenied(err))

	assert.NoError(t, in.AssignValues(nil, map[string]any{"tags": nil}))
}
