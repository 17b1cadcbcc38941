package introspect_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/introspect/internal/introspect"
	"github.com/roach88/introspect/internal/records"
)

func operationNames(ops []introspect.Operation) []string {
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Name
	}
	return names
}

func TestInvoke_WhenCallSetter(t *testing.T) {
	in := newInspector(t)
	child := &records.Child{}

	_, err := in.Invoke(child, "SetID", 123)

	require.NoError(t, err)
	assert.Equal(t, int64(123), child.ID())
}

func TestInvoke(t *testing.T) {
	in := newInspector(t)
	base := records.NewBase(1, "name", time.Now())

	v, err := in.Invoke(base, "Name")

	require.NoError(t, err)
	assert.Equal(t, "name", v)
}

func TestInvoke_WhenFromCallParentMethod(t *testing.T) {
	in := newInspector(t)
	child := records.NewChild(1, "nameParent", time.Now(), "nameChild", 22)

	v, err := in.Invoke(child, "Name")

	require.NoError(t, err)
	assert.Equal(t, "nameParent", v)
}

type point struct {
	X, Y int
}

func (p point) Sum() int { return p.X + p.Y }

func (p *point) Move(dx int) { p.X += dx }

func TestInvoke_ThroughValue(t *testing.T) {
	in := introspect.New()

	v, err := in.Invoke(point{X: 1, Y: 2}, "Sum")

	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestInvoke_ByValueDeniesPointerReceivers(t *testing.T) {
	in := newInspector(t)
	base := *records.NewBase(1, "orig", time.Time{})

	_, err := in.Invoke(base, "SetName", "changed")
	require.Error(t, err)
	assert.True(t, introspect.IsAccessDenied(err), "got %v", err)
	assert.Equal(t, "orig", base.Name())

	err = in.Set(base, "name", "changed")
	assert.True(t, introspect.IsAccessDenied(err))

	_, err = in.Invoke(base, "Name")
	assert.True(t, introspect.IsAccessDenied(err))

	_, err = in.Invoke(*records.NewChild(1, "p", time.Time{}, "kid", 3), "greet", "hi")
	assert.True(t, introspect.IsAccessDenied(err))

	_, err = in.Invoke(point{}, "Move", 2)
	assert.True(t, introspect.IsAccessDenied(err))

	p := &point{X: 1}
	_, err = in.Invoke(p, "Move", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, p.X)
}

func TestInvoke_WhenNotExistMethod(t *testing.T) {
	in := newInspector(t)

	_, err := in.Invoke(records.NewBase(1, "name", time.Now()), "notExistMethod")

	require.Error(t, err)
	assert.True(t, introspect.IsMemberNotFound(err))
	assert.Contains(t, err.Error(), "notExistMethod")
}

func TestInvoke_NoOpOnInvalidInput(t *testing.T) {
	in := newInspector(t)
	base := records.NewBase(1, "name", time.Now())

	v, err := in.Invoke(base, "")
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = in.Invoke(nil, "myMethod")
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = in.Invoke(base, "   ")
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestInvoke_RegisteredOperationOnParent(t *testing.T) {
	in := newInspector(t)
	child := records.NewChild(1, "parent", time.Time{}, "kid", 4)

	v, err := in.Invoke(child, "describe")

	require.NoError(t, err)
	assert.Equal(t, `Base{id=1, name="parent"}`, v)
}

func TestInvoke_RegisteredOperationWithArgs(t *testing.T) {
	in := newInspector(t)
	child := records.NewChild(1, "parent", time.Time{}, "kid", 4)

	v, err := in.Invoke(child, "greet", "hello")

	require.NoError(t, err)
	assert.Equal(t, "hello, kid", v)
}

func TestInvoke_ShadowWins(t *testing.T) {
	in := newInspector(t)

	v, err := in.Invoke(records.NewAlias("base", "alias"), "Name")

	require.NoError(t, err)
	assert.Equal(t, "alias", v)
}

func TestInvoke_OperationErrorIsWrapped(t *testing.T) {
	in := newInspector(t)
	child := &records.Child{}
	require.NoError(t, in.Set(child, "age", int32(-1)))

	_, err := in.Invoke(child, "validate")

	require.Error(t, err)
	assert.True(t, introspect.IsInvocationFailed(err))
	assert.True(t, errors.Is(err, introspect.ErrInvocationFailed))
	assert.True(t, errors.Is(err, records.ErrNegativeAge))

	v, err := in.Invoke(&records.Child{}, "validate")
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestInvoke_ArgumentMismatch(t *testing.T) {
	in := newInspector(t)
	child := &records.Child{}

	_, err := in.Invoke(child, "SetID")
	assert.True(t, introspect.IsTypeMismatch(err))

	_, err = in.Invoke(child, "SetID", "not a number")
	assert.True(t, introspect.IsTypeMismatch(err))

	_, err = in.Invoke(child, "greet", "a", "b")
	assert.True(t, introspect.IsTypeMismatch(err))
}

type gadget struct {
	parts []string
}

func (g *gadget) Split() (int, string) { return len(g.parts), "parts" }

func (g *gadget) Add(parts ...string) int {
	g.parts = append(g.parts, parts...)
	return len(g.parts)
}

func (g *gadget) explode() { panic("boom") }

func TestInvoke_MultipleResults(t *testing.T) {
	in := introspect.New()

	v, err := in.Invoke(&gadget{parts: []string{"a", "b"}}, "Split")

	require.NoError(t, err)
	assert.Equal(t, []any{2, "parts"}, v)
}

func TestInvoke_Variadic(t *testing.T) {
	in := introspect.New()
	g := &gadget{}

	v, err := in.Invoke(g, "Add", "x", "y", "z")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = in.Invoke(g, "Add")
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestInvoke_PanicIsInvocationFailure(t *testing.T) {
	in := introspect.New()
	in.Register(reflect.TypeFor[gadget]()).Operation("explode", (*gadget).explode)

	_, err := in.Invoke(&gadget{}, "explode")

	require.Error(t, err)
	assert.True(t, introspect.IsInvocationFailed(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestAllOperations_WhenCheckExistingParentMethods(t *testing.T) {
	in := newInspector(t)

	ops := in.AllOperations(reflect.TypeFor[records.Child]())
	names := operationNames(ops)

	assert.Equal(t, []string{"greet", "validate", "Age", "ChildName", "SetAge"}, names[:5])
	assert.ElementsMatch(t, []string{
		"greet", "validate", "Age", "ChildName", "SetAge",
		"describe", "Date", "ID", "Name", "SetDate", "SetID", "SetName",
	}, names)
	assert.True(t, ops[0].Registered)
	assert.Equal(t, 1, ops[0].NumIn)
}

func TestAllOperations_RedeclaredMethodAppearsPerLevel(t *testing.T) {
	in := newInspector(t)

	var owners []string
	for _, op := range in.AllOperations(reflect.TypeFor[records.Alias]()) {
		if op.Name == "Name" {
			owners = append(owners, op.Owner)
		}
	}

	assert.Equal(t, []string{"Alias", "Base"}, owners)
}

func TestFindOperation_RedeclaredMethodOwnedByDerivedType(t *testing.T) {
	in := newInspector(t)

	op, ok := in.FindOperation(reflect.TypeFor[records.Alias](), "Name")
	require.True(t, ok)
	assert.Equal(t, "Alias", op.Owner)

	op, ok = in.FindOperation(reflect.TypeFor[records.Alias](), "SetName")
	require.True(t, ok)
	assert.Equal(t, "Base", op.Owner)
}

func TestAllOperations_Nil(t *testing.T) {
	assert.Nil(t, introspect.New().AllOperations(nil))
}

func TestFindOperation(t *testing.T) {
	in := newInspector(t)

	op, ok := in.FindOperation(reflect.TypeFor[records.Child](), "SetID")
	require.True(t, ok)
	assert.Equal(t, "SetID", op.Name)
	assert.Equal(t, "Base", op.Owner)
	assert.False(t, op.Registered)

	_, ok = in.FindOperation(reflect.TypeFor[records.Child](), "nope")
	assert.False(t, ok)

	_, ok = in.FindOperation(reflect.TypeFor[records.Child](), "")
	assert.False(t, ok)
}

func TestRegister_InvalidatesCachedDescriptors(t *testing.T) {
	in := introspect.New()
	typ := reflect.TypeFor[gadget]()

	_, ok := in.FindOperation(typ, "explode")
	require.False(t, ok)

	in.Register(typ).Operation("explode", (*gadget).explode)

	_, ok = in.FindOperation(typ, "explode")
	assert.True(t, ok)
}

func TestRegister_PanicsOnMisuse(t *testing.T) {
	in := introspect.New()
	reg := in.Register(reflect.TypeFor[gadget]())

	assert.Panics(t, func() { reg.Operation("", (*gadget).explode) })
	assert.Panics(t, func() { reg.Operation("bad", 42) })
	assert.Panics(t, func() { reg.Operation("bad", func(b *records.Base) {}) })
	assert.Panics(t, func() { reg.Static("nilptr", nil) })

	reg.Operation("explode", (*gadget).explode)
	assert.Panics(t, func() { reg.Operation("explode", (*gadget).explode) })
	assert.Panics(t, func() { in.Register(nil) })
}
