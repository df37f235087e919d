package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoProc(args []any, kwargs map[string]any) (any, error) {
	return args[0], nil
}

func TestRegisterReservedNameFails(t *testing.T) {
	r := New()
	for _, name := range Reserved() {
		err := r.Register(name, echoProc)
		require.Error(t, err, "expected reserved name %q to be rejected", name)
		assert.Contains(t, err.Error(), name)
	}
	assert.Empty(t, r.Names(), "procedure table must remain unchanged after rejected registrations")
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("echo", echoProc))

	proc, ok := r.Lookup("echo")
	require.True(t, ok)
	v, err := proc([]any{"Hi there"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hi there", v)
}

type valueService struct {
	n int
}

func (s *valueService) Value(args []any, kwargs map[string]any) (any, error) {
	return s.n, nil
}

// underscorePrivate must never be registered — it is unexported, so
// reflection never lists it among the methods RegisterObject scans.
func (s *valueService) underscorePrivate(args []any, kwargs map[string]any) (any, error) {
	return nil, nil
}

func TestRegisterObjectSkipsPrivateMethods(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterObject(&valueService{n: 7}, "", nil))

	_, ok := r.Lookup("Value")
	assert.True(t, ok)
	_, ok = r.Lookup("underscorePrivate")
	assert.False(t, ok)
	_, ok = r.Lookup("_underscorePrivate")
	assert.False(t, ok)
}

func TestRegisterObjectNamespace(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterObject(&valueService{n: 0}, "a", nil))
	require.NoError(t, r.RegisterObject(&valueService{n: 1}, "b", nil))
	require.NoError(t, r.RegisterObject(&valueService{n: 2}, "c", nil))

	for name, want := range map[string]int{"a.Value": 0, "b.Value": 1, "c.Value": 2} {
		proc, ok := r.Lookup(name)
		require.True(t, ok, "expected %s to be registered", name)
		v, err := proc(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}

	_, ok := r.Lookup("Value")
	assert.False(t, ok, "unnamespaced Value must not be resolvable")
}

func TestRegisterObjectDottedNamespaceIsLiteral(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterObject(&valueService{n: 9}, "a.b.c", nil))

	_, ok := r.Lookup("a.b.c.Value")
	assert.True(t, ok)
	_, ok = r.Lookup("Value")
	assert.False(t, ok)
}

func TestRegisterObjectRestrictedList(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterObject(&valueService{n: 1}, "", []string{"Value"}))

	_, ok := r.Lookup("Value")
	assert.False(t, ok)
}

type withReserved struct{ valueService }

// YIELD_SEND is a reserved name spelled as a valid exported Go
// identifier, so RegisterObject must skip it like any other reserved
// method instead of erroring.
func (w *withReserved) YIELD_SEND(args []any, kwargs map[string]any) (any, error) {
	return nil, nil
}

func TestRegisterObjectSkipsReservedSilently(t *testing.T) {
	obj := &withReserved{}
	r := New()
	require.NoError(t, r.RegisterObject(obj, "", nil))

	_, ok := r.Lookup("YIELD_SEND")
	assert.False(t, ok)
	_, ok = r.Lookup("Value")
	assert.True(t, ok, "non-reserved methods on the same object must still register")
}
