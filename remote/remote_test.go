package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	gotProcName string
	gotArgs     []any
	gotKwargs   map[string]any
	result      any
	err         error
}

func (f *fakeCaller) Call(ctx context.Context, procName string, args []any, kwargs map[string]any, ignore bool, timeout time.Duration) (any, error) {
	f.gotProcName = procName
	f.gotArgs = args
	f.gotKwargs = kwargs
	return f.result, f.err
}

func TestAttrChainBuildsDottedPath(t *testing.T) {
	fake := &fakeCaller{result: "ok"}
	root := New(fake)

	handle := root.Attr("a").Attr("b").Attr("value")
	assert.Equal(t, "a.b.value", handle.Path())

	val, err := handle.Call(context.Background(), []any{1}, nil, false, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, "a.b.value", fake.gotProcName)
	assert.Equal(t, []any{1}, fake.gotArgs)
}

func TestAttrIsImmutablePerBranch(t *testing.T) {
	root := New(&fakeCaller{})
	a := root.Attr("a")

	b := a.Attr("b")
	c := a.Attr("c")

	assert.Equal(t, "a.b", b.Path())
	assert.Equal(t, "a.c", c.Path())
	assert.Equal(t, "a", a.Path())
}

func TestCallWithNoAttrUsesEmptyPath(t *testing.T) {
	fake := &fakeCaller{}
	root := New(fake)

	_, _ = root.Call(context.Background(), nil, nil, false, 0)
	assert.Equal(t, "", fake.gotProcName)
}
