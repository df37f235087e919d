package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONArgsKwargsRoundTrip(t *testing.T) {
	s := JSON{}
	frames, err := s.SerializeArgsKwargs([]any{"hi there", 2.0}, map[string]any{"flag": true})
	require.NoError(t, err)

	args, kwargs, err := s.DeserializeArgsKwargs(frames)
	require.NoError(t, err)
	assert.Equal(t, []any{"hi there", 2.0}, args)
	assert.Equal(t, map[string]any{"flag": true}, kwargs)
}

func TestJSONResultRoundTrip(t *testing.T) {
	s := JSON{}
	frames, err := s.SerializeResult("Hi there")
	require.NoError(t, err)

	v, err := s.DeserializeResult(frames)
	require.NoError(t, err)
	assert.Equal(t, "Hi there", v)
}

func TestBinaryArgsKwargsRoundTrip(t *testing.T) {
	s := Binary{}
	frames, err := s.SerializeArgsKwargs([]any{int8(1), int8(2)}, map[string]any{"a": "b"})
	require.NoError(t, err)

	args, kwargs, err := s.DeserializeArgsKwargs(frames)
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, map[string]any{"a": "b"}, kwargs)
}

func TestBinaryResultRoundTrip(t *testing.T) {
	s := Binary{}
	frames, err := s.SerializeResult(42)
	require.NoError(t, err)

	v, err := s.DeserializeResult(frames)
	require.NoError(t, err)
	assert.EqualValues(t, 42, v)
}

func TestDeserializeArgsKwargsRejectsWrongFrameCount(t *testing.T) {
	for _, s := range []Serializer{JSON{}, Binary{}} {
		_, _, err := s.DeserializeArgsKwargs([][]byte{[]byte("a"), []byte("b")})
		assert.Error(t, err)
	}
}
