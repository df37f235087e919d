package serializer

import (
	"fmt"

	"github.com/vmihailenco/msgpack"
)

// Binary is the native, fast serializer used by goridge and msgpack-speaking
// peers. It carries the same (args, kwargs) / result shapes as JSON but
// msgpack-encoded, avoiding JSON's field-name and string-escaping overhead
// on the hot path.
type Binary struct{}

type binaryArgsKwargs struct {
	Args   []any          `msgpack:"args"`
	Kwargs map[string]any `msgpack:"kwargs"`
}

func (Binary) SerializeArgsKwargs(args []any, kwargs map[string]any) ([][]byte, error) {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	frame, err := msgpack.Marshal(binaryArgsKwargs{Args: args, Kwargs: kwargs})
	if err != nil {
		return nil, err
	}
	return [][]byte{frame}, nil
}

func (Binary) DeserializeArgsKwargs(frames [][]byte) ([]any, map[string]any, error) {
	if len(frames) != 1 {
		return nil, nil, errFrameCount("args/kwargs", 1, len(frames))
	}
	var payload binaryArgsKwargs
	if err := msgpack.Unmarshal(frames[0], &payload); err != nil {
		return nil, nil, err
	}
	if payload.Kwargs == nil {
		payload.Kwargs = map[string]any{}
	}
	return payload.Args, payload.Kwargs, nil
}

func (Binary) SerializeResult(v any) ([][]byte, error) {
	frame, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}
	return [][]byte{frame}, nil
}

func (Binary) DeserializeResult(frames [][]byte) (any, error) {
	if len(frames) != 1 {
		return nil, errFrameCount("result", 1, len(frames))
	}
	var v any
	if err := msgpack.Unmarshal(frames[0], &v); err != nil {
		return nil, err
	}
	return v, nil
}

func errFrameCount(what string, want, got int) error {
	return fmt.Errorf("serializer: %s expects %d frame(s), got %d", what, want, got)
}
