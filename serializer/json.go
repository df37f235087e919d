package serializer

import (
	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON is the interoperable serializer: one JSON-encoded frame holding
// {"args": ..., "kwargs": ...}, and one JSON-encoded frame for the result. Using jsoniter instead of
// encoding/json keeps the hot path (one marshal/unmarshal per call)
// allocation-light without changing the wire format a non-Go peer sees.
type JSON struct{}

type jsonArgsKwargs struct {
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

func (JSON) SerializeArgsKwargs(args []any, kwargs map[string]any) ([][]byte, error) {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	frame, err := jsonAPI.Marshal(jsonArgsKwargs{Args: args, Kwargs: kwargs})
	if err != nil {
		return nil, err
	}
	return [][]byte{frame}, nil
}

func (JSON) DeserializeArgsKwargs(frames [][]byte) ([]any, map[string]any, error) {
	if len(frames) != 1 {
		return nil, nil, errFrameCount("args/kwargs", 1, len(frames))
	}
	var payload jsonArgsKwargs
	if err := jsonAPI.Unmarshal(frames[0], &payload); err != nil {
		return nil, nil, err
	}
	if payload.Kwargs == nil {
		payload.Kwargs = map[string]any{}
	}
	return payload.Args, payload.Kwargs, nil
}

func (JSON) SerializeResult(v any) ([][]byte, error) {
	frame, err := jsonAPI.Marshal(v)
	if err != nil {
		return nil, err
	}
	return [][]byte{frame}, nil
}

func (JSON) DeserializeResult(frames [][]byte) (any, error) {
	if len(frames) != 1 {
		return nil, errFrameCount("result", 1, len(frames))
	}
	var v any
	if err := jsonAPI.Unmarshal(frames[0], &v); err != nil {
		return nil, err
	}
	return v, nil
}
