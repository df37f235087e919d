// Package protocol implements the zmrpc wire frame codec (component B).
//
// It builds and parses the multipart frame layouts from spec §6 — request,
// ACK, OK, YIELD, FAIL, and the streaming YIELD_SEND/YIELD_THROW/YIELD_CLOSE
// commands — over the ordered list of byte frames a ROUTER/DEALER socket
// delivers. The codec never raises: a malformed frame list makes
// ParseRequest/ParseReply return ok=false and the caller drops it.
//
// Frame format (each token is one transport frame):
//
//	REQUEST     : <route...>, "|", req_id, proc_name, <args_frames...>, <ignore_byte>
//	ACK         : <route...>, "|", req_id, "ACK",  service_id
//	OK          : <route...>, "|", req_id, "OK",   <result_frames...>
//	YIELD       : <route...>, "|", req_id, "YIELD",<result_frames...>
//	FAIL        : <route...>, "|", req_id, "FAIL", <json_error>
//	YIELD_SEND  : <route...>, "|", req_id, "YIELD_SEND",  <arg_frames>
//	YIELD_THROW : <route...>, "|", req_id, "YIELD_THROW", <ename_frame>, <evalue_frame>
//	YIELD_CLOSE : <route...>, "|", req_id, "YIELD_CLOSE"
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"zmrpc/message"
)

// minTailFrames is the shortest possible body after the separator:
// req_id and the tag/proc_name frame. A plain REQUEST also needs its
// ignore byte; ParseRequest checks that separately.
const minTailFrames = 2

var (
	ignoreTrue  = []byte{0x01}
	ignoreFalse = []byte{0x00}
)

// BuildRequest lays out a REQUEST frame list.
func BuildRequest(route [][]byte, reqID message.ReqID, procName string, argsFrames [][]byte, ignore bool) [][]byte {
	out := make([][]byte, 0, len(route)+4+len(argsFrames))
	out = append(out, route...)
	out = append(out, message.Separator, reqID.Bytes(), []byte(procName))
	out = append(out, argsFrames...)
	if ignore {
		out = append(out, ignoreTrue)
	} else {
		out = append(out, ignoreFalse)
	}
	return out
}

// BuildAck lays out an ACK frame list.
func BuildAck(route [][]byte, reqID message.ReqID, serviceID []byte) [][]byte {
	out := make([][]byte, 0, len(route)+4)
	out = append(out, route...)
	out = append(out, message.Separator, reqID.Bytes(), []byte(message.TagACK), serviceID)
	return out
}

// BuildReply lays out an OK/YIELD/FAIL frame list. tag must be one of
// message.TagOK, message.TagYIELD or message.TagFAIL.
func BuildReply(route [][]byte, reqID message.ReqID, tag message.Tag, payload [][]byte) [][]byte {
	out := make([][]byte, 0, len(route)+3+len(payload))
	out = append(out, route...)
	out = append(out, message.Separator, reqID.Bytes(), []byte(tag))
	out = append(out, payload...)
	return out
}

// BuildYieldSend/Throw/Close lay out the streaming command frame lists a
// client iterator sends back to an active generator.
func BuildYieldSend(route [][]byte, reqID message.ReqID, valueFrames [][]byte) [][]byte {
	return BuildReply(route, reqID, message.TagYieldSend, valueFrames)
}

func BuildYieldThrow(route [][]byte, reqID message.ReqID, eName, eValue []byte) [][]byte {
	return BuildReply(route, reqID, message.TagYieldThrow, [][]byte{eName, eValue})
}

func BuildYieldClose(route [][]byte, reqID message.ReqID) [][]byte {
	return BuildReply(route, reqID, message.TagYieldClose, nil)
}

// ParsedRequest is the service-side view of one inbound request, before
// the serializer has turned ArgsFrames into deserialized args/kwargs.
// Splitting frame parsing from argument deserialization keeps this
// package free of any Serializer dependency (component B has no opinion
// on payload encoding, per spec §4.1/§4.2).
type ParsedRequest struct {
	Route      [][]byte
	ReqID      message.ReqID
	ProcName   string
	ArgsFrames [][]byte // raw serialized args/kwargs payload, or the raw
	// yield command argument for YIELD_SEND/THROW/CLOSE
	Ignore bool
}

// IsYieldCommand reports whether ProcName names a streaming command
// rather than a plain procedure invocation.
func (p *ParsedRequest) IsYieldCommand() bool {
	switch message.Tag(p.ProcName) {
	case message.TagYieldSend, message.TagYieldThrow, message.TagYieldClose:
		return true
	default:
		return false
	}
}

// ParseRequest parses an inbound REQUEST or YIELD_SEND/THROW/CLOSE frame
// list. ok is false — never an error — if the separator is missing or the
// body is too short; the caller is expected to silently drop the frame
// (spec §4.2).
func ParseRequest(frames [][]byte) (*ParsedRequest, bool) {
	boundary := indexSeparator(frames)
	if boundary < 0 {
		return nil, false
	}

	body := frames[boundary+1:]
	if len(body) < minTailFrames {
		return nil, false
	}

	reqID, ok := message.ReqIDFromBytes(body[0])
	if !ok {
		return nil, false
	}
	procName := string(body[1])

	req := &ParsedRequest{
		Route:    frames[:boundary],
		ReqID:    reqID,
		ProcName: procName,
	}

	switch message.Tag(procName) {
	case message.TagYieldSend, message.TagYieldThrow, message.TagYieldClose:
		req.ArgsFrames = body[2:]
		return req, true
	}

	// Plain REQUEST: <args_frames...>, <ignore_byte> — at least the
	// ignore byte must be present.
	if len(body) < 3 {
		return nil, false
	}
	req.ArgsFrames = body[2 : len(body)-1]
	ignoreByte := body[len(body)-1]
	req.Ignore = len(ignoreByte) > 0 && ignoreByte[0] != 0x00
	return req, true
}

func indexSeparator(frames [][]byte) int {
	for i, f := range frames {
		if bytes.Equal(f, message.Separator) {
			return i
		}
	}
	return -1
}

// ParsedReply is the client-side view of one inbound reply.
type ParsedReply struct {
	ReqID   message.ReqID
	Tag     message.Tag
	Payload [][]byte // raw result/error frames, still serialized
}

// ParseReply parses an inbound ACK/OK/FAIL/YIELD frame list. ok is false
// if the separator is missing, the body is truncated, or the tag is
// unrecognized — the receiver drops the frame and continues (spec §4.2).
func ParseReply(frames [][]byte) (*ParsedReply, bool) {
	boundary := indexSeparator(frames)
	if boundary < 0 {
		return nil, false
	}
	body := frames[boundary+1:]
	if len(body) < minTailFrames {
		return nil, false
	}
	reqID, ok := message.ReqIDFromBytes(body[0])
	if !ok {
		return nil, false
	}
	tag := message.Tag(body[1])
	switch tag {
	case message.TagACK, message.TagOK, message.TagFAIL, message.TagYIELD:
	default:
		return nil, false
	}
	return &ParsedReply{ReqID: reqID, Tag: tag, Payload: body[2:]}, true
}

// EncodeRemoteError JSON-encodes a RemoteErrorDescriptor for a FAIL reply
// payload (spec §6: "<json_error> is a UTF-8 JSON object").
func EncodeRemoteError(desc *message.RemoteErrorDescriptor) [][]byte {
	data, err := json.Marshal(desc)
	if err != nil {
		// ename/evalue/traceback are plain strings; marshaling a flat
		// struct of strings cannot fail.
		panic(err)
	}
	return [][]byte{data}
}

// DecodeRemoteError is the inverse of EncodeRemoteError.
func DecodeRemoteError(payload [][]byte) (*message.RemoteErrorDescriptor, error) {
	if len(payload) != 1 {
		return nil, fmt.Errorf("protocol: FAIL payload expects 1 frame, got %d", len(payload))
	}
	var desc message.RemoteErrorDescriptor
	if err := json.Unmarshal(payload[0], &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}
