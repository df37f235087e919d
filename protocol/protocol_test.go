package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zmrpc/message"
)

func TestBuildParseRequestRoundTrip(t *testing.T) {
	route := [][]byte{[]byte("dealer-1")}
	reqID := message.NewReqID()
	argsFrames := [][]byte{[]byte(`{"args":["Hi there"],"kwargs":{}}`)}

	frames := BuildRequest(route, reqID, "echo", argsFrames, false)

	parsed, ok := ParseRequest(frames)
	require.True(t, ok)
	assert.Equal(t, route, parsed.Route)
	assert.Equal(t, reqID, parsed.ReqID)
	assert.Equal(t, "echo", parsed.ProcName)
	assert.Equal(t, argsFrames, parsed.ArgsFrames)
	assert.False(t, parsed.Ignore)
	assert.False(t, parsed.IsYieldCommand())
}

func TestBuildParseRequestIgnoreFlag(t *testing.T) {
	reqID := message.NewReqID()
	frames := BuildRequest(nil, reqID, "fire_and_forget", nil, true)

	parsed, ok := ParseRequest(frames)
	require.True(t, ok)
	assert.True(t, parsed.Ignore)
}

func TestParseRequestYieldCommand(t *testing.T) {
	reqID := message.NewReqID()
	frames := BuildYieldSend(nil, reqID, [][]byte{[]byte("42")})

	parsed, ok := ParseRequest(frames)
	require.True(t, ok)
	assert.True(t, parsed.IsYieldCommand())
	assert.Equal(t, string(message.TagYieldSend), parsed.ProcName)
	assert.Equal(t, [][]byte{[]byte("42")}, parsed.ArgsFrames)
}

func TestParseRequestNoSeparatorReturnsFalse(t *testing.T) {
	_, ok := ParseRequest([][]byte{[]byte("route"), []byte("nope")})
	assert.False(t, ok)
}

func TestParseRequestTruncatedBodyReturnsFalse(t *testing.T) {
	reqID := message.NewReqID()
	_, ok := ParseRequest([][]byte{message.Separator, reqID.Bytes()})
	assert.False(t, ok)
}

func TestBuildParseReplyRoundTrip(t *testing.T) {
	route := [][]byte{[]byte("dealer-1")}
	reqID := message.NewReqID()
	payload := [][]byte{[]byte(`"Hi there"`)}

	frames := BuildReply(route, reqID, message.TagOK, payload)
	parsed, ok := ParseReply(frames)
	require.True(t, ok)
	assert.Equal(t, reqID, parsed.ReqID)
	assert.Equal(t, message.TagOK, parsed.Tag)
	assert.Equal(t, payload, parsed.Payload)
}

func TestParseReplyUnknownTagReturnsFalse(t *testing.T) {
	reqID := message.NewReqID()
	frames := [][]byte{message.Separator, reqID.Bytes(), []byte("BOGUS")}
	_, ok := ParseReply(frames)
	assert.False(t, ok)
}

func TestParseAckAsReply(t *testing.T) {
	reqID := message.NewReqID()
	frames := BuildAck(nil, reqID, []byte("service-1"))
	parsed, ok := ParseReply(frames)
	require.True(t, ok)
	assert.Equal(t, message.TagACK, parsed.Tag)
}

func TestRemoteErrorRoundTrip(t *testing.T) {
	desc := &message.RemoteErrorDescriptor{
		EName:     "ValueError",
		EValue:    "raising ValueError for fun!",
		Traceback: "line 1\nline 2",
	}
	payload := EncodeRemoteError(desc)
	got, err := DecodeRemoteError(payload)
	require.NoError(t, err)
	assert.Equal(t, desc, got)
}
