// Package message defines the data model exchanged between a zmrpc client
// and service: request ids, route prefixes, request descriptors and reply
// envelopes. Every other package builds on these types instead of passing
// raw frame slices around.
package message

import "github.com/google/uuid"

// ReqID is an opaque request identifier, unique within a client process.
// It is 16 random bytes generated via uuid.New, echoed verbatim by the
// service and never interpreted.
type ReqID [16]byte

// NewReqID mints a fresh request id from 16 random bytes.
func NewReqID() ReqID {
	return ReqID(uuid.New())
}

func (id ReqID) Bytes() []byte { return id[:] }

func (id ReqID) String() string { return uuid.UUID(id).String() }

// ReqIDFromBytes reconstructs a ReqID from its wire form. ok is false if
// the frame isn't exactly 16 bytes.
func ReqIDFromBytes(b []byte) (ReqID, bool) {
	var id ReqID
	if len(b) != len(id) {
		return id, false
	}
	copy(id[:], b)
	return id, true
}

// Tag is the ASCII literal sent as the reply-type frame.
type Tag string

const (
	TagACK        Tag = "ACK"
	TagOK         Tag = "OK"
	TagFAIL       Tag = "FAIL"
	TagYIELD      Tag = "YIELD"
	TagYieldSend  Tag = "YIELD_SEND"
	TagYieldThrow Tag = "YIELD_THROW"
	TagYieldClose Tag = "YIELD_CLOSE"
)

// Separator is the single-byte frame dividing the route prefix from the
// request/reply body.
var Separator = []byte{'|'}

// RequestDescriptor is the server-internal, fully parsed view of one
// inbound request (spec §3).
type RequestDescriptor struct {
	Route      [][]byte
	ReqID      ReqID
	ProcName   string
	Args       []any
	Kwargs     map[string]any
	Ignore     bool
	ParseError error
}

// RemoteErrorDescriptor is the {ename, evalue, traceback} triple
// transported as JSON in a FAIL reply.
type RemoteErrorDescriptor struct {
	EName     string `json:"ename"`
	EValue    string `json:"evalue"`
	Traceback string `json:"traceback"`
}
