package rpcclient

import (
	"zmrpc/message"
)

// resultKind tags what a pendingResult channel carries.
type resultKind int

const (
	kindOK resultKind = iota
	kindFail
	kindYield
	kindTimeout
)

// resultMsg is the union type a pendingResult's channels carry — kind
// selects what it is: value is meaningful for kindOK and kindYield, err
// for kindFail and kindTimeout (spec §5: "pending result... a result-union
// type").
type resultMsg struct {
	kind  resultKind
	value any
	err   error
}

// pendingResult is the per-call correlation object the reader goroutine
// resolves by req_id. A call starts in non-streaming mode: the first
// terminal reply (OK/FAIL/timeout) or the first YIELD arrives on first.
// A first YIELD flips streaming on and every later message — including
// the eventual terminal OK/FAIL that ends the stream — arrives on
// stream instead.
type pendingResult struct {
	reqID     message.ReqID
	streaming bool // guarded by the owning Client's mu, not its own lock

	first  chan resultMsg // buffered 1
	stream chan resultMsg // buffered 1 — one slot, same backpressure the service driver uses

	timer interface{ Stop() bool }
}

func newPendingResult(reqID message.ReqID) *pendingResult {
	return &pendingResult{
		reqID:  reqID,
		first:  make(chan resultMsg, 1),
		stream: make(chan resultMsg, 1),
	}
}
