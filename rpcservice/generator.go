package rpcservice

import (
	"sync"

	"zmrpc/message"
	"zmrpc/protocol"
	"zmrpc/registry"
)

// genOp names a streaming command a client iterator sent back to an
// active generator (spec §4.5's YIELD_SEND/YIELD_THROW/YIELD_CLOSE).
type genOp int

const (
	opSend genOp = iota
	opThrow
	opClose
)

type genCmd struct {
	op            genOp
	value         any
	ename, evalue string
}

// activeGenerators is the service-wide table of in-flight streaming
// calls, keyed by req_id, each with a one-element command slot (spec
// §4.5: "Insert a new one-element command slot into the active-generator
// table"). One generator driver goroutine owns each entry and pins one
// worker until the generator is closed (spec §5: "Each active generator
// pins one worker until closed").
type activeGenerators struct {
	mu    sync.Mutex
	slots map[message.ReqID]chan genCmd
}

func newActiveGenerators() *activeGenerators {
	return &activeGenerators{slots: make(map[message.ReqID]chan genCmd)}
}

func (a *activeGenerators) register(reqID message.ReqID) chan genCmd {
	slot := make(chan genCmd, 1)
	a.mu.Lock()
	a.slots[reqID] = slot
	a.mu.Unlock()
	return slot
}

func (a *activeGenerators) lookup(reqID message.ReqID) (chan genCmd, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	slot, ok := a.slots[reqID]
	return slot, ok
}

func (a *activeGenerators) remove(reqID message.ReqID) {
	a.mu.Lock()
	delete(a.slots, reqID)
	a.mu.Unlock()
}

// runGeneratorDriver is the "one logical task per active iterator" from
// spec §4.5. It registers the command slot, sends the stream handshake,
// then loops driving gen with whatever command arrives until the
// generator or the command indicates termination.
func (s *Service) runGeneratorDriver(route [][]byte, reqID message.ReqID, gen registry.Generator) {
	defer s.wg.Done()

	slot := s.gens.register(reqID)
	defer s.gens.remove(reqID)

	s.sendFrames(protocol.BuildReply(route, reqID, message.TagYIELD, nil))

	for cmd := range slot {
		var (
			value any
			err   error
		)
		switch cmd.op {
		case opSend:
			value, err = gen.Send(cmd.value)
		case opThrow:
			value, err = gen.Throw(cmd.ename, cmd.evalue)
		case opClose:
			err = gen.Close()
		}

		switch {
		case err == registry.ErrStopIteration:
			s.sendFrames(protocol.BuildReply(route, reqID, message.TagOK, nil))
			return
		case err != nil:
			s.sendFail(route, reqID, err)
			return
		case cmd.op == opClose:
			// Close succeeded without the generator reporting
			// StopIteration: still a normal, immediate end.
			s.sendFrames(protocol.BuildReply(route, reqID, message.TagOK, nil))
			return
		default:
			s.sendYield(route, reqID, value)
		}
	}
}

// dispatchYieldCommand handles an inbound YIELD_SEND/YIELD_THROW/YIELD_CLOSE
// frame (spec §4.5 step 3): look up the active generator by req_id and
// enqueue the command, or reply FAIL if the req_id is unknown.
func (s *Service) dispatchYieldCommand(parsed *protocol.ParsedRequest) {
	slot, ok := s.gens.lookup(parsed.ReqID)
	if !ok {
		s.sendFrames(protocol.BuildReply(parsed.Route, parsed.ReqID, message.TagFAIL,
			protocol.EncodeRemoteError(&message.RemoteErrorDescriptor{
				EName:  "ValueError",
				EValue: "req_id does not refer to a known generator",
			})))
		return
	}

	cmd, err := s.decodeYieldCommand(parsed)
	if err != nil {
		s.sendFail(parsed.Route, parsed.ReqID, err)
		return
	}
	slot <- cmd
}

func (s *Service) decodeYieldCommand(parsed *protocol.ParsedRequest) (genCmd, error) {
	switch message.Tag(parsed.ProcName) {
	case message.TagYieldSend:
		args, _, err := s.ser.DeserializeArgsKwargs(parsed.ArgsFrames)
		if err != nil {
			return genCmd{}, err
		}
		var v any
		if len(args) > 0 {
			v = args[0]
		}
		return genCmd{op: opSend, value: v}, nil
	case message.TagYieldThrow:
		var ename, evalue string
		if len(parsed.ArgsFrames) > 0 {
			ename = string(parsed.ArgsFrames[0])
		}
		if len(parsed.ArgsFrames) > 1 {
			evalue = string(parsed.ArgsFrames[1])
		}
		return genCmd{op: opThrow, ename: ename, evalue: evalue}, nil
	default: // message.TagYieldClose
		return genCmd{op: opClose}, nil
	}
}
