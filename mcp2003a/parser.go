package mcp2003a

import "github.com/arloliu/go-lin/lin"

// ResyncPolicy decides what the parser does when the byte after a sync byte
// is not the expected identifier.
type ResyncPolicy uint8

const (
	// ResyncFromSync discards the mismatched byte and searches for a new sync
	// byte. The mismatched byte is not reconsidered as a sync candidate, even
	// when it equals 0x55. This is the default.
	ResyncFromSync ResyncPolicy = iota
	// ResyncRetryID stays in the identifier phase and compares each following
	// byte against the expected identifier.
	ResyncRetryID
)

func (p ResyncPolicy) String() string {
	if p == ResyncRetryID {
		return "retry-id"
	}

	return "from-sync"
}

// responseParser recovers [sync, id, data..., checksum] from the receive
// stream of one ReadFrame call. It is not reused across calls.
type responseParser struct {
	id     byte
	buf    []byte
	policy ResyncPolicy

	phase     Phase
	syncSeen  bool
	received  int
	discarded int
	resyncs   int
	checksum  byte
}

func newResponseParser(id byte, buf []byte, policy ResyncPolicy) *responseParser {
	return &responseParser{id: id, buf: buf, policy: policy}
}

// feed consumes one byte and reports whether the frame is complete.
func (p *responseParser) feed(b byte) bool {
	switch p.phase {
	case PhaseAwaitSync:
		if b == lin.SyncByte {
			p.phase = PhaseAwaitID
			p.syncSeen = true
		} else {
			p.discarded++
		}

	case PhaseAwaitID:
		if b == p.id {
			p.phase = PhaseReadData
			break
		}

		p.discarded++
		p.resyncs++
		if p.policy == ResyncFromSync {
			p.phase = PhaseAwaitSync
		}

	case PhaseReadData:
		p.buf[p.received] = b
		p.received++
		if p.received == len(p.buf) {
			p.phase = PhaseAwaitChecksum
		}

	case PhaseAwaitChecksum:
		p.checksum = b
		p.phase = PhaseDone

	case PhaseDone:
	}

	return p.phase == PhaseDone
}

func (p *responseParser) done() bool {
	return p.phase == PhaseDone
}

// result classifies how far the parser progressed. A sync byte that was
// later dropped by a resync still counts as received.
func (p *responseParser) result() (byte, error) {
	if p.phase == PhaseDone {
		return p.checksum, nil
	}

	return 0, &ResponseError{
		ID:        p.id,
		Phase:     p.phase,
		SyncSeen:  p.syncSeen,
		Received:  p.received,
		Expected:  len(p.buf),
		Discarded: p.discarded,
	}
}
