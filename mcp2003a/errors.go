package mcp2003a

import (
	"errors"
	"fmt"
)

// Sentinel errors for the MCP2003A driver.
var (
	// Capability errors.
	ErrWouldBlock           = errors.New("mcp2003a: no data available")
	ErrTransport            = errors.New("mcp2003a: transport error")
	ErrWriteNotAcknowledged = errors.New("mcp2003a: write not acknowledged")
	ErrOutputLine           = errors.New("mcp2003a: output line error")

	// Response resync errors, in the order a read progresses through them.
	ErrSyncByteNotReceivedBack = errors.New("mcp2003a: sync byte not received back")
	ErrIDByteNotReceivedBack   = errors.New("mcp2003a: id byte not received back")
	ErrDeviceTimeoutNoResponse = errors.New("mcp2003a: device timeout, no response")
	ErrOnlyPartialResponse     = errors.New("mcp2003a: only partial response")
	ErrNoChecksumReceived      = errors.New("mcp2003a: no checksum received")

	// Async errors.
	ErrClosed = errors.New("mcp2003a: transceiver closed")
)

// Phase is a state of the response parser.
type Phase uint8

const (
	PhaseAwaitSync Phase = iota
	PhaseAwaitID
	PhaseReadData
	PhaseAwaitChecksum
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitSync:
		return "await-sync"
	case PhaseAwaitID:
		return "await-id"
	case PhaseReadData:
		return "read-data"
	case PhaseAwaitChecksum:
		return "await-checksum"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// ResponseError reports how far a ReadFrame response got before the byte
// stream ran dry. It unwraps to exactly one of ErrSyncByteNotReceivedBack,
// ErrIDByteNotReceivedBack, ErrDeviceTimeoutNoResponse,
// ErrOnlyPartialResponse or ErrNoChecksumReceived.
type ResponseError struct {
	// ID is the identifier the read was addressed to.
	ID byte
	// Phase is the parser phase when the stream stopped.
	Phase Phase
	// SyncSeen reports whether a sync byte was received at any point, even
	// if a later identifier mismatch sent the parser back to PhaseAwaitSync.
	SyncSeen bool
	// Received is the number of data bytes copied into the buffer.
	Received int
	// Expected is the buffer length.
	Expected int
	// Discarded counts bytes dropped while searching for sync and id.
	Discarded int
}

func (e *ResponseError) Unwrap() error {
	switch {
	case e.Phase == PhaseAwaitSync && !e.SyncSeen:
		return ErrSyncByteNotReceivedBack
	case e.Phase <= PhaseAwaitID:
		return ErrIDByteNotReceivedBack
	case e.Received == 0:
		return ErrDeviceTimeoutNoResponse
	case e.Received < e.Expected:
		return ErrOnlyPartialResponse
	default:
		return ErrNoChecksumReceived
	}
}

func (e *ResponseError) Error() string {
	base := e.Unwrap()
	if errors.Is(base, ErrOnlyPartialResponse) {
		return fmt.Sprintf("%v: received %d of %d data bytes (id=0x%02X)", base, e.Received, e.Expected, e.ID)
	}

	return fmt.Sprintf("%v (id=0x%02X, discarded=%d)", base, e.ID, e.Discarded)
}
