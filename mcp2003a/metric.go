package mcp2003a

import (
	"errors"
	"sync/atomic"
)

// Metrics contains atomic counters for a transceiver.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// BreakCount indicates the number of break signals sent.
	BreakCount atomic.Uint64
	// WakeupCount indicates the number of wakeup signals sent.
	WakeupCount atomic.Uint64
	// FrameSendCount indicates the number of frames written and flushed.
	FrameSendCount atomic.Uint64
	// FrameRecvCount indicates the number of complete responses parsed.
	FrameRecvCount atomic.Uint64
	// DiscardedByteCount indicates the number of bytes dropped while
	// searching for sync and id.
	DiscardedByteCount atomic.Uint64
	// ResyncCount indicates the number of id mismatches after a sync byte.
	ResyncCount atomic.Uint64

	// TransportErrCount indicates the number of transport, flush and output
	// line failures.
	TransportErrCount atomic.Uint64
	// NoResponseCount indicates reads that ended without sync, without id
	// or without any data byte.
	NoResponseCount atomic.Uint64
	// PartialResponseCount indicates reads that ended with missing data or
	// a missing checksum.
	PartialResponseCount atomic.Uint64
}

func (m *Metrics) incBreakCount() {
	m.BreakCount.Add(1)
}

func (m *Metrics) incWakeupCount() {
	m.WakeupCount.Add(1)
}

func (m *Metrics) incFrameSendCount() {
	m.FrameSendCount.Add(1)
}

func (m *Metrics) incFrameRecvCount() {
	m.FrameRecvCount.Add(1)
}

func (m *Metrics) incTransportErrCount() {
	m.TransportErrCount.Add(1)
}

func (m *Metrics) addParser(p *responseParser) {
	m.DiscardedByteCount.Add(uint64(p.discarded))
	m.ResyncCount.Add(uint64(p.resyncs))
}

func (m *Metrics) recordResponseErr(err error) {
	switch {
	case errors.Is(err, ErrOnlyPartialResponse), errors.Is(err, ErrNoChecksumReceived):
		m.PartialResponseCount.Add(1)
	default:
		m.NoResponseCount.Add(1)
	}
}
