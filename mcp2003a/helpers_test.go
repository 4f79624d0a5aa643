package mcp2003a

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/arloliu/go-lin/lin"
	"github.com/arloliu/go-lin/logger"
)

var errBoom = errors.New("boom")

// eventLog records line, delay and transport activity in one ordered list so
// tests can assert the exact phase sequence of an operation.
type eventLog struct {
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

// without returns the events that do not start with prefix.
func (l *eventLog) without(prefix string) []string {
	out := make([]string, 0, len(l.events))
	for _, e := range l.events {
		if !strings.HasPrefix(e, prefix) {
			out = append(out, e)
		}
	}

	return out
}

// fakeTransport serves rx byte by byte and reports ErrWouldBlock once it is
// exhausted. Writes are recorded in tx.
type fakeTransport struct {
	log *eventLog

	rx  []byte
	pos int
	tx  []byte

	maxWrite  int   // bytes accepted per Write call; 0 means all
	writeErr  error // returned by every Write
	zeroWrite bool  // accept nothing and return nil
	readErr   error // returned once rx is exhausted instead of ErrWouldBlock
	flushErr  error
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	if f.zeroWrite {
		return 0, nil
	}

	n := len(p)
	if f.maxWrite > 0 && n > f.maxWrite {
		n = f.maxWrite
	}
	f.tx = append(f.tx, p[:n]...)
	f.log.add("write:% X", p[:n])

	return n, nil
}

func (f *fakeTransport) ReadByte() (byte, error) {
	if f.pos >= len(f.rx) {
		if f.readErr != nil {
			f.log.add("read:error")
			return 0, f.readErr
		}
		f.log.add("read:would-block")

		return 0, fmt.Errorf("fake uart: %w", ErrWouldBlock)
	}

	b := f.rx[f.pos]
	f.pos++
	f.log.add("read:%02X", b)

	return b, nil
}

func (f *fakeTransport) Flush() error {
	f.log.add("flush")
	return f.flushErr
}

// load replaces the receive stream.
func (f *fakeTransport) load(rx ...byte) {
	f.rx = append([]byte(nil), rx...)
	f.pos = 0
}

// writeOnlyTransport hides the Flush method of a fakeTransport.
type writeOnlyTransport struct {
	t *fakeTransport
}

func (w writeOnlyTransport) Write(p []byte) (int, error) { return w.t.Write(p) }
func (w writeOnlyTransport) ReadByte() (byte, error)     { return w.t.ReadByte() }

type fakeLine struct {
	log     *eventLog
	highErr error
	lowErr  error
}

func (l *fakeLine) SetHigh() error {
	if l.highErr != nil {
		return l.highErr
	}
	l.log.add("high")

	return nil
}

func (l *fakeLine) SetLow() error {
	if l.lowErr != nil {
		return l.lowErr
	}
	l.log.add("low")

	return nil
}

type fakeDelay struct {
	log *eventLog
}

func (d *fakeDelay) DelayNs(ns uint32) {
	d.log.add("delay:%d", ns)
}

type testRig struct {
	log       *eventLog
	transport *fakeTransport
	line      *fakeLine
	delay     *fakeDelay
	tr        *Transceiver
}

// newTestRig builds a Transceiver over fakes with the default profile and a
// silent logger.
func newTestRig(t *testing.T, opts ...Option) *testRig {
	t.Helper()

	log := &eventLog{}
	rig := &testRig{
		log:       log,
		transport: &fakeTransport{log: log},
		line:      &fakeLine{log: log},
		delay:     &fakeDelay{log: log},
	}

	defaults := []Option{WithLogger(logger.NewNop())}

	tr, err := New(rig.transport, rig.line, rig.delay, append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("newTestRig: %v", err)
	}
	rig.tr = tr

	return rig
}

// breakEvents is the event sequence of SendBreak for profile p.
func breakEvents(p lin.TimingProfile) []string {
	bit := p.BitPeriodNs()

	return []string{
		"high",
		fmt.Sprintf("delay:%d", p.BreakDurationNs(bit)),
		"low",
		fmt.Sprintf("delay:%d", bit),
	}
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

// responseStream is the bytes a transceiver sees for a successful read of
// id: the header echo, data and checksum.
func responseStream(id byte, data []byte, checksum byte) []byte {
	out := []byte{lin.SyncByte, id}
	out = append(out, data...)

	return append(out, checksum)
}
