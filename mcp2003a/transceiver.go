package mcp2003a

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-lin/lin"
	"github.com/arloliu/go-lin/logger"
)

// Transceiver drives an MCP2003A LIN transceiver as bus master.
//
// It owns its transport, output line and delay source for its entire
// lifetime. Every operation blocks until the full signalling sequence,
// including the trailing inter-frame space, has completed.
//
// This type is NOT goroutine-safe. Callers must serialize access, typically
// one Transceiver per bus used from one goroutine, or wrap it in an
// AsyncTransceiver.
type Transceiver struct {
	transport Transport
	line      OutputLine
	delay     Delayer

	profile lin.TimingProfile
	resync  ResyncPolicy
	logger  logger.Logger
	metrics Metrics
}

// New creates a transceiver with lin.DefaultTimingProfile().
func New(transport Transport, line OutputLine, delay Delayer, opts ...Option) (*Transceiver, error) {
	if transport == nil {
		return nil, errors.New("mcp2003a: transport must not be nil")
	}
	if line == nil {
		return nil, errors.New("mcp2003a: output line must not be nil")
	}
	if delay == nil {
		return nil, errors.New("mcp2003a: delay source must not be nil")
	}

	tr := &Transceiver{
		transport: transport,
		line:      line,
		delay:     delay,
		profile:   lin.DefaultTimingProfile(),
		resync:    ResyncFromSync,
		logger:    logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(tr); err != nil {
			return nil, err
		}
	}

	return tr, nil
}

// Init replaces the active timing profile. It lets callers re-tune timing,
// for example after discovering a slower slave, without recreating the
// transceiver. It panics if p.Speed is not a supported bus speed.
func (tr *Transceiver) Init(p lin.TimingProfile) {
	p.BitPeriodNs()
	tr.profile = p
	tr.logger.Debug("mcp2003a: timing profile set", "profile", p.String())
}

// Profile returns the active timing profile.
func (tr *Transceiver) Profile() lin.TimingProfile { return tr.profile }

// Metrics returns the transceiver counters.
func (tr *Transceiver) Metrics() *Metrics { return &tr.metrics }

// SendFrame transmits [0x55, id, data..., checksum] after a break and returns
// the frame that was written. The checksum is sent as given.
//
// The inter-frame space is applied after a successful write. A failed write
// returns immediately and is not retried.
//
// SendFrame panics if len(data) is not between 1 and 8.
func (tr *Transceiver) SendFrame(id byte, data []byte, checksum byte) (lin.Frame, error) {
	// Step 1-2: validate and build.
	frame := lin.NewFrame(id, data, checksum)

	// Step 3: break.
	if err := tr.SendBreak(); err != nil {
		return lin.Frame{}, err
	}

	// Step 4-5: write in order, then wait for the UART to drain.
	if err := tr.writeAll(frame.Bytes()); err != nil {
		return lin.Frame{}, err
	}
	if err := tr.flush(); err != nil {
		return lin.Frame{}, err
	}

	// Step 6: inter-frame space.
	tr.delay.DelayNs(tr.profile.InterFrameSpaceNs())

	tr.metrics.incFrameSendCount()
	tr.logger.Debug("mcp2003a: frame sent", "id", id, "frame", frame.String())

	return frame, nil
}

// ReadFrame sends a header for id and parses the slave response into buf.
// len(buf) is the number of data bytes expected. On success it returns the
// received checksum byte unmodified; validating it is up to the caller.
//
// The transceiver echoes the header back, so the parser first looks for the
// sync byte followed by id, then copies len(buf) data bytes and one checksum
// byte. It stops as soon as the transport has no more bytes available, so a
// silent slave never blocks the call. A response failure is a
// *ResponseError.
//
// ReadFrame panics if len(buf) is not between 1 and 8.
func (tr *Transceiver) ReadFrame(id byte, buf []byte) (byte, error) {
	lin.MustDataLen(len(buf))

	// Step 1: space before the new transaction.
	tr.delay.DelayNs(tr.profile.InterFrameSpaceNs())

	// Step 2-3: break and header.
	if err := tr.SendBreak(); err != nil {
		return 0, err
	}
	if err := tr.writeAll([]byte{lin.SyncByte, id}); err != nil {
		return 0, err
	}

	// Step 4: give the slave time to respond.
	tr.delay.DelayNs(tr.profile.ResponseTimeoutNs())

	// Step 5: drain what the transport has buffered through the parser.
	parser := newResponseParser(id, buf, tr.resync)
	readErr := tr.parseResponse(parser)

	// Step 6: space after the transaction, regardless of outcome.
	tr.delay.DelayNs(tr.profile.InterFrameSpaceNs())

	tr.metrics.addParser(parser)
	if readErr != nil {
		tr.metrics.incTransportErrCount()
		return 0, readErr
	}

	// Step 7: classify.
	checksum, err := parser.result()
	if err != nil {
		tr.metrics.recordResponseErr(err)
		tr.logger.Debug("mcp2003a: response incomplete",
			"id", id,
			"phase", parser.phase.String(),
			"received", parser.received,
			"discarded", parser.discarded,
		)

		return 0, err
	}

	tr.metrics.incFrameRecvCount()
	tr.logger.Debug("mcp2003a: frame received", "id", id, "len", len(buf), "checksum", checksum)

	return checksum, nil
}

// parseResponse feeds bytes into p until the frame completes or the
// transport reports that nothing more is available.
func (tr *Transceiver) parseResponse(p *responseParser) error {
	for !p.done() {
		b, err := tr.transport.ReadByte()
		if err != nil {
			if errors.Is(err, ErrWouldBlock) {
				return nil
			}

			return fmt.Errorf("%w: read response: %w", ErrTransport, err)
		}

		if p.feed(b) {
			return nil
		}
	}

	return nil
}

// writeAll writes data to the transport, in order, aborting on the first
// failure.
func (tr *Transceiver) writeAll(data []byte) error {
	for written := 0; written < len(data); {
		n, err := tr.transport.Write(data[written:])
		written += n

		switch {
		case errors.Is(err, ErrWouldBlock):
			tr.metrics.incTransportErrCount()
			return fmt.Errorf("%w: %d of %d bytes written: %w", ErrWriteNotAcknowledged, written, len(data), err)
		case err != nil:
			tr.metrics.incTransportErrCount()
			return fmt.Errorf("%w: write byte %d: %w", ErrTransport, written, err)
		case n == 0:
			tr.metrics.incTransportErrCount()
			return fmt.Errorf("%w: %d of %d bytes written", ErrWriteNotAcknowledged, written, len(data))
		}
	}

	return nil
}

func (tr *Transceiver) flush() error {
	f, ok := tr.transport.(Flusher)
	if !ok {
		return nil
	}

	if err := f.Flush(); err != nil {
		tr.metrics.incTransportErrCount()
		return fmt.Errorf("%w: flush: %w", ErrWriteNotAcknowledged, err)
	}

	return nil
}
