package mcp2003a

import (
	"context"
	"errors"
	"sync"

	"github.com/arloliu/go-lin/lin"
)

// FrameResult is the outcome of an asynchronous SendFrame.
type FrameResult struct {
	Frame lin.Frame
	Err   error
}

// ReadResult is the outcome of an asynchronous ReadFrame. Data holds the
// bytes copied into the response buffer, including a partial response.
type ReadResult struct {
	Data     []byte
	Checksum byte
	Err      error
}

// AsyncTransceiver runs Transceiver operations on a single worker goroutine.
//
// Submissions return immediately with a result channel, so the caller's
// goroutine is free while the worker blocks on delays and I/O. Operations run
// one at a time in submission order through the same Transceiver methods as
// the blocking path; phase ordering, delay placement and error
// classification are therefore identical.
//
// An operation that has started always runs to completion. Close stops
// intake and waits for queued operations to finish. All methods are
// goroutine-safe.
type AsyncTransceiver struct {
	tr   *Transceiver
	reqs chan func()

	mu      sync.Mutex // protects closed and profile, and serializes enqueue with Close
	closed  bool
	profile lin.TimingProfile

	done chan struct{}
}

// NewAsync starts the worker goroutine for tr. The AsyncTransceiver takes
// ownership of tr; it must not be used directly afterwards.
func NewAsync(tr *Transceiver, opts ...AsyncOption) (*AsyncTransceiver, error) {
	cfg := asyncConfig{queueSize: DefaultAsyncQueueSize}
	for _, opt := range opts {
		if err := opt.apply(&cfg); err != nil {
			return nil, err
		}
	}

	a := &AsyncTransceiver{
		tr:      tr,
		reqs:    make(chan func(), cfg.queueSize),
		profile: tr.Profile(),
		done:    make(chan struct{}),
	}
	go a.run()

	return a, nil
}

func (a *AsyncTransceiver) run() {
	defer close(a.done)

	for op := range a.reqs {
		op()
	}
}

// submit queues op. It returns false after Close. Holding mu while sending
// keeps Close from closing reqs under a pending send.
func (a *AsyncTransceiver) submit(op func()) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return false
	}
	a.reqs <- op

	return true
}

// Metrics returns the counters of the underlying transceiver.
func (a *AsyncTransceiver) Metrics() *Metrics { return a.tr.Metrics() }

// Init queues a timing profile change. Operations submitted afterwards run
// with p. It panics in the calling goroutine if p.Speed is not a supported
// bus speed.
func (a *AsyncTransceiver) Init(p lin.TimingProfile) <-chan error {
	p.BitPeriodNs()
	ch := make(chan error, 1)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		ch <- ErrClosed

		return ch
	}
	a.profile = p
	a.reqs <- func() {
		a.tr.Init(p)
		ch <- nil
	}
	a.mu.Unlock()

	return ch
}

// SendBreak queues a break signal.
func (a *AsyncTransceiver) SendBreak() <-chan error {
	ch := make(chan error, 1)
	if !a.submit(func() { ch <- a.tr.SendBreak() }) {
		ch <- ErrClosed
	}

	return ch
}

// SendWakeup queues a wakeup signal. It panics in the calling goroutine if
// the profile in effect for this operation has a wakeup longer than 5 ms.
func (a *AsyncTransceiver) SendWakeup() <-chan error {
	ch := make(chan error, 1)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		ch <- ErrClosed

		return ch
	}
	wakeupNs := a.profile.WakeupDurationNs()
	if wakeupNs > lin.MaxWakeupDurationNs {
		a.mu.Unlock()
		mustWakeupDuration(wakeupNs)
	}
	a.reqs <- func() { ch <- a.tr.SendWakeup() }
	a.mu.Unlock()

	return ch
}

// SendFrame queues a frame transmission. data is copied before SendFrame
// returns. It panics in the calling goroutine if len(data) is not between
// 1 and 8.
func (a *AsyncTransceiver) SendFrame(id byte, data []byte, checksum byte) <-chan FrameResult {
	lin.MustDataLen(len(data))
	payload := append([]byte(nil), data...)

	ch := make(chan FrameResult, 1)
	ok := a.submit(func() {
		frame, err := a.tr.SendFrame(id, payload, checksum)
		ch <- FrameResult{Frame: frame, Err: err}
	})
	if !ok {
		ch <- FrameResult{Err: ErrClosed}
	}

	return ch
}

// ReadFrame queues a read of n data bytes from id. It panics in the calling
// goroutine if n is not between 1 and 8.
func (a *AsyncTransceiver) ReadFrame(id byte, n int) <-chan ReadResult {
	lin.MustDataLen(n)

	ch := make(chan ReadResult, 1)
	ok := a.submit(func() {
		buf := make([]byte, n)
		checksum, err := a.tr.ReadFrame(id, buf)
		ch <- ReadResult{Data: buf[:receivedLen(err, n)], Checksum: checksum, Err: err}
	})
	if !ok {
		ch <- ReadResult{Err: ErrClosed}
	}

	return ch
}

// Close stops accepting operations and waits until the queued ones have run
// or ctx is done. Operations still queued when ctx ends keep running in the
// background.
func (a *AsyncTransceiver) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.reqs)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// receivedLen returns how many leading bytes of the read buffer are valid.
func receivedLen(err error, n int) int {
	if err == nil {
		return n
	}

	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Received
	}

	return 0
}
