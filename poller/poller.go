package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-lin/internal/pool"
	"github.com/arloliu/go-lin/lin"
	"github.com/arloliu/go-lin/logger"
	"github.com/arloliu/go-lin/mcp2003a"
)

// Transactor is the bus master used by the Poller. *mcp2003a.Transceiver
// implements it.
type Transactor interface {
	SendFrame(id byte, data []byte, checksum byte) (lin.Frame, error)
	ReadFrame(id byte, buf []byte) (byte, error)
}

var _ Transactor = (*mcp2003a.Transceiver)(nil)

// Poller runs a fixed schedule of entries against a LIN master and keeps the
// latest result per identifier.
//
// RunOnce and Run must not be called concurrently. Latest and Snapshot are
// goroutine-safe and may be called while the schedule runs.
type Poller struct {
	tr      Transactor
	entries []Entry

	interval time.Duration
	retries  int
	model    lin.ChecksumModel
	verify   bool
	logger   logger.Logger
	handler  func(Result)
	now      func() time.Time

	latest *xsync.MapOf[byte, Result]
}

// New creates a poller for entries. Entries must have distinct IDs.
func New(tr Transactor, entries []Entry, opts ...Option) (*Poller, error) {
	if tr == nil {
		return nil, errors.New("poller: transactor must not be nil")
	}
	if len(entries) == 0 {
		return nil, errors.New("poller: schedule must have at least one entry")
	}

	seen := make(map[byte]string, len(entries))
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return nil, err
		}
		if prev, ok := seen[e.ID]; ok {
			return nil, fmt.Errorf("poller: entries %q and %q share id 0x%02X", prev, e.Name, e.ID)
		}
		seen[e.ID] = e.Name
	}

	p := &Poller{
		tr:       tr,
		entries:  append([]Entry(nil), entries...),
		interval: DefaultInterval,
		logger:   logger.GetLogger(),
		now:      time.Now,
		latest:   xsync.NewMapOf[byte, Result](),
	}

	for _, opt := range opts {
		if err := opt.apply(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Entries returns a copy of the schedule.
func (p *Poller) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

// Run repeats the schedule until ctx is done and returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	for {
		if _, err := p.RunOnce(ctx); err != nil {
			return err
		}
	}
}

// RunOnce executes every entry once, in order, waiting the interval after
// each one. Entry failures are reported in the results; the returned error
// is non-nil only when ctx ends, in which case the results so far are
// returned.
func (p *Poller) RunOnce(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(p.entries))

	for _, e := range p.entries {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := p.execute(ctx, e)
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(res.Err, ctxErr) {
			return results, ctxErr
		}

		p.latest.Store(e.ID, res)
		results = append(results, res)
		if p.handler != nil {
			p.handler(res)
		}

		if err := pool.SleepContext(ctx, p.interval); err != nil {
			return results, err
		}
	}

	return results, nil
}

// Latest returns the most recent result for id.
func (p *Poller) Latest(id byte) (Result, bool) {
	return p.latest.Load(id)
}

// Snapshot returns the most recent result of every entry that has run.
func (p *Poller) Snapshot() map[byte]Result {
	out := make(map[byte]Result, p.latest.Size())
	p.latest.Range(func(id byte, res Result) bool {
		out[id] = res
		return true
	})

	return out
}

func (p *Poller) execute(ctx context.Context, e Entry) Result {
	res := Result{Entry: e}

	switch e.Kind {
	case Publish:
		res.Attempts = 1
		res.Data = append([]byte(nil), e.Data...)
		res.Checksum = e.Checksum
		_, res.Err = p.tr.SendFrame(e.ID, e.Data, e.Checksum)
	case Subscribe:
		res.Data, res.Checksum, res.Attempts, res.Err = p.subscribe(ctx, e)
	}
	res.At = p.now()

	if res.Err != nil {
		p.logger.Debug("poller: entry failed",
			"name", e.Name,
			"id", e.ID,
			"kind", e.Kind.String(),
			"attempts", res.Attempts,
			"error", res.Err,
		)
	}

	return res
}

func (p *Poller) subscribe(ctx context.Context, e Entry) ([]byte, byte, int, error) {
	var (
		data     []byte
		checksum byte
		attempts int
	)

	err := retry.Do(
		func() error {
			attempts++

			buf := make([]byte, e.Length)
			cs, err := p.tr.ReadFrame(e.ID, buf)
			data = buf[:receivedLen(err, len(buf))]
			checksum = cs
			if err != nil {
				return err
			}

			if p.verify {
				return p.model.Verify(e.ID, buf, cs)
			}

			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.retries+1)),
		retry.Delay(p.interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Debug("poller: retrying entry", "name", e.Name, "attempt", n+1, "error", err)
		}),
	)

	return data, checksum, attempts, err
}

// isRetryable reports whether a failed read may succeed on the next slot.
func isRetryable(err error) bool {
	var respErr *mcp2003a.ResponseError

	return errors.As(err, &respErr) || errors.Is(err, lin.ErrChecksumMismatch)
}

// receivedLen returns how many leading bytes of a read buffer hold data.
func receivedLen(err error, n int) int {
	if err == nil {
		return n
	}

	var respErr *mcp2003a.ResponseError
	if errors.As(err, &respErr) {
		return respErr.Received
	}

	return 0
}
