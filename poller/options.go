package poller

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-lin/lin"
	"github.com/arloliu/go-lin/logger"
)

const (
	DefaultInterval = 10 * time.Millisecond
	MaxRetries      = 10
)

// Option is a functional option for configuring a Poller.
type Option interface {
	apply(*Poller) error
}

type optFunc func(*Poller) error

func (f optFunc) apply(p *Poller) error { return f(p) }

// WithInterval sets the gap after every entry and between retries.
func WithInterval(d time.Duration) Option {
	return optFunc(func(p *Poller) error {
		if d < 0 {
			return fmt.Errorf("poller: interval %v must not be negative", d)
		}
		p.interval = d

		return nil
	})
}

// WithRetries sets how many times a failed Subscribe entry is retried.
// Only response failures and checksum mismatches are retried; transport
// errors are returned at once. The default is 0.
func WithRetries(n int) Option {
	return optFunc(func(p *Poller) error {
		if n < 0 || n > MaxRetries {
			return fmt.Errorf("poller: retries %d out of range [0, %d]", n, MaxRetries)
		}
		p.retries = n

		return nil
	})
}

// WithChecksumModel makes Subscribe entries verify the received checksum
// with m. Responses are not verified by default.
func WithChecksumModel(m lin.ChecksumModel) Option {
	return optFunc(func(p *Poller) error {
		if m != lin.ChecksumClassic && m != lin.ChecksumEnhanced {
			return fmt.Errorf("poller: unknown checksum model %d", m)
		}
		p.model = m
		p.verify = true

		return nil
	})
}

// WithLogger sets the logger for the poller.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(p *Poller) error {
		if l == nil {
			return errors.New("poller: logger must not be nil")
		}
		p.logger = l

		return nil
	})
}

// WithResultHandler registers fn to be called with every Result, on the
// polling goroutine.
func WithResultHandler(fn func(Result)) Option {
	return optFunc(func(p *Poller) error {
		p.handler = fn
		return nil
	})
}
