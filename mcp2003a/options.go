package mcp2003a

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-lin/lin"
	"github.com/arloliu/go-lin/logger"
)

// DefaultAsyncQueueSize is the default number of operations an
// AsyncTransceiver buffers before submissions block.
const DefaultAsyncQueueSize = 16

// Option is a functional option for configuring a Transceiver.
type Option interface {
	apply(*Transceiver) error
}

type optFunc func(*Transceiver) error

func (f optFunc) apply(tr *Transceiver) error { return f(tr) }

// WithTimingProfile sets the initial timing profile. The default is
// lin.DefaultTimingProfile().
func WithTimingProfile(p lin.TimingProfile) Option {
	return optFunc(func(tr *Transceiver) error {
		if p.Speed.BaudRate() == 0 {
			return fmt.Errorf("mcp2003a: invalid bus speed %v", p.Speed)
		}
		tr.profile = p

		return nil
	})
}

// WithLogger sets the logger for the transceiver.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(tr *Transceiver) error {
		if l == nil {
			return errors.New("mcp2003a: logger must not be nil")
		}
		tr.logger = l

		return nil
	})
}

// WithResyncPolicy sets how the response parser recovers from an identifier
// mismatch. The default is ResyncFromSync.
func WithResyncPolicy(p ResyncPolicy) Option {
	return optFunc(func(tr *Transceiver) error {
		if p != ResyncFromSync && p != ResyncRetryID {
			return fmt.Errorf("mcp2003a: unknown resync policy %d", p)
		}
		tr.resync = p

		return nil
	})
}

// AsyncOption is a functional option for configuring an AsyncTransceiver.
type AsyncOption interface {
	apply(*asyncConfig) error
}

type asyncConfig struct {
	queueSize int
}

type asyncOptFunc func(*asyncConfig) error

func (f asyncOptFunc) apply(cfg *asyncConfig) error { return f(cfg) }

// WithQueueSize sets the number of operations buffered ahead of the worker.
func WithQueueSize(size int) AsyncOption {
	return asyncOptFunc(func(cfg *asyncConfig) error {
		if size < 1 {
			return errors.New("mcp2003a: queue size must be >= 1")
		}
		cfg.queueSize = size

		return nil
	})
}
