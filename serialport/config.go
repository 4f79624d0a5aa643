package serialport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/go-lin/lin"
	"github.com/arloliu/go-lin/logger"
)

// DefaultPollTimeout is how long a read waits for the UART before the port
// reports that no byte is available.
const DefaultPollTimeout = time.Millisecond

// MaxPollTimeout bounds the poll timeout. A longer poll stalls the response
// parser past the end of a frame slot.
const MaxPollTimeout = 100 * time.Millisecond

// Line selects the modem-control output wired to the transceiver's TXD/break
// input.
type Line uint8

const (
	LineRTS Line = iota
	LineDTR
)

func (l Line) String() string {
	switch l {
	case LineRTS:
		return "rts"
	case LineDTR:
		return "dtr"
	default:
		return fmt.Sprintf("Line(%d)", uint8(l))
	}
}

// ParseLine parses "rts" or "dtr", case-insensitively.
func ParseLine(s string) (Line, error) {
	switch strings.ToLower(s) {
	case "rts":
		return LineRTS, nil
	case "dtr":
		return LineDTR, nil
	default:
		return 0, fmt.Errorf("serialport: unknown break line %q", s)
	}
}

// Config holds the settings used by Open.
type Config struct {
	name        string
	speed       lin.BusSpeed
	pollTimeout time.Duration
	breakLine   Line
	activeLow   bool
	logger      logger.Logger
}

// NewConfig creates a configuration for the serial device name, for example
// "/dev/ttyUSB0" or "COM3".
func NewConfig(name string, opts ...Option) (*Config, error) {
	if name == "" {
		return nil, errors.New("serialport: device name must not be empty")
	}

	cfg := &Config{
		name:        name,
		speed:       lin.Baud19200,
		pollTimeout: DefaultPollTimeout,
		breakLine:   LineRTS,
		logger:      logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// --- Getters ---

// Name returns the device name.
func (cfg *Config) Name() string { return cfg.name }

// Speed returns the LIN bus speed the UART is opened at.
func (cfg *Config) Speed() lin.BusSpeed { return cfg.speed }

// PollTimeout returns the per-read wait.
func (cfg *Config) PollTimeout() time.Duration { return cfg.pollTimeout }

// BreakLine returns the modem-control line used for break and wakeup.
func (cfg *Config) BreakLine() Line { return cfg.breakLine }

// ActiveLow reports whether the break line asserts by driving the modem bit
// false.
func (cfg *Config) ActiveLow() bool { return cfg.activeLow }

// --- Options ---

// Option is a functional option for NewConfig.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithBusSpeed sets the UART baud rate. The default is lin.Baud19200.
func WithBusSpeed(s lin.BusSpeed) Option {
	return optFunc(func(cfg *Config) error {
		if s.BaudRate() == 0 {
			return fmt.Errorf("serialport: invalid bus speed %v", s)
		}
		cfg.speed = s

		return nil
	})
}

// WithPollTimeout sets how long a read waits for data. Zero makes reads
// return immediately.
func WithPollTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < 0 || d > MaxPollTimeout {
			return fmt.Errorf("serialport: poll timeout %v out of range [0, %v]", d, MaxPollTimeout)
		}
		cfg.pollTimeout = d

		return nil
	})
}

// WithBreakLine selects RTS or DTR as the break line. The default is RTS.
func WithBreakLine(l Line) Option {
	return optFunc(func(cfg *Config) error {
		if l != LineRTS && l != LineDTR {
			return fmt.Errorf("serialport: unknown break line %v", l)
		}
		cfg.breakLine = l

		return nil
	})
}

// WithActiveLow inverts the break line, for adapters where a cleared modem
// bit drives the transceiver input.
func WithActiveLow(enabled bool) Option {
	return optFunc(func(cfg *Config) error {
		cfg.activeLow = enabled
		return nil
	})
}

// WithLogger sets the logger for the port.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("serialport: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
