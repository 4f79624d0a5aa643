package serialport

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-lin/logger"
	"github.com/arloliu/go-lin/mcp2003a"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// readChunk is the size of one UART read.
const readChunk = 64

// ErrPortClosed is returned by I/O on a closed Port.
var ErrPortClosed = errors.New("serialport: port closed")

// serialPort is the subset of serial.Port used by Port.
type serialPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Drain() error
	ResetInputBuffer() error
	SetRTS(rts bool) error
	SetDTR(dtr bool) error
	SetReadTimeout(t time.Duration) error
	Close() error
}

var _ serialPort = serial.Port(nil)

// openPort is replaced in tests.
var openPort = func(name string, mode *serial.Mode) (serialPort, error) {
	return serial.Open(name, mode)
}

// Port is a UART wired to an MCP2003A. It implements mcp2003a.Transport and
// mcp2003a.Flusher, and BreakLine returns the matching mcp2003a.OutputLine.
//
// Port is NOT goroutine-safe; it is meant to be owned by one Transceiver.
type Port struct {
	cfg    *Config
	port   serialPort
	logger logger.Logger

	chunk   [readChunk]byte
	pending []byte
}

var (
	_ mcp2003a.Transport = (*Port)(nil)
	_ mcp2003a.Flusher   = (*Port)(nil)
)

// Open opens the device described by cfg as 8N1 at the configured bus speed.
// The break line starts released.
func Open(cfg *Config) (*Port, error) {
	released := cfg.activeLow
	bits := &serial.ModemOutputBits{RTS: true, DTR: true}
	switch cfg.breakLine {
	case LineRTS:
		bits.RTS = released
	case LineDTR:
		bits.DTR = released
	}

	mode := &serial.Mode{
		BaudRate:          int(cfg.speed.BaudRate()),
		DataBits:          8,
		Parity:            serial.NoParity,
		StopBits:          serial.OneStopBit,
		InitialStatusBits: bits,
	}

	sp, err := openPort(cfg.name, mode)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %q: %w", cfg.name, err)
	}

	p := newPort(cfg, sp)
	if err := p.setReadTimeout(); err != nil {
		_ = sp.Close()
		return nil, err
	}

	p.logger.Debug("serialport: opened",
		"name", cfg.name,
		"speed", cfg.speed.String(),
		"breakLine", cfg.breakLine.String(),
		"activeLow", cfg.activeLow,
	)

	return p, nil
}

func newPort(cfg *Config, sp serialPort) *Port {
	return &Port{
		cfg:    cfg,
		port:   sp,
		logger: cfg.logger.With("port", cfg.name),
	}
}

func (p *Port) setReadTimeout() error {
	if err := p.port.SetReadTimeout(p.cfg.pollTimeout); err != nil {
		return fmt.Errorf("serialport: set read timeout: %w", err)
	}

	return nil
}

// Name returns the device name.
func (p *Port) Name() string { return p.cfg.name }

// Write writes b to the UART.
func (p *Port) Write(b []byte) (int, error) {
	if p.port == nil {
		return 0, ErrPortClosed
	}

	n, err := p.port.Write(b)
	if err != nil {
		return n, fmt.Errorf("serialport: write: %w", err)
	}

	return n, nil
}

// ReadByte returns the next received byte. When the UART delivers nothing
// within the poll timeout it returns an error wrapping
// mcp2003a.ErrWouldBlock.
func (p *Port) ReadByte() (byte, error) {
	if p.port == nil {
		return 0, ErrPortClosed
	}

	if len(p.pending) == 0 {
		n, err := p.port.Read(p.chunk[:])
		if err != nil {
			return 0, fmt.Errorf("serialport: read: %w", err)
		}
		if n == 0 {
			return 0, fmt.Errorf("serialport: read timeout: %w", mcp2003a.ErrWouldBlock)
		}
		p.pending = p.chunk[:n]
	}

	b := p.pending[0]
	p.pending = p.pending[1:]

	return b, nil
}

// Flush blocks until every written byte has been transmitted.
func (p *Port) Flush() error {
	if p.port == nil {
		return ErrPortClosed
	}

	if err := p.port.Drain(); err != nil {
		return fmt.Errorf("serialport: drain: %w", err)
	}

	return nil
}

// Discard drops every byte received but not yet read.
func (p *Port) Discard() error {
	if p.port == nil {
		return ErrPortClosed
	}

	p.pending = nil
	if err := p.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("serialport: reset input buffer: %w", err)
	}

	return nil
}

// Close closes the device. Close is safe to call more than once.
func (p *Port) Close() error {
	if p.port == nil {
		return nil
	}

	err := p.port.Close()
	p.port = nil
	p.pending = nil

	var portErr *serial.PortError
	if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serialport: close: %w", err)
	}

	return nil
}

// BreakLine returns the modem-control output selected in the Config. It
// must not be used after Close.
func (p *Port) BreakLine() mcp2003a.OutputLine {
	set := p.port.SetRTS
	if p.cfg.breakLine == LineDTR {
		set = p.port.SetDTR
	}

	return &modemLine{name: p.cfg.breakLine.String(), set: set, activeLow: p.cfg.activeLow}
}

// modemLine drives one modem-control bit as an mcp2003a.OutputLine.
type modemLine struct {
	name      string
	set       func(bool) error
	activeLow bool
}

func (l *modemLine) SetHigh() error { return l.drive(true) }

func (l *modemLine) SetLow() error { return l.drive(false) }

func (l *modemLine) drive(asserted bool) error {
	if err := l.set(asserted != l.activeLow); err != nil {
		return fmt.Errorf("serialport: set %s: %w", l.name, err)
	}

	return nil
}

// PortInfo describes a serial device found on the host.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// ListPorts returns the serial devices present on the host.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("serialport: list ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}

	return ports, nil
}
