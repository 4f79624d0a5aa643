package mcp2003a

// Transport is the byte stream between the host UART and the transceiver.
//
// ReadByte must not block waiting for data: when no byte is currently
// available it returns ErrWouldBlock (or an error wrapping it). Any other
// error is treated as a hard I/O fault.
type Transport interface {
	Write(p []byte) (int, error)
	ReadByte() (byte, error)
}

// Flusher is implemented by transports that can wait until every written
// byte has physically left the UART.
type Flusher interface {
	Flush() error
}

// OutputLine is the binary output that drives the break and wakeup pulses.
// SetHigh asserts the pulse, SetLow releases it.
type OutputLine interface {
	SetHigh() error
	SetLow() error
}

// Delayer sleeps for a number of nanoseconds. Implementations must not return
// before the full duration has elapsed.
type Delayer interface {
	DelayNs(ns uint32)
}

// DelayFunc adapts a function to the Delayer interface.
type DelayFunc func(ns uint32)

// DelayNs calls f(ns).
func (f DelayFunc) DelayNs(ns uint32) { f(ns) }
