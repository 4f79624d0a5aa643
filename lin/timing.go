package lin

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// MaxWakeupDurationNs is the longest wakeup pulse LIN 2.x allows (5 ms).
const MaxWakeupDurationNs = 5_000_000

// MinBreakBits is the minimum break length in bit periods.
const MinBreakBits = 13

const (
	nsPerSecond      = 1_000_000_000
	nsPerMillisecond = 1_000_000
	nsPerMicrosecond = 1_000

	minWakeupDurationNs = 250_000
)

var (
	// ErrUnsupportedBaudRate is returned by ParseBusSpeed for a baud rate
	// outside the LIN bus speed set.
	ErrUnsupportedBaudRate = errors.New("lin: unsupported baud rate")

	// ErrWakeupTooLong is returned by TimingProfile.Validate when the wakeup
	// pulse exceeds MaxWakeupDurationNs.
	ErrWakeupTooLong = errors.New("lin: wakeup duration exceeds 5ms")
)

// BusSpeed is one of the supported LIN bus baud rates.
type BusSpeed uint8

const (
	Baud9600 BusSpeed = iota
	Baud10400
	Baud19200
	Baud20000
)

var baudRates = [...]uint32{
	Baud9600:  9600,
	Baud10400: 10400,
	Baud19200: 19200,
	Baud20000: 20000,
}

// BusSpeeds lists every supported bus speed in ascending order.
func BusSpeeds() []BusSpeed {
	return []BusSpeed{Baud9600, Baud10400, Baud19200, Baud20000}
}

// ParseBusSpeed maps a baud rate in bits per second to a BusSpeed.
func ParseBusSpeed(baud int) (BusSpeed, error) {
	for _, s := range BusSpeeds() {
		if int(s.BaudRate()) == baud {
			return s, nil
		}
	}

	return 0, fmt.Errorf("%w: %d", ErrUnsupportedBaudRate, baud)
}

// BaudRate returns the bus speed in bits per second, or 0 for a value
// outside the defined constants.
func (s BusSpeed) BaudRate() uint32 {
	if int(s) >= len(baudRates) {
		return 0
	}

	return baudRates[s]
}

// BitPeriodNs returns the duration of a single bit in nanoseconds.
// The sub-nanosecond remainder is truncated: 19200 bps yields 52083 ns.
// It panics for a BusSpeed outside the defined constants.
func (s BusSpeed) BitPeriodNs() uint32 {
	baud := s.BaudRate()
	if baud == 0 {
		panic(fmt.Sprintf("lin: invalid bus speed %d", uint8(s)))
	}

	return nsPerSecond / baud
}

func (s BusSpeed) String() string {
	if s.BaudRate() == 0 {
		return fmt.Sprintf("BusSpeed(%d)", uint8(s))
	}

	return fmt.Sprintf("%dbps", s.BaudRate())
}

// BreakDuration is the break hold time policy, expressed in bit periods.
// The zero value is Minimum13Bits.
type BreakDuration struct {
	extraBits uint8
}

// Minimum13Bits holds the break for exactly 13 bit periods.
func Minimum13Bits() BreakDuration {
	return BreakDuration{}
}

// Minimum13BitsPlus holds the break for 13 + extra bit periods. Some slaves
// need one or two additional bits to detect the break reliably.
func Minimum13BitsPlus(extra uint8) BreakDuration {
	return BreakDuration{extraBits: extra}
}

// Bits returns the total break length in bit periods.
func (d BreakDuration) Bits() uint32 {
	return MinBreakBits + uint32(d.extraBits)
}

// DurationNs returns the break hold time for the given bit period.
func (d BreakDuration) DurationNs(bitPeriodNs uint32) uint32 {
	return saturate(uint64(bitPeriodNs) * uint64(d.Bits()))
}

func (d BreakDuration) String() string {
	if d.extraBits == 0 {
		return "13 bits"
	}

	return fmt.Sprintf("13+%d bits", d.extraBits)
}

type wakeupKind uint8

const (
	wakeupMin250us wakeupKind = iota
	wakeupMin250usPlus
	wakeupMax5ms
)

// WakeupDuration is the wakeup pulse length policy.
// The zero value is Minimum250Microseconds.
type WakeupDuration struct {
	kind    wakeupKind
	extraUs uint32
}

// Minimum250Microseconds is the shortest wakeup pulse, 250 µs.
func Minimum250Microseconds() WakeupDuration {
	return WakeupDuration{kind: wakeupMin250us}
}

// Minimum250MicrosecondsPlus extends the 250 µs pulse by extraUs
// microseconds. Values above 4750 µs violate the 5 ms wakeup limit and make
// the driver panic when the wakeup is sent.
func Minimum250MicrosecondsPlus(extraUs uint32) WakeupDuration {
	return WakeupDuration{kind: wakeupMin250usPlus, extraUs: extraUs}
}

// Maximum5Milliseconds is the longest allowed wakeup pulse, 5 ms.
func Maximum5Milliseconds() WakeupDuration {
	return WakeupDuration{kind: wakeupMax5ms}
}

// DurationNs returns the pulse length in nanoseconds, saturating at
// math.MaxUint32.
func (d WakeupDuration) DurationNs() uint32 {
	switch d.kind {
	case wakeupMin250usPlus:
		return saturate(minWakeupDurationNs + uint64(d.extraUs)*nsPerMicrosecond)
	case wakeupMax5ms:
		return MaxWakeupDurationNs
	default:
		return minWakeupDurationNs
	}
}

func (d WakeupDuration) String() string {
	return time.Duration(d.DurationNs()).String()
}

type delayUnit uint8

const (
	unitNone delayUnit = iota
	unitMicrosecond
	unitMillisecond
)

// delayPolicy is the shared representation of ResponseTimeout and
// InterFrameSpace.
type delayPolicy struct {
	unit  delayUnit
	value uint32
}

func (p delayPolicy) ns() uint32 {
	switch p.unit {
	case unitMicrosecond:
		return saturate(uint64(p.value) * nsPerMicrosecond)
	case unitMillisecond:
		return saturate(uint64(p.value) * nsPerMillisecond)
	default:
		return 0
	}
}

func policyFromDuration(d time.Duration) delayPolicy {
	switch {
	case d <= 0:
		return delayPolicy{}
	case d%time.Millisecond == 0:
		return delayPolicy{unit: unitMillisecond, value: saturate(uint64(d / time.Millisecond))}
	default:
		return delayPolicy{unit: unitMicrosecond, value: saturate(uint64(d / time.Microsecond))}
	}
}

// ResponseTimeout is the delay between sending a read header and reading
// the slave response. The zero value is NoResponseTimeout.
type ResponseTimeout struct {
	p delayPolicy
}

// NoResponseTimeout reads the response immediately after the header.
func NoResponseTimeout() ResponseTimeout { return ResponseTimeout{} }

// ResponseTimeoutMicroseconds waits us microseconds for the response.
func ResponseTimeoutMicroseconds(us uint32) ResponseTimeout {
	return ResponseTimeout{p: delayPolicy{unit: unitMicrosecond, value: us}}
}

// ResponseTimeoutMilliseconds waits ms milliseconds for the response.
func ResponseTimeoutMilliseconds(ms uint32) ResponseTimeout {
	return ResponseTimeout{p: delayPolicy{unit: unitMillisecond, value: ms}}
}

// ResponseTimeoutFromDuration picks millisecond granularity when d is a whole
// number of milliseconds and microsecond granularity otherwise.
func ResponseTimeoutFromDuration(d time.Duration) ResponseTimeout {
	return ResponseTimeout{p: policyFromDuration(d)}
}

// DurationNs returns the timeout in nanoseconds.
func (t ResponseTimeout) DurationNs() uint32 { return t.p.ns() }

func (t ResponseTimeout) String() string { return time.Duration(t.DurationNs()).String() }

// InterFrameSpace is the idle gap after every transaction. The zero value is
// NoInterFrameSpace.
type InterFrameSpace struct {
	p delayPolicy
}

// NoInterFrameSpace starts the next transaction immediately.
func NoInterFrameSpace() InterFrameSpace { return InterFrameSpace{} }

// InterFrameSpaceMicroseconds idles for us microseconds.
func InterFrameSpaceMicroseconds(us uint32) InterFrameSpace {
	return InterFrameSpace{p: delayPolicy{unit: unitMicrosecond, value: us}}
}

// InterFrameSpaceMilliseconds idles for ms milliseconds.
func InterFrameSpaceMilliseconds(ms uint32) InterFrameSpace {
	return InterFrameSpace{p: delayPolicy{unit: unitMillisecond, value: ms}}
}

// InterFrameSpaceFromDuration picks millisecond granularity when d is a whole
// number of milliseconds and microsecond granularity otherwise.
func InterFrameSpaceFromDuration(d time.Duration) InterFrameSpace {
	return InterFrameSpace{p: policyFromDuration(d)}
}

// DurationNs returns the gap in nanoseconds.
func (s InterFrameSpace) DurationNs() uint32 { return s.p.ns() }

func (s InterFrameSpace) String() string { return time.Duration(s.DurationNs()).String() }

// TimingProfile holds the bus speed and the four duration policies used by
// the transceiver driver. It is a plain value; copies are independent.
type TimingProfile struct {
	// Speed is the bus baud rate.
	Speed BusSpeed
	// Break is the break hold time at the start of every header.
	Break BreakDuration
	// Wakeup is the wakeup pulse length.
	Wakeup WakeupDuration
	// ResponseTimeout is the wait between a read header and reading the reply.
	ResponseTimeout ResponseTimeout
	// InterFrameSpace is the idle gap after every transaction.
	InterFrameSpace InterFrameSpace
}

// DefaultTimingProfile returns the most broadly compatible LIN 2.x settings:
// 19200 bps, 13 bit break, 250 µs wakeup, 2 ms response timeout and 1 ms
// inter-frame space.
func DefaultTimingProfile() TimingProfile {
	return TimingProfile{
		Speed:           Baud19200,
		Break:           Minimum13Bits(),
		Wakeup:          Minimum250Microseconds(),
		ResponseTimeout: ResponseTimeoutMilliseconds(2),
		InterFrameSpace: InterFrameSpaceMilliseconds(1),
	}
}

// BitPeriodNs returns the bit period of the configured speed.
func (p TimingProfile) BitPeriodNs() uint32 { return p.Speed.BitPeriodNs() }

// BreakDurationNs returns the break hold time for the given bit period.
func (p TimingProfile) BreakDurationNs(bitPeriodNs uint32) uint32 {
	return p.Break.DurationNs(bitPeriodNs)
}

// WakeupDurationNs returns the wakeup pulse length.
func (p TimingProfile) WakeupDurationNs() uint32 { return p.Wakeup.DurationNs() }

// ResponseTimeoutNs returns the response wait.
func (p TimingProfile) ResponseTimeoutNs() uint32 { return p.ResponseTimeout.DurationNs() }

// InterFrameSpaceNs returns the inter-frame gap.
func (p TimingProfile) InterFrameSpaceNs() uint32 { return p.InterFrameSpace.DurationNs() }

// Validate reports a wakeup pulse longer than MaxWakeupDurationNs.
//
// The driver does not call Validate; it panics when such a profile is used
// to send a wakeup. Configuration layers call it to reject bad input early.
func (p TimingProfile) Validate() error {
	if ns := p.WakeupDurationNs(); ns > MaxWakeupDurationNs {
		return fmt.Errorf("%w: got %dns", ErrWakeupTooLong, ns)
	}

	return nil
}

func (p TimingProfile) String() string {
	return fmt.Sprintf("speed=%s break=%s wakeup=%s responseTimeout=%s interFrameSpace=%s",
		p.Speed, p.Break, p.Wakeup, p.ResponseTimeout, p.InterFrameSpace)
}

func saturate(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}

	return uint32(v)
}
