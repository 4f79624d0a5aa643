package lin

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusSpeed_BaudRate(t *testing.T) {
	assert.Equal(t, uint32(9600), Baud9600.BaudRate())
	assert.Equal(t, uint32(10400), Baud10400.BaudRate())
	assert.Equal(t, uint32(19200), Baud19200.BaudRate())
	assert.Equal(t, uint32(20000), Baud20000.BaudRate())
	assert.Equal(t, uint32(0), BusSpeed(42).BaudRate())
}

func TestBusSpeed_BitPeriod(t *testing.T) {
	assert.Equal(t, uint32(52_083), Baud19200.BitPeriodNs(), "19200 bps must truncate 52083.33")
	assert.Equal(t, uint32(104_166), Baud9600.BitPeriodNs())
	assert.Equal(t, uint32(96_153), Baud10400.BitPeriodNs())
	assert.Equal(t, uint32(50_000), Baud20000.BitPeriodNs())

	for _, s := range BusSpeeds() {
		product := uint64(s.BitPeriodNs()) * uint64(s.BaudRate())
		assert.LessOrEqual(t, product, uint64(1_000_000_000), s.String())
		assert.Greater(t, product+uint64(s.BaudRate()), uint64(1_000_000_000), s.String())
	}
}

func TestBusSpeed_InvalidPanics(t *testing.T) {
	assert.Panics(t, func() { BusSpeed(9).BitPeriodNs() })
	assert.Equal(t, "BusSpeed(9)", BusSpeed(9).String())
}

func TestParseBusSpeed(t *testing.T) {
	s, err := ParseBusSpeed(10400)
	require.NoError(t, err)
	assert.Equal(t, Baud10400, s)

	_, err = ParseBusSpeed(115200)
	require.ErrorIs(t, err, ErrUnsupportedBaudRate)
	assert.Contains(t, err.Error(), "115200")
}

func TestBreakDuration(t *testing.T) {
	assert.Equal(t, uint32(677_079), Minimum13Bits().DurationNs(52_083))
	assert.Equal(t, uint32(729_162), Minimum13BitsPlus(1).DurationNs(52_083))
	assert.Equal(t, uint32(781_245), Minimum13BitsPlus(2).DurationNs(52_083))

	assert.Equal(t, uint32(13), BreakDuration{}.Bits(), "zero value is 13 bits")
	assert.Equal(t, "13+2 bits", Minimum13BitsPlus(2).String())
}

func TestWakeupDuration(t *testing.T) {
	assert.Equal(t, uint32(250_000), Minimum250Microseconds().DurationNs())
	assert.Equal(t, uint32(5_000_000), Maximum5Milliseconds().DurationNs())
	assert.Equal(t, uint32(1_250_000), Minimum250MicrosecondsPlus(1000).DurationNs())
	assert.Equal(t, uint32(5_000_000), Minimum250MicrosecondsPlus(4750).DurationNs())
	assert.Equal(t, uint32(5_001_000), Minimum250MicrosecondsPlus(4751).DurationNs())

	// Overflow saturates above the 5ms limit instead of wrapping below it.
	assert.Equal(t, uint32(math.MaxUint32), Minimum250MicrosecondsPlus(math.MaxUint32).DurationNs())
}

func TestResponseTimeout(t *testing.T) {
	assert.Equal(t, uint32(0), NoResponseTimeout().DurationNs())
	assert.Equal(t, uint32(0), ResponseTimeout{}.DurationNs())
	assert.Equal(t, uint32(500_000), ResponseTimeoutMicroseconds(500).DurationNs())
	assert.Equal(t, uint32(2_000_000), ResponseTimeoutMilliseconds(2).DurationNs())
	assert.Equal(t, uint32(math.MaxUint32), ResponseTimeoutMilliseconds(10_000).DurationNs())
}

func TestInterFrameSpace(t *testing.T) {
	assert.Equal(t, uint32(0), NoInterFrameSpace().DurationNs())
	assert.Equal(t, uint32(750_000), InterFrameSpaceMicroseconds(750).DurationNs())
	assert.Equal(t, uint32(1_000_000), InterFrameSpaceMilliseconds(1).DurationNs())
}

func TestFromDuration(t *testing.T) {
	assert.Equal(t, ResponseTimeoutMilliseconds(3), ResponseTimeoutFromDuration(3*time.Millisecond))
	assert.Equal(t, ResponseTimeoutMicroseconds(1500), ResponseTimeoutFromDuration(1500*time.Microsecond))
	assert.Equal(t, NoResponseTimeout(), ResponseTimeoutFromDuration(0))
	assert.Equal(t, NoResponseTimeout(), ResponseTimeoutFromDuration(-time.Second))

	assert.Equal(t, InterFrameSpaceMilliseconds(1), InterFrameSpaceFromDuration(time.Millisecond))
	assert.Equal(t, InterFrameSpaceMicroseconds(200), InterFrameSpaceFromDuration(200*time.Microsecond))
}

func TestDefaultTimingProfile(t *testing.T) {
	p := DefaultTimingProfile()

	assert.Equal(t, Baud19200, p.Speed)
	assert.Equal(t, Minimum13Bits(), p.Break)
	assert.Equal(t, Minimum250Microseconds(), p.Wakeup)
	assert.Equal(t, ResponseTimeoutMilliseconds(2), p.ResponseTimeout)
	assert.Equal(t, InterFrameSpaceMilliseconds(1), p.InterFrameSpace)

	assert.Equal(t, uint32(52_083), p.BitPeriodNs())
	assert.Equal(t, uint32(677_079), p.BreakDurationNs(p.BitPeriodNs()))
	assert.Equal(t, uint32(250_000), p.WakeupDurationNs())
	assert.Equal(t, uint32(2_000_000), p.ResponseTimeoutNs())
	assert.Equal(t, uint32(1_000_000), p.InterFrameSpaceNs())
	assert.NoError(t, p.Validate())
}

func TestTimingProfile_Validate(t *testing.T) {
	p := DefaultTimingProfile()
	p.Wakeup = Maximum5Milliseconds()
	require.NoError(t, p.Validate())

	p.Wakeup = Minimum250MicrosecondsPlus(5000)
	err := p.Validate()
	require.ErrorIs(t, err, ErrWakeupTooLong)
	assert.Contains(t, err.Error(), "5250000ns")
}

func TestTimingProfile_String(t *testing.T) {
	s := DefaultTimingProfile().String()
	assert.Contains(t, s, "speed=19200bps")
	assert.Contains(t, s, "break=13 bits")
	assert.Contains(t, s, "wakeup=250µs")
	assert.Contains(t, s, "responseTimeout=2ms")
	assert.Contains(t, s, "interFrameSpace=1ms")
}
