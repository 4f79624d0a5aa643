package lin

import (
	"fmt"
	"strings"
)

// SyncByte leads every LIN header. In bits it is 01010101, which lets
// slaves measure the master's bit rate.
const SyncByte byte = 0x55

// Data length limits of a LIN frame response.
const (
	MinDataLen = 1
	MaxDataLen = 8
)

// MaxFrameLen is the length of a frame with 8 data bytes:
// sync + id + 8 data + checksum.
const MaxFrameLen = 2 + MaxDataLen + 1

// Frame is a transmitted LIN frame: [sync, id, data..., checksum].
//
// The bytes are kept in a fixed array; only the first Len() bytes are
// meaningful.
type Frame struct {
	buf     [MaxFrameLen]byte
	dataLen int
}

// NewFrame builds a frame from an identifier (or PID), data and checksum.
//
// It panics if len(data) is outside [MinDataLen, MaxDataLen]; a frame of any
// other size cannot exist on the bus.
func NewFrame(id byte, data []byte, checksum byte) Frame {
	MustDataLen(len(data))

	var f Frame
	f.buf[0] = SyncByte
	f.buf[1] = id
	copy(f.buf[2:], data)
	f.buf[2+len(data)] = checksum
	f.dataLen = len(data)

	return f
}

// MustDataLen panics unless n is a valid LIN data length.
func MustDataLen(n int) {
	if n < MinDataLen || n > MaxDataLen {
		panic(fmt.Sprintf("lin: data length must be between %d and %d bytes, got %d", MinDataLen, MaxDataLen, n))
	}
}

// Len returns the number of meaningful bytes, 4 to 11.
func (f Frame) Len() int {
	if f.dataLen == 0 {
		return 0
	}

	return f.dataLen + 3
}

// Bytes returns a copy of the meaningful frame bytes in wire order.
func (f Frame) Bytes() []byte {
	out := make([]byte, f.Len())
	copy(out, f.buf[:])

	return out
}

// ID returns the identifier byte.
func (f Frame) ID() byte { return f.buf[1] }

// Data returns a copy of the data bytes.
func (f Frame) Data() []byte {
	out := make([]byte, f.dataLen)
	copy(out, f.buf[2:2+f.dataLen])

	return out
}

// Checksum returns the checksum byte.
func (f Frame) Checksum() byte {
	if f.dataLen == 0 {
		return 0
	}

	return f.buf[2+f.dataLen]
}

// IsZero reports whether f is the zero Frame.
func (f Frame) IsZero() bool { return f.dataLen == 0 }

// String formats the frame as space separated hex bytes.
func (f Frame) String() string {
	var sb strings.Builder
	for i, b := range f.buf[:f.Len()] {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}

	return sb.String()
}
