package lin

import (
	"errors"
	"fmt"
	"strings"
)

// MaxFrameID is the largest 6-bit LIN frame identifier.
const MaxFrameID = 0x3F

// ErrChecksumMismatch reports a response whose checksum byte does not match
// the computed value.
var ErrChecksumMismatch = errors.New("lin: checksum mismatch")

// ChecksumError carries both checksum values of a failed verification.
type ChecksumError struct {
	Model    ChecksumModel
	Expected byte
	Actual   byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("lin: %s checksum mismatch: expected 0x%02X, got 0x%02X", e.Model, e.Expected, e.Actual)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// PID returns the protected identifier for a 6-bit frame identifier:
//
//	P0 = ID0 ^ ID1 ^ ID2 ^ ID4      (bit 6)
//	P1 = !(ID1 ^ ID3 ^ ID4 ^ ID5)   (bit 7)
//
// Bits above bit 5 of id are ignored.
func PID(id byte) byte {
	id &= MaxFrameID
	bit := func(n uint) byte { return (id >> n) & 1 }

	p0 := bit(0) ^ bit(1) ^ bit(2) ^ bit(4)
	p1 := ^(bit(1) ^ bit(3) ^ bit(4) ^ bit(5)) & 1

	return id | p0<<6 | p1<<7
}

// FrameID strips the parity bits from a protected identifier.
func FrameID(pid byte) byte { return pid & MaxFrameID }

// ValidPID reports whether the parity bits of pid are correct.
func ValidPID(pid byte) bool { return PID(FrameID(pid)) == pid }

// ClassicChecksum is the LIN 1.x checksum: inverted sum with carry over the
// data bytes only.
func ClassicChecksum(data []byte) byte {
	return invertedCarrySum(0, data)
}

// EnhancedChecksum is the LIN 2.x checksum: inverted sum with carry over the
// protected identifier and the data bytes.
func EnhancedChecksum(pid byte, data []byte) byte {
	return invertedCarrySum(uint16(pid), data)
}

func invertedCarrySum(seed uint16, data []byte) byte {
	sum := seed
	for _, b := range data {
		sum += uint16(b)
		if sum > 0xFF {
			sum -= 0xFF
		}
	}

	return ^byte(sum)
}

// ChecksumModel selects the checksum algorithm used by a frame.
type ChecksumModel uint8

const (
	// ChecksumEnhanced covers the PID and the data (LIN 2.x).
	ChecksumEnhanced ChecksumModel = iota
	// ChecksumClassic covers the data only (LIN 1.x, diagnostic frames).
	ChecksumClassic
)

// ParseChecksumModel maps "classic" or "enhanced" to a ChecksumModel.
func ParseChecksumModel(s string) (ChecksumModel, error) {
	switch strings.ToLower(s) {
	case "enhanced":
		return ChecksumEnhanced, nil
	case "classic":
		return ChecksumClassic, nil
	default:
		return 0, fmt.Errorf("lin: unknown checksum model %q", s)
	}
}

// Compute returns the checksum of data for the given protected identifier.
func (m ChecksumModel) Compute(pid byte, data []byte) byte {
	if m == ChecksumClassic {
		return ClassicChecksum(data)
	}

	return EnhancedChecksum(pid, data)
}

// Verify compares checksum against the computed value.
func (m ChecksumModel) Verify(pid byte, data []byte, checksum byte) error {
	if want := m.Compute(pid, data); want != checksum {
		return &ChecksumError{Model: m, Expected: want, Actual: checksum}
	}

	return nil
}

func (m ChecksumModel) String() string {
	if m == ChecksumClassic {
		return "classic"
	}

	return "enhanced"
}
