// Package lin holds the LIN (Local Interconnect Network) bus definitions shared
// by the transceiver driver and its callers.
//
// Timing:
//   - TimingProfile combines a BusSpeed with break, wakeup, response-timeout and
//     inter-frame-space policies and converts them to nanosecond delays.
//   - DefaultTimingProfile returns 19200 bps, a 13 bit break, a 250 µs wakeup,
//     a 2 ms response timeout and a 1 ms inter-frame space.
//
// Frames:
//   - Frame is the transmitted byte sequence [0x55, id, data(1-8), checksum].
//
// Checksums:
//   - The driver treats checksum bytes as opaque. PID, ClassicChecksum,
//     EnhancedChecksum and ChecksumModel are provided for callers that build
//     or validate frames themselves.
package lin
