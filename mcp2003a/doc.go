// Package mcp2003a is a LIN bus master driver for the Microchip MCP2003A
// transceiver (and pin compatible parts) attached to a host UART and one
// output line.
//
// The MCP2003A has no notion of frames: the host writes UART bytes, drives
// the break with a separate output, and reads back everything that appears
// on the bus, including the echo of its own header. This package turns that
// raw byte stream into LIN transactions:
//
//   - SendBreak and SendWakeup sequence the output line with nanosecond
//     delays derived from a lin.TimingProfile.
//   - SendFrame publishes [0x55, id, data, checksum] after a break.
//   - ReadFrame sends a header and resynchronizes on the response, reporting
//     exactly how far it got: no sync byte, no id byte, no data, partial data
//     or no checksum (see ResponseError).
//
// Capabilities:
//
// The driver consumes three interfaces: Transport (non-blocking byte stream
// with ErrWouldBlock), OutputLine and Delayer. The serialport package
// provides a host implementation of the first two; SleepDelay and
// PrecisionDelay implement the third.
//
// Checksums are opaque to the driver. Use the lin package to compute or
// verify classic and enhanced checksums.
//
// Concurrency:
//
// A Transceiver is single-threaded and executes every phase of a call in
// order: break, write, response timeout, parse, inter-frame space.
// AsyncTransceiver runs the same operations on a dedicated goroutine and
// returns result channels.
package mcp2003a
