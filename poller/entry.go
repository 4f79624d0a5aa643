package poller

import (
	"fmt"
	"time"

	"github.com/arloliu/go-lin/lin"
)

// Kind is the direction of a schedule entry.
type Kind uint8

const (
	// Publish entries send a complete frame from the master.
	Publish Kind = iota
	// Subscribe entries send a header and read the slave response.
	Subscribe
)

func (k Kind) String() string {
	switch k {
	case Publish:
		return "publish"
	case Subscribe:
		return "subscribe"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Entry is one slot of the polling schedule.
type Entry struct {
	// Name labels the entry in logs and results.
	Name string
	// ID is the identifier byte put on the bus, usually a protected id.
	ID   byte
	Kind Kind

	// Data and Checksum are sent by Publish entries.
	Data     []byte
	Checksum byte

	// Length is the number of data bytes a Subscribe entry reads.
	Length int
}

// PublishEntry returns a Publish entry whose checksum is computed with m.
func PublishEntry(name string, id byte, data []byte, m lin.ChecksumModel) Entry {
	return Entry{
		Name:     name,
		ID:       id,
		Kind:     Publish,
		Data:     append([]byte(nil), data...),
		Checksum: m.Compute(id, data),
	}
}

// SubscribeEntry returns a Subscribe entry reading length data bytes.
func SubscribeEntry(name string, id byte, length int) Entry {
	return Entry{Name: name, ID: id, Kind: Subscribe, Length: length}
}

func (e Entry) validate() error {
	switch e.Kind {
	case Publish:
		if n := len(e.Data); n < lin.MinDataLen || n > lin.MaxDataLen {
			return fmt.Errorf("poller: entry %q: data length %d out of range [%d, %d]", e.Name, n, lin.MinDataLen, lin.MaxDataLen)
		}
	case Subscribe:
		if e.Length < lin.MinDataLen || e.Length > lin.MaxDataLen {
			return fmt.Errorf("poller: entry %q: length %d out of range [%d, %d]", e.Name, e.Length, lin.MinDataLen, lin.MaxDataLen)
		}
	default:
		return fmt.Errorf("poller: entry %q: unknown kind %v", e.Name, e.Kind)
	}

	return nil
}

// Result is the outcome of executing one entry.
type Result struct {
	Entry Entry
	// Data is the frame payload: the sent data for Publish, the received
	// bytes for Subscribe (possibly a partial response when Err is set).
	Data     []byte
	Checksum byte
	Err      error
	// At is when the entry finished.
	At time.Time
	// Attempts is the number of bus transactions made, including retries.
	Attempts int
}

// OK reports whether the entry completed without error.
func (r Result) OK() bool { return r.Err == nil }
