package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-lin/lin"
	"github.com/arloliu/go-lin/poller"
)

func TestParseByte(t *testing.T) {
	for _, s := range []string{"C1", "c1", "0xC1", "0XC1", " 0xc1 "} {
		b, err := parseByte(s)
		require.NoError(t, err, s)
		assert.Equal(t, byte(0xC1), b, s)
	}

	for _, s := range []string{"", "0x", "100", "zz", "-1"} {
		_, err := parseByte(s)
		assert.Error(t, err, s)
	}
}

func TestParseData(t *testing.T) {
	want := []byte{0x00, 0xF0, 0x0A, 0x00, 0x00, 0x00, 0x00, 0x08}
	for _, s := range []string{
		"00F00A0000000008",
		"00 F0 0A 00 00 00 00 08",
		"00:f0:0a:00:00:00:00:08",
		"0x00F00A0000000008",
		"00,F0,0A,00,00,00,00,08",
	} {
		data, err := parseData(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, data, s)
	}

	_, err := parseData("")
	require.Error(t, err)
	_, err = parseData("000102030405060708")
	require.Error(t, err, "nine bytes")
	_, err = parseData("ABC")
	require.Error(t, err, "odd digit count")
}

func TestParseLength(t *testing.T) {
	n, err := parseLength("8")
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	for _, s := range []string{"0", "9", "x", ""} {
		_, err := parseLength(s)
		assert.Error(t, err, s)
	}
}

func TestParseSlots(t *testing.T) {
	id, n, err := parseReadSlot("0xC1:8")
	require.NoError(t, err)
	assert.Equal(t, byte(0xC1), id)
	assert.Equal(t, 8, n)

	_, _, err = parseReadSlot("C1")
	require.Error(t, err)
	_, _, err = parseReadSlot("C1:10")
	require.Error(t, err)

	id, data, err := parseSendSlot("80:01 02")
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), id)
	assert.Equal(t, []byte{0x01, 0x02}, data)

	_, _, err = parseSendSlot("80")
	require.Error(t, err)
	_, _, err = parseSendSlot("xx:01")
	require.Error(t, err)
}

func TestHexString(t *testing.T) {
	assert.Equal(t, "", hexString(nil))
	assert.Equal(t, "55 C1 0A", hexString([]byte{0x55, 0xC1, 0x0A}))
}

func TestFormatResult(t *testing.T) {
	color.NoColor = true

	assert.Equal(t,
		"0xC1 || 2 || 11 22                   || cs=0x33",
		formatResult(0xC1, []byte{0x11, 0x22}, 0x33, nil),
	)
	assert.Equal(t,
		"0xC1 || 0 ||                         || boom",
		formatResult(0xC1, nil, 0, errors.New("boom")),
	)
}

func TestWakeupDuration(t *testing.T) {
	w, err := wakeupDuration(250 * time.Microsecond)
	require.NoError(t, err)
	assert.Equal(t, uint32(250_000), w.DurationNs())

	w, err = wakeupDuration(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint32(1_000_000), w.DurationNs())

	w, err = wakeupDuration(5 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint32(5_000_000), w.DurationNs())

	_, err = wakeupDuration(100 * time.Microsecond)
	require.Error(t, err)
	_, err = wakeupDuration(6 * time.Millisecond)
	require.Error(t, err)
}

// newFlagCommand returns a fresh command carrying the bus and poll flags so
// flag helpers can be tested without opening a port.
func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	c := &cobra.Command{Use: "test"}
	addBusFlags(c.Flags())
	addPollFlags(c.Flags())
	require.NoError(t, c.ParseFlags(args))

	return c
}

func TestTimingProfileFromFlags(t *testing.T) {
	c := newFlagCommand(t, "-b", "9600", "--break-bits", "2", "--response-timeout", "500us", "--inter-frame-space", "0")

	p, err := timingProfile(c)
	require.NoError(t, err)
	assert.Equal(t, lin.Baud9600, p.Speed)
	assert.Equal(t, lin.Minimum13BitsPlus(2), p.Break)
	assert.Equal(t, lin.ResponseTimeoutMicroseconds(500), p.ResponseTimeout)
	assert.Equal(t, lin.NoInterFrameSpace(), p.InterFrameSpace)

	c = newFlagCommand(t, "-b", "115200")
	_, err = timingProfile(c)
	require.ErrorIs(t, err, lin.ErrUnsupportedBaudRate)
}

func TestScheduleEntries(t *testing.T) {
	c := newFlagCommand(t, "--send", "0x80:00F00A0000000008", "--read", "0xC1:8", "--read", "0x42:2")

	entries, err := scheduleEntries(c)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, poller.Publish, entries[0].Kind)
	assert.Equal(t, byte(0x7C), entries[0].Checksum)
	assert.Equal(t, "send-80", entries[0].Name)
	assert.Equal(t, poller.Subscribe, entries[1].Kind)
	assert.Equal(t, 8, entries[1].Length)
	assert.Equal(t, "read-42", entries[2].Name)

	_, err = scheduleEntries(newFlagCommand(t))
	require.Error(t, err)
}
