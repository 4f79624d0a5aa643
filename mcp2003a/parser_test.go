package mcp2003a

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(p *responseParser, stream []byte) int {
	for i, b := range stream {
		if p.feed(b) {
			return i + 1
		}
	}

	return len(stream)
}

func TestResponseParser_Phases(t *testing.T) {
	buf := make([]byte, 2)
	p := newResponseParser(0xC1, buf, ResyncFromSync)
	assert.Equal(t, PhaseAwaitSync, p.phase)

	assert.False(t, p.feed(0x55))
	assert.Equal(t, PhaseAwaitID, p.phase)

	assert.False(t, p.feed(0xC1))
	assert.Equal(t, PhaseReadData, p.phase)

	assert.False(t, p.feed(0x01))
	assert.Equal(t, PhaseReadData, p.phase)
	assert.False(t, p.feed(0x02))
	assert.Equal(t, PhaseAwaitChecksum, p.phase)

	assert.True(t, p.feed(0x03))
	assert.True(t, p.done())

	checksum, err := p.result()
	require.NoError(t, err)
	assert.Equal(t, byte(0x03), checksum)
	assert.Equal(t, []byte{0x01, 0x02}, buf)
}

func TestResponseParser_DataMayContainSync(t *testing.T) {
	buf := make([]byte, 3)
	p := newResponseParser(0xC1, buf, ResyncFromSync)

	n := feedAll(p, []byte{0x55, 0xC1, 0x55, 0xC1, 0x55, 0x55})
	assert.Equal(t, 6, n)

	checksum, err := p.result()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x55, 0xC1, 0x55}, buf, "data phase copies bytes verbatim")
	assert.Equal(t, byte(0x55), checksum)
	assert.Zero(t, p.discarded)
}

func TestResponseParser_IDEqualToSync(t *testing.T) {
	buf := make([]byte, 1)
	p := newResponseParser(0x55, buf, ResyncFromSync)

	feedAll(p, []byte{0x55, 0x55, 0x0A, 0x0B})
	checksum, err := p.result()
	require.NoError(t, err)
	assert.Equal(t, byte(0x0B), checksum)
	assert.Equal(t, []byte{0x0A}, buf)
}

func TestResponseParser_Counters(t *testing.T) {
	p := newResponseParser(0xC1, make([]byte, 1), ResyncFromSync)

	feedAll(p, []byte{0x01, 0x02, 0x55, 0x80, 0x55, 0x81})
	assert.Equal(t, 4, p.discarded)
	assert.Equal(t, 2, p.resyncs)
	assert.Equal(t, PhaseAwaitSync, p.phase)
	assert.True(t, p.syncSeen)

	p = newResponseParser(0xC1, make([]byte, 1), ResyncRetryID)
	feedAll(p, []byte{0x55, 0x80, 0x81, 0xC1})
	assert.Equal(t, 2, p.discarded)
	assert.Equal(t, 2, p.resyncs)
	assert.Equal(t, PhaseReadData, p.phase)
}

func TestResponseParser_ResultClassification(t *testing.T) {
	tests := []struct {
		stream []byte
		want   error
	}{
		{nil, ErrSyncByteNotReceivedBack},
		{[]byte{0x55}, ErrIDByteNotReceivedBack},
		{[]byte{0x55, 0x80}, ErrIDByteNotReceivedBack},
		{[]byte{0x01, 0x55, 0x80, 0x02}, ErrIDByteNotReceivedBack},
		{[]byte{0x55, 0xC1}, ErrDeviceTimeoutNoResponse},
		{[]byte{0x55, 0xC1, 0x01}, ErrOnlyPartialResponse},
		{[]byte{0x55, 0xC1, 0x01, 0x02}, ErrNoChecksumReceived},
	}

	for _, tt := range tests {
		p := newResponseParser(0xC1, make([]byte, 2), ResyncFromSync)
		feedAll(p, tt.stream)

		checksum, err := p.result()
		assert.Zero(t, checksum)
		assert.ErrorIs(t, err, tt.want, "stream % X", tt.stream)
	}
}

func TestResyncPolicy_String(t *testing.T) {
	assert.Equal(t, "from-sync", ResyncFromSync.String())
	assert.Equal(t, "retry-id", ResyncRetryID.String())
}
