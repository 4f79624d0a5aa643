package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/go-lin/lin"
)

// parseByte parses "C1", "0xC1" or "0XC1".
func parseByte(s string) (byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q", s)
	}

	return byte(v), nil
}

// parseData parses frame data written as contiguous hex ("00F00A") or
// separated by spaces, colons or commas ("00 F0 0A", "00:F0:0A").
func parseData(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', ',', '-':
			return -1
		}
		return r
	}, strings.TrimPrefix(strings.TrimSpace(s), "0x"))

	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid data %q: %w", s, err)
	}
	if len(data) < lin.MinDataLen || len(data) > lin.MaxDataLen {
		return nil, fmt.Errorf("data must be %d to %d bytes, got %d", lin.MinDataLen, lin.MaxDataLen, len(data))
	}

	return data, nil
}

// parseLength parses a response length in [1, 8].
func parseLength(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < lin.MinDataLen || n > lin.MaxDataLen {
		return 0, fmt.Errorf("length must be %d to %d, got %q", lin.MinDataLen, lin.MaxDataLen, s)
	}

	return n, nil
}

// parseReadSlot parses "pid:len".
func parseReadSlot(s string) (byte, int, error) {
	idStr, lenStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("read slot %q must be pid:len", s)
	}

	id, err := parseByte(idStr)
	if err != nil {
		return 0, 0, err
	}
	n, err := parseLength(lenStr)
	if err != nil {
		return 0, 0, err
	}

	return id, n, nil
}

// parseSendSlot parses "pid:hexdata".
func parseSendSlot(s string) (byte, []byte, error) {
	idStr, dataStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, nil, fmt.Errorf("send slot %q must be pid:data", s)
	}

	id, err := parseByte(idStr)
	if err != nil {
		return 0, nil, err
	}
	data, err := parseData(dataStr)
	if err != nil {
		return 0, nil, err
	}

	return id, data, nil
}

// hexString renders data as "11 22 33".
func hexString(data []byte) string {
	var sb strings.Builder
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}

	return sb.String()
}
