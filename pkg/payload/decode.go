package payload

import (
	"fmt"
	"strings"

	"github.com/udplab/udd/pkg/uqtt"
)

// Describe renders a received wire buffer for display. It is total: a
// buffer that decodes as a uqtt frame yields a structured description,
// anything else falls back to a full hex dump with a text rendering
// alongside when every byte is printable.
func Describe(buf []byte) string {
	if len(buf) == 0 {
		return "<empty datagram>"
	}
	if frame, err := uqtt.DecodeFrame(buf); err == nil {
		return frame.String()
	}
	dump := hexDump(buf)
	if isPrintable(buf) {
		return fmt.Sprintf("%s  %q", dump, buf)
	}
	return dump
}

func hexDump(buf []byte) string {
	var b strings.Builder
	b.Grow(len(buf) * 3)
	for i, c := range buf {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02x", c)
	}
	return b.String()
}

// isPrintable reports whether every byte is printable ASCII or one of
// the common whitespace control bytes (\n, \t, \r).
func isPrintable(buf []byte) bool {
	for _, c := range buf {
		if c >= 0x20 && c <= 0x7e {
			continue
		}
		if c == '\n' || c == '\t' || c == '\r' {
			continue
		}
		return false
	}
	return true
}
