package payload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  []byte
		valid bool
	}{
		{"plain", "deadbeef", []byte{0xde, 0xad, 0xbe, 0xef}, true},
		{"uppercase", "DEADBEEF", []byte{0xde, 0xad, 0xbe, 0xef}, true},
		{"interior whitespace", "de ad\tbe ef", []byte{0xde, 0xad, 0xbe, 0xef}, true},
		{"single byte", "00", []byte{0x00}, true},
		{"odd digits", "abc", nil, false},
		{"non-hex char", "xyz1", nil, false},
		{"empty", "", nil, false},
		{"whitespace only", " \t ", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if !tt.valid {
				require.ErrorIs(t, err, ErrInvalidHex)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"newline", `\n`, []byte{0x0a}},
		{"tab", `\t`, []byte{0x09}},
		{"carriage return", `\r`, []byte{0x0d}},
		{"nul", `\0`, []byte{0x00}},
		{"backslash", `\\`, []byte{'\\'}},
		{"hex escape", `\x41\x00`, []byte{'A', 0x00}},
		{"uppercase hex escape", `\X41`, []byte{'A'}},
		{"mixed", `a\nb`, []byte{'a', '\n', 'b'}},
		{"unknown escape passes through", `\q`, []byte{'\\', 'q'}},
		{"malformed hex passes through", `\xg7`, []byte(`\xg7`)},
		{"truncated hex passes through", `\x4`, []byte(`\x4`)},
		{"trailing backslash", `a\`, []byte{'a', '\\'}},
		{"no escapes", "hello", []byte("hello")},
		{"utf8 preserved", "héllo", []byte("héllo")},
		{"empty", "", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Unescape(tt.in))
		})
	}
}

func TestEncodeModeHex(t *testing.T) {
	var enc Encoder

	buf, err := enc.Encode("deadbeef", ModeHex)
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, buf)

	_, err = enc.Encode("not hex", ModeHex)
	require.ErrorIs(t, err, ErrInvalidHex)
}

func TestEncodeModeText(t *testing.T) {
	var enc Encoder

	buf, err := enc.Encode(`\n`, ModeText)
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a}, buf)

	// Text encoding is total; even hex-looking and command-looking
	// input goes through verbatim.
	buf, err = enc.Encode("connect id1", ModeText)
	require.NoError(t, err)
	require.Equal(t, []byte("connect id1"), buf)
}

func TestEncodeModeProtocol(t *testing.T) {
	var enc Encoder

	buf, err := enc.Encode("connect id1 keepalive=30", ModeProtocol)
	require.NoError(t, err)
	// Frame header: length, then the CONNECT type byte.
	require.Equal(t, byte(0x01), buf[1])

	_, err = enc.Encode("bogus foo", ModeProtocol)
	var cmdErr *ProtocolCommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, "bogus", cmdErr.Token)
}

func TestEncodeAutoPrecedence(t *testing.T) {
	var enc Encoder

	protocol, err := enc.Encode("connect id1 keepalive=30", ModeProtocol)
	require.NoError(t, err)
	auto, err := enc.Encode("connect id1 keepalive=30", ModeAuto)
	require.NoError(t, err)
	require.Equal(t, protocol, auto)

	hexBuf, err := enc.Encode("deadbeef", ModeHex)
	require.NoError(t, err)
	auto, err = enc.Encode("deadbeef", ModeAuto)
	require.NoError(t, err)
	require.Equal(t, hexBuf, auto)

	text, err := enc.Encode("hello world", ModeText)
	require.NoError(t, err)
	auto, err = enc.Encode("hello world", ModeAuto)
	require.NoError(t, err)
	require.Equal(t, text, auto)
}

func TestEncodeAutoNeverFails(t *testing.T) {
	var enc Encoder

	for _, in := range []string{"", "connect id1 bogus=1", "abc", `\q\x`, "publish"} {
		_, err := enc.Encode(in, ModeAuto)
		require.NoError(t, err, "input %q", in)
	}
}

func TestEncodeMessageIDSource(t *testing.T) {
	var n uint16
	enc := Encoder{NextID: func() uint16 { n++; return n }}

	first, err := enc.Encode("ping", ModeProtocol)
	require.NoError(t, err)
	second, err := enc.Encode("ping", ModeProtocol)
	require.NoError(t, err)

	require.Equal(t, []byte{0x00, 0x01}, first[2:4])
	require.Equal(t, []byte{0x00, 0x02}, second[2:4])
}

func TestEncodeOversizedCommand(t *testing.T) {
	var enc Encoder

	// Payload pushes the frame past the single-byte length field.
	long := "publish topic " + strings.Repeat("a", 300)
	_, err := enc.Encode(long, ModeProtocol)
	var cmdErr *ProtocolCommandError
	require.ErrorAs(t, err, &cmdErr)
}
