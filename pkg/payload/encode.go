package payload

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/udplab/udd/pkg/uqtt"
)

// ErrInvalidHex reports input that is not an even-length run of hex
// digits after whitespace stripping.
var ErrInvalidHex = errors.New("invalid hex input")

// ProtocolCommandError reports a command line the protocol parser
// rejected, carrying the offending token for diagnostics.
type ProtocolCommandError struct {
	Token  string
	Reason string
}

func (e *ProtocolCommandError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid protocol command: %s", e.Reason)
	}
	return fmt.Sprintf("invalid protocol command %q: %s", e.Token, e.Reason)
}

// Encoder turns raw input strings into outbound wire buffers.
//
// NextID supplies the message ID stamped on protocol frames. A nil
// source encodes every frame with ID 0, which keeps Encode fully
// deterministic; interactive callers plug in a counter.
type Encoder struct {
	NextID func() uint16
}

// Encode produces the exact byte sequence to transmit for raw under
// the given mode. The returned buffer is freshly allocated and never
// retained by the encoder.
func (e *Encoder) Encode(raw string, mode Mode) ([]byte, error) {
	switch mode {
	case ModeHex:
		return ParseHex(raw)
	case ModeText:
		return Unescape(raw), nil
	case ModeProtocol:
		return e.encodeCommand(raw)
	case ModeAuto, "":
		// Most specific first: the protocol grammar has a fixed
		// keyword vocabulary, hex a restricted alphabet, and text
		// accepts anything.
		if buf, err := e.encodeCommand(raw); err == nil {
			return buf, nil
		}
		if buf, err := ParseHex(raw); err == nil {
			return buf, nil
		}
		return Unescape(raw), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

func (e *Encoder) encodeCommand(raw string) ([]byte, error) {
	pkt, err := ParseCommand(raw)
	if err != nil {
		return nil, err
	}
	var id uint16
	if e.NextID != nil {
		id = e.NextID()
	}
	buf, err := uqtt.NewFrame(id, pkt).Encode()
	if err != nil {
		return nil, &ProtocolCommandError{Token: firstToken(raw), Reason: err.Error()}
	}
	return buf, nil
}

// ParseHex decodes a hex digit string, ignoring any interior
// whitespace. The digit count must be even and at least one digit must
// be present.
func ParseHex(s string) ([]byte, error) {
	clean := strings.Join(strings.Fields(s), "")
	if clean == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidHex)
	}
	buf, err := hex.DecodeString(clean)
	if err != nil {
		if errors.Is(err, hex.ErrLength) {
			return nil, fmt.Errorf("%w: odd number of hex digits", ErrInvalidHex)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return buf, nil
}

// Unescape processes backslash escapes in s and returns the resulting
// bytes. Supported escapes: \n \r \t \0 \\ and \xNN. A malformed \xNN
// and any unrecognized escape pass through literally, so Unescape
// never fails.
func Unescape(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			out = append(out, c)
			continue
		}
		switch s[i+1] {
		case 'n':
			out = append(out, '\n')
			i++
		case 'r':
			out = append(out, '\r')
			i++
		case 't':
			out = append(out, '\t')
			i++
		case '0':
			out = append(out, 0)
			i++
		case '\\':
			out = append(out, '\\')
			i++
		case 'x', 'X':
			if i+4 <= len(s) {
				if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
					out = append(out, byte(v))
					i += 3
					continue
				}
			}
			// Malformed escape: keep the backslash, following
			// bytes are copied verbatim by the next iterations.
			out = append(out, '\\')
		default:
			out = append(out, '\\')
		}
	}
	return out
}

func firstToken(s string) string {
	tok, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	return tok
}
