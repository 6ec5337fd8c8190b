// Package uqtt implements the compact MQTT-like wire format spoken by
// the uqtt family of test tools. Every message is a single UDP datagram
// with a 4-byte header followed by a per-type payload; all integers are
// big-endian and strings carry a 16-bit length prefix.
package uqtt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Decode error kinds. Decode functions wrap these with detail, so use
// errors.Is to classify.
var (
	ErrShortBuffer       = errors.New("buffer too short")
	ErrInvalidType       = errors.New("invalid message type")
	ErrInvalidQoS        = errors.New("invalid QoS")
	ErrInvalidReturnCode = errors.New("invalid return code")
	ErrInvalidUTF8       = errors.New("invalid UTF-8 string")
	ErrPacketTooLarge    = errors.New("packet exceeds maximum size")
	ErrMalformedPacket   = errors.New("malformed packet")
)

type MessageType byte

const (
	TypeConnect    MessageType = 0x01
	TypeConnAck    MessageType = 0x02
	TypePublish    MessageType = 0x03
	TypePubAck     MessageType = 0x04
	TypeSubscribe  MessageType = 0x05
	TypeSubAck     MessageType = 0x06
	TypePingReq    MessageType = 0x07
	TypePingResp   MessageType = 0x08
	TypeDisconnect MessageType = 0x09
)

var typeNames = map[MessageType]string{
	TypeConnect:    "CONNECT",
	TypeConnAck:    "CONNACK",
	TypePublish:    "PUBLISH",
	TypePubAck:     "PUBACK",
	TypeSubscribe:  "SUBSCRIBE",
	TypeSubAck:     "SUBACK",
	TypePingReq:    "PINGREQ",
	TypePingResp:   "PINGRESP",
	TypeDisconnect: "DISCONNECT",
}

func (t MessageType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", byte(t))
}

// QoS is the delivery guarantee requested for a publish or subscription.
type QoS byte

const (
	AtMostOnce  QoS = 0
	AtLeastOnce QoS = 1
	ExactlyOnce QoS = 2
)

func (q QoS) String() string {
	return fmt.Sprintf("%d", byte(q))
}

func parseQoS(b byte) (QoS, error) {
	if b > 2 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQoS, b)
	}
	return QoS(b), nil
}

// ConnectReturnCode is the CONNACK result byte.
type ConnectReturnCode byte

const (
	Accepted             ConnectReturnCode = 0x00
	UnacceptableProtocol ConnectReturnCode = 0x01
	IdentifierRejected   ConnectReturnCode = 0x02
	ServerUnavailable    ConnectReturnCode = 0x03
	BadCredentials       ConnectReturnCode = 0x04
	NotAuthorized        ConnectReturnCode = 0x05
)

var connectReturnNames = map[ConnectReturnCode]string{
	Accepted:             "accepted",
	UnacceptableProtocol: "unacceptable-protocol",
	IdentifierRejected:   "identifier-rejected",
	ServerUnavailable:    "server-unavailable",
	BadCredentials:       "bad-credentials",
	NotAuthorized:        "not-authorized",
}

func (c ConnectReturnCode) String() string {
	if name, ok := connectReturnNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", byte(c))
}

// SubAckReturnCode is the per-filter result byte of a SUBACK.
type SubAckReturnCode byte

const (
	SubAckQoS0    SubAckReturnCode = 0x00
	SubAckQoS1    SubAckReturnCode = 0x01
	SubAckQoS2    SubAckReturnCode = 0x02
	SubAckFailure SubAckReturnCode = 0x80
)

func (c SubAckReturnCode) String() string {
	if c == SubAckFailure {
		return "failure"
	}
	return fmt.Sprintf("qos%d", byte(c))
}

func errShort(expected, actual int) error {
	return fmt.Errorf("%w: expected %d bytes, got %d", ErrShortBuffer, expected, actual)
}

func readUint16(buf []byte, off int) (uint16, error) {
	if len(buf) < off+2 {
		return 0, errShort(off+2, len(buf))
	}
	return binary.BigEndian.Uint16(buf[off : off+2]), nil
}

// readString reads a u16-BE length-prefixed UTF-8 string and returns it
// together with the offset of the first byte after it.
func readString(buf []byte, off int) (string, int, error) {
	n, err := readUint16(buf, off)
	if err != nil {
		return "", 0, err
	}
	end := off + 2 + int(n)
	if len(buf) < end {
		return "", 0, errShort(end, len(buf))
	}
	if !utf8.Valid(buf[off+2 : end]) {
		return "", 0, ErrInvalidUTF8
	}
	return string(buf[off+2 : end]), end, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}
