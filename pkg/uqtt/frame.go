package uqtt

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderLen is the fixed frame header size:
	// | Length (1) | Type (1) | MsgID (2 BE) |.
	HeaderLen = 4

	// MaxFrameLen is the largest encodable frame. The length byte
	// counts the header, so payloads are capped at MaxFrameLen-HeaderLen.
	MaxFrameLen = 255
)

// Frame is a uqtt packet together with its datagram header.
type Frame struct {
	MsgID  uint16
	Packet Packet
}

func NewFrame(msgID uint16, p Packet) *Frame {
	return &Frame{MsgID: msgID, Packet: p}
}

// Encode serializes the frame into a fresh buffer. It fails only when
// the packet does not fit the single-byte length field.
func (f *Frame) Encode() ([]byte, error) {
	total := HeaderLen + f.Packet.encodedLen()
	if total > MaxFrameLen {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrPacketTooLarge, total, MaxFrameLen)
	}
	buf := make([]byte, 0, total)
	buf = append(buf, byte(total), byte(f.Packet.Type()))
	buf = binary.BigEndian.AppendUint16(buf, f.MsgID)
	return f.Packet.appendTo(buf), nil
}

// DecodeFrame parses a datagram. Bytes beyond the declared length are
// ignored.
func DecodeFrame(buf []byte) (*Frame, error) {
	if len(buf) < HeaderLen {
		return nil, errShort(HeaderLen, len(buf))
	}
	length := int(buf[0])
	if length < HeaderLen {
		return nil, fmt.Errorf("%w: declared length %d below header size", ErrMalformedPacket, length)
	}
	if len(buf) < length {
		return nil, errShort(length, len(buf))
	}

	t := MessageType(buf[1])
	msgID := binary.BigEndian.Uint16(buf[2:4])

	pkt, err := decodePacket(t, buf[HeaderLen:length])
	if err != nil {
		return nil, err
	}
	return &Frame{MsgID: msgID, Packet: pkt}, nil
}

func (f *Frame) String() string {
	return fmt.Sprintf("#%d %s", f.MsgID, f.Packet)
}
