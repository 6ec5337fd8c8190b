package uqtt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundtripConnect(t *testing.T) {
	connect := &Connect{
		ClientID:     "test-client",
		KeepAlive:    120,
		CleanSession: true,
		Username:     "user",
		Password:     []byte("pass"),
	}

	encoded, err := NewFrame(1, connect).Encode()
	require.NoError(t, err)

	decoded, err := DecodeFrame(encoded)
	require.NoError(t, err)
	require.Equal(t, uint16(1), decoded.MsgID)
	require.Equal(t, connect, decoded.Packet)
}

func TestConnectWireLayout(t *testing.T) {
	frame := NewFrame(1, &Connect{ClientID: "id1", KeepAlive: 30, CleanSession: true})
	encoded, err := frame.Encode()
	require.NoError(t, err)

	want := []byte{
		0x0c,       // total length including header
		0x01,       // CONNECT
		0x00, 0x01, // msg id
		0x02,       // flags: clean session
		0x00, 0x1e, // keepalive 30
		0x00, 0x03, 'i', 'd', '1',
	}
	require.Equal(t, want, encoded)
}

func TestRoundtripPublish(t *testing.T) {
	publish := &Publish{
		Topic:   "sensor/temp",
		QoS:     AtLeastOnce,
		Retain:  true,
		Payload: []byte("25.5"),
	}

	encoded, err := NewFrame(42, publish).Encode()
	require.NoError(t, err)

	decoded, err := DecodeFrame(encoded)
	require.NoError(t, err)
	require.Equal(t, uint16(42), decoded.MsgID)
	require.Equal(t, publish, decoded.Packet)
}

func TestRoundtripSubscribe(t *testing.T) {
	subscribe := &Subscribe{Filters: []SubscribeFilter{
		{Topic: "home/+/temp", QoS: AtLeastOnce},
		{Topic: "office/#", QoS: AtMostOnce},
	}}

	encoded, err := NewFrame(100, subscribe).Encode()
	require.NoError(t, err)

	decoded, err := DecodeFrame(encoded)
	require.NoError(t, err)
	require.Equal(t, subscribe, decoded.Packet)
}

func TestRoundtripEmptyPackets(t *testing.T) {
	for _, pkt := range []Packet{&PubAck{}, &PingReq{}, &PingResp{}, &Disconnect{}} {
		encoded, err := NewFrame(7, pkt).Encode()
		require.NoError(t, err)
		require.Len(t, encoded, HeaderLen)

		decoded, err := DecodeFrame(encoded)
		require.NoError(t, err)
		require.Equal(t, pkt.Type(), decoded.Packet.Type())
	}
}

func TestRoundtripConnAckSubAck(t *testing.T) {
	connack := &ConnAck{SessionPresent: true, ReturnCode: NotAuthorized}
	encoded, err := NewFrame(2, connack).Encode()
	require.NoError(t, err)
	decoded, err := DecodeFrame(encoded)
	require.NoError(t, err)
	require.Equal(t, connack, decoded.Packet)

	suback := &SubAck{ReturnCodes: []SubAckReturnCode{SubAckQoS0, SubAckFailure}}
	encoded, err = NewFrame(3, suback).Encode()
	require.NoError(t, err)
	decoded, err = DecodeFrame(encoded)
	require.NoError(t, err)
	require.Equal(t, suback, decoded.Packet)
}

func TestDecodeInvalidMessageType(t *testing.T) {
	_, err := DecodeFrame([]byte{4, 0xFF, 0, 0})
	require.ErrorIs(t, err, ErrInvalidType)
}

func TestDecodeBufferTooShort(t *testing.T) {
	// Claims length 10 but only 4 bytes present.
	_, err := DecodeFrame([]byte{10, 0x01, 0, 0})
	require.ErrorIs(t, err, ErrShortBuffer)

	_, err = DecodeFrame([]byte{0x01, 0x02})
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestDecodeDeclaredLengthBelowHeader(t *testing.T) {
	_, err := DecodeFrame([]byte{2, 0x07, 0, 0})
	require.ErrorIs(t, err, ErrMalformedPacket)
}

func TestDecodeInvalidReturnCode(t *testing.T) {
	_, err := DecodeFrame([]byte{6, 0x02, 0, 0, 0, 0x09})
	require.ErrorIs(t, err, ErrInvalidReturnCode)
}

func TestDecodeInvalidUTF8Topic(t *testing.T) {
	frame := []byte{
		9, 0x03, 0, 0, // header
		0x00,                   // publish flags
		0x00, 0x02, 0xff, 0xfe, // broken topic
	}
	_, err := DecodeFrame(frame)
	require.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestEncodePacketTooLarge(t *testing.T) {
	big := &Publish{Topic: "t", Payload: make([]byte, 300)}
	_, err := NewFrame(1, big).Encode()
	require.ErrorIs(t, err, ErrPacketTooLarge)
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	encoded, err := NewFrame(5, &PingReq{}).Encode()
	require.NoError(t, err)
	encoded = append(encoded, 0xde, 0xad)

	decoded, err := DecodeFrame(encoded)
	require.NoError(t, err)
	require.IsType(t, &PingReq{}, decoded.Packet)
}
