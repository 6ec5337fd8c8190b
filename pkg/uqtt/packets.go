package uqtt

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Packet is the body of a single uqtt message. Implementations are
// plain value types; encoding appends to the caller's buffer and never
// performs I/O.
type Packet interface {
	Type() MessageType
	encodedLen() int
	appendTo(buf []byte) []byte
	fmt.Stringer
}

// Connect opens a session. An empty Username or nil Password means the
// corresponding field is absent on the wire.
type Connect struct {
	ClientID     string
	KeepAlive    uint16
	CleanSession bool
	Username     string
	Password     []byte
}

// NewConnect returns a Connect with the protocol defaults: keepalive 60
// seconds and clean session enabled.
func NewConnect(clientID string) *Connect {
	return &Connect{
		ClientID:     clientID,
		KeepAlive:    60,
		CleanSession: true,
	}
}

const (
	connectFlagClean    = 0x02
	connectFlagPassword = 0x40
	connectFlagUsername = 0x80
)

func (c *Connect) Type() MessageType { return TypeConnect }

func (c *Connect) flags() byte {
	var f byte
	if c.CleanSession {
		f |= connectFlagClean
	}
	if c.Username != "" {
		f |= connectFlagUsername
	}
	if c.Password != nil {
		f |= connectFlagPassword
	}
	return f
}

func (c *Connect) encodedLen() int {
	n := 1 + 2 + 2 + len(c.ClientID)
	if c.Username != "" {
		n += 2 + len(c.Username)
	}
	if c.Password != nil {
		n += 2 + len(c.Password)
	}
	return n
}

func (c *Connect) appendTo(buf []byte) []byte {
	buf = append(buf, c.flags())
	buf = binary.BigEndian.AppendUint16(buf, c.KeepAlive)
	buf = appendString(buf, c.ClientID)
	if c.Username != "" {
		buf = appendString(buf, c.Username)
	}
	if c.Password != nil {
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(c.Password)))
		buf = append(buf, c.Password...)
	}
	return buf
}

func decodeConnect(buf []byte) (*Connect, error) {
	if len(buf) < 3 {
		return nil, errShort(3, len(buf))
	}
	flags := buf[0]
	c := &Connect{CleanSession: flags&connectFlagClean != 0}

	ka, err := readUint16(buf, 1)
	if err != nil {
		return nil, err
	}
	c.KeepAlive = ka

	clientID, off, err := readString(buf, 3)
	if err != nil {
		return nil, err
	}
	c.ClientID = clientID

	if flags&connectFlagUsername != 0 {
		c.Username, off, err = readString(buf, off)
		if err != nil {
			return nil, err
		}
	}
	if flags&connectFlagPassword != 0 {
		n, err := readUint16(buf, off)
		if err != nil {
			return nil, err
		}
		end := off + 2 + int(n)
		if len(buf) < end {
			return nil, errShort(end, len(buf))
		}
		c.Password = append([]byte(nil), buf[off+2:end]...)
	}
	return c, nil
}

func (c *Connect) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CONNECT client=%s ka=%d", c.ClientID, c.KeepAlive)
	if c.Username != "" {
		fmt.Fprintf(&b, " user=%s", c.Username)
	}
	if !c.CleanSession {
		b.WriteString(" clean=false")
	}
	return b.String()
}

// ConnAck acknowledges a Connect.
type ConnAck struct {
	SessionPresent bool
	ReturnCode     ConnectReturnCode
}

func (c *ConnAck) Type() MessageType { return TypeConnAck }
func (c *ConnAck) encodedLen() int   { return 2 }

func (c *ConnAck) appendTo(buf []byte) []byte {
	var present byte
	if c.SessionPresent {
		present = 1
	}
	return append(buf, present, byte(c.ReturnCode))
}

func decodeConnAck(buf []byte) (*ConnAck, error) {
	if len(buf) < 2 {
		return nil, errShort(2, len(buf))
	}
	if buf[1] > byte(NotAuthorized) {
		return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidReturnCode, buf[1])
	}
	return &ConnAck{
		SessionPresent: buf[0] != 0,
		ReturnCode:     ConnectReturnCode(buf[1]),
	}, nil
}

func (c *ConnAck) String() string {
	return fmt.Sprintf("CONNACK %s session=%t", c.ReturnCode, c.SessionPresent)
}

// Publish delivers an application payload to a topic.
type Publish struct {
	Topic   string
	QoS     QoS
	Retain  bool
	Payload []byte
}

func (p *Publish) Type() MessageType { return TypePublish }
func (p *Publish) encodedLen() int   { return 1 + 2 + len(p.Topic) + len(p.Payload) }

func (p *Publish) flags() byte {
	f := byte(p.QoS) << 1
	if p.Retain {
		f |= 0x01
	}
	return f
}

func (p *Publish) appendTo(buf []byte) []byte {
	buf = append(buf, p.flags())
	buf = appendString(buf, p.Topic)
	return append(buf, p.Payload...)
}

func decodePublish(buf []byte) (*Publish, error) {
	if len(buf) == 0 {
		return nil, errShort(1, 0)
	}
	qos, err := parseQoS((buf[0] >> 1) & 0x03)
	if err != nil {
		return nil, err
	}
	topic, off, err := readString(buf, 1)
	if err != nil {
		return nil, err
	}
	return &Publish{
		Topic:   topic,
		QoS:     qos,
		Retain:  buf[0]&0x01 != 0,
		Payload: append([]byte(nil), buf[off:]...),
	}, nil
}

func (p *Publish) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PUBLISH %s qos=%s", p.Topic, p.QoS)
	if p.Retain {
		b.WriteString(" retain")
	}
	fmt.Fprintf(&b, " %q", p.Payload)
	return b.String()
}

// SubscribeFilter is one topic/QoS pair of a Subscribe.
type SubscribeFilter struct {
	Topic string
	QoS   QoS
}

// Subscribe registers interest in one or more topic filters.
type Subscribe struct {
	Filters []SubscribeFilter
}

func (s *Subscribe) Type() MessageType { return TypeSubscribe }

func (s *Subscribe) encodedLen() int {
	n := 1
	for _, f := range s.Filters {
		n += 2 + len(f.Topic) + 1
	}
	return n
}

func (s *Subscribe) appendTo(buf []byte) []byte {
	buf = append(buf, byte(len(s.Filters)))
	for _, f := range s.Filters {
		buf = appendString(buf, f.Topic)
		buf = append(buf, byte(f.QoS))
	}
	return buf
}

func decodeSubscribe(buf []byte) (*Subscribe, error) {
	if len(buf) == 0 {
		return nil, errShort(1, 0)
	}
	count := int(buf[0])
	s := &Subscribe{Filters: make([]SubscribeFilter, 0, count)}
	off := 1
	for i := 0; i < count; i++ {
		topic, next, err := readString(buf, off)
		if err != nil {
			return nil, err
		}
		if len(buf) <= next {
			return nil, errShort(next+1, len(buf))
		}
		qos, err := parseQoS(buf[next])
		if err != nil {
			return nil, err
		}
		s.Filters = append(s.Filters, SubscribeFilter{Topic: topic, QoS: qos})
		off = next + 1
	}
	return s, nil
}

func (s *Subscribe) String() string {
	topics := make([]string, len(s.Filters))
	for i, f := range s.Filters {
		topics[i] = f.Topic
	}
	return fmt.Sprintf("SUBSCRIBE [%s]", strings.Join(topics, ", "))
}

// SubAck acknowledges a Subscribe with one return code per filter.
type SubAck struct {
	ReturnCodes []SubAckReturnCode
}

func (s *SubAck) Type() MessageType { return TypeSubAck }
func (s *SubAck) encodedLen() int   { return 1 + len(s.ReturnCodes) }

func (s *SubAck) appendTo(buf []byte) []byte {
	buf = append(buf, byte(len(s.ReturnCodes)))
	for _, c := range s.ReturnCodes {
		buf = append(buf, byte(c))
	}
	return buf
}

func decodeSubAck(buf []byte) (*SubAck, error) {
	if len(buf) == 0 {
		return nil, errShort(1, 0)
	}
	count := int(buf[0])
	if len(buf) < 1+count {
		return nil, errShort(1+count, len(buf))
	}
	s := &SubAck{ReturnCodes: make([]SubAckReturnCode, 0, count)}
	for _, b := range buf[1 : 1+count] {
		switch SubAckReturnCode(b) {
		case SubAckQoS0, SubAckQoS1, SubAckQoS2, SubAckFailure:
			s.ReturnCodes = append(s.ReturnCodes, SubAckReturnCode(b))
		default:
			return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidReturnCode, b)
		}
	}
	return s, nil
}

func (s *SubAck) String() string {
	codes := make([]string, len(s.ReturnCodes))
	for i, c := range s.ReturnCodes {
		codes[i] = c.String()
	}
	return fmt.Sprintf("SUBACK [%s]", strings.Join(codes, ", "))
}

// PubAck, PingReq, PingResp and Disconnect carry no payload.
type (
	PubAck     struct{}
	PingReq    struct{}
	PingResp   struct{}
	Disconnect struct{}
)

func (*PubAck) Type() MessageType     { return TypePubAck }
func (*PingReq) Type() MessageType    { return TypePingReq }
func (*PingResp) Type() MessageType   { return TypePingResp }
func (*Disconnect) Type() MessageType { return TypeDisconnect }

func (*PubAck) encodedLen() int     { return 0 }
func (*PingReq) encodedLen() int    { return 0 }
func (*PingResp) encodedLen() int   { return 0 }
func (*Disconnect) encodedLen() int { return 0 }

func (*PubAck) appendTo(buf []byte) []byte     { return buf }
func (*PingReq) appendTo(buf []byte) []byte    { return buf }
func (*PingResp) appendTo(buf []byte) []byte   { return buf }
func (*Disconnect) appendTo(buf []byte) []byte { return buf }

func (*PubAck) String() string     { return "PUBACK" }
func (*PingReq) String() string    { return "PINGREQ" }
func (*PingResp) String() string   { return "PINGRESP" }
func (*Disconnect) String() string { return "DISCONNECT" }

func decodePacket(t MessageType, payload []byte) (Packet, error) {
	switch t {
	case TypeConnect:
		return decodeConnect(payload)
	case TypeConnAck:
		return decodeConnAck(payload)
	case TypePublish:
		return decodePublish(payload)
	case TypePubAck:
		return &PubAck{}, nil
	case TypeSubscribe:
		return decodeSubscribe(payload)
	case TypeSubAck:
		return decodeSubAck(payload)
	case TypePingReq:
		return &PingReq{}, nil
	case TypePingResp:
		return &PingResp{}, nil
	case TypeDisconnect:
		return &Disconnect{}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidType, byte(t))
	}
}
