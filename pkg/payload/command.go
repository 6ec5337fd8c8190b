package payload

import (
	"strconv"
	"strings"

	"github.com/udplab/udd/pkg/uqtt"
)

// ParseCommand parses a protocol command line into a uqtt packet.
// Keywords are case-insensitive; parameters follow each keyword's own
// grammar. The keyword set is closed: anything else is rejected with a
// ProtocolCommandError naming the offending token.
func ParseCommand(input string) (uqtt.Packet, error) {
	input = strings.TrimSpace(input)
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "connect":
		return parseConnect(rest)
	case "pub", "publish":
		return parsePublish(rest)
	case "sub", "subscribe":
		return parseSubscribe(rest)
	case "ping":
		return &uqtt.PingReq{}, nil
	case "pingresp", "pong":
		return &uqtt.PingResp{}, nil
	case "disconnect", "disc":
		return &uqtt.Disconnect{}, nil
	case "puback":
		return &uqtt.PubAck{}, nil
	case "connack":
		return parseConnAck(rest), nil
	case "suback":
		return parseSubAck(rest)
	default:
		return nil, &ProtocolCommandError{Token: cmd, Reason: "unknown command"}
	}
}

// connect [client_id] [keepalive=N|ka=N] [user=X] [pass=X] [clean=BOOL]
func parseConnect(rest string) (uqtt.Packet, error) {
	parts := strings.Fields(rest)

	clientID := "id1"
	if len(parts) > 0 {
		clientID = parts[0]
		parts = parts[1:]
	}
	conn := uqtt.NewConnect(clientID)

	for _, part := range parts {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch k {
		case "keepalive", "ka":
			ka, err := strconv.ParseUint(v, 10, 16)
			if err != nil {
				return nil, &ProtocolCommandError{Token: part, Reason: "invalid keepalive"}
			}
			conn.KeepAlive = uint16(ka)
		case "user":
			conn.Username = v
		case "pass":
			conn.Password = []byte(v)
		case "clean":
			conn.CleanSession = v == "true" || v == "1"
		default:
			return nil, &ProtocolCommandError{Token: part, Reason: "unknown option: " + k}
		}
	}
	return conn, nil
}

// publish <topic> <payload...> [qos=0|1|2] [retain]
//
// Unrecognized key=value tokens join the payload, so payloads may
// freely contain '=' characters.
func parsePublish(rest string) (uqtt.Packet, error) {
	topic, remainder, ok := strings.Cut(rest, " ")
	if !ok {
		return nil, &ProtocolCommandError{
			Token:  rest,
			Reason: "usage: publish <topic> <payload> [qos=0|1|2] [retain]",
		}
	}

	pub := &uqtt.Publish{Topic: topic}
	var payloadParts []string

	for _, part := range strings.Fields(remainder) {
		if k, v, isKV := strings.Cut(part, "="); isKV && k == "qos" {
			qos, err := parseQoSValue(v)
			if err != nil {
				return nil, err
			}
			pub.QoS = qos
		} else if part == "retain" {
			pub.Retain = true
		} else {
			payloadParts = append(payloadParts, part)
		}
	}

	pub.Payload = []byte(strings.Join(payloadParts, " "))
	return pub, nil
}

// subscribe <topic>[,<topic>...] [qos=0|1|2]
func parseSubscribe(rest string) (uqtt.Packet, error) {
	qos := uqtt.AtMostOnce
	var topics []string

	for _, part := range strings.Fields(rest) {
		if k, v, isKV := strings.Cut(part, "="); isKV {
			if k == "qos" {
				q, err := parseQoSValue(v)
				if err != nil {
					return nil, err
				}
				qos = q
			}
		} else {
			topics = append(topics, strings.Split(part, ",")...)
		}
	}

	if len(topics) == 0 {
		return nil, &ProtocolCommandError{Token: "subscribe", Reason: "requires at least one topic"}
	}

	filters := make([]uqtt.SubscribeFilter, len(topics))
	for i, t := range topics {
		filters[i] = uqtt.SubscribeFilter{Topic: t, QoS: qos}
	}
	return &uqtt.Subscribe{Filters: filters}, nil
}

// connack [accepted|rejected|unauthorized|unavailable] [session=BOOL]
func parseConnAck(rest string) uqtt.Packet {
	ack := &uqtt.ConnAck{ReturnCode: uqtt.Accepted}
	for _, part := range strings.Fields(rest) {
		switch {
		case part == "accepted":
			ack.ReturnCode = uqtt.Accepted
		case part == "rejected" || part == "unauthorized":
			ack.ReturnCode = uqtt.NotAuthorized
		case part == "unavailable":
			ack.ReturnCode = uqtt.ServerUnavailable
		case strings.HasPrefix(part, "session="):
			ack.SessionPresent = strings.HasSuffix(part, "true") || strings.HasSuffix(part, "1")
		}
	}
	return ack
}

// suback <0|1|2|fail|failure>...
func parseSubAck(rest string) (uqtt.Packet, error) {
	var codes []uqtt.SubAckReturnCode
	for _, part := range strings.Fields(rest) {
		switch part {
		case "0":
			codes = append(codes, uqtt.SubAckQoS0)
		case "1":
			codes = append(codes, uqtt.SubAckQoS1)
		case "2":
			codes = append(codes, uqtt.SubAckQoS2)
		case "fail", "failure":
			codes = append(codes, uqtt.SubAckFailure)
		default:
			return nil, &ProtocolCommandError{Token: part, Reason: "invalid suback code"}
		}
	}
	return &uqtt.SubAck{ReturnCodes: codes}, nil
}

func parseQoSValue(v string) (uqtt.QoS, error) {
	switch v {
	case "0":
		return uqtt.AtMostOnce, nil
	case "1":
		return uqtt.AtLeastOnce, nil
	case "2":
		return uqtt.ExactlyOnce, nil
	default:
		return 0, &ProtocolCommandError{Token: "qos=" + v, Reason: "qos must be 0, 1, or 2"}
	}
}
