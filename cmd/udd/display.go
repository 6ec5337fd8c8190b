package main

import (
	"encoding/json"
	"fmt"

	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/udplab/udd/pkg/payload"
	"github.com/udplab/udd/pkg/uqtt"
)

// printInbound renders one received datagram: the decoded description
// line, plus a prettified JSON body for publish payloads that carry
// JSON (or msgpack, with --decode-msgpack).
func printInbound(buf []byte) {
	fmt.Fprintf(outWriter, "recv %d bytes: %s\n", len(buf), payload.Describe(buf))
	if rawFlag {
		return
	}

	frame, err := uqtt.DecodeFrame(buf)
	if err != nil {
		return
	}
	pub, ok := frame.Packet.(*uqtt.Publish)
	if !ok {
		return
	}

	body := pub.Payload
	if decodeMsgPack {
		var obj interface{}
		if err := msgpack.Unmarshal(body, &obj); err != nil {
			fmt.Fprintf(errWriter, "could not decode msgpack data: %v\n", err)
		} else if j, err := json.Marshal(obj); err == nil {
			body = j
		}
	}

	if !isJSON(body) {
		return
	}
	formatted, err := prettyjson.Format(body)
	if err != nil {
		return
	}
	_, _ = colorableOut.Write(formatted)
	fmt.Fprintln(outWriter)
}

func isJSON(data []byte) bool {
	var i interface{}
	return json.Unmarshal(data, &i) == nil
}
