package main

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/udplab/udd/pkg/payload"
	"github.com/udplab/udd/pkg/transport"
)

// sendOnce encodes and transmits a single datagram, optionally waiting
// for one reply.
func sendOnce(sess *transport.Session, enc payload.Encoder, mode payload.Mode, rawInput string) error {
	if templateFlag {
		rendered, err := renderTemplate(rawInput, sess.RemoteAddr().String())
		if err != nil {
			return err
		}
		rawInput = rendered
	}

	buf, err := enc.Encode(rawInput, mode)
	if err != nil {
		return fmt.Errorf("%w (input: %q)", err, rawInput)
	}

	n, err := sess.Send(buf)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	fmt.Fprintf(outWriter, "Sent %d bytes to %v\n", n, sess.RemoteAddr())

	if waitFlag > 0 {
		reply, err := sess.RecvTimeout(waitFlag)
		if err != nil {
			fmt.Fprintf(errWriter, "No reply within %v\n", waitFlag)
			return nil
		}
		printInbound(reply)
	}
	return nil
}

func renderTemplate(rawInput, target string) (string, error) {
	tpl, err := template.New("udd").Funcs(sprig.TxtFuncMap()).Parse(rawInput)
	if err != nil {
		return "", fmt.Errorf("failed to parse go template: %w", err)
	}

	vars := map[string]interface{}{
		"target": target,
	}
	buf := bytes.NewBuffer(nil)
	if err := tpl.Execute(buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute go template: %w", err)
	}
	return buf.String(), nil
}
