package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/udplab/udd/pkg/payload"
	"github.com/udplab/udd/pkg/transport"
)

// runREPL drives the plain line-oriented send loop: every line is a
// command naming the encoding explicitly. Errors are reported and the
// loop continues.
func runREPL(sess *transport.Session, enc payload.Encoder) error {
	fmt.Fprintf(outWriter, "UDP sender ready, target %v\n", sess.RemoteAddr())
	fmt.Fprintln(outWriter, "Commands:")
	fmt.Fprintln(outWriter, "  text <message>     Send text (backslash escapes supported)")
	fmt.Fprintln(outWriter, "  hex <bytes>        Send hex (e.g., hex deadbeef)")
	fmt.Fprintln(outWriter, "  mqtt <command>     Send a protocol command (e.g., mqtt connect id1)")
	fmt.Fprintln(outWriter, "  file <path>        Send file contents")
	fmt.Fprintln(outWriter, "  quit               Exit")
	fmt.Fprintln(outWriter)

	scanner := bufio.NewScanner(inReader)
	scanner.Buffer(make([]byte, 0, transport.MaxDatagramSize), transport.MaxDatagramSize)

	for {
		fmt.Fprint(outWriter, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmdWord, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmdWord {
		case "text":
			sendAndReport(sess, payload.Unescape(arg))
		case "hex":
			buf, err := payload.ParseHex(arg)
			if err != nil {
				fmt.Fprintf(errWriter, "Invalid hex: %v\n", err)
				continue
			}
			sendAndReport(sess, buf)
		case "mqtt":
			buf, err := enc.Encode(arg, payload.ModeProtocol)
			if err != nil {
				fmt.Fprintf(errWriter, "%v\n", err)
				continue
			}
			sendAndReport(sess, buf)
		case "file":
			data, err := os.ReadFile(arg)
			if err != nil {
				fmt.Fprintf(errWriter, "File error: %v\n", err)
				continue
			}
			sendAndReport(sess, data)
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(errWriter, "Unknown command: %s\n", cmdWord)
		}
	}
}

func sendAndReport(sess *transport.Session, buf []byte) {
	n, err := sess.Send(buf)
	if err != nil {
		fmt.Fprintf(errWriter, "Send failed: %v\n", err)
		return
	}
	fmt.Fprintf(outWriter, "Sent %d bytes\n", n)
}
