package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/udplab/udd/pkg/payload"
	"github.com/udplab/udd/pkg/transport"
)

// runInteractive drives the prompt-based session: lines are encoded
// under the current mode and sent, while a background receiver decodes
// and prints everything the peer sends back.
func runInteractive(ctx context.Context, sess *transport.Session, enc payload.Encoder, mode payload.Mode) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recvDone := make(chan error, 1)
	go func() {
		recvDone <- sess.Receive(ctx, printInbound)
	}()

	fmt.Fprintf(outWriter, "Interactive session with %v\n", sess.RemoteAddr())
	fmt.Fprintln(outWriter, "/mode [auto|hex|text|mqtt] switches input mode, /quit exits.")

	for {
		prompt := promptui.Prompt{
			Label: string(mode),
		}
		line, err := prompt.Run()
		if err != nil {
			// User cancelled (e.g. Ctrl-C). Not an error.
			cancel()
			return <-recvDone
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			cancel()
			return <-recvDone
		case line == "/mode":
			mode = mode.Next()
			fmt.Fprintf(outWriter, "mode: %s\n", mode)
		case strings.HasPrefix(line, "/mode "):
			if err := mode.Set(strings.TrimSpace(strings.TrimPrefix(line, "/mode "))); err != nil {
				fmt.Fprintf(errWriter, "%v\n", err)
			} else {
				fmt.Fprintf(outWriter, "mode: %s\n", mode)
			}
		default:
			buf, err := enc.Encode(line, mode)
			if err != nil {
				fmt.Fprintf(errWriter, "%v (input: %q)\n", err, line)
				continue
			}
			n, err := sess.Send(buf)
			if err != nil {
				fmt.Fprintf(errWriter, "Send failed: %v\n", err)
				continue
			}
			fmt.Fprintf(outWriter, "sent %d bytes: %s\n", n, payload.Describe(buf))
		}
	}
}
