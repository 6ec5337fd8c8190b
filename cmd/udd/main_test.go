package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udplab/udd/pkg/payload"
	"github.com/udplab/udd/pkg/transport"
)

// resetFlags clears the package-level flag state cobra keeps between
// Execute calls, so tests are order-independent.
func resetFlags() {
	cfgFile = ""
	targetOverride = ""
	verbose = false
	modeFlag = payload.ModeAuto
	bindFlag = ""
	tuiFlag = false
	waitFlag = 0
	templateFlag = false
	rawFlag = false
	decodeMsgPack = false
	addTargetBind = ""
	addTargetMode = ""

	// pflag keeps Changed across Execute calls; profile-mode logic
	// depends on it.
	if f := rootCmd.Flags().Lookup("mode"); f != nil {
		f.Changed = false
	}
}

func runCmd(t *testing.T, in io.Reader, args ...string) string {
	t.Helper()

	out, err := runCmdAllowFail(t, in, args...)
	if err != nil {
		t.Logf("Command failed: %v\nArgs: %v\nOutput: %s", err, args, out)
		t.FailNow()
	}
	return out
}

func runCmdAllowFail(t *testing.T, in io.Reader, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	b := bytes.NewBufferString("")

	rootCmd.SetArgs(args)
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetIn(in)

	err := rootCmd.ExecuteContext(ctx)
	bs, readErr := io.ReadAll(b)
	require.NoError(t, readErr)

	return string(bs), err
}

// startUDPServer runs a recording UDP server on an ephemeral localhost
// port. Every received datagram is pushed to the returned channel and,
// when reply is non-nil, answered with it.
func startUDPServer(t *testing.T, reply []byte) (addr string, recv chan []byte) {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { pc.Close() })

	recv = make(chan []byte, 16)
	go func() {
		buf := make([]byte, transport.MaxDatagramSize)
		for {
			n, from, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			recv <- append([]byte(nil), buf[:n]...)
			if reply != nil {
				_, _ = pc.WriteTo(reply, from)
			}
		}
	}()

	return pc.LocalAddr().String(), recv
}

func awaitDatagram(t *testing.T, recv chan []byte) []byte {
	t.Helper()
	select {
	case b := <-recv:
		return b
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for datagram")
		return nil
	}
}
