// Package transport provides the single-peer UDP session used by the
// udd command. A session is a connected UDP socket: sends go to one
// remote address and only datagrams from that address are delivered.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// MaxDatagramSize is the receive buffer size; UDP payloads cannot
// exceed it.
const MaxDatagramSize = 65535

const pollInterval = 250 * time.Millisecond

// Session is a connected UDP socket bound to a local address.
type Session struct {
	conn *net.UDPConn
}

// Dial binds the local address and connects to the target. An empty
// bind address defaults to an ephemeral port on all interfaces.
func Dial(bind, target string) (*Session, error) {
	if bind == "" {
		bind = "0.0.0.0:0"
	}
	laddr, err := net.ResolveUDPAddr("udp", bind)
	if err != nil {
		return nil, fmt.Errorf("resolve bind address %q: %w", bind, err)
	}
	raddr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("resolve target address %q: %w", target, err)
	}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial udp: %w", err)
	}
	return &Session{conn: conn}, nil
}

// Send transmits one datagram and returns the number of bytes written.
func (s *Session) Send(buf []byte) (int, error) {
	return s.conn.Write(buf)
}

// RecvTimeout reads a single datagram, waiting at most the given
// duration. The returned slice is freshly allocated.
func (s *Session) RecvTimeout(timeout time.Duration) ([]byte, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	buf := make([]byte, MaxDatagramSize)
	n, err := s.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Receive delivers inbound datagrams to fn until ctx is cancelled. It
// polls with short read deadlines so cancellation is observed promptly.
func (s *Session) Receive(ctx context.Context, fn func([]byte)) error {
	buf := make([]byte, MaxDatagramSize)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
			return err
		}
		n, err := s.conn.Read(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		fn(append([]byte(nil), buf[:n]...))
	}
}

func (s *Session) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *Session) Close() error {
	return s.conn.Close()
}
