package tcplb

import (
	"context"
	"errors"
	"net"
	"time"
)

// ErrNoDial reports that a dial failed at the network level (refused,
// unreachable, timed out), as opposed to failing some later handshake. Any
// net.Error is collapsed into this one sentinel rather than surfaced as its
// underlying dial error kind.
var ErrNoDial = errors.New("tcplb: unable to open connection")

// TCPConnector is the default Connector: a thin wrapper over net.Dialer that
// times a single dial, logs its outcome, and folds any net.Error into one
// sentinel. A TCPConnector's sockets carry no protocol handshake of their
// own; the caller owns everything written after Dial hands a raw net.Conn
// back.
type TCPConnector struct {
	dialer Dialer
	log    Logger
}

// Dialer is the subset of net.Dialer that TCPConnector needs, so tests can
// substitute a fake without opening real sockets.
type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewTCPConnector returns a TCPConnector using a net.Dialer with the given
// per-attempt timeout. A zero timeout means net.Dialer's own default.
func NewTCPConnector(timeout time.Duration, log Logger) *TCPConnector {
	if log == nil {
		log = NopLogger{}
	}
	return &TCPConnector{dialer: &net.Dialer{Timeout: timeout}, log: log}
}

// Dial starts a TCP connection to peer in its own goroutine and returns
// immediately with a channel that receives the one result. Every caller
// reaches this through poll.go's dialOne, which polls the returned channel
// non-blockingly right away; since the dial runs on its own goroutine with
// no synchronization against that first poll, even a dial that fails at
// once (a refused loopback connection, for instance) is usually still
// "pending" there and is observed by a later advanceDials pass.
func (c *TCPConnector) Dial(ctx context.Context, peer net.Addr) <-chan DialResult {
	out := make(chan DialResult, 1)
	go func() {
		start := time.Now()
		conn, err := c.dialer.DialContext(ctx, peer.Network(), peer.String())
		elapsed := time.Since(start)
		if err != nil {
			c.log.Log(LogLevelWarn, "unable to open connection", "addr", peer.String(), "elapsed", elapsed, "err", err)
			if _, ok := err.(net.Error); ok {
				out <- DialResult{Err: ErrNoDial}
				return
			}
			out <- DialResult{Err: err}
			return
		}
		c.log.Log(LogLevelDebug, "connection opened", "addr", peer.String(), "elapsed", elapsed)
		out <- DialResult{Conn: conn}
	}()
	return out
}
