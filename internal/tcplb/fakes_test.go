package tcplb

import (
	"context"
	"errors"
	"net"
	"time"
)

var errDial = errors.New("fake dial failure")

// fakeAddr is a minimal net.Addr for tests that never actually dial.
type fakeAddr string

func (a fakeAddr) Network() string { return "tcp" }
func (a fakeAddr) String() string  { return string(a) }

// fakeConn is a net.Conn whose only observable behavior under test is
// Close() bookkeeping; reads and writes are never exercised by this
// package's tests, since the forwarding pipe is an out-of-scope
// collaborator.
type fakeConn struct {
	local  net.Addr
	closed bool
}

func newFakeConn(local string) *fakeConn { return &fakeConn{local: fakeAddr(local)} }

func (c *fakeConn) Read(b []byte) (int, error)  { return 0, nil }
func (c *fakeConn) Write(b []byte) (int, error) { return len(b), nil }
func (c *fakeConn) Close() error                { c.closed = true; return nil }
func (c *fakeConn) LocalAddr() net.Addr         { return c.local }
func (c *fakeConn) RemoteAddr() net.Addr        { return fakeAddr("remote") }

func (c *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

// fakeResolver streams a fixed, test-driven sequence of ResolveResults.
// end() closes the channel to simulate resolver loss.
type fakeResolver struct {
	ch chan ResolveResult
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{ch: make(chan ResolveResult, 8)}
}

func (r *fakeResolver) Resolve(ctx context.Context) <-chan ResolveResult { return r.ch }

func (r *fakeResolver) push(dsts ...DstAddr) { r.ch <- ResolveResult{Dsts: dsts} }
func (r *fakeResolver) pushErr(err error)    { r.ch <- ResolveResult{Err: err} }
func (r *fakeResolver) end()                 { close(r.ch) }

// queuedDial is one scripted outcome for the next dial to a given address.
type queuedDial struct {
	err     error
	pending bool // the waiter is never resolved
}

// fakeConnector hands back dial results queued per peer address by the
// test, or succeeds immediately with a fresh fakeConn if nothing was
// queued for that address. A queued outcome is deliberately NOT delivered
// synchronously from Dial: a real connector's dial is asynchronous, so the
// cycle that issues it almost always finds it still not-ready, and a later
// cycle's advanceEndpointDials is what actually observes the result. The
// test drives that pacing explicitly with resolve.
type fakeConnector struct {
	queued  map[string][]queuedDial
	waiting map[string][]chan DialResult
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{
		queued:  make(map[string][]queuedDial),
		waiting: make(map[string][]chan DialResult),
	}
}

// queueFail arranges for the next n dials to addr to eventually fail, one
// per resolve call.
func (c *fakeConnector) queueFail(addr string, n int) {
	for i := 0; i < n; i++ {
		c.queued[addr] = append(c.queued[addr], queuedDial{err: errDial})
	}
}

// queuePending arranges for the next dial to addr to stay pending forever
// (simulating a dial the test never lets resolve).
func (c *fakeConnector) queuePending(addr string) {
	c.queued[addr] = append(c.queued[addr], queuedDial{pending: true})
}

// resolve delivers the next scripted outcome for addr to the oldest dial
// still waiting on it.
func (c *fakeConnector) resolve(addr string) {
	q := c.queued[addr]
	if len(q) == 0 {
		return
	}
	next := q[0]
	c.queued[addr] = q[1:]
	if next.pending {
		return
	}

	w := c.waiting[addr]
	ch := w[0]
	c.waiting[addr] = w[1:]
	if next.err != nil {
		ch <- DialResult{Err: next.err}
		return
	}
	ch <- DialResult{Conn: newFakeConn(addr + "-local")}
}

func (c *fakeConnector) Dial(ctx context.Context, peer net.Addr) <-chan DialResult {
	out := make(chan DialResult, 1)
	key := peer.String()
	if len(c.queued[key]) > 0 {
		c.waiting[key] = append(c.waiting[key], out)
		return out
	}
	out <- DialResult{Conn: newFakeConn(key + "-local")}
	return out
}
