package tcplb

import (
	"math"
	"net"
)

// Endpoint is the per-peer record: one upstream address, its last-known
// weight, an estimate of its current load, and the queues that track
// in-flight dials, warm sockets, waiting dispatchees, and completions.
//
// An Endpoint is owned exclusively by the Manager that created it; every
// field here is touched only from the Manager's single driver goroutine, so
// none of this needs its own lock.
type Endpoint struct {
	DstName  Path
	PeerAddr net.Addr
	Weight   float32
	Load     float64

	Connecting  []<-chan DialResult
	Connected   []net.Conn
	Dispatchees []Dispatchee
	Completing  []chan Summary
}

// NewEndpoint returns a freshly created Endpoint with an unmeasured load.
// An unmeasured endpoint carries +Inf so it is only ever chosen over another
// unmeasured endpoint, where the random tie-break distributes initial
// probes instead of hammering one unproven peer.
func NewEndpoint(dstName Path, peer net.Addr, weight float32) *Endpoint {
	return &Endpoint{
		DstName:  dstName,
		PeerAddr: peer,
		Weight:   weight,
		Load:     math.Inf(1),
	}
}

// Idle reports whether the endpoint has no in-flight dials, no queued
// dispatchees, and no dispatched connection still awaiting its Summary.
// Idle retired endpoints are destroyed on the next resolver update;
// connected sockets don't count against idleness, since they are unused
// pre-warmed sockets that are simply discarded on retirement-to-drop.
//
// Completing is checked alongside Connecting/Dispatchees so that a retired
// endpoint holding one dispatched-but-not-yet-released connection survives
// until its Summary fires, rather than being judged idle and destroyed out
// from under a connection still in flight.
func (e *Endpoint) Idle() bool {
	return len(e.Connecting) == 0 && len(e.Dispatchees) == 0 && len(e.Completing) == 0
}

// Dispatch attempts to hand a connection to d. If a warm socket is already
// sitting in Connected, it is popped and sent immediately; a send failure
// (d's owner is no longer interested) re-fronts the socket and drops d. If
// no warm socket is available, d is queued on Dispatchees and satisfied
// later by DrainDispatchees (pollConnecting's opportunistic drain); a later
// Dispatch call serves only its own dispatchee, not the queued ones.
func (e *Endpoint) Dispatch(d Dispatchee) {
	if len(e.Connected) == 0 {
		e.Dispatchees = append(e.Dispatchees, d)
		return
	}

	conn := e.Connected[0]
	e.Connected = e.Connected[1:]

	if !e.hand(d, conn) {
		e.Connected = append([]net.Conn{conn}, e.Connected...)
	}
}

// hand sends conn to d, creating the completion bookkeeping on success: a
// fresh Summary receiver is appended to Completing, its paired sender is
// attached to the DstCtx the forwarding pipe receives alongside the socket,
// and Load is incremented by one unit of work. Reports whether the send
// succeeded.
func (e *Endpoint) hand(d Dispatchee, conn net.Conn) bool {
	summaryCh := make(chan Summary, 1)
	ctx := &DstCtx{
		DstName:   e.DstName,
		LocalAddr: conn.LocalAddr(),
		PeerAddr:  e.PeerAddr,
		SummaryCh: summaryCh,
	}

	select {
	case d <- DialResult{Conn: conn, Ctx: ctx}:
		e.Completing = append(e.Completing, summaryCh)
		e.Load++
		return true
	default:
		return false
	}
}

// DrainDispatchees pairs any queued Dispatchees with any warm Connected
// sockets, FIFO on both sides, stopping when either runs out. Used by
// pollConnecting's opportunistic-drain step and may also be called right
// after a dial completes.
func (e *Endpoint) DrainDispatchees() {
	for len(e.Connected) > 0 && len(e.Dispatchees) > 0 {
		d := e.Dispatchees[0]
		conn := e.Connected[0]
		e.Connected = e.Connected[1:]
		e.Dispatchees = e.Dispatchees[1:]

		if !e.hand(d, conn) {
			e.Connected = append([]net.Conn{conn}, e.Connected...)
		}
	}
}

// Release decrements Load by one unit, called when a Summary fires for a
// connection this Endpoint previously dispatched.
func (e *Endpoint) Release() {
	e.Load--
}
