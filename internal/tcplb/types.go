package tcplb

import (
	"net"
	"time"
)

// Path is the logical destination name attached to every connection from
// this Manager, used only for observability.
type Path string

// DstAddr is a single resolver-supplied destination: a peer address and a
// non-negative selection weight. A weight of 1.0 is neutral.
type DstAddr struct {
	PeerAddr net.Addr
	Weight   float32
}

// ResolveResult is one item off the resolver stream: either a transient
// error (the table is left unchanged) or the full current destination set
// (absence of a previously-seen address means "remove it").
type ResolveResult struct {
	Dsts []DstAddr
	Err  error
}

// DialResult is what a Connector's dial delivers: a connected socket, or a
// dial error. A Connector never sets Ctx; Endpoint.Dispatch fills it in with
// the DstCtx the forwarding pipe needs once a socket is actually handed to a
// Dispatchee.
type DialResult struct {
	Conn net.Conn
	Ctx  *DstCtx
	Err  error
}

// Dispatchee is a one-shot sink for a dial result. At most one value is ever
// sent on it; the owner may stop receiving at any time (buffered channels of
// size 1 make that send non-blocking from the Manager's side), which the
// Manager treats as cancellation and folds the connection back into the
// pool.
type Dispatchee chan DialResult

// Summary is the per-connection outcome reported by the forwarding pipe
// when a dispatched connection ends. The Manager only consumes it to
// decrement the owning Endpoint's load.
type Summary struct {
	Path     Path
	BytesIn  int64
	BytesOut int64
	Duration time.Duration
	Err      error
}

// DstCtx is handed to the forwarding pipe alongside a dispatched connection.
// The pipe must send exactly one Summary on SummaryCh when it ends.
type DstCtx struct {
	DstName   Path
	LocalAddr net.Addr
	PeerAddr  net.Addr
	SummaryCh chan<- Summary
}

// ConnectionPollSummary reports what one poll_connecting pass did, for
// tracing only.
type ConnectionPollSummary struct {
	Pending    int
	Connected  int
	Dispatched int
	Failed     int
}
