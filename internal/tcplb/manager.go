package tcplb

import (
	"math/rand/v2"
	"net"

	"github.com/linkerd/tcplb/internal/tcplb/endpointset"
)

// Less compares two endpoints for power-of-two-choices selection; the
// smaller one wins. Left pluggable since whether selection should divide by
// weight rather than compare raw load is a policy choice the embedder may
// want to make differently; the default, ByLoad, compares raw load only.
type Less func(a, b *Endpoint) bool

// ByLoad is the default Less: compare raw Load, ignoring Weight. Weight is
// still recorded on the Endpoint for trace output.
func ByLoad(a, b *Endpoint) bool { return a.Load < b.Load }

// Config holds the Manager's tunables. Loading these from a file or flags
// is the embedding harness's job; the Manager only consumes the resolved
// values.
type Config struct {
	// MinConnections is the floor pollConnecting tops the pool up to:
	// len(Connecting)+len(Connected) across the available set is driven
	// toward at least this many whenever the available set is non-empty.
	MinConnections int

	// Less picks the winner between the two power-of-two-choices
	// candidates. Defaults to ByLoad if nil.
	Less Less
}

// Manager owns one logical destination's endpoint table, dispatch intake,
// resolver stream, and connector, and drives all of them from a single
// goroutine (Run). No field here is safe for access from any other
// goroutine.
type Manager struct {
	dstName   Path
	cfg       Config
	resolver  Resolver
	connector Connector
	intake    chan Dispatchee
	log       Logger

	available *endpointset.Set[*Endpoint]
	retired   *endpointset.Set[*Endpoint]
}

// NewManager constructs a Manager for dstName. intake is the
// single-consumer, multi-producer dispatch queue; producers may send to it
// from any goroutine.
func NewManager(dstName Path, cfg Config, resolver Resolver, connector Connector, intake chan Dispatchee, log Logger) *Manager {
	if cfg.Less == nil {
		cfg.Less = ByLoad
	}
	if log == nil {
		log = NopLogger{}
	}
	return &Manager{
		dstName:   dstName,
		cfg:       cfg,
		resolver:  resolver,
		connector: connector,
		intake:    intake,
		log:       log,
		available: endpointset.New[*Endpoint](),
		retired:   endpointset.New[*Endpoint](),
	}
}

// updateResolved applies one resolver result to the endpoint table. A
// transient error leaves the table untouched.
func (m *Manager) updateResolved(res ResolveResult) {
	if res.Err != nil {
		m.log.Log(LogLevelWarn, "transient resolver error", "err", res.Err)
		return
	}

	dsts := make(map[string]DstAddr, len(res.Dsts))
	for _, d := range res.Dsts {
		dsts[d.PeerAddr.String()] = d
	}

	// Retired sweep: salvage back to available, destroy if idle, else keep
	// retired.
	m.retired.Drain(func(key string, ep *Endpoint) {
		if dst, ok := dsts[key]; ok {
			ep.Weight = dst.Weight
			m.available.Put(key, ep)
			m.log.Log(LogLevelDebug, "endpoint salvaged", "addr", key)
			return
		}
		if ep.Idle() {
			closeConnected(ep)
			m.log.Log(LogLevelDebug, "endpoint destroyed", "addr", key)
			return
		}
		m.retired.Put(key, ep)
	})

	// Available sweep: keep if still named, destroy if idle and dropped,
	// else retire.
	m.available.Drain(func(key string, ep *Endpoint) {
		if _, ok := dsts[key]; ok {
			m.available.Put(key, ep)
			return
		}
		if ep.Idle() {
			closeConnected(ep)
			m.log.Log(LogLevelDebug, "endpoint destroyed", "addr", key)
			return
		}
		m.log.Log(LogLevelDebug, "endpoint retired", "addr", key)
		m.retired.Put(key, ep)
	})

	// Upsert: update weight on existing available entries, insert new ones
	// with an unmeasured load.
	for key, dst := range dsts {
		if ep, ok := m.available.Get(key); ok {
			ep.Weight = dst.Weight
			continue
		}
		m.log.Log(LogLevelDebug, "endpoint created", "addr", key)
		m.available.Put(key, NewEndpoint(m.dstName, dst.PeerAddr, dst.Weight))
	}
}

// closeConnected closes and discards every warm, undispatched socket on ep.
// Called only when ep itself is about to be destroyed: an endpoint merely
// moving from available to retired keeps its warm sockets, since it may yet
// be salvaged back.
func closeConnected(ep *Endpoint) {
	for _, c := range ep.Connected {
		c.Close()
	}
	ep.Connected = nil
}

// selectEndpoint returns a power-of-two-choices pick from the available
// set: n=0 -> none, n=1 -> the sole entry, n=2 -> both candidates, n>=3 ->
// two distinct uniform random indices. Ties resolve to the first-drawn
// candidate.
func (m *Manager) selectEndpoint() (*Endpoint, bool) {
	eps := m.available.Values()
	n := len(eps)
	switch {
	case n == 0:
		return nil, false
	case n == 1:
		return eps[0], true
	}

	var i0, i1 int
	if n == 2 {
		i0, i1 = 0, 1
	} else {
		i0 = rand.IntN(n)
		i1 = i0
		for i1 == i0 {
			i1 = rand.IntN(n)
		}
	}

	a, b := eps[i0], eps[i1]
	winner, loser := a, b
	if m.cfg.Less(b, a) {
		winner, loser = b, a
	}
	m.log.Log(LogLevelDebug, "selected endpoint",
		"chosen_addr", addrString(winner.PeerAddr), "chosen_weight", winner.Weight,
		"rejected_addr", addrString(loser.PeerAddr), "rejected_weight", loser.Weight)
	return winner, true
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}

// dispatch drains the intake queue greedily while the available set is
// non-empty. If the available set is empty it returns immediately without
// consuming anything off intake, leaving requests queued for the next wake:
// timing out stale requests is the dispatcher's concern, not the
// balancer's.
func (m *Manager) dispatch() {
	for {
		if m.available.Len() == 0 {
			return
		}

		select {
		case d, ok := <-m.intake:
			if !ok {
				return
			}
			ep, ok := m.selectEndpoint()
			if !ok {
				return
			}
			ep.Dispatch(d)
		default:
			return
		}
	}
}
