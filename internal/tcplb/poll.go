package tcplb

import "context"

// pollConnecting runs one poll_connecting pass: advances in-flight dials,
// tops the available set up to MinConnections, then opportunistically
// pairs any leftover warm sockets with queued dispatchees. Returns counts
// for tracing only.
func (m *Manager) pollConnecting(ctx context.Context) ConnectionPollSummary {
	var sum ConnectionPollSummary

	m.advanceDials(&sum)
	m.topUp(ctx, &sum)

	m.available.Each(func(_ string, ep *Endpoint) {
		before := len(ep.Completing)
		ep.DrainDispatchees()
		// Each successful pairing in DrainDispatchees grows Completing by
		// one; count the delta here rather than threading a counter
		// through Endpoint, keeping Endpoint ignorant of tracing.
		sum.Dispatched += len(ep.Completing) - before
	})

	m.log.Log(LogLevelDebug, "poll_connecting",
		"pending", sum.Pending, "connected", sum.Connected,
		"dispatched", sum.Dispatched, "failed", sum.Failed)
	return sum
}

// advanceDials inspects every in-flight dial on every available endpoint:
// a ready success moves the socket into Connected, a ready failure is
// counted and dropped, and a not-ready dial stays in Connecting in its
// original relative order.
//
// Retired endpoints get the same treatment: a retired endpoint that still
// had an in-flight dial when it was retired would otherwise never see that
// dial resolve, never become idle, and never be destroyed, defeating
// graceful draining. Their results don't feed sum, which describes the
// available pool's state for top-up and tracing.
func (m *Manager) advanceDials(sum *ConnectionPollSummary) {
	m.available.Each(func(_ string, ep *Endpoint) {
		failed := m.advanceEndpointDials(ep)
		sum.Failed += failed
		sum.Pending += len(ep.Connecting)
		sum.Connected += len(ep.Connected)
	})
	m.retired.Each(func(_ string, ep *Endpoint) {
		m.advanceEndpointDials(ep)
	})
}

// advanceEndpointDials advances ep's Connecting queue in place and returns
// how many dials failed.
func (m *Manager) advanceEndpointDials(ep *Endpoint) (failed int) {
	still := ep.Connecting[:0]
	for _, dial := range ep.Connecting {
		select {
		case res := <-dial:
			if res.Err != nil {
				failed++
				m.log.Log(LogLevelDebug, "dial failed", "addr", addrString(ep.PeerAddr), "err", res.Err)
				continue
			}
			ep.Connected = append(ep.Connected, res.Conn)
		default:
			still = append(still, dial)
		}
	}
	ep.Connecting = still
	return failed
}

// topUp issues new dials, round-robin across the available set, one dial
// per endpoint per pass, until connected+pending across the whole available
// set reaches MinConnections or a full pass accepts no new dial.
func (m *Manager) topUp(ctx context.Context, sum *ConnectionPollSummary) {
	if m.available.Len() == 0 {
		return
	}

	eps := m.available.Values()
	for {
		if sum.Connected+sum.Pending >= m.cfg.MinConnections {
			return
		}

		accepted := 0
		for _, ep := range eps {
			if sum.Connected+sum.Pending >= m.cfg.MinConnections {
				break
			}
			if m.dialOne(ctx, ep, sum) {
				accepted++
			}
		}

		if accepted == 0 {
			return
		}
	}
}

// dialOne starts a single dial against ep.PeerAddr and polls it once
// immediately. A not-ready dial is parked in Connecting; a result available
// right away is resolved inline. Reports whether ep accepted the dial, i.e.
// it did not fail on that first poll.
func (m *Manager) dialOne(ctx context.Context, ep *Endpoint, sum *ConnectionPollSummary) bool {
	ch := m.connector.Dial(ctx, ep.PeerAddr)
	select {
	case res := <-ch:
		if res.Err != nil {
			sum.Failed++
			m.log.Log(LogLevelDebug, "dial failed", "addr", addrString(ep.PeerAddr), "err", res.Err)
			return false
		}
		ep.Connected = append(ep.Connected, res.Conn)
		sum.Connected++
	default:
		ep.Connecting = append(ep.Connecting, ch)
		sum.Pending++
	}
	return true
}
