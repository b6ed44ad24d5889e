package tcplb

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// idleWake bounds how long the driver loop can go without calling
// pollConnecting when neither the resolver nor any dial has anything
// ready: an in-flight dial only wakes its own select, so a ticker is what
// keeps top-up and the completing drain moving when everything else is
// quiet.
const idleWake = 10 * time.Millisecond

// Run drives the Manager until ctx is cancelled or the resolver stream
// ends, at which point it returns ErrResolverLost. Each cycle drains
// dispatch intake, applies one resolver update if one is ready, advances
// dials and tops up the pool, then drains any ready completions.
//
// Run supervises its own goroutine through an errgroup so that a future
// refinement adding further sub-tasks (e.g. a dedicated completing waker)
// has somewhere to hang a second goroutine that shares this Manager's
// cancellation.
func (m *Manager) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	resolved := m.resolver.Resolve(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(idleWake)
		defer ticker.Stop()

		for {
			m.dispatch()

			select {
			case res, ok := <-resolved:
				if !ok {
					m.log.Log(LogLevelError, "resolver stream ended")
					return ErrResolverLost
				}
				m.updateResolved(res)
			default:
			}

			m.pollConnecting(ctx)
			m.drainCompleting()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})

	return g.Wait()
}

// drainCompleting non-blockingly receives every ready Summary across every
// available endpoint's Completing queue and decrements that endpoint's
// Load by one per Summary, closing the loop opened by hand: load rises on
// dispatch and falls again once the matching Summary arrives.
func (m *Manager) drainCompleting() {
	m.available.Each(func(_ string, ep *Endpoint) {
		still := ep.Completing[:0]
		for _, ch := range ep.Completing {
			select {
			case summary := <-ch:
				ep.Release()
				m.log.Log(LogLevelDebug, "connection released", "addr", addrString(ep.PeerAddr), "err", summary.Err)
			default:
				still = append(still, ch)
			}
		}
		ep.Completing = still
	})

	// Retired endpoints still drain completions even though they no longer
	// take dispatches, so they can become idle and be destroyed on the
	// next resolver update.
	m.retired.Each(func(_ string, ep *Endpoint) {
		still := ep.Completing[:0]
		for _, ch := range ep.Completing {
			select {
			case summary := <-ch:
				ep.Release()
				m.log.Log(LogLevelDebug, "connection released", "addr", addrString(ep.PeerAddr), "err", summary.Err)
			default:
				still = append(still, ch)
			}
		}
		ep.Completing = still
	})
}
