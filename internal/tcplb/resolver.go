package tcplb

import (
	"context"
	"net"
)

// Resolver is the service-discovery collaborator. It is specified only by
// the updates it emits: Resolve returns a channel carrying the full current
// destination set on every successful resolution; the channel's close is
// fatal, per spec.
type Resolver interface {
	Resolve(ctx context.Context) <-chan ResolveResult
}

// Connector is the TCP-connect collaborator. It is specified only by its
// dial operation: given a peer address, it returns a channel that will
// eventually carry one DialResult. The Connector owns its own timeouts and
// backoff; the Manager never retries a dial itself beyond the next top-up
// pass.
type Connector interface {
	Dial(ctx context.Context, peer net.Addr) <-chan DialResult
}
