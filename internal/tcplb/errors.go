package tcplb

import "errors"

// ErrResolverLost is returned by Manager.Run when the resolver stream ends.
// It is the only error the driver loop propagates upward: every other
// failure (a transient resolver error, a single dial failure, a Dispatchee
// that gave up) is absorbed locally, because without the resolver the
// endpoint set would otherwise freeze indefinitely.
var ErrResolverLost = errors.New("tcplb: resolver stream ended")
