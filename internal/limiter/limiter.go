// Package limiter throttles peers that keep presenting invalid bearer tokens.
package limiter

import (
	"context"
	"crypto/sha256"
	"net"
	"time"
)

// Limiter tracks rejected authentication attempts per peer.
type Limiter interface {
	// Allow reports whether the peer may try again and, if not, for how long it is blocked.
	Allow(ctx context.Context, peer []byte) (bool, time.Duration, error)
	// Failure records a rejected attempt and reports whether the peer is now blocked.
	Failure(ctx context.Context, peer []byte) (bool, time.Duration, error)
}

// HashPeer returns a stable hash of the peer host so raw addresses are not stored.
// The port is ignored.
func HashPeer(addr string) []byte {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	sum := sha256.Sum256([]byte(host))
	return sum[:]
}
