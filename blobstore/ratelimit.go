package blobstore

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// RateLimitedStore wraps a Store and throttles Put throughput. Snapshot
// uploads can be large; throttling keeps them from starving foreground
// traffic on a shared link.
type RateLimitedStore struct {
	Store
	limiter *rate.Limiter
}

// NewRateLimitedStore wraps store with an upload limit of bytesPerSecond.
func NewRateLimitedStore(store Store, bytesPerSecond int) *RateLimitedStore {
	return &RateLimitedStore{
		Store:   store,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond),
	}
}

// Put implements Store.
func (s *RateLimitedStore) Put(ctx context.Context, name string, r io.Reader) error {
	return s.Store.Put(ctx, name, &limitedReader{ctx: ctx, r: r, limiter: s.limiter})
}

// limitedReader charges the limiter for every chunk it hands out.
type limitedReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	if burst := lr.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}
	n, err := lr.r.Read(p)
	if n > 0 {
		if werr := lr.limiter.WaitN(lr.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
