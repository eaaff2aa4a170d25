package blobstore

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// RateLimitedReader wraps an io.Reader with byte-rate limiting. It is
// used to throttle remote bundle downloads so a one-shot query does not
// saturate shared egress.
type RateLimitedReader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

// NewRateLimitedReader creates a reader limited to bytesPerSec.
// A bytesPerSec <= 0 disables limiting.
func NewRateLimitedReader(ctx context.Context, r io.Reader, bytesPerSec int) *RateLimitedReader {
	var limiter *rate.Limiter
	if bytesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
	}
	return &RateLimitedReader{
		r:       r,
		limiter: limiter,
		ctx:     ctx,
	}
}

func (r *RateLimitedReader) Read(p []byte) (int, error) {
	if r.limiter == nil {
		return r.r.Read(p)
	}
	// Cap the request at the limiter burst so WaitN cannot fail on an
	// oversized buffer.
	if burst := r.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}
	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.limiter.WaitN(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
