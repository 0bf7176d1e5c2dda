package resource

import (
	"context"
	"io"
)

// RateLimitedReader wraps an io.Reader with the controller's bandwidth limit.
type RateLimitedReader struct {
	r   io.Reader
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedReader creates a new RateLimitedReader.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{
		r:   r,
		rc:  rc,
		ctx: ctx,
	}
}

func (r *RateLimitedReader) Read(p []byte) (int, error) {
	// Reads are capped at the burst so a single wait never exceeds it.
	if burst := r.rc.Burst(); burst > 0 && len(p) > burst {
		p = p[:burst]
	}
	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.rc.AcquireBandwidth(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
