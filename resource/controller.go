package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxUploads is the maximum number of concurrent uploads.
	// If 0, defaults to 1.
	MaxUploads int64

	// BandwidthBytesPerSec is the maximum upload throughput across all uploads.
	// If 0, unlimited.
	BandwidthBytesPerSec int64
}

// Controller manages upload concurrency and bandwidth.
type Controller struct {
	cfg Config

	slots    *semaphore.Weighted
	inFlight atomic.Int64

	limiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxUploads <= 0 {
		cfg.MaxUploads = 1
	}

	c := &Controller{
		cfg:   cfg,
		slots: semaphore.NewWeighted(cfg.MaxUploads),
	}

	if cfg.BandwidthBytesPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.BandwidthBytesPerSec), int(cfg.BandwidthBytesPerSec))
	}

	return c
}

// Config returns the effective limits.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireUpload reserves an upload slot.
// Blocks if all slots are busy until one frees up or ctx is canceled.
func (c *Controller) AcquireUpload(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	c.inFlight.Add(1)
	return nil
}

// TryAcquireUpload attempts to reserve an upload slot without blocking.
func (c *Controller) TryAcquireUpload() bool {
	if c == nil {
		return true
	}
	if !c.slots.TryAcquire(1) {
		return false
	}
	c.inFlight.Add(1)
	return true
}

// ReleaseUpload releases an upload slot.
func (c *Controller) ReleaseUpload() {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	c.slots.Release(1)
}

// InFlight returns the number of uploads currently holding a slot.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// AcquireBandwidth waits until the bandwidth limit allows n more bytes.
// n must not exceed Burst.
func (c *Controller) AcquireBandwidth(ctx context.Context, n int) error {
	if c == nil || c.limiter == nil || n <= 0 {
		return nil
	}
	return c.limiter.WaitN(ctx, n)
}

// Burst returns the largest n accepted by AcquireBandwidth, or 0 if
// bandwidth is unlimited.
func (c *Controller) Burst() int {
	if c == nil || c.limiter == nil {
		return 0
	}
	return c.limiter.Burst()
}
