package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/hupe1980/logpool/blobstore"
	"github.com/hupe1980/logpool/compress"
	"github.com/hupe1980/logpool/internal/fs"
	"github.com/hupe1980/logpool/resource"
)

const (
	defaultMaxWorkers = 4
	defaultQueueSize  = 64
)

// Config configures a Dispatcher.
type Config struct {
	// Prefix is prepended to the file's base name to form the remote key.
	Prefix string

	// Workers is the number of upload goroutines.
	// Default: GOMAXPROCS capped at 4.
	Workers int

	// QueueSize bounds the number of queued jobs. Submit blocks when full.
	// Default: 64
	QueueSize int

	// Compression is applied while streaming; the key gets its extension.
	Compression compress.Algorithm

	// KeepFailed leaves a file on disk when its upload fails so the next
	// recovery pass retries it. By default files are removed after every
	// upload attempt.
	KeepFailed bool

	// Controller bounds concurrent uploads and bandwidth. Shared with
	// synchronous submissions.
	Controller *resource.Controller

	// FS is the staging filesystem. Default: fs.Default.
	FS fs.FileSystem

	// OnResult is invoked once per finished job, from the goroutine that ran it.
	OnResult func(Result)

	Logger *slog.Logger
}

// Result describes one finished job.
type Result struct {
	Path     string
	Key      string
	Bytes    int64
	Duration time.Duration
	// Skipped is set for zero-byte files that were removed without upload.
	Skipped bool
	// Missing is set when the file was already gone, typically uploaded by
	// an earlier submission.
	Missing bool
	Err     error
}

// Dispatcher uploads staging files in the background.
type Dispatcher struct {
	store blobstore.Store
	cfg   Config

	queue chan string

	mu       sync.Mutex
	inFlight map[string]struct{}
	closed   bool

	pending sync.WaitGroup
	workers sync.WaitGroup

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New starts a Dispatcher uploading into store.
func New(store blobstore.Store, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = min(runtime.GOMAXPROCS(0), defaultMaxWorkers)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	cfg.FS = fs.Or(cfg.FS)

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		store:    store,
		cfg:      cfg,
		queue:    make(chan string, cfg.QueueSize),
		inFlight: make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}

	d.workers.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.run()
	}
	return d
}

// Key returns the remote key for a staging file path.
func (d *Dispatcher) Key(path string) string {
	return d.cfg.Prefix + filepath.Base(path) + d.cfg.Compression.Extension()
}

// Submit queues path for upload. It blocks while the queue is full.
// A path that is already queued or uploading is ignored.
func (d *Dispatcher) Submit(path string) error {
	if !d.claim(path) {
		return d.claimErr()
	}
	d.queue <- path
	return nil
}

// SubmitSync uploads path on the calling goroutine.
func (d *Dispatcher) SubmitSync(ctx context.Context, path string) error {
	if !d.claim(path) {
		return d.claimErr()
	}
	res := d.process(ctx, path)
	d.finish(res)
	return res.Err
}

// Pending returns the number of queued or running jobs.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inFlight)
}

// Wait blocks until every submitted job has finished.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// Close stops accepting jobs, drains the queue and stops the workers.
// It is safe to call more than once.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		// All senders have registered in pending before the flag flipped, so
		// the channel can be closed once they are done.
		d.pending.Wait()
		close(d.queue)
		d.workers.Wait()
		d.cancel()
	})
	return nil
}

func (d *Dispatcher) claim(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	if _, busy := d.inFlight[path]; busy {
		return false
	}
	d.inFlight[path] = struct{}{}
	d.pending.Add(1)
	return true
}

// claimErr distinguishes a closed dispatcher from a dropped duplicate.
func (d *Dispatcher) claimErr() error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if d.cfg.Logger != nil {
		d.cfg.Logger.Debug("upload already in progress, skipping duplicate")
	}
	return nil
}

func (d *Dispatcher) run() {
	defer d.workers.Done()
	for path := range d.queue {
		d.finish(d.process(d.ctx, path))
	}
}

func (d *Dispatcher) finish(res Result) {
	d.mu.Lock()
	delete(d.inFlight, res.Path)
	d.mu.Unlock()

	if d.cfg.OnResult != nil {
		d.cfg.OnResult(res)
	}
	d.pending.Done()
}

func (d *Dispatcher) process(ctx context.Context, path string) Result {
	start := time.Now()
	res := Result{Path: path, Key: d.Key(path)}

	info, err := d.cfg.FS.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			res.Missing = true
		} else {
			res.Err = err
		}
		res.Duration = time.Since(start)
		return res
	}

	if info.Size() == 0 {
		res.Skipped = true
		if err := d.cfg.FS.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			res.Err = err
		}
		res.Duration = time.Since(start)
		return res
	}
	res.Bytes = info.Size()

	if err := d.cfg.Controller.AcquireUpload(ctx); err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}
	err = d.put(ctx, path, res.Key, info.Size())
	d.cfg.Controller.ReleaseUpload()

	if err != nil {
		res.Err = fmt.Errorf("%w: %s: %w", ErrUpload, res.Key, err)
	}

	if err == nil || !d.cfg.KeepFailed {
		if rerr := d.cfg.FS.Remove(path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			if d.cfg.Logger != nil {
				d.cfg.Logger.Warn("failed to remove uploaded file", "path", path, "error", rerr)
			}
		}
	}

	res.Duration = time.Since(start)
	return res
}

func (d *Dispatcher) put(ctx context.Context, path, key string, size int64) error {
	f, err := d.cfg.FS.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	var body io.Reader = resource.NewRateLimitedReader(ctx, f, d.cfg.Controller)
	if d.cfg.Compression != compress.None {
		cr, err := compress.Reader(d.cfg.Compression, body)
		if err != nil {
			return err
		}
		defer cr.Close()
		body = cr
		size = blobstore.UnknownSize
	}

	return d.store.Put(ctx, key, body, size)
}
