package logpool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/logpool/blobstore"
	"github.com/hupe1980/logpool/internal/naming"
	"github.com/hupe1980/logpool/internal/recovery"
	"github.com/hupe1980/logpool/internal/rotation"
	"github.com/hupe1980/logpool/internal/tempfile"
	"github.com/hupe1980/logpool/internal/upload"
	"github.com/hupe1980/logpool/resource"
)

// State is the lifecycle state of an Engine.
type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateReceiving
	StateRotating
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateReceiving:
		return "receiving"
	case StateRotating:
		return "rotating"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Rotation reasons reported to metrics and logs.
const (
	reasonSize     = "size"
	reasonTime     = "time"
	reasonManual   = "manual"
	reasonShutdown = "shutdown"
)

const (
	// invalidPrefixChars are rejected in key prefixes.
	invalidPrefixChars = "^`<>"

	// minTimerInterval keeps the rotation timer from spinning.
	minTimerInterval = 10 * time.Millisecond

	// maxCreateAttempts bounds the search for a free staging file name.
	maxCreateAttempts = 1 << 16

	permissionProbePrefix = "logpool-permission-check-"
)

// Engine stages records in local files and uploads rotated files.
//
// All methods are safe for concurrent use.
type Engine struct {
	opts       options
	store      blobstore.Store
	namer      *naming.Namer
	policy     rotation.Policy
	controller *resource.Controller
	dispatcher *upload.Dispatcher
	logger     *Logger
	metrics    MetricsCollector

	// mu guards the active file, the sequence and the generation.
	mu         sync.Mutex
	active     *tempfile.File
	seq        int
	generation uint64

	state     atomic.Int32
	rotations atomic.Int64
	uploaded  atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64

	closeCh   chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Open validates the configuration, prepares the staging directory, runs
// crash recovery if enabled and opens the first staging file.
//
// Configuration problems are reported as *ConfigError (matching
// ErrConfiguration) before anything on disk is touched.
func Open(ctx context.Context, store blobstore.Store, opts ...Option) (*Engine, error) {
	o := applyOptions(opts)
	if err := validate(store, &o); err != nil {
		return nil, err
	}

	e := &Engine{
		opts:    o,
		store:   store,
		namer:   naming.New(o.temporaryDir, o.hostname, o.tags, o.clock),
		policy:  rotation.Policy{Size: o.sizeFile, Interval: o.timeFile},
		logger:  o.logger,
		metrics: o.metricsCollector,
		closeCh: make(chan struct{}),
	}
	if o.pool != "" {
		e.logger = e.logger.WithPool(o.pool)
	}

	if err := tempfile.EnsureDir(o.fs, e.namer.Dir()); err != nil {
		return nil, configError("temporary_directory", err.Error(), err)
	}

	if o.permissionCheck {
		if err := e.checkPermissions(ctx); err != nil {
			return nil, configError("pool", "write permission check failed", err)
		}
	}

	e.controller = resource.NewController(resource.Config{
		MaxUploads:           int64(o.uploadWorkers),
		BandwidthBytesPerSec: o.uploadRateLimit,
	})
	e.dispatcher = upload.New(store, upload.Config{
		Prefix:      o.prefix,
		Workers:     o.uploadWorkers,
		QueueSize:   o.uploadQueueSize,
		Compression: o.compression,
		KeepFailed:  o.keepFailed,
		Controller:  e.controller,
		FS:          o.fs,
		OnResult:    e.onUploadResult,
		Logger:      e.logger.Logger,
	})

	if o.restore {
		e.restoreAsync(ctx)
	}

	e.mu.Lock()
	err := e.openLocked()
	e.mu.Unlock()
	if err != nil {
		_ = e.dispatcher.Close()
		return nil, err
	}

	e.state.Store(int32(StateReady))

	if e.policy.TimeEnabled() {
		e.wg.Add(1)
		go e.runRotationTimer()
	}

	e.logger.InfoContext(ctx, "logpool engine ready",
		"dir", e.namer.Dir(),
		"prefix", o.prefix,
		"size_file", o.sizeFile,
		"time_file", o.timeFile,
		"multiple_files", e.policy.MultipleFiles(),
	)
	return e, nil
}

func validate(store blobstore.Store, o *options) error {
	if store == nil {
		return configError("store", "must not be nil", nil)
	}
	if i := strings.IndexAny(o.prefix, invalidPrefixChars); i >= 0 {
		return configError("prefix", fmt.Sprintf("contains invalid character %q", o.prefix[i]), nil)
	}
	if o.sizeFile < 0 {
		return configError("size_file", "must not be negative", nil)
	}
	if o.timeFile < 0 {
		return configError("time_file", "must not be negative", nil)
	}
	if o.uploadWorkers < 0 {
		return configError("upload_workers", "must not be negative", nil)
	}
	if o.uploadQueueSize < 0 {
		return configError("upload_queue_size", "must not be negative", nil)
	}
	if o.uploadRateLimit < 0 {
		return configError("upload_rate_limit", "must not be negative", nil)
	}
	if o.uploadWorkers == 0 {
		o.uploadWorkers = defaultUploadWorkers()
	}
	return nil
}

// Receive encodes record and appends it to the active staging file, rotating
// the file if a threshold is reached. It never performs network I/O.
func (e *Engine) Receive(ctx context.Context, record any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.closing() {
		return ErrClosed
	}

	data, err := e.opts.codec.Encode(record)
	if err != nil {
		return fmt.Errorf("encode record with %s codec: %w", e.opts.codec.Name(), err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return ErrClosed
	}
	e.setState(StateReceiving)

	n, err := e.active.Write(data)
	e.metrics.RecordWrite(n, err)
	if err != nil {
		return filesystemError("write", e.active.Path(), err)
	}

	if e.policy.ShouldRotate(e.active.Size(), e.active.Age(e.opts.clock())) {
		reason := reasonTime
		if e.policy.SizeEnabled() && e.active.Size() >= e.policy.Size {
			reason = reasonSize
		}
		return e.rotateLocked(ctx, reason, true)
	}
	return nil
}

// Rotate closes the active file, hands it to the uploader and opens a new
// one regardless of thresholds.
func (e *Engine) Rotate(ctx context.Context) error {
	if e.closing() {
		return ErrClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return ErrClosed
	}
	return e.rotateLocked(ctx, reasonManual, true)
}

// Restore uploads every staging file left in the temporary directory except
// the active one and waits for the uploads to finish. It returns the number
// of files processed; upload failures are joined into the error.
func (e *Engine) Restore(ctx context.Context) (int, error) {
	if e.closing() {
		return 0, ErrClosed
	}

	scanner := e.scanner()
	n, err := scanner.ResubmitSync(ctx, e.dispatcher.SubmitSync, int(e.controller.Config().MaxUploads))
	e.metrics.RecordRecovery(n, err)
	e.logger.LogRecovery(ctx, scanner.Dir, n, err)
	return n, err
}

// Close rotates the active file one last time, waits for every pending upload
// and releases resources. Further calls return the result of the first.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.setState(StateClosing)
		close(e.closeCh)
		e.wg.Wait()

		ctx := context.Background()

		e.mu.Lock()
		var errs []error
		if e.active != nil {
			errs = append(errs, e.rotateLocked(ctx, reasonShutdown, false))
		}
		e.mu.Unlock()

		errs = append(errs, e.dispatcher.Close())
		e.closeErr = errors.Join(errs...)

		e.setState(StateClosed)
		e.logger.InfoContext(ctx, "logpool engine closed",
			"rotations", e.rotations.Load(),
			"uploaded", e.uploaded.Load(),
			"failed", e.failed.Load(),
		)
	})
	return e.closeErr
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Stats is a point-in-time view of the engine.
type Stats struct {
	State          State
	ActivePath     string
	ActiveSize     int64
	ActiveAge      time.Duration
	Sequence       int
	Rotations      int64
	PendingUploads int
	Uploaded       int64
	FailedUploads  int64
	SkippedEmpty   int64
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		State:          e.State(),
		Rotations:      e.rotations.Load(),
		PendingUploads: e.dispatcher.Pending(),
		Uploaded:       e.uploaded.Load(),
		FailedUploads:  e.failed.Load(),
		SkippedEmpty:   e.skipped.Load(),
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s.Sequence = e.seq
	if e.active != nil {
		s.ActivePath = e.active.Path()
		s.ActiveSize = e.active.Size()
		s.ActiveAge = e.active.Age(e.opts.clock())
	}
	return s
}

// openLocked creates the next staging file. Names already present on disk
// belong to files awaiting upload or recovery, so they are skipped.
func (e *Engine) openLocked() error {
	for i := 0; i < maxCreateAttempts; i++ {
		path := e.namer.Path(e.seq)
		f, err := tempfile.Create(e.opts.fs, path, e.seq, e.opts.clock())
		if err == nil {
			e.active = f
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return filesystemError("create", path, err)
		}
		e.seq++
	}
	return filesystemError("create", e.namer.Dir(), errors.New("no free staging file name"))
}

// rotateLocked replaces the active file. The replacement is created before
// the old file is closed so a failure leaves the old file active and no
// record is lost. With reopen false the engine is left without an active file.
func (e *Engine) rotateLocked(ctx context.Context, reason string, reopen bool) error {
	old := e.active
	e.setState(StateRotating)

	if reopen {
		prevSeq := e.seq
		// Every rotation moves to a new part so remote keys never repeat
		// within the same minute.
		e.seq++
		if err := e.openLocked(); err != nil {
			e.seq = prevSeq
			e.active = old
			e.setState(StateReceiving)
			e.logger.LogRotation(ctx, old.Path(), reason, old.Size(), err)
			return err
		}
	} else {
		e.active = nil
	}
	e.generation++

	size := old.Size()
	age := old.Age(e.opts.clock())

	var closeErr error
	if err := old.Close(); err != nil {
		closeErr = filesystemError("close", old.Path(), err)
	}

	submitErr := e.dispatcher.Submit(old.Path())

	e.rotations.Add(1)
	e.metrics.RecordRotation(reason, size, age)
	e.logger.LogRotation(ctx, old.Path(), reason, size, closeErr)

	if reopen {
		e.setState(StateReceiving)
	}
	return errors.Join(closeErr, submitErr)
}

// runRotationTimer rotates the active file once it reaches time_file. The
// timer is re-armed from the active file's creation time, so a file never
// stays open much longer than time_file.
func (e *Engine) runRotationTimer() {
	defer e.wg.Done()

	delay, gen := e.nextCheck()
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-e.closeCh:
			return
		case <-timer.C:
			if err := e.rotateIfDue(gen); err != nil {
				e.logger.Error("periodic rotation failed", "error", err)
			}
			delay, gen = e.nextCheck()
			timer.Reset(delay)
		}
	}
}

func (e *Engine) nextCheck() (time.Duration, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return e.policy.Interval, e.generation
	}
	return e.policy.NextCheck(e.active.Age(e.opts.clock()), minTimerInterval), e.generation
}

// rotateIfDue rotates for age if no rotation happened since gen was observed.
func (e *Engine) rotateIfDue(gen uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil || e.generation != gen {
		return nil
	}
	if !e.policy.ShouldRotate(0, e.active.Age(e.opts.clock())) {
		return nil
	}
	return e.rotateLocked(context.Background(), reasonTime, true)
}

func (e *Engine) restoreAsync(ctx context.Context) {
	scanner := e.scanner()
	n, err := scanner.Resubmit(e.dispatcher.Submit)
	e.metrics.RecordRecovery(n, err)
	e.logger.LogRecovery(ctx, scanner.Dir, n, err)
}

func (e *Engine) scanner() *recovery.Scanner {
	return &recovery.Scanner{
		Dir:       e.namer.Dir(),
		Extension: naming.Extension,
		Exclude:   e.isActive,
		FS:        e.opts.fs,
	}
}

func (e *Engine) isActive(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil && e.active.Path() == path
}

func (e *Engine) onUploadResult(res upload.Result) {
	if res.Missing {
		e.logger.Debug("staging file already handled", "path", res.Path)
		return
	}
	switch {
	case res.Err != nil:
		e.failed.Add(1)
	case res.Skipped:
		e.skipped.Add(1)
	default:
		e.uploaded.Add(1)
	}
	e.metrics.RecordUpload(res.Bytes, res.Duration, res.Skipped, res.Err)
	e.logger.LogUpload(context.Background(), res.Key, res.Bytes, res.Duration, res.Skipped, res.Err)
}

// checkPermissions writes and removes a probe object under the prefix.
func (e *Engine) checkPermissions(ctx context.Context) error {
	key := e.opts.prefix + permissionProbePrefix + naming.Hostname() + "-" + e.opts.clock().Format("20060102T150405.000000000")
	body := "logpool permission check\n"
	if err := e.store.Put(ctx, key, strings.NewReader(body), int64(len(body))); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	if err := e.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (e *Engine) setState(s State) {
	for {
		cur := State(e.state.Load())
		if cur >= StateClosing && s < StateClosing {
			return
		}
		if e.state.CompareAndSwap(int32(cur), int32(s)) {
			return
		}
	}
}

func (e *Engine) closing() bool {
	return e.State() >= StateClosing
}
