package logpool

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hupe1980/logpool/codec"
	"github.com/hupe1980/logpool/compress"
	"github.com/hupe1980/logpool/internal/fs"
)

type options struct {
	pool             string
	temporaryDir     string
	prefix           string
	sizeFile         int64
	timeFile         time.Duration
	tags             []string
	restore          bool
	codec            codec.Codec
	uploadWorkers    int
	uploadQueueSize  int
	uploadRateLimit  int64
	compression      compress.Algorithm
	keepFailed       bool
	permissionCheck  bool
	hostname         string
	clock            func() time.Time
	metricsCollector MetricsCollector
	logger           *Logger
	fs               fs.FileSystem
}

// Option configures Open.
type Option func(*options)

// DefaultTemporaryDirectory is used when WithTemporaryDirectory is not given.
func DefaultTemporaryDirectory() string {
	return filepath.Join(os.TempDir(), "logpool")
}

const maxDefaultUploadWorkers = 4

func defaultUploadWorkers() int {
	return min(runtime.GOMAXPROCS(0), maxDefaultUploadWorkers)
}

func applyOptions(opts []Option) options {
	o := options{
		temporaryDir:     DefaultTemporaryDirectory(),
		restore:          true,
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.codec == nil {
		o.codec = codec.Default
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	o.fs = fs.Or(o.fs)
	if o.clock == nil {
		o.clock = func() time.Time { return time.Now().UTC() }
	}
	return o
}

// WithPool names the remote pool (bucket). It is informational: the store
// decides where objects go. The name is attached to log records.
func WithPool(name string) Option {
	return func(o *options) {
		o.pool = name
	}
}

// WithTemporaryDirectory sets the staging directory. It is created on Open
// if missing and must be writable.
//
// Default: $TMPDIR/logpool
func WithTemporaryDirectory(dir string) Option {
	return func(o *options) {
		o.temporaryDir = dir
	}
}

// WithPrefix sets the prefix prepended to every remote key. The characters
// ^ ` < > are rejected.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithSizeFile rotates the active file once it holds at least n bytes.
// 0 disables size-based rotation.
func WithSizeFile(n int64) Option {
	return func(o *options) {
		o.sizeFile = n
	}
}

// WithTimeFile rotates the active file once it is older than d.
// 0 disables time-based rotation.
func WithTimeFile(d time.Duration) Option {
	return func(o *options) {
		o.timeFile = d
	}
}

// WithTags adds a tag segment to staging file names.
func WithTags(tags ...string) Option {
	return func(o *options) {
		o.tags = append([]string(nil), tags...)
	}
}

// WithRestore controls whether Open re-uploads staging files left behind by
// a previous run.
//
// Default: true
func WithRestore(enabled bool) Option {
	return func(o *options) {
		o.restore = enabled
	}
}

// WithCodec sets the record encoder.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithUploadWorkers sets the number of concurrent uploads.
//
// Default: GOMAXPROCS capped at 4
func WithUploadWorkers(n int) Option {
	return func(o *options) {
		o.uploadWorkers = n
	}
}

// WithUploadQueueSize bounds the number of rotated files waiting for a worker.
// Rotation blocks while the queue is full.
//
// Default: 64
func WithUploadQueueSize(n int) Option {
	return func(o *options) {
		o.uploadQueueSize = n
	}
}

// WithUploadRateLimit caps total upload bandwidth in bytes per second.
// 0 means unlimited.
func WithUploadRateLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.uploadRateLimit = bytesPerSec
	}
}

// WithCompression compresses files while uploading. The algorithm's
// extension is appended to the remote key.
func WithCompression(a compress.Algorithm) Option {
	return func(o *options) {
		o.compression = a
	}
}

// WithKeepFailedUploads leaves a staging file on disk when its upload fails,
// so the next recovery pass retries it. By default the file is removed after
// every upload attempt.
func WithKeepFailedUploads(enabled bool) Option {
	return func(o *options) {
		o.keepFailed = enabled
	}
}

// WithPermissionCheck makes Open write and delete a probe object to verify
// the store accepts writes before any record is staged.
func WithPermissionCheck(enabled bool) Option {
	return func(o *options) {
		o.permissionCheck = enabled
	}
}

// WithHostname overrides the host segment of staging file names.
//
// Default: os.Hostname()
func WithHostname(host string) Option {
	return func(o *options) {
		o.hostname = host
	}
}

// WithClock overrides the time source used for file names and file age.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &logpool.BasicMetricsCollector{}
//	eng, _ := logpool.Open(ctx, store, logpool.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Uploads: %d, Avg latency: %dns\n", stats.UploadCount, stats.UploadAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := logpool.NewJSONLogger(slog.LevelInfo)
//	eng, _ := logpool.Open(ctx, store, logpool.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// withFileSystem replaces the staging filesystem, e.g. with a fault injector.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}
