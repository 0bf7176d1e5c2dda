package logpool

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prometheus package provides a ready-made implementation.
type MetricsCollector interface {
	// RecordWrite is called after each record is appended to the active file.
	// bytes is the encoded size, err is nil if successful.
	RecordWrite(bytes int, err error)

	// RecordRotation is called after a staging file is closed and handed to
	// the uploader. reason is "size", "time", "manual" or "shutdown".
	RecordRotation(reason string, bytes int64, age time.Duration)

	// RecordUpload is called after each upload job. skipped is true for
	// empty files that were discarded without contacting the store.
	RecordUpload(bytes int64, duration time.Duration, skipped bool, err error)

	// RecordRecovery is called after each crash recovery pass.
	RecordRecovery(files int, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordWrite(int, error)                         {}
func (NoopMetricsCollector) RecordRotation(string, int64, time.Duration)    {}
func (NoopMetricsCollector) RecordUpload(int64, time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordRecovery(int, error)                      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	WriteCount       atomic.Int64
	WriteBytes       atomic.Int64
	WriteErrors      atomic.Int64
	RotationCount    atomic.Int64
	RotationBytes    atomic.Int64
	UploadCount      atomic.Int64
	UploadBytes      atomic.Int64
	UploadErrors     atomic.Int64
	UploadSkipped    atomic.Int64
	UploadTotalNanos atomic.Int64
	RecoveryCount    atomic.Int64
	RecoveredFiles   atomic.Int64
	RecoveryErrors   atomic.Int64
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(bytes int, err error) {
	b.WriteCount.Add(1)
	if err != nil {
		b.WriteErrors.Add(1)
		return
	}
	b.WriteBytes.Add(int64(bytes))
}

// RecordRotation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRotation(_ string, bytes int64, _ time.Duration) {
	b.RotationCount.Add(1)
	b.RotationBytes.Add(bytes)
}

// RecordUpload implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpload(bytes int64, duration time.Duration, skipped bool, err error) {
	switch {
	case err != nil:
		b.UploadErrors.Add(1)
	case skipped:
		b.UploadSkipped.Add(1)
	default:
		b.UploadCount.Add(1)
		b.UploadBytes.Add(bytes)
		b.UploadTotalNanos.Add(duration.Nanoseconds())
	}
}

// RecordRecovery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRecovery(files int, err error) {
	b.RecoveryCount.Add(1)
	b.RecoveredFiles.Add(int64(files))
	if err != nil {
		b.RecoveryErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		WriteCount:     b.WriteCount.Load(),
		WriteBytes:     b.WriteBytes.Load(),
		WriteErrors:    b.WriteErrors.Load(),
		RotationCount:  b.RotationCount.Load(),
		RotationBytes:  b.RotationBytes.Load(),
		UploadCount:    b.UploadCount.Load(),
		UploadBytes:    b.UploadBytes.Load(),
		UploadErrors:   b.UploadErrors.Load(),
		UploadSkipped:  b.UploadSkipped.Load(),
		UploadAvgNanos: b.getAvgUploadNanos(),
		RecoveryCount:  b.RecoveryCount.Load(),
		RecoveredFiles: b.RecoveredFiles.Load(),
		RecoveryErrors: b.RecoveryErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgUploadNanos() int64 {
	count := b.UploadCount.Load()
	if count == 0 {
		return 0
	}
	return b.UploadTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	WriteCount     int64
	WriteBytes     int64
	WriteErrors    int64
	RotationCount  int64
	RotationBytes  int64
	UploadCount    int64
	UploadBytes    int64
	UploadErrors   int64
	UploadSkipped  int64
	UploadAvgNanos int64
	RecoveryCount  int64
	RecoveredFiles int64
	RecoveryErrors int64
}
