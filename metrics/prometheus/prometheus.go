// Package prometheus exports logpool metrics through client_golang.
package prometheus

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/logpool"
)

const namespace = "logpool"

// Collector implements logpool.MetricsCollector.
type Collector struct {
	writes         prom.Counter
	writeBytes     prom.Counter
	writeErrors    prom.Counter
	rotations      *prom.CounterVec
	rotatedBytes   prom.Histogram
	uploads        *prom.CounterVec
	uploadBytes    prom.Counter
	uploadDuration prom.Histogram
	recoveredFiles prom.Counter
	recoveryErrors prom.Counter
}

var _ logpool.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers it with reg. A nil reg uses the
// default registerer.
func New(reg prom.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	c := &Collector{
		writes:      prom.NewCounter(prom.CounterOpts{Namespace: namespace, Name: "records_total", Help: "Records appended to staging files"}),
		writeBytes:  prom.NewCounter(prom.CounterOpts{Namespace: namespace, Name: "staged_bytes_total", Help: "Bytes appended to staging files"}),
		writeErrors: prom.NewCounter(prom.CounterOpts{Namespace: namespace, Name: "write_errors_total", Help: "Failed staging file writes"}),
		rotations: prom.NewCounterVec(prom.CounterOpts{Namespace: namespace, Name: "rotations_total", Help: "Staging file rotations by reason"},
			[]string{"reason"}),
		rotatedBytes: prom.NewHistogram(prom.HistogramOpts{Namespace: namespace, Name: "rotated_file_bytes", Help: "Size of rotated staging files",
			Buckets: prom.ExponentialBuckets(1024, 4, 10)}),
		uploads: prom.NewCounterVec(prom.CounterOpts{Namespace: namespace, Name: "uploads_total", Help: "Upload jobs by outcome"},
			[]string{"outcome"}),
		uploadBytes: prom.NewCounter(prom.CounterOpts{Namespace: namespace, Name: "uploaded_bytes_total", Help: "Bytes uploaded to the pool"}),
		uploadDuration: prom.NewHistogram(prom.HistogramOpts{Namespace: namespace, Name: "upload_duration_seconds", Help: "Upload latency",
			Buckets: prom.DefBuckets}),
		recoveredFiles: prom.NewCounter(prom.CounterOpts{Namespace: namespace, Name: "recovered_files_total", Help: "Staging files picked up by crash recovery"}),
		recoveryErrors: prom.NewCounter(prom.CounterOpts{Namespace: namespace, Name: "recovery_errors_total", Help: "Failed recovery passes"}),
	}

	for _, col := range []prom.Collector{
		c.writes, c.writeBytes, c.writeErrors,
		c.rotations, c.rotatedBytes,
		c.uploads, c.uploadBytes, c.uploadDuration,
		c.recoveredFiles, c.recoveryErrors,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordWrite implements logpool.MetricsCollector.
func (c *Collector) RecordWrite(bytes int, err error) {
	if err != nil {
		c.writeErrors.Inc()
		return
	}
	c.writes.Inc()
	c.writeBytes.Add(float64(bytes))
}

// RecordRotation implements logpool.MetricsCollector.
func (c *Collector) RecordRotation(reason string, bytes int64, _ time.Duration) {
	c.rotations.WithLabelValues(reason).Inc()
	c.rotatedBytes.Observe(float64(bytes))
}

// RecordUpload implements logpool.MetricsCollector.
func (c *Collector) RecordUpload(bytes int64, duration time.Duration, skipped bool, err error) {
	switch {
	case err != nil:
		c.uploads.WithLabelValues("error").Inc()
	case skipped:
		c.uploads.WithLabelValues("skipped").Inc()
	default:
		c.uploads.WithLabelValues("ok").Inc()
		c.uploadBytes.Add(float64(bytes))
		c.uploadDuration.Observe(duration.Seconds())
	}
}

// RecordRecovery implements logpool.MetricsCollector.
func (c *Collector) RecordRecovery(files int, err error) {
	c.recoveredFiles.Add(float64(files))
	if err != nil {
		c.recoveryErrors.Inc()
	}
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
