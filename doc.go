// Package logpool buffers a stream of log records in local staging files and
// ships finished files to a remote object pool.
//
// Records are appended to an active staging file in a temporary directory.
// The file is rotated when it reaches a size threshold or an age threshold,
// and rotated files are uploaded by a background worker pool. Files that
// survive a crash are picked up again from the temporary directory on the
// next start, giving at-least-once delivery for everything still on disk.
//
// # Quick Start
//
//	store, _ := s3.New(ctx, "logs", s3.WithRegion("eu-central-1"))
//
//	eng, err := logpool.Open(ctx, store,
//	    logpool.WithTemporaryDirectory("/var/spool/logpool"),
//	    logpool.WithPrefix("web/"),
//	    logpool.WithSizeFile(64<<20),
//	    logpool.WithTimeFile(5*time.Minute),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	_ = eng.Receive(ctx, "GET /index.html 200")
//
// # Staging files
//
// Staging files are named
//
//	ls.logpool.<host>.<YYYY-MM-DD>T<HH>.<MM>[.tag_<t1>.<t2>...].part<n>.txt
//
// and uploaded under prefix + base name. Empty files are discarded without an
// upload. After every upload attempt the local file is removed unless
// WithKeepFailedUploads is set and the attempt failed.
//
// # Backends
//
// Any blobstore.Store works. The repository ships S3 (AWS, Ceph RGW, R2),
// MinIO, a local directory pool and an in-memory store for tests.
package logpool
