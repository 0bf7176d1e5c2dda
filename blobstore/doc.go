// Package blobstore defines the remote pool abstraction used to ship staging
// files.
//
// Store is the interface for writing objects into a pool (an S3 bucket, a Ceph
// RGW bucket, a MinIO bucket or a local directory). Implementations must be safe
// for concurrent use; the upload dispatcher calls Put from several workers.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on the local (or network) filesystem
//   - MemoryStore: in-memory pool for tests and verification
//   - s3.Store: Amazon S3 and S3-compatible gateways (Ceph RGW, R2)
//   - minio.Store: MinIO and other S3-compatible servers via minio-go
//
// # Custom Implementations
//
//	type Store interface {
//	    Put(ctx, key, body, size) error
//	    Exists(ctx, key) (bool, error)
//	    Delete(ctx, key) error
//	}
//
// Put receives UnknownSize when the body is produced on the fly, for example by
// the compress package.
package blobstore
