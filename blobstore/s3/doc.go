// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "logs",
//	    s3.WithRegion("us-east-1"),
//	)
//
//	eng, err := logpool.Open(ctx, store, logpool.WithPrefix("app/"))
//
// Ceph RADOS Gateway, Cloudflare R2 and other S3-compatible endpoints work by
// setting an endpoint and, for most self-hosted gateways, path-style addressing:
//
//	store, err := s3.New(ctx, "logs",
//	    s3.WithEndpoint("http://rgw.local:7480"),
//	    s3.WithPathStyle(true),
//	    s3.WithCredentials(accessKey, secretKey),
//	)
//
// # Features
//
//   - Streaming multipart uploads for large staging files
//   - Unknown-length bodies (compressed uploads)
//   - Optional CRC32C integrity validation
package s3
