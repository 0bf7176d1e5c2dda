// Package minio provides a blobstore.Store implementation using the MinIO client.
//
// MinIO's client speaks plain S3 and works against MinIO itself as well as
// Ceph RADOS Gateway, SeaweedFS and Garage without pulling in the AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("rgw.local:7480", &minio.Options{
//	    Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "logs")
//	eng, err := logpool.Open(ctx, store)
package minio
