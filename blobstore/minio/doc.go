// Package minio provides a BlobStore backed by the MinIO client.
//
// It works against MinIO and other S3-compatible systems such as Ceph or
// Garage without pulling in the AWS SDK.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "warehouse", "tables/sales/")
//	scanner, err := scanfilter.NewScanner(store, seg)
//
// Blocklet reads are ranged GETs, so wrapping the store in a
// blobstore.CachingStore is recommended for repeated scans.
package minio
