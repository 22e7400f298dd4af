// Package s3 implements blobstore.BlobStore on Amazon S3.
//
// Chunk reads become ranged GetObject requests; blocklets are written with
// the S3 upload manager so large files go up as parallel multipart uploads.
package s3
