// Package blobstore abstracts where record files live.
//
// A BlobStore opens, writes, deletes and lists named blobs. Tables read a
// whole blob with ReadAll and decode it; the store never interprets content.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on disk, read through mmap
//   - MemoryStore: in-process, for tests and embedded fixtures
//   - s3.Store: Amazon S3 (range reads, managed downloads and uploads)
//   - minio.Store: MinIO and other S3-compatible services
//
// Stores that can download a blob faster than Open plus ReadRange implement
// Fetcher; ReadAll prefers it.
package blobstore
