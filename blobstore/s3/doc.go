// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", "tables/")
//	if err != nil { ... }
//	table, err := frozen.Open(ctx, loader.NewBlobSource(store, "countries.yml"))
//
// Whole-object reads go through the managed downloader (parallel ranged
// GETs); writes through the managed uploader (multipart above 5 MiB).
package s3
