// Package loader reads record files into datasets.
//
// A Source yields the raw rows of one table plus a checksum of what it read.
// BlobSource reads a JSON or YAML file (optionally .zst or .lz4 compressed)
// from any blobstore.BlobStore; DynamoDBSource scans a DynamoDB table.
//
//	src := loader.NewBlobSource(blobstore.NewLocalStore("data"), "countries.yml")
//	ds, sum, err := loader.Load(ctx, src, loader.Config{})
//
// Watch polls a source and reports new payloads when the checksum changes.
package loader
