package cli

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/hupe1980/frozen/blobstore"
	"github.com/hupe1980/frozen/blobstore/minio"
	"github.com/hupe1980/frozen/blobstore/s3"
	"github.com/hupe1980/frozen/codec"
	"github.com/hupe1980/frozen/loader"
)

// location is a parsed source argument.
type location struct {
	scheme string // "file", "s3", "minio" or "dynamodb"
	bucket string // bucket or DynamoDB table
	key    string // object key or local path
}

// parseLocation accepts a local path, s3://bucket/key, minio://bucket/key or
// dynamodb://table.
func parseLocation(s string) (location, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return location{scheme: "file", key: s}, nil
	}

	switch scheme {
	case "dynamodb":
		if rest == "" || strings.Contains(rest, "/") {
			return location{}, fmt.Errorf("invalid location %q: want dynamodb://table", s)
		}
		return location{scheme: scheme, bucket: rest}, nil
	case "s3", "minio":
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return location{}, fmt.Errorf("invalid location %q: want %s://bucket/key", s, scheme)
		}
		return location{scheme: scheme, bucket: bucket, key: key}, nil
	case "file":
		return location{scheme: scheme, key: rest}, nil
	default:
		return location{}, fmt.Errorf("invalid location %q: unknown scheme %q", s, scheme)
	}
}

// openSource resolves a location into a loader.Source.
func openSource(ctx context.Context, cfg Config, s string) (loader.Source, error) {
	loc, err := parseLocation(s)
	if err != nil {
		return nil, err
	}

	var blobOpts []loader.BlobOption
	if cfg.Codec != "" {
		c, ok := codec.ByName(cfg.Codec)
		if !ok {
			return nil, fmt.Errorf("unknown codec %q", cfg.Codec)
		}
		blobOpts = append(blobOpts, loader.WithCodec(c))
	}

	var awsOpts []func(*config.LoadOptions) error
	if cfg.AWSRegion != "" {
		awsOpts = append(awsOpts, config.WithRegion(cfg.AWSRegion))
	}

	switch loc.scheme {
	case "dynamodb":
		return loader.NewDynamoDBSourceFromConfig(ctx, loc.bucket,
			[]loader.DynamoDBOption{loader.WithKeyAttribute(cfg.KeyField)}, awsOpts...)
	case "s3":
		store, err := s3.New(ctx, loc.bucket, path.Dir(loc.key), awsOpts...)
		if err != nil {
			return nil, err
		}
		return loader.NewBlobSource(store, path.Base(loc.key), blobOpts...), nil
	case "minio":
		store, err := minio.New(minio.Options{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Region:    cfg.MinIO.Region,
			Secure:    cfg.MinIO.Secure,
		}, loc.bucket, path.Dir(loc.key))
		if err != nil {
			return nil, err
		}
		return loader.NewBlobSource(store, path.Base(loc.key), blobOpts...), nil
	default:
		store := blobstore.NewLocalStore(filepath.Dir(loc.key))
		return loader.NewBlobSource(store, filepath.Base(loc.key), blobOpts...), nil
	}
}
