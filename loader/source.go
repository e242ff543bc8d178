package loader

import (
	"context"
	"fmt"

	"github.com/hupe1980/frozen/blobstore"
	"github.com/hupe1980/frozen/codec"
	"github.com/hupe1980/frozen/internal/compress"
	"github.com/hupe1980/frozen/internal/hash"
	"github.com/hupe1980/frozen/record"
)

// Payload is the content of one read.
type Payload struct {
	Rows []record.Attributes
	// Checksum identifies the content; equal checksums mean nothing changed.
	Checksum uint32
}

// Source produces the rows of a table.
// Implementations must be safe for concurrent use.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string
	// Read loads every row.
	Read(ctx context.Context) (Payload, error)
}

// BlobSource reads a record file from a blob store.
type BlobSource struct {
	store blobstore.BlobStore
	name  string
	codec codec.Codec
}

// BlobOption configures a BlobSource.
type BlobOption func(*BlobSource)

// WithCodec overrides the codec picked from the file extension.
func WithCodec(c codec.Codec) BlobOption {
	return func(s *BlobSource) {
		s.codec = c
	}
}

// NewBlobSource creates a source for the blob called name.
func NewBlobSource(store blobstore.BlobStore, name string, opts ...BlobOption) *BlobSource {
	s := &BlobSource{store: store, name: name}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the blob name.
func (s *BlobSource) Name() string { return s.name }

// Read fetches, decompresses and decodes the blob. The checksum covers the
// stored bytes, so an unchanged file is detected before decoding.
func (s *BlobSource) Read(ctx context.Context) (Payload, error) {
	c := s.codec
	if c == nil {
		var err error
		if c, err = codec.ByExtension(s.name); err != nil {
			return Payload{}, err
		}
	}

	raw, err := blobstore.ReadAll(ctx, s.store, s.name)
	if err != nil {
		return Payload{}, fmt.Errorf("read %s: %w", s.name, err)
	}

	data, err := compress.Decompress(raw, compress.Detect(s.name))
	if err != nil {
		return Payload{}, fmt.Errorf("read %s: %w", s.name, err)
	}

	rows, err := Decode(c, data)
	if err != nil {
		return Payload{}, fmt.Errorf("decode %s: %w", s.name, err)
	}

	return Payload{Rows: rows, Checksum: hash.CRC32C(raw)}, nil
}

// Decode parses a document holding a list of mappings.
func Decode(c codec.Codec, data []byte) ([]record.Attributes, error) {
	var rows []record.Attributes
	if err := c.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), err)
	}
	return rows, nil
}

// StaticSource serves fixed rows. It is useful for tests and for tables
// built in code.
type StaticSource struct {
	name string
	rows []record.Attributes
	sum  uint32
}

// NewStaticSource creates a source that always returns rows.
func NewStaticSource(name string, rows []record.Attributes) *StaticSource {
	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = record.Map(row).Key()
	}
	return &StaticSource{name: name, rows: rows, sum: hash.Strings(keys...)}
}

// Name returns the source name.
func (s *StaticSource) Name() string { return s.name }

// Read returns the rows.
func (s *StaticSource) Read(ctx context.Context) (Payload, error) {
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}
	return Payload{Rows: s.rows, Checksum: s.sum}, nil
}
