package loader

import (
	"context"
	"fmt"

	"github.com/hupe1980/frozen/dataset"
	"github.com/hupe1980/frozen/record"
)

// Config controls how a payload becomes a dataset.
type Config struct {
	// KeyField is the primary-key attribute. Defaults to record.DefaultKeyField.
	KeyField string
	// KeyGenerator, when set, fills in missing keys.
	KeyGenerator KeyGenerator
	// Schema, when set, validates every row.
	Schema record.Schema
}

func (c Config) keyField() string {
	if c.KeyField == "" {
		return record.DefaultKeyField
	}
	return c.KeyField
}

// Load reads src and builds a dataset. It returns the checksum of the read.
func Load(ctx context.Context, src Source, cfg Config) (*dataset.Dataset, uint32, error) {
	p, err := src.Read(ctx)
	if err != nil {
		return nil, 0, err
	}
	ds, err := Build(src.Name(), p, cfg)
	if err != nil {
		return nil, 0, err
	}
	return ds, p.Checksum, nil
}

// Build turns a payload read from the named source into a dataset.
func Build(name string, p Payload, cfg Config) (*dataset.Dataset, error) {
	keyField := cfg.keyField()

	rows := p.Rows
	if cfg.KeyGenerator != nil {
		rows = make([]record.Attributes, len(p.Rows))
		for i, row := range p.Rows {
			if row.Value(keyField).IsNull() {
				row = row.With(keyField, cfg.KeyGenerator(name, i))
			}
			rows[i] = row
		}
	}

	for i, row := range rows {
		if err := cfg.Schema.Validate(row); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", name, i, err)
		}
	}

	ds, err := dataset.Build(rows, dataset.WithName(name), dataset.WithKeyField(keyField))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ds, nil
}
