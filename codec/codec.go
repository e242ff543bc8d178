// Package codec decodes record files and encodes query results.
//
// A codec is picked by name (the --codec flag, WithCodec) or by file
// extension (ByExtension) when a table is opened from a blob.
package codec

import (
	"fmt"
	"path"
	"strings"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "yaml", "yml":
		return YAML{}, true
	default:
		return nil, false
	}
}

// ByExtension picks a codec from a file name, ignoring a trailing
// compression suffix: "countries.yml.zst" decodes as YAML.
func ByExtension(name string) (Codec, error) {
	base := strings.ToLower(name)
	for _, suffix := range []string{".zst", ".lz4"} {
		base = strings.TrimSuffix(base, suffix)
	}
	switch ext := path.Ext(base); ext {
	case ".json":
		return Default, nil
	case ".yaml", ".yml":
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("codec: no codec for extension %q of %q", ext, name)
	}
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
