package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Known answer for the Castagnoli polynomial.
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))

	h := NewCRC32C()
	_, _ = h.Write([]byte("1234"))
	_, _ = h.Write([]byte("56789"))
	assert.Equal(t, CRC32C([]byte("123456789")), h.Sum32())
}

func TestStrings(t *testing.T) {
	assert.NotEqual(t, Strings("ab", "c"), Strings("a", "bc"))
	assert.Equal(t, Strings("n:1", `s:"France"`), Strings("n:1", `s:"France"`))
	assert.Equal(t, CRC32C([]byte("a\x00")), Strings("a"))
}
