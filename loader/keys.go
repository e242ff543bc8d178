package loader

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/hupe1980/frozen/record"
)

// KeyGenerator assigns a primary key to the row at position pos of the
// source called source. It is only called for rows without a key.
type KeyGenerator func(source string, pos int) record.Value

// SequentialKeys numbers rows from 1 in load order.
func SequentialKeys() KeyGenerator {
	return func(_ string, pos int) record.Value {
		return record.Int(int64(pos) + 1)
	}
}

// UUIDKeys derives name-based (version 5) UUIDs from the source name and
// row position, so a row keeps its key across reloads.
func UUIDKeys() KeyGenerator {
	return func(source string, pos int) record.Value {
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(source+"#"+strconv.Itoa(pos)))
		return record.String(id.String())
	}
}
