package utils

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"time"
)

// HashValue hashes any of the supported field types to a uint32 using
// FNV-1a. Nil and unsupported types are errors rather than hashing to a
// shared bucket.
func HashValue(value any) (uint32, error) {
	if value == nil {
		return 0, fmt.Errorf("cannot hash nil value")
	}

	h := fnv.New32a()
	var buf [8]byte

	switch v := value.(type) {
	case int:
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	case int16:
		binary.BigEndian.PutUint16(buf[:2], uint16(v))
		_, _ = h.Write(buf[:2])
	case int64:
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	case string:
		_, _ = h.Write([]byte(v))
	case bool:
		if v {
			buf[0] = 1
		}
		_, _ = h.Write(buf[:1])
	case time.Time:
		binary.BigEndian.PutUint64(buf[:], uint64(v.UnixNano()))
		_, _ = h.Write(buf[:])
	default:
		return 0, fmt.Errorf("unsupported type for hashing: %T", value)
	}

	return h.Sum32(), nil
}
