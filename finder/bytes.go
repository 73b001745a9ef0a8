package finder

import (
	"encoding/binary"

	"modefind/internal/errors"
)

// FindModeLE evaluates a sequence passed as raw memory: buf holds size
// little-endian int32 values back to back, the layout a JavaScript
// Int32Array exposes through its underlying buffer.  Bytes past
// 4*size are ignored.
func FindModeLE(flag int32, buf []byte, size int32) (int32, error) {
	if size < 0 {
		return 0, errors.Invalid("decode", "size", size)
	}
	if int64(len(buf)) < 4*int64(size) {
		return 0, errors.Invalid("decode", "buf", len(buf))
	}

	var c Counts
	base := Base(flag)
	for i := int32(0); i < size; i++ {
		v := int32(binary.LittleEndian.Uint32(buf[wordOffset(i):]))
		if idx := v - base; idx >= 1 && idx <= Buckets {
			c[idx]++
		}
	}
	return defaultFinder.strategy().Resolve(base, c), nil
}

// wordOffset is the byte offset of the i-th int32, computed in int so
// it cannot wrap for sizes of 1<<29 and up.
func wordOffset(i int32) int { return int(i) * 4 }

// AppendLE appends seq to dst in the layout FindModeLE reads.
func AppendLE(dst []byte, seq []int32) []byte {
	for _, v := range seq {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
	}
	return dst
}
