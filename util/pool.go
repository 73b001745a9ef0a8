package util

import "sync"

// DefaultSeqCap is the initial capacity of pooled sequence buffers.
const DefaultSeqCap = 64

// maxPooledSeq keeps one huge query from pinning a huge buffer.
const maxPooledSeq = 64 * 1024

// SeqPool provides reusable int32 scratch slices for query parsing,
// reducing GC pressure on the per-line hot path of the server and the
// batch workers.
var SeqPool = sync.Pool{ //nolint:gochecknoglobals
	New: func() interface{} {
		buf := make([]int32, 0, DefaultSeqCap)
		return &buf
	},
}

// GetSeq retrieves an empty buffer from the pool.  Callers must return
// it with [PutSeq] when finished.
func GetSeq() *[]int32 {
	buf := SeqPool.Get().(*[]int32)
	*buf = (*buf)[:0]
	return buf
}

// PutSeq returns a buffer to the pool for reuse.
func PutSeq(buf *[]int32) {
	if buf == nil || cap(*buf) > maxPooledSeq {
		return
	}
	SeqPool.Put(buf)
}
