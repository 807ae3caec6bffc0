package mat

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/mr-tron/base58"
)

// Fingerprint returns a short base58-encoded FNV-1a hash of the
// matrix's shape and content. It exists purely so log lines from
// different stages can be correlated to the same in-flight image
// (SPEC_FULL.md §6); it is never used for equality or caching.
func (m Matrix) Fingerprint() string {
	h := fnv.New64a()
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:4], uint32(m.rows))
	binary.LittleEndian.PutUint32(dims[4:8], uint32(m.cols))
	h.Write(dims[:])
	buf := make([]byte, 4)
	for _, v := range m.data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		h.Write(buf)
	}
	return base58.Encode(h.Sum(nil))
}
