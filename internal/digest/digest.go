// Package digest computes cheap, non-cryptographic checksums used for
// pedantic cross-checks and test-fixture comparisons. It is not part of
// the on-disk MXF format; no digest value here is ever written to a
// file.
package digest

import "github.com/cespare/xxhash/v2"

// Sum64 returns the xxHash64 digest of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Frame returns a digest of a complete essence frame payload: the
// Sum64 of payload.
func Frame(payload []byte) uint64 {
	return Sum64(payload)
}
