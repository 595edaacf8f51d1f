package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Simple ULID generator that doesn't require external dependencies.
// ULIDs are 26-character Crockford Base32 encoded strings with a
// 48-bit millisecond timestamp prefix, so job IDs sort by creation
// time.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewID returns a fresh ULID. Safe for concurrent use; IDs created in
// the same millisecond are disambiguated by a sequence counter.
func NewID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	// Timestamp in first 6 bytes (big-endian 48-bit).
	binary.BigEndian.PutUint64(b[:8], ts<<16)
	// Random in remaining 10 bytes.
	rand.Read(b[6:])
	// Embed sequence in bytes 6-7 to ensure uniqueness within same ms.
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encodeBase32(b)
}

// encodeBase32 packs 128 bits into 26 Crockford Base32 characters,
// consuming 5 bits per character from the most significant end. The
// first character carries only 3 significant bits.
func encodeBase32(b [16]byte) string {
	var out [26]byte
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])

	// 128 bits = 25 full 5-bit groups + 3 leading bits.
	out[0] = crockford[hi>>61]
	bitPos := 61
	for i := 1; i < 26; i++ {
		bitPos -= 5
		var v uint64
		switch {
		case bitPos >= 0:
			v = (hi >> uint(bitPos)) & 31
		case bitPos >= -4:
			// Group straddles the hi/lo boundary.
			take := uint(-bitPos)
			v = ((hi << take) | (lo >> (64 - take))) & 31
		default:
			v = (lo >> uint(64+bitPos)) & 31
		}
		out[i] = crockford[v]
	}
	return string(out[:])
}
