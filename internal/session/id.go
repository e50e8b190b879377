package session

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// IDs are ULIDs: 48-bit millisecond timestamp then 80 random bits, encoded
// as 26 Crockford base32 characters so they sort by creation time.

var (
	idMu    sync.Mutex
	lastMS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewID returns a new ULID.
func NewID() string {
	return newIDAt(time.Now())
}

func newIDAt(now time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()

	ms := uint64(now.UnixMilli())
	if ms == lastMS {
		lastSeq++
	} else {
		lastMS = ms
		lastSeq = 0
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], ms<<16)
	_, _ = rand.Read(b[6:])
	// The sequence keeps IDs from the same millisecond ordered and distinct.
	binary.BigEndian.PutUint16(b[6:8], lastSeq)
	return encodeULID(b)
}

func encodeULID(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])

	// 128 bits padded to 130, five bits per character from the right.
	var out [26]byte
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
