package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// fingerprintSampleLen is the number of leading and trailing bytes of
// each source sampled into the fingerprint.
const fingerprintSampleLen = 512

// Source is a single corpus document prior to chunking.
type Source struct {
	// ID is the corpus identifier, e.g. a file name without extension.
	ID string

	// Text is the full document text.
	Text string
}

// Fingerprint computes a checksum identifying a specific corpus state.
// It hashes, for every source in order: the source ID, the byte length,
// and a content sample (first and last 512 bytes). Edits that touch the
// ID, the length, or the sampled bytes change the fingerprint; a
// length-preserving edit confined to the unsampled interior of a long
// document does not. The sample keeps hashing cheap on large corpora
// at the cost of that blind spot.
//
// A cache entry is valid if and only if its stored fingerprint equals
// the fingerprint of the current corpus; any mismatch invalidates the
// entire cache.
func Fingerprint(sources []Source) string {
	h := sha256.New()
	var lenBuf [8]byte

	for _, src := range sources {
		h.Write([]byte(src.ID))
		h.Write([]byte{0})

		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(src.Text)))
		h.Write(lenBuf[:])

		text := src.Text
		if len(text) <= 2*fingerprintSampleLen {
			h.Write([]byte(text))
		} else {
			h.Write([]byte(text[:fingerprintSampleLen]))
			h.Write([]byte(text[len(text)-fingerprintSampleLen:]))
		}
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
