// Package cache deduplicates identical (utterance, recent-context) pairs to
// avoid redundant paid completion calls. Keys are content hashes; the cache
// itself is an in-memory map persisted whole-file on every insert.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/aikodesk/aiko/internal/conversation"
)

// DefaultKeyExchanges is the number of recent exchanges that participate in
// key derivation when none is configured.
const DefaultKeyExchanges = 2

// Key is a deterministic fingerprint of an (utterance, recent-context) pair.
type Key [sha256.Size]byte

// String returns the hex form of the key.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// DeriveKey fingerprints the utterance together with the bounded context
// window. Only role and content of each turn participate — timestamps and
// cache provenance are excluded so hits are insensitive to timing. Every
// field is length-prefixed before hashing, so no two distinct inputs share
// a serialization. Deterministic across process restarts.
func DeriveKey(utterance string, contextTurns []conversation.Turn) Key {
	h := sha256.New()
	writeField(h, utterance)
	for _, turn := range contextTurns {
		writeField(h, string(turn.Role))
		writeField(h, turn.Content)
	}

	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// writeField writes a length-prefixed string into the hash.
func writeField(h hash.Hash, s string) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(s)))
	h.Write(length[:])
	h.Write([]byte(s))
}
