package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// On-disk cache format, version 1:
//
//	magic "AIKC" | version uint8 | count uint32 | count × (key [32]byte | len uint32 | response)
//
// All integers big-endian. The format is not cross-version portable: any
// mismatch makes the reader fail, and the caller treats failure as an
// empty cache.

var magic = [4]byte{'A', 'I', 'K', 'C'}

const (
	codecVersion = 1

	// maxResponseLen bounds a single decoded response (16 MB). A corrupt
	// length field must not cause a giant allocation.
	maxResponseLen = 16 * 1024 * 1024
)

// ErrCodec indicates the cache file is not in a format this build can read.
var ErrCodec = errors.New("cache: unrecognized cache format")

// encode serializes the entry map.
func encode(entries map[Key]string) []byte {
	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(codecVersion)

	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(len(entries)))
	buf.Write(count[:])

	for key, response := range entries {
		buf.Write(key[:])
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(response)))
		buf.Write(length[:])
		buf.WriteString(response)
	}
	return buf.Bytes()
}

// decode parses a serialized cache. Any structural problem — wrong magic,
// unknown version, truncation, trailing garbage — fails with ErrCodec.
func decode(data []byte) (map[Key]string, error) {
	r := bytes.NewReader(data)

	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: short header", ErrCodec)
	}
	if !bytes.Equal(header[:4], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrCodec)
	}
	if header[4] != codecVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCodec, header[4])
	}

	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: short entry count", ErrCodec)
	}
	count := binary.BigEndian.Uint32(countBuf[:])

	entries := make(map[Key]string, count)
	for i := uint32(0); i < count; i++ {
		var key Key
		if _, err := io.ReadFull(r, key[:]); err != nil {
			return nil, fmt.Errorf("%w: short key in entry %d", ErrCodec, i)
		}

		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return nil, fmt.Errorf("%w: short length in entry %d", ErrCodec, i)
		}
		length := binary.BigEndian.Uint32(lenBuf[:])
		if length > maxResponseLen {
			return nil, fmt.Errorf("%w: entry %d length %d exceeds limit", ErrCodec, i, length)
		}

		response := make([]byte, length)
		if _, err := io.ReadFull(r, response); err != nil {
			return nil, fmt.Errorf("%w: short response in entry %d", ErrCodec, i)
		}
		entries[key] = string(response)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCodec, r.Len())
	}
	return entries, nil
}
