package png

import (
	"encoding/binary"

	"facade.dev/facade/internal/byteutil"
)

// Signature is the fixed 8-byte PNG file signature.
var Signature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// ChunkTag is the 4-byte ASCII identifier of a chunk, e.g. "IHDR".
type ChunkTag [4]byte

// NewChunkTag builds a ChunkTag from a string of exactly 4 bytes. It
// returns ErrInvalidChunkTag for any other length, per spec.md §7.
func NewChunkTag(tag string) (ChunkTag, error) {
	if len(tag) != 4 {
		return ChunkTag{}, ErrInvalidChunkTag
	}
	var t ChunkTag
	copy(t[:], tag)
	return t, nil
}

// mustChunkTag is NewChunkTag for the fixed, known-good 4-byte tags
// used as package-level constants below.
func mustChunkTag(tag string) ChunkTag {
	t, err := NewChunkTag(tag)
	if err != nil {
		panic(err)
	}
	return t
}

func (t ChunkTag) String() string { return string(t[:]) }

// isAncillary reports whether the tag's 5th bit (lowercase first letter)
// marks it as ancillary rather than critical, matching the PNG spec's
// chunk-naming convention.
func (t ChunkTag) isAncillary() bool { return t[0]&0x20 != 0 }

// Chunk is an owning tag plus payload, the unit the chunk framer parses
// and emits. The CRC is never stored; it is recomputed on emit and
// validated on parse.
type Chunk struct {
	Tag  ChunkTag
	Data []byte
}

// ParseChunk reads one chunk frame from buf starting at offset. It
// returns the chunk, the offset immediately after it, and an error.
// When validateCRC is true, a CRC mismatch fails with *BadCrc.
func ParseChunk(buf []byte, offset int, validateCRC bool) (Chunk, int, error) {
	if offset+8 > len(buf) {
		return Chunk{}, offset, ErrTruncated
	}

	length := binary.BigEndian.Uint32(buf[offset : offset+4])
	if length > 1<<31-1 {
		return Chunk{}, offset, ErrTruncated
	}

	end := offset + 8 + int(length) + 4
	if end > len(buf) {
		return Chunk{}, offset, ErrTruncated
	}

	var tag ChunkTag
	copy(tag[:], buf[offset+4:offset+8])

	data := buf[offset+8 : offset+8+int(length)]
	storedCRC := binary.BigEndian.Uint32(buf[offset+8+int(length) : end])

	if validateCRC {
		computed := byteutil.CRC32(buf[offset+4 : offset+8+int(length)])
		if computed != storedCRC {
			return Chunk{}, offset, &BadCrc{Given: storedCRC, Expected: computed}
		}
	}

	owned := make([]byte, len(data))
	copy(owned, data)

	return Chunk{Tag: tag, Data: owned}, end, nil
}

// EmitChunk serialises a chunk back into its wire frame, recomputing the
// CRC over tag||data.
func EmitChunk(c Chunk) []byte {
	out := make([]byte, 8+len(c.Data)+4)
	binary.BigEndian.PutUint32(out[0:4], uint32(len(c.Data)))
	copy(out[4:8], c.Tag[:])
	copy(out[8:8+len(c.Data)], c.Data)

	crc := byteutil.CRC32(out[4 : 8+len(c.Data)])
	binary.BigEndian.PutUint32(out[8+len(c.Data):], crc)

	return out
}
