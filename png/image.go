package png

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

var iendTag = mustChunkTag("IEND")
var ihdrTag = mustChunkTag("IHDR")
var idatTag = mustChunkTag("IDAT")

// Image is a parsed PNG: an ordered chunk table keyed by tag, optional
// trailing-byte blob, and an optional decoded scanline sequence. Per
// spec.md §3, the chunk table preserves insertion order both within a
// tag's chunk list and across distinct tags.
type Image struct {
	order  []ChunkTag
	chunks map[ChunkTag][]Chunk

	trailingData    []byte
	hasTrailingData bool

	// Scanlines holds reconstructed (unfiltered) raw pixel rows once
	// the image has been Loaded; nil beforehand.
	Scanlines []Scanline
}

// NewImage returns an empty image with no chunks.
func NewImage() *Image {
	return &Image{chunks: make(map[ChunkTag][]Chunk)}
}

// Parse decodes a full PNG byte stream into chunks and trailing data. It
// does not decompress IDAT; call Load for that. Per spec.md §4.2.
func Parse(data []byte, validateCRC bool) (*Image, error) {
	if len(data) < 8 || !bytes.Equal(data[:8], Signature[:]) {
		return nil, ErrBadSignature
	}

	img := NewImage()
	offset := 8

	for {
		chunk, next, err := ParseChunk(data, offset, validateCRC)
		if err != nil {
			return nil, err
		}
		img.AddChunk(chunk)
		offset = next

		if chunk.Tag == iendTag {
			break
		}
	}

	if offset < len(data) {
		img.trailingData = append([]byte(nil), data[offset:]...)
		img.hasTrailingData = true
	}

	return img, nil
}

// AddChunk appends c to its tag's chunk list, recording the tag's first
// appearance in insertion order.
func (img *Image) AddChunk(c Chunk) {
	if _, ok := img.chunks[c.Tag]; !ok {
		img.order = append(img.order, c.Tag)
	}
	img.chunks[c.Tag] = append(img.chunks[c.Tag], c)
}

// HasChunk reports whether at least one chunk with the given tag exists.
func (img *Image) HasChunk(tag ChunkTag) bool {
	return len(img.chunks[tag]) > 0
}

// Chunks returns all chunks for tag, in insertion order.
func (img *Image) Chunks(tag ChunkTag) []Chunk {
	return img.chunks[tag]
}

// ReplaceChunks replaces tag's entire chunk list.
func (img *Image) ReplaceChunks(tag ChunkTag, chunks []Chunk) {
	if _, ok := img.chunks[tag]; !ok && len(chunks) > 0 {
		img.order = append(img.order, tag)
	}
	img.chunks[tag] = chunks
}

// TrailingData returns the bytes that followed IEND, if any.
func (img *Image) TrailingData() ([]byte, bool) {
	return img.trailingData, img.hasTrailingData
}

// SetTrailingData sets the bytes to be appended after IEND on Serialize.
func (img *Image) SetTrailingData(data []byte) {
	img.trailingData = data
	img.hasTrailingData = true
}

// ClearTrailingData removes any trailing data. Once cleared,
// TrailingData reports false and Serialize appends nothing after IEND.
func (img *Image) ClearTrailingData() {
	img.trailingData = nil
	img.hasTrailingData = false
}

// Header decodes the image's IHDR chunk. ErrNoHeaderChunk if absent.
func (img *Image) Header() (Header, error) {
	chunks := img.chunks[ihdrTag]
	if len(chunks) == 0 {
		return Header{}, ErrNoHeaderChunk
	}
	return ParseHeader(chunks[0].Data)
}

// SetHeader replaces the image's IHDR chunk.
func (img *Image) SetHeader(h Header) {
	img.ReplaceChunks(ihdrTag, []Chunk{{Tag: ihdrTag, Data: h.Bytes()}})
}

// Clone returns a deep copy of img, independent of the original's
// backing byte storage.
func (img *Image) Clone() *Image {
	clone := NewImage()
	clone.order = append([]ChunkTag(nil), img.order...)
	for tag, list := range img.chunks {
		copied := make([]Chunk, len(list))
		for i, c := range list {
			copied[i] = Chunk{Tag: c.Tag, Data: append([]byte(nil), c.Data...)}
		}
		clone.chunks[tag] = copied
	}
	if img.hasTrailingData {
		clone.trailingData = append([]byte(nil), img.trailingData...)
		clone.hasTrailingData = true
	}
	if img.Scanlines != nil {
		clone.Scanlines = make([]Scanline, len(img.Scanlines))
		for i, s := range img.Scanlines {
			clone.Scanlines[i] = Scanline{Kind: s.Kind, FilterType: s.FilterType, Raw: append([]byte(nil), s.Raw...)}
		}
	}
	return clone
}

// decompressIDAT concatenates every IDAT chunk in file order and
// inflates the result.
func decompressIDAT(img *Image) ([]byte, error) {
	idatChunks := img.chunks[idatTag]
	if len(idatChunks) == 0 {
		return nil, ErrNoImageDataChunks
	}

	var compressed bytes.Buffer
	for _, c := range idatChunks {
		compressed.Write(c.Data)
	}

	r, err := zlib.NewReader(&compressed)
	if err != nil {
		return nil, &ZlibError{Err: err}
	}
	defer r.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		return nil, &ZlibError{Err: err}
	}

	return out.Bytes(), nil
}

// Load decompresses the IDAT stream and reconstructs it into
// img.Scanlines, per spec.md §4.6's decompress step chained into
// §4.4's reconstruct step.
func (img *Image) Load() error {
	return img.LoadWithOptions(Options{})
}

// LoadWithOptions is Load with an explicit filter-distance option.
func (img *Image) LoadWithOptions(opt Options) error {
	h, err := img.Header()
	if err != nil {
		return err
	}
	kind, err := h.PixelKind()
	if err != nil {
		return err
	}

	raw, err := decompressIDAT(img)
	if err != nil {
		return err
	}

	stride, err := h.Stride()
	if err != nil {
		return err
	}
	rowSize := 1 + stride
	wantSize := int(h.Height) * rowSize
	if len(raw) != wantSize {
		return &InsufficientSize{Given: len(raw), Need: wantSize}
	}

	scanlines := make([]Scanline, h.Height)
	var prevRaw []byte
	for y := 0; y < int(h.Height); y++ {
		rowStart := y * rowSize
		filterType := raw[rowStart]
		encoded := Scanline{
			Kind:       kind,
			FilterType: filterType,
			Raw:        raw[rowStart+1 : rowStart+rowSize],
		}

		reconstructed, err := Reconstruct(encoded, prevRaw, opt)
		if err != nil {
			return err
		}
		scanlines[y] = reconstructed
		prevRaw = reconstructed.Raw
	}

	img.Scanlines = scanlines
	return nil
}

// Compress filters img.Scanlines and writes the result into fresh IDAT
// chunks no larger than budget bytes each, replacing any existing IDAT
// chunks. Per spec.md §4.6.
func (img *Image) Compress(level, budget int) error {
	return img.CompressWithOptions(level, budget, Options{})
}

// CompressWithOptions is Compress with an explicit filter-distance
// option, which must match the one Load used.
func (img *Image) CompressWithOptions(level, budget int, opt Options) error {
	if img.Scanlines == nil {
		return ErrNoImageData
	}
	if budget <= 0 {
		budget = 8192
	}

	if _, err := img.Header(); err != nil {
		return err
	}

	var plain bytes.Buffer
	var prevRaw []byte
	for _, s := range img.Scanlines {
		filtered, err := FilterAuto(s, prevRaw, opt)
		if err != nil {
			return err
		}
		plain.WriteByte(filtered.FilterType)
		plain.Write(filtered.Raw)
		prevRaw = s.Raw
	}

	var compressed bytes.Buffer
	w, err := zlib.NewWriterLevel(&compressed, level)
	if err != nil {
		return &ZlibError{Err: err}
	}
	if _, err := w.Write(plain.Bytes()); err != nil {
		return &ZlibError{Err: err}
	}
	if err := w.Close(); err != nil {
		return &ZlibError{Err: err}
	}

	data := compressed.Bytes()
	var idatChunks []Chunk
	for offset := 0; offset < len(data); offset += budget {
		end := offset + budget
		if end > len(data) {
			end = len(data)
		}
		idatChunks = append(idatChunks, Chunk{Tag: idatTag, Data: append([]byte(nil), data[offset:end]...)})
	}
	if len(idatChunks) == 0 {
		idatChunks = []Chunk{{Tag: idatTag, Data: []byte{}}}
	}

	img.ReplaceChunks(idatTag, idatChunks)
	return nil
}
