// Package ico implements the Windows icon container described in
// spec.md §4.10: an IconDir header followed by a flat array of
// IconDirEntry records, each pointing at a byte range elsewhere in the
// file that holds either a BMP or a PNG-signed image.
package ico

import (
	"encoding/binary"
	"fmt"

	"facade.dev/facade/png"
)

const (
	dirHeaderSize   = 6
	entryHeaderSize = 16
)

// EntryType distinguishes a PNG-payload entry from a legacy BMP one.
type EntryType int

const (
	EntryBMP EntryType = iota
	EntryPNG
)

// DirEntry mirrors the on-disk IconDirEntry record.
type DirEntry struct {
	Width      byte
	Height     byte
	ColorCount byte
	Reserved   byte
	Planes     uint16
	BitCount   uint16
	Bytes      uint32
	Offset     uint32
}

// Entry pairs a directory record with its image bytes, the Go analogue
// of the reference source's `Icon::Entry = std::pair<IconDirEntry,
// std::vector<uint8_t>>`.
type Entry struct {
	Header DirEntry
	Data   []byte
}

// Type reports whether e's payload is a PNG (by signature sniff) or a
// legacy BMP, per original_source/libfacade/src/ico.cpp's entry_type.
func (e Entry) Type() EntryType {
	if len(e.Data) >= 8 && bytesEqual(e.Data[:8], png.Signature[:]) {
		return EntryPNG
	}
	return EntryBMP
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// OutOfBounds reports an icon directory index or byte range beyond its
// container's extent.
type OutOfBounds struct {
	Given, Limit int
}

func (e *OutOfBounds) Error() string {
	return fmt.Sprintf("ico: index %d out of bounds (limit %d)", e.Given, e.Limit)
}

// InsufficientSize reports a buffer too small to hold an IconDir header.
type InsufficientSize struct {
	Given, Need int
}

func (e *InsufficientSize) Error() string {
	return fmt.Sprintf("ico: insufficient size: have %d, need %d", e.Given, e.Need)
}

// ErrInvalidIconHeader reports a reserved/type field that is not the
// fixed {0, 1} an ICO file requires.
type ErrInvalidIconHeader struct{}

func (e *ErrInvalidIconHeader) Error() string { return "ico: invalid icon header" }

// ErrNoIconData reports an attempt to serialise an icon with no entries.
type ErrNoIconData struct{}

func (e *ErrNoIconData) Error() string { return "ico: icon has no entries" }

// Icon is a parsed Windows icon file: an ordered list of bitmap
// entries. Per spec.md §4.10.
type Icon struct {
	entries []Entry
}

// New returns an empty icon with no entries.
func New() *Icon { return &Icon{} }

// Parse decodes a full ICO byte stream into its directory entries and
// image payloads.
func Parse(data []byte) (*Icon, error) {
	if len(data) < dirHeaderSize {
		return nil, &InsufficientSize{Given: len(data), Need: dirHeaderSize}
	}

	reserved := binary.LittleEndian.Uint16(data[0:2])
	fileType := binary.LittleEndian.Uint16(data[2:4])
	count := binary.LittleEndian.Uint16(data[4:6])
	if reserved != 0 || fileType != 1 {
		return nil, &ErrInvalidIconHeader{}
	}

	dirSize := dirHeaderSize + entryHeaderSize*int(count)
	if dirSize > len(data) {
		return nil, &OutOfBounds{Given: dirSize, Limit: len(data)}
	}

	entries := make([]Entry, count)
	for i := 0; i < int(count); i++ {
		base := dirHeaderSize + entryHeaderSize*i
		header := DirEntry{
			Width:      data[base],
			Height:     data[base+1],
			ColorCount: data[base+2],
			Reserved:   data[base+3],
			Planes:     binary.LittleEndian.Uint16(data[base+4 : base+6]),
			BitCount:   binary.LittleEndian.Uint16(data[base+6 : base+8]),
			Bytes:      binary.LittleEndian.Uint32(data[base+8 : base+12]),
			Offset:     binary.LittleEndian.Uint32(data[base+12 : base+16]),
		}

		end := int(header.Offset) + int(header.Bytes)
		if end > len(data) {
			return nil, &OutOfBounds{Given: end, Limit: len(data)}
		}

		entries[i] = Entry{
			Header: header,
			Data:   append([]byte(nil), data[header.Offset:end]...),
		}
	}

	return &Icon{entries: entries}, nil
}

// Size returns the number of entries in the icon's directory.
func (ic *Icon) Size() int { return len(ic.entries) }

// GetEntry returns the entry at index.
func (ic *Icon) GetEntry(index int) (Entry, error) {
	if index < 0 || index >= len(ic.entries) {
		return Entry{}, &OutOfBounds{Given: index, Limit: len(ic.entries)}
	}
	return ic.entries[index], nil
}

// SetEntry replaces the entry at index.
func (ic *Icon) SetEntry(index int, entry Entry) error {
	if index < 0 || index >= len(ic.entries) {
		return &OutOfBounds{Given: index, Limit: len(ic.entries)}
	}
	ic.entries[index] = entry
	return nil
}

// EntryType reports whether the entry at index holds a PNG or BMP
// payload.
func (ic *Icon) EntryType(index int) (EntryType, error) {
	e, err := ic.GetEntry(index)
	if err != nil {
		return 0, err
	}
	return e.Type(), nil
}

// PNGEntry decodes the entry at index as a png.Image. It returns
// png.ErrBadSignature if the entry is not PNG-signed.
func (ic *Icon) PNGEntry(index int) (*png.Image, error) {
	e, err := ic.GetEntry(index)
	if err != nil {
		return nil, err
	}
	return png.Parse(e.Data, true)
}

// SetPNGEntry replaces the entry at index with img serialised to PNG
// bytes, preserving the entry's directory metadata apart from Bytes
// and Offset, which Serialize recomputes.
func (ic *Icon) SetPNGEntry(index int, header DirEntry, img *png.Image) error {
	if index < 0 || index >= len(ic.entries) {
		return &OutOfBounds{Given: index, Limit: len(ic.entries)}
	}
	ic.entries[index] = Entry{Header: header, Data: img.Serialize()}
	return nil
}

// Resize grows or truncates the entry list to size, per
// original_source/libfacade/src/ico.cpp's Icon::resize.
func (ic *Icon) Resize(size int) {
	if size <= len(ic.entries) {
		ic.entries = ic.entries[:size]
		return
	}
	grown := make([]Entry, size)
	copy(grown, ic.entries)
	ic.entries = grown
}

// InsertEntry inserts entry at index, shifting later entries back.
func (ic *Icon) InsertEntry(index int, entry Entry) error {
	if index < 0 || index > len(ic.entries) {
		return &OutOfBounds{Given: index, Limit: len(ic.entries)}
	}
	ic.entries = append(ic.entries, Entry{})
	copy(ic.entries[index+1:], ic.entries[index:])
	ic.entries[index] = entry
	return nil
}

// AppendEntry appends entry to the end of the directory.
func (ic *Icon) AppendEntry(entry Entry) {
	ic.entries = append(ic.entries, entry)
}

// RemoveEntry deletes the entry at index, shifting later entries
// forward.
func (ic *Icon) RemoveEntry(index int) error {
	if index < 0 || index >= len(ic.entries) {
		return &OutOfBounds{Given: index, Limit: len(ic.entries)}
	}
	ic.entries = append(ic.entries[:index], ic.entries[index+1:]...)
	return nil
}

// Serialize builds the icon's file representation: the IconDir header,
// the directory entries with Bytes/Offset recomputed to point past the
// fixed-size header block, then the concatenated image payloads in
// directory order. Per original_source/libfacade/src/ico.cpp's
// Icon::to_file.
func (ic *Icon) Serialize() ([]byte, error) {
	if len(ic.entries) == 0 {
		return nil, &ErrNoIconData{}
	}

	dirSize := dirHeaderSize + entryHeaderSize*len(ic.entries)
	buf := make([]byte, dirSize)

	binary.LittleEndian.PutUint16(buf[0:2], 0)
	binary.LittleEndian.PutUint16(buf[2:4], 1)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(len(ic.entries)))

	offset := uint32(dirSize)
	for i, e := range ic.entries {
		base := dirHeaderSize + entryHeaderSize*i
		buf[base] = e.Header.Width
		buf[base+1] = e.Header.Height
		buf[base+2] = e.Header.ColorCount
		buf[base+3] = e.Header.Reserved
		binary.LittleEndian.PutUint16(buf[base+4:base+6], e.Header.Planes)
		binary.LittleEndian.PutUint16(buf[base+6:base+8], e.Header.BitCount)
		binary.LittleEndian.PutUint32(buf[base+8:base+12], uint32(len(e.Data)))
		binary.LittleEndian.PutUint32(buf[base+12:base+16], offset)

		buf = append(buf, e.Data...)
		offset += uint32(len(e.Data))
	}

	return buf, nil
}
