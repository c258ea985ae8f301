package png

import (
	"errors"
	"fmt"
)

// Format errors.
var (
	ErrBadSignature    = errors.New("png: bad signature")
	ErrTruncated       = errors.New("png: truncated chunk stream")
	ErrInvalidChunkTag = errors.New("png: invalid chunk tag")
	ErrInvalidPixelKind = errors.New("png: invalid pixel kind")
)

// State errors.
var (
	ErrNoHeaderChunk     = errors.New("png: no IHDR chunk present")
	ErrNoImageData       = errors.New("png: image has not been loaded")
	ErrNoImageDataChunks = errors.New("png: no IDAT chunks present")
	ErrAlreadyFiltered   = errors.New("png: scanlines are already filtered")
)

// Bounds errors.
var (
	ErrScanlineMismatch  = errors.New("png: previous scanline has mismatched span count or pixel kind")
	ErrPixelKindMismatch = errors.New("png: pixel does not match span's pixel kind")
	ErrNoPixels          = errors.New("png: image has no decoded pixels")
)

// Carrier errors.
var (
	ErrNoKeyword         = errors.New("png: keyword is empty")
	ErrKeywordTooLong    = errors.New("png: keyword exceeds 79 bytes")
	ErrTextNotFound      = errors.New("png: text chunk not found")
	ErrInvalidBase64String = errors.New("png: chunk text is not valid base64")
	ErrUnsupportedPixelKind = errors.New("png: pixel kind does not support this operation")
	ErrInvalidBitOffset  = errors.New("png: bit offset is not a multiple of 4")
	ErrNoStegoData       = errors.New("png: no steganographic frame present")
	ErrNoTrailingData    = errors.New("png: image has no trailing data")
)

// I/O errors.
var ErrOpenFileFailure = errors.New("png: failed to open file")

// BadCrc reports a chunk whose stored CRC did not match the computed one.
type BadCrc struct {
	Given, Expected uint32
}

func (e *BadCrc) Error() string {
	return fmt.Sprintf("png: bad CRC: given %#08x, expected %#08x", e.Given, e.Expected)
}

// InvalidColorType reports an IHDR color_type byte outside {0,2,3,4,6}.
type InvalidColorType struct{ Value byte }

func (e *InvalidColorType) Error() string {
	return fmt.Sprintf("png: invalid color type %d", e.Value)
}

// InvalidBitDepth reports a bit_depth value illegal for its color type.
type InvalidBitDepth struct{ Value byte }

func (e *InvalidBitDepth) Error() string {
	return fmt.Sprintf("png: invalid bit depth %d", e.Value)
}

// InvalidFilterType reports a scanline filter tag outside 0..4.
type InvalidFilterType struct{ Value byte }

func (e *InvalidFilterType) Error() string {
	return fmt.Sprintf("png: invalid filter type %d", e.Value)
}

// OutOfBounds reports an index beyond an addressable limit.
type OutOfBounds struct {
	Given, Limit int
}

func (e *OutOfBounds) Error() string {
	return fmt.Sprintf("png: index %d out of bounds (limit %d)", e.Given, e.Limit)
}

// InsufficientSize reports a buffer smaller than an operation requires.
type InsufficientSize struct {
	Given, Need int
}

func (e *InsufficientSize) Error() string {
	return fmt.Sprintf("png: insufficient size: have %d, need %d", e.Given, e.Need)
}

// IntegerOverflow reports a sample value exceeding its bit width's range.
type IntegerOverflow struct {
	Given, Max int
}

func (e *IntegerOverflow) Error() string {
	return fmt.Sprintf("png: value %d overflows max %d", e.Given, e.Max)
}

// InvalidBase64Character reports a byte outside the base64 alphabet.
type InvalidBase64Character struct{ Char byte }

func (e *InvalidBase64Character) Error() string {
	return fmt.Sprintf("png: invalid base64 character %q", e.Char)
}

// ImageTooSmall reports that an image's carrier capacity is insufficient
// for a requested payload.
type ImageTooSmall struct {
	Have, Need int
}

func (e *ImageTooSmall) Error() string {
	return fmt.Sprintf("png: image too small: have %d bytes capacity, need %d", e.Have, e.Need)
}

// ZlibError wraps a failure from the underlying deflate/inflate codec.
type ZlibError struct {
	Err error
}

func (e *ZlibError) Error() string {
	return fmt.Sprintf("png: zlib error: %v", e.Err)
}

func (e *ZlibError) Unwrap() error { return e.Err }

// OpenFileFailure reports a failure to open a named file.
type OpenFileFailure struct {
	Path string
	Err  error
}

func (e *OpenFileFailure) Error() string {
	return fmt.Sprintf("png: failed to open %q: %v", e.Path, e.Err)
}

func (e *OpenFileFailure) Unwrap() error { return e.Err }
