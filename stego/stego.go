// Package stego implements the nibble-granular pixel-LSB steganographic
// carrier described in spec.md §4.9: a payload is deflated, framed with
// "FCD"/"DCF" magic, and written four bits at a time into the red,
// green, and blue channels of an 8-bit truecolour image.
package stego

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"

	"facade.dev/facade/png"
)

var (
	frameMagic   = [3]byte{'F', 'C', 'D'}
	trailerMagic = [3]byte{'D', 'C', 'F'}
)

const (
	magicBits   = 3 * 8
	lengthBits  = 4 * 8
	headerBits  = magicBits + lengthBits // bit offset where the body begins
	trailerSize = 3
)

// supportsStego reports whether kind is one of the two pixel kinds the
// carrier is defined for: 8-bit truecolour, with or without alpha.
func supportsStego(kind png.PixelKind) bool {
	return kind == png.TrueColorPixel8Bit || kind == png.AlphaTrueColorPixel8Bit
}

// capacityNibbles returns the number of nibble slots available across
// the image's R, G, B channels (alpha excluded).
func capacityNibbles(h png.Header) int {
	return int(h.Width) * int(h.Height) * 3
}

// nibbleLocation maps a nibble index in the virtual R,G,B,R,G,B,...
// stream to a pixel index and channel (0=R, 1=G, 2=B).
func nibbleLocation(width, nibbleIndex int) (row, col, channel int) {
	pixelIndex := nibbleIndex / 3
	channel = nibbleIndex % 3
	row = pixelIndex / width
	col = pixelIndex % width
	return row, col, channel
}

// channelValue and setChannelValue isolate one of the three colour
// channels of a pixel. The reference source's write_stego_data falls
// through this switch, overwriting R, G, and B with the same byte;
// spec.md §9 calls that a bug and directs implementing the mutually
// exclusive version, which is what a non-fallthrough switch gives for
// free in Go.
func channelValue(p png.Pixel, channel int) uint16 {
	switch channel {
	case 0:
		return p.R()
	case 1:
		return p.G()
	default:
		return p.B()
	}
}

func setChannelValue(p *png.Pixel, channel int, value uint16) {
	switch channel {
	case 0:
		p.Channel[0] = value
	case 1:
		p.Channel[1] = value
	default:
		p.Channel[2] = value
	}
}

func writeNibbleAtBit(img *png.Image, h png.Header, bitOffset int, nibble byte) error {
	if bitOffset%4 != 0 {
		return png.ErrInvalidBitOffset
	}
	nibbleIndex := bitOffset / 4
	capacity := capacityNibbles(h)
	if nibbleIndex < 0 || nibbleIndex >= capacity {
		return &png.OutOfBounds{Given: nibbleIndex, Limit: capacity}
	}

	row, col, channel := nibbleLocation(int(h.Width), nibbleIndex)
	p, err := img.Scanlines[row].GetPixel(col)
	if err != nil {
		return err
	}

	current := channelValue(p, channel)
	setChannelValue(&p, channel, (current &^ 0x0F) | uint16(nibble&0x0F))

	return img.Scanlines[row].SetPixel(col, p)
}

func readNibbleAtBit(img *png.Image, h png.Header, bitOffset int) (byte, error) {
	if bitOffset%4 != 0 {
		return 0, png.ErrInvalidBitOffset
	}
	nibbleIndex := bitOffset / 4
	capacity := capacityNibbles(h)
	if nibbleIndex < 0 || nibbleIndex >= capacity {
		return 0, &png.OutOfBounds{Given: nibbleIndex, Limit: capacity}
	}

	row, col, channel := nibbleLocation(int(h.Width), nibbleIndex)
	p, err := img.Scanlines[row].GetPixel(col)
	if err != nil {
		return 0, err
	}

	return byte(channelValue(p, channel) & 0x0F), nil
}

// writeBytes writes data starting at bitOffset: the low nibble of byte
// k goes to bitOffset+8k, the high nibble to bitOffset+8k+4.
func writeBytes(img *png.Image, h png.Header, bitOffset int, data []byte) error {
	for k, b := range data {
		if err := writeNibbleAtBit(img, h, bitOffset+8*k, b&0x0F); err != nil {
			return err
		}
		if err := writeNibbleAtBit(img, h, bitOffset+8*k+4, (b>>4)&0x0F); err != nil {
			return err
		}
	}
	return nil
}

// readBytes is the inverse of writeBytes.
func readBytes(img *png.Image, h png.Header, bitOffset, n int) ([]byte, error) {
	out := make([]byte, n)
	for k := 0; k < n; k++ {
		low, err := readNibbleAtBit(img, h, bitOffset+8*k)
		if err != nil {
			return nil, err
		}
		high, err := readNibbleAtBit(img, h, bitOffset+8*k+4)
		if err != nil {
			return nil, err
		}
		out[k] = (high << 4) | low
	}
	return out, nil
}

func deflateMax(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, &png.ZlibError{Err: err}
	}
	if _, err := w.Write(data); err != nil {
		return nil, &png.ZlibError{Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &png.ZlibError{Err: err}
	}
	return buf.Bytes(), nil
}

func inflateAll(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &png.ZlibError{Err: err}
	}
	defer r.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		return nil, &png.ZlibError{Err: err}
	}
	return out.Bytes(), nil
}

// frame builds "FCD" + length:u32le + deflated body + "DCF", per
// spec.md §4.9.
func frame(body []byte) []byte {
	out := make([]byte, 0, 3+4+len(body)+3)
	out = append(out, frameMagic[:]...)
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(body)))
	out = append(out, lenBuf...)
	out = append(out, body...)
	out = append(out, trailerMagic[:]...)
	return out
}

// Embed implements create_stego_payload: it clones img, verifies the
// pixel kind supports this carrier, deflates data at maximum
// compression, frames it, writes it at bit offset 0 of the cloned
// image's pixels, then re-filters and re-compresses so the change is
// persisted into fresh IDAT chunks. Per spec.md §4.9.
func Embed(img *png.Image, data []byte) (*png.Image, error) {
	clone := img.Clone()

	h, err := clone.Header()
	if err != nil {
		return nil, err
	}
	kind, err := h.PixelKind()
	if err != nil {
		return nil, err
	}
	if !supportsStego(kind) {
		return nil, png.ErrUnsupportedPixelKind
	}

	compressed, err := deflateMax(data)
	if err != nil {
		return nil, err
	}
	framed := frame(compressed)

	capacityBytes := capacityNibbles(h) / 2
	if len(framed) > capacityBytes {
		return nil, &png.ImageTooSmall{Have: capacityBytes, Need: len(framed)}
	}

	if clone.Scanlines == nil {
		if err := clone.Load(); err != nil {
			return nil, err
		}
	}

	if err := writeBytes(clone, h, 0, framed); err != nil {
		return nil, err
	}

	if err := clone.Compress(-1, 8192); err != nil {
		return nil, err
	}

	return clone, nil
}

// detectFrame verifies the FCD/DCF envelope and returns the deflated
// body's byte length.
func detectFrame(img *png.Image, h png.Header) (int, error) {
	magic, err := readBytes(img, h, 0, 3)
	if err != nil {
		return 0, err
	}
	if magic[0] != frameMagic[0] || magic[1] != frameMagic[1] || magic[2] != frameMagic[2] {
		return 0, png.ErrNoStegoData
	}

	lenBytes, err := readBytes(img, h, magicBits, 4)
	if err != nil {
		return 0, png.ErrNoStegoData
	}
	length := int(binary.LittleEndian.Uint32(lenBytes))

	capacityBytes := capacityNibbles(h) / 2
	trailerByteOffset := headerBits/8 + length
	if trailerByteOffset+trailerSize > capacityBytes {
		return 0, png.ErrNoStegoData
	}

	trailer, err := readBytes(img, h, headerBits+8*length, trailerSize)
	if err != nil {
		return 0, png.ErrNoStegoData
	}
	if trailer[0] != trailerMagic[0] || trailer[1] != trailerMagic[1] || trailer[2] != trailerMagic[2] {
		return 0, png.ErrNoStegoData
	}

	return length, nil
}

// HasPayload reports whether img (which must be Loaded) carries a valid
// stego frame.
func HasPayload(img *png.Image) bool {
	h, err := img.Header()
	if err != nil || img.Scanlines == nil {
		return false
	}
	kind, err := h.PixelKind()
	if err != nil || !supportsStego(kind) {
		return false
	}

	_, err = detectFrame(img, h)
	return err == nil
}

// Extract implements extract_stego_payload: img must already be
// Loaded. It verifies the frame, reads and inflates the body, and
// returns the original bytes passed to Embed.
func Extract(img *png.Image) ([]byte, error) {
	h, err := img.Header()
	if err != nil {
		return nil, err
	}
	kind, err := h.PixelKind()
	if err != nil {
		return nil, err
	}
	if !supportsStego(kind) {
		return nil, png.ErrUnsupportedPixelKind
	}
	if img.Scanlines == nil {
		return nil, png.ErrNoImageData
	}

	length, err := detectFrame(img, h)
	if err != nil {
		return nil, err
	}

	body, err := readBytes(img, h, headerBits, length)
	if err != nil {
		return nil, err
	}

	return inflateAll(body)
}
