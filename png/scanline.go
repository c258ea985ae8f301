package png

// Scanline is one row of image data: a filter tag plus its raw
// (post-reconstruction) packed span bytes. Rather than the reference
// source's 15 template-generated ScanlineBase<P> types, this is a
// single representation carrying its PixelKind tag alongside a flat
// byte buffer, per spec.md §9's "(bits_per_pixel, byte_buf) pair plus a
// decode table" option.
type Scanline struct {
	Kind       PixelKind
	FilterType byte
	Raw        []byte // stride bytes; does not include the filter tag
}

// NewScanline allocates a zeroed scanline of the given kind and pixel
// width (stride computed from width and kind).
func NewScanline(kind PixelKind, width int) Scanline {
	stride := (width*kind.BitsPerPixel() + 7) / 8
	return Scanline{Kind: kind, Raw: make([]byte, stride)}
}

// spanLocation returns the byte offset of the span holding sample index
// i, and i's position within that span.
func spanLocation(kind PixelKind, i int) (byteOffset, sub int) {
	n := kind.SamplesPerSpan()
	spanIdx := i / n
	sub = i % n
	byteOffset = spanIdx * kind.SpanBytes()
	return byteOffset, sub
}

// GetPixel reads the pixel at sample index i, per spec.md §4.3.
func (s Scanline) GetPixel(i int) (Pixel, error) {
	if i < 0 {
		return Pixel{}, &OutOfBounds{Given: i, Limit: 0}
	}

	byteOffset, sub := spanLocation(s.Kind, i)
	spanBytes := s.Kind.SpanBytes()
	if byteOffset+spanBytes > len(s.Raw) {
		return Pixel{}, &OutOfBounds{Given: i, Limit: len(s.Raw) * 8 / s.Kind.BitsPerPixel()}
	}

	if bpp := s.Kind.BitsPerPixel(); bpp < 8 {
		m := s.Kind.BitDepth()
		n := s.Kind.SamplesPerSpan()
		shift := (n - 1 - sub) * m
		value := int(s.Raw[byteOffset]>>shift) & s.Kind.Max()
		return NewGrayscalePixel(s.Kind, value)
	}

	return decodeSpan(s.Kind, s.Raw[byteOffset:byteOffset+spanBytes])
}

// SetPixel writes p at sample index i. Writing a pixel whose Kind does
// not match the scanline's is PixelKindMismatch.
func (s Scanline) SetPixel(i int, p Pixel) error {
	if p.Kind != s.Kind {
		return ErrPixelKindMismatch
	}
	if i < 0 {
		return &OutOfBounds{Given: i, Limit: 0}
	}

	byteOffset, sub := spanLocation(s.Kind, i)
	spanBytes := s.Kind.SpanBytes()
	if byteOffset+spanBytes > len(s.Raw) {
		return &OutOfBounds{Given: i, Limit: len(s.Raw) * 8 / s.Kind.BitsPerPixel()}
	}

	if bpp := s.Kind.BitsPerPixel(); bpp < 8 {
		m := s.Kind.BitDepth()
		n := s.Kind.SamplesPerSpan()
		shift := (n - 1 - sub) * m
		mask := byte(s.Kind.Max()) << shift
		s.Raw[byteOffset] = s.Raw[byteOffset]&^mask | byte(int(p.Gray())<<shift)&mask
		return nil
	}

	encodeSpan(s.Kind, p, s.Raw[byteOffset:byteOffset+spanBytes])
	return nil
}

func decodeSpan(kind PixelKind, span []byte) (Pixel, error) {
	channels := kind.Channels()
	bytesPerChannel := kind.BitDepth() / 8
	if bytesPerChannel == 0 {
		bytesPerChannel = 1
	}

	samples := make([]int, channels)
	for c := 0; c < channels; c++ {
		off := c * bytesPerChannel
		if bytesPerChannel == 1 {
			samples[c] = int(span[off])
		} else {
			samples[c] = int(span[off])<<8 | int(span[off+1])
		}
	}

	switch channels {
	case 1:
		return NewGrayscalePixel(kind, samples[0])
	case 2:
		return NewAlphaGrayscalePixel(kind, samples[0], samples[1])
	case 3:
		return NewTrueColorPixel(kind, samples[0], samples[1], samples[2])
	default:
		return NewAlphaTrueColorPixel(kind, samples[0], samples[1], samples[2], samples[3])
	}
}

func encodeSpan(kind PixelKind, p Pixel, span []byte) {
	bytesPerChannel := kind.BitDepth() / 8
	if bytesPerChannel == 0 {
		bytesPerChannel = 1
	}

	channels := kind.Channels()
	for c := 0; c < channels; c++ {
		off := c * bytesPerChannel
		v := p.Channel[c]
		if bytesPerChannel == 1 {
			span[off] = byte(v)
		} else {
			span[off] = byte(v >> 8)
			span[off+1] = byte(v)
		}
	}
}
