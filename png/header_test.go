package png

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Width: 256, Height: 256, BitDepth: 8, ColorType: byte(ColorAlphaTrueColor)}
	data := h.Bytes()

	parsed, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader returned error: %v", err)
	}
	if parsed != h {
		t.Errorf("got %+v, want %+v", parsed, h)
	}
}

func TestHeaderPixelKind(t *testing.T) {
	h := Header{Width: 1, Height: 1, BitDepth: 8, ColorType: byte(ColorAlphaTrueColor)}
	kind, err := h.PixelKind()
	if err != nil {
		t.Fatalf("PixelKind returned error: %v", err)
	}
	if kind != AlphaTrueColorPixel8Bit {
		t.Errorf("kind = %v, want AlphaTrueColorPixel8Bit", kind)
	}
}

func TestHeaderInvalidColorType(t *testing.T) {
	h := Header{Width: 1, Height: 1, BitDepth: 8, ColorType: 1}
	if _, err := h.PixelKind(); err == nil {
		t.Error("expected error for invalid color type 1")
	}
}

func TestHeaderInvalidBitDepth(t *testing.T) {
	h := Header{Width: 1, Height: 1, BitDepth: 3, ColorType: byte(ColorGrayscale)}
	if _, err := h.PixelKind(); err == nil {
		t.Error("expected error for invalid bit depth 3 on grayscale")
	}
}

func TestHeaderStrideAndBufferSize(t *testing.T) {
	h := Header{Width: 3, Height: 2, BitDepth: 1, ColorType: byte(ColorGrayscale)}
	stride, err := h.Stride()
	if err != nil {
		t.Fatalf("Stride returned error: %v", err)
	}
	if stride != 1 {
		t.Errorf("stride = %d, want 1", stride)
	}

	size, err := h.BufferSize()
	if err != nil {
		t.Fatalf("BufferSize returned error: %v", err)
	}
	if size != 4 { // 2 rows * (1 filter byte + 1 stride byte)
		t.Errorf("size = %d, want 4", size)
	}
}

func TestAllFifteenPixelKinds(t *testing.T) {
	cases := []struct {
		colorType, bitDepth byte
		want                PixelKind
	}{
		{0, 1, GrayscalePixel1Bit},
		{0, 2, GrayscalePixel2Bit},
		{0, 4, GrayscalePixel4Bit},
		{0, 8, GrayscalePixel8Bit},
		{0, 16, GrayscalePixel16Bit},
		{2, 8, TrueColorPixel8Bit},
		{2, 16, TrueColorPixel16Bit},
		{3, 1, PalettePixel1Bit},
		{3, 2, PalettePixel2Bit},
		{3, 4, PalettePixel4Bit},
		{3, 8, PalettePixel8Bit},
		{4, 8, AlphaGrayscalePixel8Bit},
		{4, 16, AlphaGrayscalePixel16Bit},
		{6, 8, AlphaTrueColorPixel8Bit},
		{6, 16, AlphaTrueColorPixel16Bit},
	}

	for _, c := range cases {
		got, err := pixelKindFromHeader(c.colorType, c.bitDepth)
		if err != nil {
			t.Errorf("pixelKindFromHeader(%d,%d) returned error: %v", c.colorType, c.bitDepth, err)
			continue
		}
		if got != c.want {
			t.Errorf("pixelKindFromHeader(%d,%d) = %v, want %v", c.colorType, c.bitDepth, got, c.want)
		}
	}
}
