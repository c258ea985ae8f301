package png

import "testing"

func buildTestImage(t *testing.T, width, height int) *Image {
	t.Helper()

	img := NewImage()
	h := Header{Width: uint32(width), Height: uint32(height), BitDepth: 8, ColorType: byte(ColorAlphaTrueColor)}
	img.SetHeader(h)

	kind := AlphaTrueColorPixel8Bit
	scanlines := make([]Scanline, height)
	for y := 0; y < height; y++ {
		s := NewScanline(kind, width)
		for x := 0; x < width; x++ {
			p, err := NewAlphaTrueColorPixel(kind, (x+y)%256, (x*2+y)%256, (x+y*3)%256, 255)
			if err != nil {
				t.Fatalf("NewAlphaTrueColorPixel returned error: %v", err)
			}
			if err := s.SetPixel(x, p); err != nil {
				t.Fatalf("SetPixel returned error: %v", err)
			}
		}
		scanlines[y] = s
	}
	img.Scanlines = scanlines

	if err := img.Compress(6, 8192); err != nil {
		t.Fatalf("Compress returned error: %v", err)
	}

	return img
}

// TestImageRoundTrip covers spec.md property P3 starting from in-memory
// scanlines: filter -> compress -> serialise -> parse -> load yields a
// scanline vector whose reconstructed raw bytes equal the original's.
func TestImageRoundTrip(t *testing.T) {
	img := buildTestImage(t, 5, 4)
	original := img.Scanlines

	data := img.Serialize()

	reparsed, err := Parse(data, true)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if err := reparsed.Load(); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(reparsed.Scanlines) != len(original) {
		t.Fatalf("got %d scanlines, want %d", len(reparsed.Scanlines), len(original))
	}
	for y := range original {
		if string(reparsed.Scanlines[y].Raw) != string(original[y].Raw) {
			t.Errorf("row %d mismatch: got %v, want %v", y, reparsed.Scanlines[y].Raw, original[y].Raw)
		}
	}
}

// TestImageSerializeStartsWithSignatureAndIEND covers spec.md property
// P2's structural half.
func TestImageSerializeStartsWithSignatureAndIEND(t *testing.T) {
	img := buildTestImage(t, 2, 2)
	data := img.Serialize()

	for i, b := range Signature {
		if data[i] != b {
			t.Fatalf("signature byte %d = %#x, want %#x", i, data[i], b)
		}
	}

	reparsed, err := Parse(data, true)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !reparsed.HasChunk(ihdrTag) {
		t.Error("expected IHDR chunk")
	}
	if !reparsed.HasChunk(idatTag) {
		t.Error("expected IDAT chunk")
	}
	if !reparsed.HasChunk(iendTag) {
		t.Error("expected IEND chunk")
	}
}

// TestTrailingDataRoundTrip covers spec.md property P10.
func TestTrailingDataRoundTrip(t *testing.T) {
	img := buildTestImage(t, 2, 2)
	img.SetTrailingData([]byte("Hello, Facade!"))

	data := img.Serialize()
	reparsed, err := Parse(data, true)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	trailing, ok := reparsed.TrailingData()
	if !ok {
		t.Fatal("expected trailing data to be present")
	}
	if string(trailing) != "Hello, Facade!" {
		t.Errorf("trailing data = %q, want %q", trailing, "Hello, Facade!")
	}
}

func TestLoadNoImageDataChunks(t *testing.T) {
	img := NewImage()
	img.SetHeader(Header{Width: 1, Height: 1, BitDepth: 8, ColorType: byte(ColorTrueColor)})

	if err := img.Load(); err != ErrNoImageDataChunks {
		t.Errorf("expected ErrNoImageDataChunks, got %v", err)
	}
}

func TestHeaderMissing(t *testing.T) {
	img := NewImage()
	if _, err := img.Header(); err != ErrNoHeaderChunk {
		t.Errorf("expected ErrNoHeaderChunk, got %v", err)
	}
}

func TestParseBadSignature(t *testing.T) {
	if _, err := Parse([]byte("not a png"), true); err != ErrBadSignature {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
}
