package byteutil

import "testing"

func TestSwap16(t *testing.T) {
	if got := Swap16(0x1234); got != 0x3412 {
		t.Errorf("Swap16(0x1234) = %#x, want 0x3412", got)
	}
}

func TestSwap32(t *testing.T) {
	if got := Swap32(0x12345678); got != 0x78563412 {
		t.Errorf("Swap32(0x12345678) = %#x, want 0x78563412", got)
	}
}

func TestCRC32IHDR(t *testing.T) {
	// Spec property P7: CRC32("IHDR") == 0xA8A1AE0A.
	if got := CRC32([]byte("IHDR")); got != 0xA8A1AE0A {
		t.Errorf("CRC32(\"IHDR\") = %#x, want 0xa8a1ae0a", got)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	data := []byte("the quick brown fox")
	encoded := Base64Encode(data)

	decoded, err := Base64Decode(encoded)
	if err != nil {
		t.Fatalf("Base64Decode returned error: %v", err)
	}
	if string(decoded) != string(data) {
		t.Errorf("round trip mismatch: got %q, want %q", decoded, data)
	}
}

func TestBase64DecodeInvalid(t *testing.T) {
	if _, err := Base64Decode("not-valid-base64!!"); err == nil {
		t.Error("expected error for invalid base64 string")
	}
}

func TestIsBase64String(t *testing.T) {
	if !IsBase64String("aGVsbG8=") {
		t.Error("expected valid base64 string to be recognized")
	}
	if IsBase64String("not valid base64!!") {
		t.Error("expected invalid base64 string to be rejected")
	}
}

func TestFirstInvalidChar(t *testing.T) {
	if c, ok := FirstInvalidChar("aGVsbG8="); ok {
		t.Errorf("expected no invalid character, got %q", c)
	}
	c, ok := FirstInvalidChar("abc def")
	if !ok || c != ' ' {
		t.Errorf("FirstInvalidChar = (%q, %v), want (' ', true)", c, ok)
	}
}
