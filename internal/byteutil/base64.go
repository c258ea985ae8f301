package byteutil

import (
	"encoding/base64"
	"errors"
)

// ErrInvalidBase64 reports that a string contains characters outside the
// standard base64 alphabet or has an invalid padding/length.
var ErrInvalidBase64 = errors.New("byteutil: invalid base64 string")

// Base64Encode encodes data using the standard base64 alphabet with '='
// padding, matching facade::base64_encode's BASE64_ALPHA.
func Base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Base64Decode decodes a standard base64 string back into bytes. It
// wraps encoding/base64's error with ErrInvalidBase64 so callers can use
// errors.Is without depending on the stdlib's internal error type.
func Base64Decode(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, errors.Join(ErrInvalidBase64, err)
	}
	return data, nil
}

// IsBase64String reports whether text is a well-formed standard base64
// string, matching facade::is_base64_string.
func IsBase64String(text string) bool {
	_, err := base64.StdEncoding.DecodeString(text)
	return err == nil
}

// FirstInvalidChar scans text for the first byte outside the standard
// base64 alphabet (including '=' padding) and reports it, so callers
// can surface which character made a string undecodable, matching
// facade::base64_decode's per-character InvalidBase64Character throw.
func FirstInvalidChar(text string) (byte, bool) {
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+', c == '/', c == '=':
			continue
		default:
			return c, true
		}
	}
	return 0, false
}
