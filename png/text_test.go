package png

import "testing"

func TestAddTextPayloadRoundTrip(t *testing.T) {
	img := NewImage()
	payload := []byte("This could also contain some arbitrary data!")

	if err := img.AddTextPayload("FACADE", payload); err != nil {
		t.Fatalf("AddTextPayload returned error: %v", err)
	}

	extracted, err := img.ExtractTextPayloads("FACADE")
	if err != nil {
		t.Fatalf("ExtractTextPayloads returned error: %v", err)
	}
	if len(extracted) != 1 {
		t.Fatalf("got %d payloads, want 1", len(extracted))
	}
	if string(extracted[0]) != string(payload) {
		t.Errorf("payload = %q, want %q", extracted[0], payload)
	}
}

func TestAddZTextPayloadRoundTrip(t *testing.T) {
	img := NewImage()
	payload := []byte("This payload is compressed!")

	if err := img.AddZTextPayload("FACADE", payload); err != nil {
		t.Fatalf("AddZTextPayload returned error: %v", err)
	}

	extracted, err := img.ExtractZTextPayloads("FACADE")
	if err != nil {
		t.Fatalf("ExtractZTextPayloads returned error: %v", err)
	}
	if len(extracted) != 1 {
		t.Fatalf("got %d payloads, want 1", len(extracted))
	}
	if string(extracted[0]) != string(payload) {
		t.Errorf("payload = %q, want %q", extracted[0], payload)
	}
}

// TestTextKeywordFilter covers spec.md property P11: adding N tEXt
// chunks with distinct keywords, then querying each keyword, returns
// exactly one matching chunk per query in insertion order.
func TestTextKeywordFilter(t *testing.T) {
	img := NewImage()
	keywords := []string{"Alpha", "Beta", "Gamma", "Delta"}
	for i, k := range keywords {
		if err := img.AddText(k, string(rune('a'+i))); err != nil {
			t.Fatalf("AddText(%q) returned error: %v", k, err)
		}
	}

	for i, k := range keywords {
		matches, err := img.GetText(k)
		if err != nil {
			t.Fatalf("GetText(%q) returned error: %v", k, err)
		}
		if len(matches) != 1 {
			t.Fatalf("GetText(%q) returned %d matches, want 1", k, len(matches))
		}
		want := string(rune('a' + i))
		if matches[0].Value != want {
			t.Errorf("GetText(%q) value = %q, want %q", k, matches[0].Value, want)
		}
	}
}

func TestRemoveTextNotFound(t *testing.T) {
	img := NewImage()
	if err := img.RemoveText("missing", "value"); err != ErrTextNotFound {
		t.Errorf("expected ErrTextNotFound, got %v", err)
	}
}

func TestAddTextRejectsEmptyKeyword(t *testing.T) {
	img := NewImage()
	if err := img.AddText("", "value"); err != ErrNoKeyword {
		t.Errorf("expected ErrNoKeyword, got %v", err)
	}
}

func TestAddTextRejectsLongKeyword(t *testing.T) {
	img := NewImage()
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	if err := img.AddText(string(long), "value"); err != ErrKeywordTooLong {
		t.Errorf("expected ErrKeywordTooLong, got %v", err)
	}
}

func TestExtractTextPayloadsInvalidBase64Character(t *testing.T) {
	img := NewImage()
	if err := img.AddText("FACADE", "not valid base64!!"); err != nil {
		t.Fatalf("AddText returned error: %v", err)
	}
	_, err := img.ExtractTextPayloads("FACADE")
	bad, ok := err.(*InvalidBase64Character)
	if !ok {
		t.Fatalf("expected *InvalidBase64Character, got %v", err)
	}
	if bad.Char != ' ' {
		t.Errorf("Char = %q, want %q (the first offending byte)", bad.Char, ' ')
	}
}

func TestExtractTextPayloadsInvalidBase64Length(t *testing.T) {
	img := NewImage()
	// All characters are valid base64, but the length/padding is wrong,
	// so no single character can be blamed.
	if err := img.AddText("FACADE", "abcde"); err != nil {
		t.Fatalf("AddText returned error: %v", err)
	}
	if _, err := img.ExtractTextPayloads("FACADE"); err != ErrInvalidBase64String {
		t.Errorf("expected ErrInvalidBase64String, got %v", err)
	}
}
