package ico

import (
	"bytes"
	"testing"
)

func samplePNGBytes() []byte {
	// A minimal byte sequence starting with the PNG signature; Type()
	// only sniffs the first 8 bytes, so the remainder is arbitrary.
	data := make([]byte, 16)
	copy(data, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	return data
}

func TestIconRoundTrip(t *testing.T) {
	ic := New()
	ic.AppendEntry(Entry{
		Header: DirEntry{Width: 32, Height: 32, Planes: 1, BitCount: 32},
		Data:   samplePNGBytes(),
	})
	ic.AppendEntry(Entry{
		Header: DirEntry{Width: 16, Height: 16, Planes: 1, BitCount: 32},
		Data:   []byte{0, 1, 2, 3, 4, 5},
	})

	data, err := ic.Serialize()
	if err != nil {
		t.Fatalf("Serialize returned error: %v", err)
	}

	reparsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if reparsed.Size() != 2 {
		t.Fatalf("got %d entries, want 2", reparsed.Size())
	}

	first, err := reparsed.GetEntry(0)
	if err != nil {
		t.Fatalf("GetEntry(0) returned error: %v", err)
	}
	if !bytes.Equal(first.Data, samplePNGBytes()) {
		t.Errorf("entry 0 data mismatch")
	}
	if first.Type() != EntryPNG {
		t.Errorf("entry 0 type = %v, want EntryPNG", first.Type())
	}

	second, err := reparsed.GetEntry(1)
	if err != nil {
		t.Fatalf("GetEntry(1) returned error: %v", err)
	}
	if !bytes.Equal(second.Data, []byte{0, 1, 2, 3, 4, 5}) {
		t.Errorf("entry 1 data mismatch")
	}
	if second.Type() != EntryBMP {
		t.Errorf("entry 1 type = %v, want EntryBMP", second.Type())
	}
}

func TestParseRejectsBadHeader(t *testing.T) {
	data := make([]byte, 6)
	data[2] = 2 // type != 1
	if _, err := Parse(data); err == nil {
		t.Error("expected an error for a bad icon header")
	}
}

func TestParseInsufficientSize(t *testing.T) {
	if _, err := Parse([]byte{1, 2, 3}); err == nil {
		t.Error("expected InsufficientSize error")
	}
}

func TestSerializeNoEntries(t *testing.T) {
	ic := New()
	if _, err := ic.Serialize(); err == nil {
		t.Error("expected ErrNoIconData")
	}
}

func TestInsertAndRemoveEntry(t *testing.T) {
	ic := New()
	ic.AppendEntry(Entry{Data: []byte{1}})
	ic.AppendEntry(Entry{Data: []byte{3}})

	if err := ic.InsertEntry(1, Entry{Data: []byte{2}}); err != nil {
		t.Fatalf("InsertEntry returned error: %v", err)
	}
	if ic.Size() != 3 {
		t.Fatalf("got %d entries, want 3", ic.Size())
	}
	for i, want := range [][]byte{{1}, {2}, {3}} {
		e, err := ic.GetEntry(i)
		if err != nil {
			t.Fatalf("GetEntry(%d) returned error: %v", i, err)
		}
		if !bytes.Equal(e.Data, want) {
			t.Errorf("entry %d = %v, want %v", i, e.Data, want)
		}
	}

	if err := ic.RemoveEntry(1); err != nil {
		t.Fatalf("RemoveEntry returned error: %v", err)
	}
	if ic.Size() != 2 {
		t.Fatalf("got %d entries, want 2", ic.Size())
	}
	e, _ := ic.GetEntry(1)
	if !bytes.Equal(e.Data, []byte{3}) {
		t.Errorf("entry 1 = %v, want [3]", e.Data)
	}
}

func TestRemoveEntryOutOfBounds(t *testing.T) {
	ic := New()
	if err := ic.RemoveEntry(0); err == nil {
		t.Error("expected OutOfBounds error")
	}
}

func TestResizeGrowsAndTruncates(t *testing.T) {
	ic := New()
	ic.Resize(3)
	if ic.Size() != 3 {
		t.Fatalf("got %d entries, want 3", ic.Size())
	}
	ic.Resize(1)
	if ic.Size() != 1 {
		t.Fatalf("got %d entries, want 1", ic.Size())
	}
}
