package png

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"facade.dev/facade/internal/byteutil"
)

var textTag = mustChunkTag("tEXt")
var ztextTag = mustChunkTag("zTXt")

const maxKeywordLength = 79

// Text is a decoded tEXt chunk: a keyword and its Latin-1 text.
type Text struct {
	Keyword string
	Value   string
}

func validateKeyword(keyword string) error {
	if len(keyword) == 0 {
		return ErrNoKeyword
	}
	if len(keyword) > maxKeywordLength {
		return ErrKeywordTooLong
	}
	return nil
}

func encodeTextChunk(tag ChunkTag, keyword, text string) Chunk {
	data := make([]byte, 0, len(keyword)+1+len(text))
	data = append(data, keyword...)
	data = append(data, 0)
	data = append(data, text...)
	return Chunk{Tag: tag, Data: data}
}

func decodeTextChunk(c Chunk) (Text, error) {
	idx := bytes.IndexByte(c.Data, 0)
	if idx < 0 {
		return Text{}, ErrNoKeyword
	}
	return Text{Keyword: string(c.Data[:idx]), Value: string(c.Data[idx+1:])}, nil
}

// AddText appends a new tEXt chunk with the given keyword and text, per
// spec.md §4.8.
func (img *Image) AddText(keyword, text string) error {
	if err := validateKeyword(keyword); err != nil {
		return err
	}
	img.AddChunk(encodeTextChunk(textTag, keyword, text))
	return nil
}

// AddTextPayload is AddText(keyword, base64(data)).
func (img *Image) AddTextPayload(keyword string, data []byte) error {
	return img.AddText(keyword, byteutil.Base64Encode(data))
}

// GetText returns all tEXt chunks with the given keyword, in insertion
// order.
func (img *Image) GetText(keyword string) ([]Text, error) {
	var result []Text
	for _, c := range img.chunks[textTag] {
		t, err := decodeTextChunk(c)
		if err != nil {
			return nil, err
		}
		if t.Keyword == keyword {
			result = append(result, t)
		}
	}
	return result, nil
}

// AllText returns every tEXt chunk regardless of keyword, in insertion
// order. Used by callers scanning for payloads under unknown keywords.
func (img *Image) AllText() ([]Text, error) {
	result := make([]Text, 0, len(img.chunks[textTag]))
	for _, c := range img.chunks[textTag] {
		t, err := decodeTextChunk(c)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

// ExtractTextPayloads returns the base64-decoded payloads of every
// tEXt chunk with the given keyword.
func (img *Image) ExtractTextPayloads(keyword string) ([][]byte, error) {
	texts, err := img.GetText(keyword)
	if err != nil {
		return nil, err
	}

	results := make([][]byte, 0, len(texts))
	for _, t := range texts {
		decoded, err := byteutil.Base64Decode(t.Value)
		if err != nil {
			if c, ok := byteutil.FirstInvalidChar(t.Value); ok {
				return nil, &InvalidBase64Character{Char: c}
			}
			return nil, ErrInvalidBase64String
		}
		results = append(results, decoded)
	}
	return results, nil
}

// RemoveText removes the first tEXt chunk matching keyword and text.
// ErrTextNotFound if no match exists.
func (img *Image) RemoveText(keyword, text string) error {
	chunks := img.chunks[textTag]
	for i, c := range chunks {
		t, err := decodeTextChunk(c)
		if err != nil {
			continue
		}
		if t.Keyword == keyword && t.Value == text {
			img.chunks[textTag] = append(chunks[:i:i], chunks[i+1:]...)
			return nil
		}
	}
	return ErrTextNotFound
}

// ZText is a decoded zTXt chunk: a keyword and its inflated text.
type ZText struct {
	Keyword string
	Value   string
}

func deflateText(text string) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write([]byte(text)); err != nil {
		return nil, &ZlibError{Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &ZlibError{Err: err}
	}
	return buf.Bytes(), nil
}

func inflateText(data []byte) (string, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", &ZlibError{Err: err}
	}
	defer r.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		return "", &ZlibError{Err: err}
	}
	return out.String(), nil
}

func encodeZTextChunk(keyword, text string) (Chunk, error) {
	compressed, err := deflateText(text)
	if err != nil {
		return Chunk{}, err
	}

	data := make([]byte, 0, len(keyword)+2+len(compressed))
	data = append(data, keyword...)
	data = append(data, 0, 0) // keyword NUL, compression method 0
	data = append(data, compressed...)
	return Chunk{Tag: ztextTag, Data: data}, nil
}

func decodeZTextChunk(c Chunk) (ZText, error) {
	idx := bytes.IndexByte(c.Data, 0)
	if idx < 0 || idx+1 >= len(c.Data) {
		return ZText{}, ErrNoKeyword
	}

	method := c.Data[idx+1]
	if method != 0 {
		return ZText{}, &InvalidFilterType{Value: method}
	}

	text, err := inflateText(c.Data[idx+2:])
	if err != nil {
		return ZText{}, err
	}
	return ZText{Keyword: string(c.Data[:idx]), Value: text}, nil
}

// AddZText appends a new zTXt chunk holding the deflate-compressed text.
func (img *Image) AddZText(keyword, text string) error {
	if err := validateKeyword(keyword); err != nil {
		return err
	}
	chunk, err := encodeZTextChunk(keyword, text)
	if err != nil {
		return err
	}
	img.AddChunk(chunk)
	return nil
}

// AddZTextPayload is AddZText(keyword, base64(data)).
func (img *Image) AddZTextPayload(keyword string, data []byte) error {
	return img.AddZText(keyword, byteutil.Base64Encode(data))
}

// GetZText returns all zTXt chunks with the given keyword, in insertion
// order, inflating each.
func (img *Image) GetZText(keyword string) ([]ZText, error) {
	var result []ZText
	for _, c := range img.chunks[ztextTag] {
		t, err := decodeZTextChunk(c)
		if err != nil {
			return nil, err
		}
		if t.Keyword == keyword {
			result = append(result, t)
		}
	}
	return result, nil
}

// AllZText returns every zTXt chunk regardless of keyword, in
// insertion order, inflating each.
func (img *Image) AllZText() ([]ZText, error) {
	result := make([]ZText, 0, len(img.chunks[ztextTag]))
	for _, c := range img.chunks[ztextTag] {
		t, err := decodeZTextChunk(c)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

// ExtractZTextPayloads returns the base64-decoded payloads of every
// zTXt chunk with the given keyword.
func (img *Image) ExtractZTextPayloads(keyword string) ([][]byte, error) {
	texts, err := img.GetZText(keyword)
	if err != nil {
		return nil, err
	}

	results := make([][]byte, 0, len(texts))
	for _, t := range texts {
		decoded, err := byteutil.Base64Decode(t.Value)
		if err != nil {
			if c, ok := byteutil.FirstInvalidChar(t.Value); ok {
				return nil, &InvalidBase64Character{Char: c}
			}
			return nil, ErrInvalidBase64String
		}
		results = append(results, decoded)
	}
	return results, nil
}

// RemoveZText removes the first zTXt chunk whose keyword and inflated
// text match. ErrTextNotFound if no match exists.
func (img *Image) RemoveZText(keyword, text string) error {
	chunks := img.chunks[ztextTag]
	for i, c := range chunks {
		t, err := decodeZTextChunk(c)
		if err != nil {
			continue
		}
		if t.Keyword == keyword && t.Value == text {
			img.chunks[ztextTag] = append(chunks[:i:i], chunks[i+1:]...)
			return nil
		}
	}
	return ErrTextNotFound
}
