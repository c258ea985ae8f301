package png

// chunkPriority lists the fixed emission order for well-known chunks,
// grounded on Image::to_file() in the reference source: IHDR, gAMA,
// PLTE and IDAT first, then common ancillary tags. Any other tag present is emitted
// afterward in its original insertion order, then IEND, then trailing
// data.
var chunkPriority = []string{
	"IHDR", "gAMA", "PLTE", "IDAT",
	"tRNS", "cHRM", "iCCP", "sBIT", "sRGB", "cICP",
	"tEXt", "zTXt", "iTXt", "bKGD", "hIST", "pHYs", "sPLT",
	"eXIf", "tIME", "acTL", "fcTL", "fdAT",
}

// Serialize emits the full PNG byte stream: signature, chunks in
// priority order, an IEND (synthesized if absent), then trailing data.
// Per spec.md §4.7.
func (img *Image) Serialize() []byte {
	var out []byte
	out = append(out, Signature[:]...)

	emitted := make(map[ChunkTag]bool)

	emitTag := func(tag ChunkTag) {
		for _, c := range img.chunks[tag] {
			out = append(out, EmitChunk(c)...)
		}
		emitted[tag] = true
	}

	for _, name := range chunkPriority {
		emitTag(mustChunkTag(name))
	}

	for _, tag := range img.order {
		if tag == iendTag || emitted[tag] {
			continue
		}
		emitTag(tag)
	}

	if img.HasChunk(iendTag) {
		emitTag(iendTag)
	} else {
		out = append(out, EmitChunk(Chunk{Tag: iendTag, Data: []byte{}})...)
	}

	if img.hasTrailingData {
		out = append(out, img.trailingData...)
	}

	return out
}
