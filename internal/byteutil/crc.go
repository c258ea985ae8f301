package byteutil

import "github.com/snksoft/crc"

// CRC32 computes the PNG variant of CRC-32 (reflected, seeded and
// finalized with 0xFFFFFFFF) over data, the same parameters
// github.com/snksoft/crc exposes as crc.CRC32 and the teacher's decoder
// already relied on for chunk validation.
func CRC32(data []byte) uint32 {
	return uint32(crc.CalculateCRC(crc.CRC32, data))
}
