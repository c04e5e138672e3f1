package fec

import (
	"encoding/binary"
	"hash/crc32"
)

// Checksum computes the IEEE CRC-32 of data. The session log checks each
// shard against this before attempting the costlier Reed-Solomon
// reconstruction path, so a clean record never pays for repair it doesn't
// need.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// AppendChecksum appends a 4-byte big-endian CRC-32 trailer to data. The
// session log uses this to give each whole record a cheap integrity check
// ahead of Reed-Solomon protection, independent of the per-shard checksums.
func AppendChecksum(data []byte) []byte {
	out := make([]byte, len(data)+4)
	copy(out, data)
	binary.BigEndian.PutUint32(out[len(data):], Checksum(data))
	return out
}

// VerifyChecksum strips and checks the trailing CRC-32 written by
// AppendChecksum, returning the payload and whether it matched.
func VerifyChecksum(dataWithChecksum []byte) ([]byte, bool) {
	if len(dataWithChecksum) < 4 {
		return nil, false
	}
	data := dataWithChecksum[:len(dataWithChecksum)-4]
	want := binary.BigEndian.Uint32(dataWithChecksum[len(data):])
	return data, Checksum(data) == want
}
