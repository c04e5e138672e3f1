// Package fec protects a single on-disk record with Reed-Solomon parity so
// a session log (internal/capture) can tolerate a burst of corrupted or
// truncated bytes — a disk glitch or a crash mid-write — without losing the
// whole capture file.
package fec

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// Default shard counts for a protected record: 223 data shards, 32 parity
// shards (RS(255,223), tolerating up to 32 corrupted or missing shards).
const (
	DefaultDataShards   = 223
	DefaultParityShards = 32
)

// RecordGuard wraps a Reed-Solomon codec sized for whole-record protection.
type RecordGuard struct {
	codec      reedsolomon.Encoder
	dataShards int
	parShards  int
}

// NewRecordGuard builds a RecordGuard using the default shard counts.
func NewRecordGuard() (*RecordGuard, error) {
	return NewRecordGuardSized(DefaultDataShards, DefaultParityShards)
}

// NewRecordGuardSized builds a RecordGuard with custom shard counts, for
// callers protecting records much smaller or larger than the default.
func NewRecordGuardSized(dataShards, parityShards int) (*RecordGuard, error) {
	codec, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("build reed-solomon codec: %w", err)
	}
	return &RecordGuard{codec: codec, dataShards: dataShards, parShards: parityShards}, nil
}

// Protect splits record into g.dataShards data shards (zero-padded to a
// common shard length) plus g.parShards parity shards, and returns them
// concatenated as a single byte blob ready to append to the session log.
// The shard length is not stored in the blob; callers must record it
// alongside (internal/capture stores it in the record header) so Recover
// can split the blob back into shards.
func (g *RecordGuard) Protect(record []byte) ([]byte, error) {
	shards, shardLen, err := g.splitRecord(record)
	if err != nil {
		return nil, err
	}
	if err := g.codec.Encode(shards); err != nil {
		return nil, fmt.Errorf("encode record shards: %w", err)
	}

	total := g.dataShards + g.parShards
	out := make([]byte, 0, total*shardLen)
	for _, shard := range shards {
		out = append(out, shard...)
	}
	return out, nil
}

// Recover reconstructs a record from a protected blob of the given
// shardLen, given the zero-based indices of shards known (or suspected) to
// be corrupted — typically the shards whose enclosing byte range failed a
// checksum check. recordLen trims the trailing zero padding Protect added.
func (g *RecordGuard) Recover(protected []byte, shardLen, recordLen int, badShards []int) ([]byte, error) {
	total := g.dataShards + g.parShards
	if len(protected) != total*shardLen {
		return nil, fmt.Errorf("protected blob size %d does not match %d shards of %d bytes", len(protected), total, shardLen)
	}

	shards := make([][]byte, total)
	for i := 0; i < total; i++ {
		shards[i] = append([]byte(nil), protected[i*shardLen:(i+1)*shardLen]...)
	}
	for _, idx := range badShards {
		if idx >= 0 && idx < total {
			shards[idx] = nil
		}
	}

	if err := g.codec.Reconstruct(shards); err != nil {
		return nil, fmt.Errorf("reconstruct record: %w", err)
	}
	ok, err := g.codec.Verify(shards)
	if err != nil {
		return nil, fmt.Errorf("verify reconstructed record: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("record unrecoverable: too many corrupted shards")
	}

	data := make([]byte, 0, g.dataShards*shardLen)
	for i := 0; i < g.dataShards; i++ {
		data = append(data, shards[i]...)
	}
	if recordLen > len(data) {
		recordLen = len(data)
	}
	return data[:recordLen], nil
}

// ShardLen returns the shard length Protect will use for a record of the
// given length — callers need this to store alongside the protected blob.
func (g *RecordGuard) ShardLen(recordLen int) int {
	if recordLen <= 0 {
		return 1
	}
	return (recordLen + g.dataShards - 1) / g.dataShards
}

func (g *RecordGuard) splitRecord(record []byte) ([][]byte, int, error) {
	shardLen := g.ShardLen(len(record))
	total := g.dataShards + g.parShards

	shards := make([][]byte, total)
	for i := 0; i < g.dataShards; i++ {
		shards[i] = make([]byte, shardLen)
		start := i * shardLen
		if start >= len(record) {
			continue
		}
		end := start + shardLen
		if end > len(record) {
			end = len(record)
		}
		copy(shards[i], record[start:end])
	}
	for i := g.dataShards; i < total; i++ {
		shards[i] = make([]byte, shardLen)
	}
	return shards, shardLen, nil
}

// DataShards reports the configured number of data shards.
func (g *RecordGuard) DataShards() int { return g.dataShards }

// ParityShards reports the configured number of parity shards.
func (g *RecordGuard) ParityShards() int { return g.parShards }
