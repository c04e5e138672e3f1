package capture

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/n6hs/pulsedetect/internal/fec"
)

// sessionLogDataShards/sessionLogParityShards are sized for typical
// capture records (a package with a few hundred pulses at most), which
// need far fewer shards than the default RecordGuard's 223+32; the parity
// share is higher here (8 of 40 shards, against 32 of 255).
const (
	sessionLogDataShards   = 32
	sessionLogParityShards = 8
)

// entryHeaderLen is [recordLen(4B)][shardLen(4B)] preceding each entry's
// per-shard checksum table and protected blob.
const entryHeaderLen = 8

// Writer appends RS-protected Records to a capture session log file.
type Writer struct {
	f     *os.File
	guard *fec.RecordGuard
}

// CreateWriter creates (or truncates) path and returns a Writer appending
// to it.
func CreateWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create session log %s: %w", path, err)
	}
	guard, err := fec.NewRecordGuardSized(sessionLogDataShards, sessionLogParityShards)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("build record guard: %w", err)
	}
	return &Writer{f: f, guard: guard}, nil
}

// Append protects and writes one Record. A whole-record CRC-32 trailer is
// appended ahead of the Reed-Solomon protection so Next can cheaply catch
// a bad reconstruction that still passed per-shard and RS-internal
// verification.
func (w *Writer) Append(r Record) error {
	data := fec.AppendChecksum(r.Encode())
	protected, err := w.guard.Protect(data)
	if err != nil {
		return fmt.Errorf("protect record: %w", err)
	}
	shardLen := w.guard.ShardLen(len(data))
	total := w.guard.DataShards() + w.guard.ParityShards()

	header := make([]byte, entryHeaderLen+total*4)
	binary.BigEndian.PutUint32(header[0:4], uint32(len(data)))
	binary.BigEndian.PutUint32(header[4:8], uint32(shardLen))
	for i := 0; i < total; i++ {
		shard := protected[i*shardLen : (i+1)*shardLen]
		binary.BigEndian.PutUint32(header[entryHeaderLen+i*4:entryHeaderLen+i*4+4], fec.Checksum(shard))
	}

	if _, err := w.f.Write(header); err != nil {
		return fmt.Errorf("write session log header: %w", err)
	}
	if _, err := w.f.Write(protected); err != nil {
		return fmt.Errorf("write session log entry: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	return w.f.Close()
}

// Reader reads back Records written by Writer, reconstructing any entry
// whose shards were damaged on disk.
type Reader struct {
	f     *os.File
	guard *fec.RecordGuard
}

// OpenReader opens path for sequential Record reads.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session log %s: %w", path, err)
	}
	guard, err := fec.NewRecordGuardSized(sessionLogDataShards, sessionLogParityShards)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("build record guard: %w", err)
	}
	return &Reader{f: f, guard: guard}, nil
}

// Next reads and recovers the next Record, returning io.EOF once the log
// is exhausted.
func (r *Reader) Next() (Record, error) {
	total := r.guard.DataShards() + r.guard.ParityShards()
	header := make([]byte, entryHeaderLen+total*4)
	if _, err := io.ReadFull(r.f, header); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Record{}, fmt.Errorf("session log truncated mid-entry: %w", err)
		}
		return Record{}, err
	}
	recordLen := int(binary.BigEndian.Uint32(header[0:4]))
	shardLen := int(binary.BigEndian.Uint32(header[4:8]))

	wantCRCs := make([]uint32, total)
	for i := 0; i < total; i++ {
		wantCRCs[i] = binary.BigEndian.Uint32(header[entryHeaderLen+i*4 : entryHeaderLen+i*4+4])
	}

	blob := make([]byte, shardLen*total)
	if _, err := io.ReadFull(r.f, blob); err != nil {
		return Record{}, fmt.Errorf("read session log entry: %w", err)
	}

	var badShards []int
	for i := 0; i < total; i++ {
		shard := blob[i*shardLen : (i+1)*shardLen]
		if fec.Checksum(shard) != wantCRCs[i] {
			badShards = append(badShards, i)
		}
	}

	data, err := r.guard.Recover(blob, shardLen, recordLen, badShards)
	if err != nil {
		return Record{}, fmt.Errorf("recover session log entry: %w", err)
	}
	payload, ok := fec.VerifyChecksum(data)
	if !ok {
		return Record{}, fmt.Errorf("session log entry failed whole-record checksum after recovery")
	}
	return DecodeRecord(payload)
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
