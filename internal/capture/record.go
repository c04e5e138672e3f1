// Package capture implements a durable, append-only log of emitted pulse
// packages: persistence of completed records after emission, distinct from
// the detector's own in-memory, per-process state. Each record is
// serialized with a fixed-header binary layout, checksummed, and
// Reed-Solomon protected via internal/fec so a capture file survives a
// corrupted byte range.
package capture

import (
	"encoding/binary"
	"fmt"

	"github.com/n6hs/pulsedetect/internal/pulse"
)

// Record codes, mirroring pulse.CodePulseDataOOK / CodePulseDataFSK so a
// reader can tell the two package kinds apart without importing pulse.
const (
	RecordOOK = byte(pulse.CodePulseDataOOK)
	RecordFSK = byte(pulse.CodePulseDataFSK)
)

// Record is the durable, serializable form of one emitted pulse.PulseData
// package (OOK or FSK). Fixed-header layout:
//
//	[Code(1B)][SampleRate(4B)][Offset(8B)][StartAgo(4B)][EndAgo(4B)]
//	[FSKF1Est(4B)][FSKF2Est(4B)][OOKLowEstimate(4B)][OOKHighEstimate(4B)]
//	[NumPulses(2B)][Pulse[i](4B) Gap[i](4B)]...
type Record struct {
	Code byte

	SampleRate      int
	Offset          int64
	StartAgo        int
	EndAgo          int
	FSKF1Est        int
	FSKF2Est        int
	OOKLowEstimate  int
	OOKHighEstimate int

	Pulse []int
	Gap   []int
}

// FromPulseData builds a Record from a completed PulseData package and the
// code Detect returned for it.
func FromPulseData(code int, pd *pulse.PulseData) Record {
	r := Record{
		Code:            byte(code),
		SampleRate:      pd.SampleRate,
		Offset:          pd.Offset,
		StartAgo:        pd.StartAgo,
		EndAgo:          pd.EndAgo,
		FSKF1Est:        pd.FSKF1Est,
		FSKF2Est:        pd.FSKF2Est,
		OOKLowEstimate:  pd.OOKLowEstimate,
		OOKHighEstimate: pd.OOKHighEstimate,
		Pulse:           append([]int(nil), pd.Pulse[:pd.NumPulses]...),
		Gap:             append([]int(nil), pd.Gap[:pd.NumPulses]...),
	}
	return r
}

const fixedHeaderLen = 1 + 4 + 8 + 4 + 4 + 4 + 4 + 4 + 4 + 2

// Encode serializes r into the fixed-header + pulse/gap-pair layout
// described on Record.
func (r Record) Encode() []byte {
	n := len(r.Pulse)
	buf := make([]byte, fixedHeaderLen+n*8)

	buf[0] = r.Code
	binary.BigEndian.PutUint32(buf[1:5], uint32(r.SampleRate))
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.Offset))
	binary.BigEndian.PutUint32(buf[13:17], uint32(r.StartAgo))
	binary.BigEndian.PutUint32(buf[17:21], uint32(r.EndAgo))
	binary.BigEndian.PutUint32(buf[21:25], uint32(r.FSKF1Est))
	binary.BigEndian.PutUint32(buf[25:29], uint32(r.FSKF2Est))
	binary.BigEndian.PutUint32(buf[29:33], uint32(r.OOKLowEstimate))
	binary.BigEndian.PutUint32(buf[33:37], uint32(r.OOKHighEstimate))
	binary.BigEndian.PutUint16(buf[37:39], uint16(n))

	off := fixedHeaderLen
	for i := 0; i < n; i++ {
		binary.BigEndian.PutUint32(buf[off:off+4], uint32(r.Pulse[i]))
		binary.BigEndian.PutUint32(buf[off+4:off+8], uint32(r.Gap[i]))
		off += 8
	}
	return buf
}

// DecodeRecord deserializes bytes produced by Record.Encode.
func DecodeRecord(data []byte) (Record, error) {
	if len(data) < fixedHeaderLen {
		return Record{}, fmt.Errorf("capture record too short: %d bytes", len(data))
	}
	r := Record{
		Code:            data[0],
		SampleRate:      int(binary.BigEndian.Uint32(data[1:5])),
		Offset:          int64(binary.BigEndian.Uint64(data[5:13])),
		StartAgo:        int(binary.BigEndian.Uint32(data[13:17])),
		EndAgo:          int(binary.BigEndian.Uint32(data[17:21])),
		FSKF1Est:        int(binary.BigEndian.Uint32(data[21:25])),
		FSKF2Est:        int(binary.BigEndian.Uint32(data[25:29])),
		OOKLowEstimate:  int(binary.BigEndian.Uint32(data[29:33])),
		OOKHighEstimate: int(binary.BigEndian.Uint32(data[33:37])),
	}
	n := int(binary.BigEndian.Uint16(data[37:39]))

	want := fixedHeaderLen + n*8
	if len(data) < want {
		return Record{}, fmt.Errorf("capture record truncated: have %d, need %d", len(data), want)
	}

	r.Pulse = make([]int, n)
	r.Gap = make([]int, n)
	off := fixedHeaderLen
	for i := 0; i < n; i++ {
		r.Pulse[i] = int(binary.BigEndian.Uint32(data[off : off+4]))
		r.Gap[i] = int(binary.BigEndian.Uint32(data[off+4 : off+8]))
		off += 8
	}
	return r, nil
}
