package fec

import "testing"

func TestChecksumDeterministic(t *testing.T) {
	data := []byte("pulse record payload")
	if Checksum(data) != Checksum(data) {
		t.Fatal("checksum not deterministic")
	}
	if Checksum(data) == Checksum([]byte("pulse record paylosd")) {
		t.Fatal("different payloads produced the same checksum")
	}
}

func TestAppendVerifyChecksum(t *testing.T) {
	data := []byte("offset=1234 pulses=5")
	withSum := AppendChecksum(data)
	if len(withSum) != len(data)+4 {
		t.Fatalf("length %d, want %d", len(withSum), len(data)+4)
	}
	got, ok := VerifyChecksum(withSum)
	if !ok || string(got) != string(data) {
		t.Fatalf("round trip failed: ok=%v got=%q", ok, got)
	}

	withSum[0] ^= 0xFF
	if _, ok := VerifyChecksum(withSum); ok {
		t.Fatal("corrupted record should fail verification")
	}
}

func TestRecordGuardRoundTrip(t *testing.T) {
	g, err := NewRecordGuardSized(10, 4)
	if err != nil {
		t.Fatalf("NewRecordGuardSized: %v", err)
	}

	record := []byte("pulse=100 gap=200 offset=5000")
	protected, err := g.Protect(record)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	shardLen := g.ShardLen(len(record))

	recovered, err := g.Recover(protected, shardLen, len(record), nil)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if string(recovered) != string(record) {
		t.Fatalf("recovered %q, want %q", recovered, record)
	}
}

func TestRecordGuardSurvivesErasures(t *testing.T) {
	g, err := NewRecordGuardSized(10, 4)
	if err != nil {
		t.Fatalf("NewRecordGuardSized: %v", err)
	}

	record := []byte("0123456789abcdefghij")
	protected, err := g.Protect(record)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	shardLen := g.ShardLen(len(record))

	// Corrupt two shards worth of bytes and mark them as erasures; 4
	// parity shards can repair up to 4 erasures.
	corrupted := append([]byte(nil), protected...)
	for i := 0; i < shardLen; i++ {
		corrupted[i] = 0xAA
		corrupted[2*shardLen+i] = 0xAA
	}

	recovered, err := g.Recover(corrupted, shardLen, len(record), []int{0, 2})
	if err != nil {
		t.Fatalf("Recover with erasures: %v", err)
	}
	if string(recovered) != string(record) {
		t.Fatalf("recovered %q, want %q", recovered, record)
	}
}
