package wavsink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestSinkWritesPlayableWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smoothed.wav")
	sink, err := New(path, 8000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 10000; i++ {
		sink.Write(i % 100)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("sink did not produce a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if len(buf.Data) != 10000 {
		t.Fatalf("got %d samples, want 10000", len(buf.Data))
	}
}

func TestOpenSetCreatesWritableSinks(t *testing.T) {
	dir := t.TempDir()
	sinks, set, err := OpenSet(dir, 8000)
	if err != nil {
		t.Fatalf("OpenSet: %v", err)
	}
	defer set.Close()

	if sinks.SmoothedAM == nil {
		t.Fatal("expected smoothed AM sink to be created")
	}
	sinks.SmoothedAM.Write(42)
}
