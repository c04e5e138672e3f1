package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/n6hs/pulsedetect/internal/pulse"
)

func TestMonitorReportPackageAndStatus(t *testing.T) {
	mon := NewMonitor(pulse.KindAmplitude, 10)
	handlers := NewHandlers(mon)

	pd := pulse.NewPulseData(8)
	pd.SampleRate = 250000
	pd.NumPulses = 5
	pd.OOKLowEstimate = 100
	pd.OOKHighEstimate = 9000
	mon.ReportPackage(pulse.CodePulseDataOOK, pd)

	for i := 0; i < 100; i++ {
		mon.ObserveSample(pulse.FullScale)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handlers.HandleStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}

	var body struct {
		RecentPackages []PackagePayload `json:"recentPackages"`
		Histogram      HistogramPayload `json:"histogram"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.RecentPackages) != 1 || body.RecentPackages[0].NumPulses != 5 {
		t.Fatalf("recent packages = %+v, want one entry with 5 pulses", body.RecentPackages)
	}
	if body.Histogram.Total != 100 {
		t.Fatalf("histogram total = %d, want 100", body.Histogram.Total)
	}
}

func TestMonitorKeepsBoundedHistory(t *testing.T) {
	mon := NewMonitor(pulse.KindAmplitude, 3)
	pd := pulse.NewPulseData(4)
	for i := 0; i < 10; i++ {
		pd.NumPulses = i
		mon.ReportPackage(pulse.CodePulseDataOOK, pd)
	}
	mon.mu.Lock()
	n := len(mon.recent)
	last := mon.recent[n-1].NumPulses
	mon.mu.Unlock()
	if n != 3 {
		t.Fatalf("kept %d recent packages, want 3", n)
	}
	if last != 9 {
		t.Fatalf("last kept package numPulses = %d, want 9", last)
	}
}
