package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/n6hs/pulsedetect/internal/pulse"
)

// Monitor tracks the live detector's recent activity for the HTTP/WebSocket
// handlers to serve: the attenuation histogram and a bounded ring of
// recently emitted packages.
type Monitor struct {
	hub       *WSHub
	histogram *pulse.Histogram

	mu      sync.Mutex
	recent  []PackagePayload
	maxKept int
}

// NewMonitor creates a Monitor whose histogram uses kind's dB mapping and
// which keeps at most maxKept recent package events for HandleStatus.
func NewMonitor(kind pulse.StreamKind, maxKept int) *Monitor {
	if maxKept < 1 {
		maxKept = 50
	}
	return &Monitor{
		hub:       NewWSHub(),
		histogram: pulse.NewHistogram(kind),
		maxKept:   maxKept,
	}
}

// ObserveSample feeds one AM envelope sample into the attenuation
// histogram; callers typically wire this to the detector's SmoothedAM
// debug sink.
func (m *Monitor) ObserveSample(sample int) {
	m.mu.Lock()
	m.histogram.Add(sample)
	m.mu.Unlock()
}

// ReportPackage records and broadcasts one emitted pulse.PulseData
// package.
func (m *Monitor) ReportPackage(code int, pd *pulse.PulseData) {
	codeName := "OOK"
	if code == pulse.CodePulseDataFSK {
		codeName = "FSK"
	}
	payload := PackagePayload{
		Code:            codeName,
		SampleRate:      pd.SampleRate,
		Offset:          pd.Offset,
		NumPulses:       pd.NumPulses,
		FSKF1Est:        pd.FSKF1Est,
		FSKF2Est:        pd.FSKF2Est,
		OOKLowEstimate:  pd.OOKLowEstimate,
		OOKHighEstimate: pd.OOKHighEstimate,
	}

	m.mu.Lock()
	m.recent = append(m.recent, payload)
	if len(m.recent) > m.maxKept {
		m.recent = m.recent[len(m.recent)-m.maxKept:]
	}
	m.mu.Unlock()

	m.hub.BroadcastPackage(payload)
	log.Info().Str("code", codeName).Int("numPulses", pd.NumPulses).Int64("offset", pd.Offset).Msg("package detected")
}

// BroadcastHistogram pushes the current histogram snapshot to all clients.
// Callers typically invoke this periodically rather than per-sample.
func (m *Monitor) BroadcastHistogram() {
	m.mu.Lock()
	buckets := m.histogram.Buckets()
	total := m.histogram.Total()
	m.mu.Unlock()

	m.hub.BroadcastHistogram(HistogramPayload{Buckets: buckets, Total: total})
}

// Handlers wires Monitor into an http.ServeMux.
type Handlers struct {
	monitor *Monitor
}

// NewHandlers creates Handlers backed by monitor.
func NewHandlers(monitor *Monitor) *Handlers {
	return &Handlers{monitor: monitor}
}

// HandleWebSocket upgrades the request and registers the connection with
// the monitor's hub. The monitor is push-only; inbound messages are read
// and discarded until a read fails, at which point the client is removed.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade")
		return
	}
	h.monitor.hub.AddClient(conn)

	go func() {
		defer h.monitor.hub.RemoveClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleStatus returns the histogram snapshot and recently emitted
// packages as JSON.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.monitor.mu.Lock()
	recent := append([]PackagePayload(nil), h.monitor.recent...)
	buckets := h.monitor.histogram.Buckets()
	total := h.monitor.histogram.Total()
	h.monitor.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"recentPackages": recent,
		"histogram":      HistogramPayload{Buckets: buckets, Total: total},
	})
}
