// Command pulsescan replays a dual-channel (AM envelope / FM discriminator)
// capture through the pulse detector and reports the OOK/FSK packages it
// finds, optionally capturing live from a stereo I/Q input device instead
// of a WAV file.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/n6hs/pulsedetect/internal/capture"
	"github.com/n6hs/pulsedetect/internal/config"
	"github.com/n6hs/pulsedetect/internal/frontend"
	"github.com/n6hs/pulsedetect/internal/pulse"
	"github.com/n6hs/pulsedetect/internal/server"
	"github.com/n6hs/pulsedetect/internal/wavsink"
)

func main() {
	inputPath := flag.String("input", "", "path to a stereo I/Q WAV capture to replay")
	live := flag.Bool("live", false, "capture from the default stereo I/Q input device instead of -input")
	liveSampleRate := flag.Int("live-rate", 48000, "sample rate to open the live capture device at")
	liveBlockSize := flag.Int("live-block", 2048, "frames per block for live capture")
	configPath := flag.String("config", "", "optional YAML tunables file overlaying the detector config")
	sessionLogPath := flag.String("session-log", "", "optional path to an RS-protected session log to append emitted packages to")
	debugDir := flag.String("debug-dir", "", "optional directory to write the six debug WAV streams to")
	monitorAddr := flag.String("monitor-addr", "", "optional address to serve a live HTTP/WebSocket monitor on, e.g. 0.0.0.0:8080")
	useMagEst := flag.Bool("mag-est", false, "use the magnitude dB mapping instead of amplitude")
	fskMode := flag.String("fsk-mode", "classic", "FSK sub-detector mode: classic or minmax")
	verbosity := flag.Int("v", 0, "verbosity level forwarded to the detector config")
	listDevices := flag.Bool("list-devices", false, "list capture devices and exit")
	flag.Parse()

	zerolog.SetGlobalLevel(verbosityToLevel(*verbosity))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *listDevices {
		if err := frontend.PrintInputDevices(); err != nil {
			log.Fatal().Err(err).Msg("list capture devices")
		}
		return
	}

	if !*live && *inputPath == "" {
		log.Fatal().Msg("-input is required (or pass -live to capture from hardware; use -list-devices to inspect it first)")
	}

	var stream *frontend.Stream
	var liveCap *frontend.LiveCapture
	var err error
	sampleRate := *liveSampleRate
	if !*live {
		stream, err = frontend.LoadIQWAV(*inputPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *inputPath).Msg("load capture")
		}
		sampleRate = stream.SampleRate
	} else {
		if err := frontend.Init(); err != nil {
			log.Fatal().Err(err).Msg("init portaudio")
		}
		defer frontend.Terminate()

		liveCap = frontend.NewLiveCapture(*liveSampleRate, *liveBlockSize)
		if err := liveCap.Open(); err != nil {
			log.Fatal().Err(err).Msg("open live capture device")
		}
		defer liveCap.Close()
		if err := liveCap.Start(); err != nil {
			log.Fatal().Err(err).Msg("start live capture")
		}
		defer liveCap.Stop()
	}

	cfg := pulse.DefaultConfig(sampleRate)
	cfg.UseMagEst = *useMagEst
	cfg.Verbosity = *verbosity
	if *configPath != "" {
		tun, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load tunables config")
		}
		cfg = tun.Apply(cfg)
		// Flags given explicitly on the command line win over the file.
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "mag-est":
				cfg.UseMagEst = *useMagEst
			case "v":
				cfg.Verbosity = *verbosity
			}
		})
	}

	mode := pulse.FSKPulseDetectOld
	if *fskMode == "minmax" {
		mode = pulse.FSKPulseDetectNew
	}

	var sinks *pulse.DebugSinks
	var sinkSet *wavsink.Set
	if *debugDir != "" {
		sinks, sinkSet, err = wavsink.OpenSet(*debugDir, sampleRate)
		if err != nil {
			log.Fatal().Err(err).Msg("open debug sinks")
		}
		defer sinkSet.Close()
	}

	var sessionWriter *capture.Writer
	if *sessionLogPath != "" {
		sessionWriter, err = capture.CreateWriter(*sessionLogPath)
		if err != nil {
			log.Fatal().Err(err).Msg("create session log")
		}
		defer sessionWriter.Close()
	}

	kind := pulse.KindAmplitude
	if cfg.UseMagEst {
		kind = pulse.KindMagnitude
	}
	monitor := server.NewMonitor(kind, 200)
	if sinks == nil {
		sinks = &pulse.DebugSinks{}
	}
	sinks.SmoothedAM = &histogramSink{monitor: monitor, inner: sinks.SmoothedAM}

	if *monitorAddr != "" {
		handlers := server.NewHandlers(monitor)
		srv := server.NewServer(*monitorAddr, handlers)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg("monitor server stopped")
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutting down")
		os.Exit(0)
	}()

	if *live {
		runLive(liveCap, cfg, sinks, mode, monitor, sessionWriter)
	} else {
		runScan(stream, cfg, sinks, mode, monitor, sessionWriter)
	}
}

// runScan drives Detect across the whole capture, handling its
// resume-where-it-left-off contract: a non-zero return means the caller
// must consume the records before calling again, and Detect picks up where
// it left off on the next call with the same buffers.
func runScan(stream *frontend.Stream, cfg pulse.Config, sinks *pulse.DebugSinks, mode pulse.FSKMode, monitor *server.Monitor, sessionWriter *capture.Writer) {
	det := pulse.NewDetector(cfg, sinks)
	pulses := pulse.NewPulseData(cfg.MaxPulses)
	fskPulses := pulse.NewPulseData(cfg.MaxPulses)

	for {
		code := det.Detect(stream.Envelope, stream.FM, 0, pulses, fskPulses, mode)
		if code == pulse.CodeNeedMoreData {
			return
		}

		monitor.ReportPackage(code, pulses)
		if code == pulse.CodePulseDataFSK {
			monitor.ReportPackage(code, fskPulses)
		}
		if sessionWriter != nil {
			if err := sessionWriter.Append(capture.FromPulseData(code, pulses)); err != nil {
				log.Error().Err(err).Msg("append session log record")
			}
			if code == pulse.CodePulseDataFSK {
				if err := sessionWriter.Append(capture.FromPulseData(code, fskPulses)); err != nil {
					log.Error().Err(err).Msg("append fsk session log record")
				}
			}
		}
		monitor.BroadcastHistogram()
	}
}

// runLive mirrors runScan's resume-at-data_counter contract but feeds the
// detector a fresh block of (envelope, fm) samples from the capture device
// each time the previous block is fully consumed, tracking the cumulative
// sample offset across blocks so emitted PulseData.Offset values stay
// meaningful for a session that runs for hours.
func runLive(liveCap *frontend.LiveCapture, cfg pulse.Config, sinks *pulse.DebugSinks, mode pulse.FSKMode, monitor *server.Monitor, sessionWriter *capture.Writer) {
	det := pulse.NewDetector(cfg, sinks)
	pulses := pulse.NewPulseData(cfg.MaxPulses)
	fskPulses := pulse.NewPulseData(cfg.MaxPulses)

	var offset int64
	for {
		envelope, fm, err := liveCap.ReadBlock()
		if err != nil {
			log.Error().Err(err).Msg("read live capture block")
			return
		}

		for {
			code := det.Detect(envelope, fm, offset, pulses, fskPulses, mode)
			if code == pulse.CodeNeedMoreData {
				break
			}

			monitor.ReportPackage(code, pulses)
			if code == pulse.CodePulseDataFSK {
				monitor.ReportPackage(code, fskPulses)
			}
			if sessionWriter != nil {
				if err := sessionWriter.Append(capture.FromPulseData(code, pulses)); err != nil {
					log.Error().Err(err).Msg("append session log record")
				}
				if code == pulse.CodePulseDataFSK {
					if err := sessionWriter.Append(capture.FromPulseData(code, fskPulses)); err != nil {
						log.Error().Err(err).Msg("append fsk session log record")
					}
				}
			}
			monitor.BroadcastHistogram()
		}
		offset += int64(len(envelope))
	}
}

// histogramSink feeds every smoothed AM sample into the monitor's
// attenuation histogram while still forwarding to any real debug sink the
// caller configured for that same stream.
type histogramSink struct {
	monitor *server.Monitor
	inner   pulse.Sink
}

func (h *histogramSink) Write(sample int) {
	h.monitor.ObserveSample(sample)
	if h.inner != nil {
		h.inner.Write(sample)
	}
}

func verbosityToLevel(v int) zerolog.Level {
	switch {
	case v <= 0:
		return zerolog.InfoLevel
	case v == 1:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}
