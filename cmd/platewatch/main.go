package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/platewatch/platewatch/internal/api"
	"github.com/platewatch/platewatch/internal/config"
	"github.com/platewatch/platewatch/internal/track"
)

var (
	input      = flag.String("input", "-", "Detection frames as JSON lines, - for stdin")
	dbPath     = flag.String("db", "", "SQLite results database (empty disables persistence)")
	csvPath    = flag.String("csv", "", "Results CSV path (empty disables)")
	listen     = flag.String("listen", "", "HTTP listen address for the status API (empty disables)")
	tuningPath = flag.String("tuning", config.DefaultConfigPath, "Tracker tuning JSON file")
	maxAge     = flag.Int("max-age", 5, "Frames a track survives unmatched")
	minHits    = flag.Int("min-hits", 3, "Hit streak required before reporting")
	minIoU     = flag.Float64("min-iou", 0.3, "Association IoU threshold")
)

// frameInput is one line of replay input:
// {"frame": 12, "detections": [[x1, y1, x2, y2, score], ...]}
type frameInput struct {
	Frame      int64       `json:"frame"`
	Detections [][]float64 `json:"detections"`
}

func main() {
	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	tracker := track.NewTracker(cfg)

	var store *track.SQLiteStore
	sessionID := ""
	if *dbPath != "" {
		store, err = track.OpenStore(*dbPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer store.Close()

		sessionID, err = store.CreateSession(*input, cfg)
		if err != nil {
			log.Fatalf("create session: %v", err)
		}
		log.Printf("recording session %s to %s", sessionID, *dbPath)
	}

	if *listen != "" {
		mux := http.NewServeMux()
		api.NewServer(tracker).RegisterRoutes(mux)
		go func() {
			log.Printf("status API listening on %s", *listen)
			if err := http.ListenAndServe(*listen, mux); err != nil {
				log.Printf("status API: %v", err)
			}
		}()
	}

	in := os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("open input: %v", err)
		}
		defer f.Close()
		in = f
	}

	results, err := replay(tracker, store, sessionID, in)
	if err != nil {
		log.Fatalf("replay: %v", err)
	}

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			log.Fatalf("create csv: %v", err)
		}
		if err := track.WriteCSV(f, results); err != nil {
			f.Close()
			log.Fatalf("write csv: %v", err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("close csv: %v", err)
		}
	}

	m := tracker.Metrics()
	log.Printf("done: %d frames, %d tracks created, %d removed, %d invalid detections",
		m.FramesProcessed, m.TracksCreated, m.TracksRemoved, m.InvalidDetections)
}

func buildConfig() (track.Config, error) {
	tc, err := config.LoadTuningConfig(*tuningPath)
	if err != nil {
		return track.Config{}, err
	}
	cfg := track.ConfigFromTuning(tc)

	// Explicit flags win over the tuning file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-age":
			cfg.MaxAge = *maxAge
		case "min-hits":
			cfg.MinHits = *minHits
		case "min-iou":
			cfg.MinIoU = *minIoU
		}
	})
	return cfg, nil
}

// replay pushes frames through the tracker in order, persisting and
// collecting results as it goes.
func replay(tracker *track.Tracker, store *track.SQLiteStore, sessionID string, in *os.File) ([]track.Result, error) {
	scanner := bufio.NewScanner(in)
	const bufSize = 10 << 20
	scanner.Buffer(make([]byte, bufSize), bufSize)

	var results []track.Result
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var frame frameInput
		if err := json.Unmarshal(line, &frame); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		detections := make([]track.Detection, 0, len(frame.Detections))
		for _, d := range frame.Detections {
			if len(d) < 4 {
				log.Printf("line %d: detection with %d values, want at least 4", lineNo, len(d))
				continue
			}
			det := track.Detection{Box: track.Box{X1: d[0], Y1: d[1], X2: d[2], Y2: d[3]}}
			if len(d) > 4 {
				det.Score = d[4]
			}
			detections = append(detections, det)
		}

		reported := tracker.Update(detections)

		if store != nil {
			if err := store.RecordFrame(sessionID, frame.Frame, reported); err != nil {
				return nil, fmt.Errorf("record frame %d: %w", frame.Frame, err)
			}
		}
		for _, tb := range reported {
			results = append(results, track.Result{
				Frame:      frame.Frame,
				TrackID:    tb.TrackID,
				VehicleBox: tb.Box,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return results, nil
}
