package api

import (
	"encoding/json"
	"net/http"

	"github.com/platewatch/platewatch/internal/config"
	"github.com/platewatch/platewatch/internal/track"
)

// Server exposes tracker state and runtime tuning over HTTP. It reads
// snapshots only; the tracker keeps exclusive ownership of its track
// set and id counter.
type Server struct {
	tracker *track.Tracker
}

// NewServer wraps a tracker for HTTP access.
func NewServer(tr *track.Tracker) *Server {
	return &Server{tracker: tr}
}

// RegisterRoutes attaches the API handlers to mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/tracks", s.handleTracks)
	mux.HandleFunc("/api/tracker/params", s.handleParams)
	mux.HandleFunc("/api/tracker/stats", s.handleStats)
}

// trackJSON is the wire form of one active track.
type trackJSON struct {
	ID              int64   `json:"id"`
	X1              float64 `json:"x1"`
	Y1              float64 `json:"y1"`
	X2              float64 `json:"x2"`
	Y2              float64 `json:"y2"`
	Age             int     `json:"age"`
	HitStreak       int     `json:"hit_streak"`
	TimeSinceUpdate int     `json:"time_since_update"`
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snapshots := s.tracker.ActiveTracks()
	out := make([]trackJSON, 0, len(snapshots))
	for _, snap := range snapshots {
		out = append(out, trackJSON{
			ID:              snap.ID,
			X1:              snap.Box.X1,
			Y1:              snap.Box.Y1,
			X2:              snap.Box.X2,
			Y2:              snap.Box.Y2,
			Age:             snap.Age,
			HitStreak:       snap.HitStreak,
			TimeSinceUpdate: snap.TimeSinceUpdate,
		})
	}
	s.writeJSON(w, map[string]interface{}{
		"frame":  s.tracker.FrameCount(),
		"tracks": out,
	})
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg := s.tracker.Config()
		s.writeJSON(w, map[string]interface{}{
			"max_age":  cfg.MaxAge,
			"min_hits": cfg.MinHits,
			"min_iou":  cfg.MinIoU,
			"kalman":   cfg.Kalman,
		})
	case http.MethodPost:
		var tc config.TuningConfig
		if err := json.NewDecoder(r.Body).Decode(&tc); err != nil {
			s.writeJSONError(w, http.StatusBadRequest, "invalid tuning payload: "+err.Error())
			return
		}
		s.tracker.ApplyTuning(&tc)
		cfg := s.tracker.Config()
		s.writeJSON(w, map[string]interface{}{
			"max_age":  cfg.MaxAge,
			"min_hits": cfg.MinHits,
			"min_iou":  cfg.MinIoU,
		})
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	m := s.tracker.Metrics()
	s.writeJSON(w, map[string]interface{}{
		"frames_processed":   m.FramesProcessed,
		"tracks_created":     m.TracksCreated,
		"tracks_removed":     m.TracksRemoved,
		"invalid_detections": m.InvalidDetections,
		"degenerate_tracks":  m.DegenerateTracks,
		"skipped_updates":    m.SkippedUpdates,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
