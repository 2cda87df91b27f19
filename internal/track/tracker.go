package track

import (
	"sync"

	"github.com/platewatch/platewatch/internal/monitoring"
)

// Config holds the tracker lifecycle parameters.
type Config struct {
	// MaxAge is how many consecutive unmatched frames a track survives
	// before it is pruned.
	MaxAge int
	// MinHits is the hit streak a track needs before it is reported,
	// outside the session startup grace window.
	MinHits int
	// MinIoU is the overlap threshold below which a candidate
	// track/detection pair is rejected.
	MinIoU float64

	Kalman KalmanConfig
}

// DefaultConfig returns the conventional tracker parameters.
func DefaultConfig() Config {
	return Config{
		MaxAge:  5,
		MinHits: 3,
		MinIoU:  0.3,
		Kalman:  DefaultKalmanConfig(),
	}
}

// Metrics captures aggregate tracker counters for diagnostics.
type Metrics struct {
	FramesProcessed   int64
	TracksCreated     int64
	TracksRemoved     int64
	InvalidDetections int64
	DegenerateTracks  int64
	SkippedUpdates    int64
}

// TrackedBox is one reported association: a detection box confirmed
// this frame, carrying its stable track identity.
type TrackedBox struct {
	Box     Box
	TrackID int64
}

// TrackSnapshot is a read-only view of one active track.
type TrackSnapshot struct {
	ID              int64
	Box             Box
	Age             int
	HitStreak       int
	TimeSinceUpdate int
}

// Tracker owns the active track set and the id counter. It processes
// one frame at a time to completion; frames must arrive in order. Each
// instance is independently instantiable and disposable; no state
// survives the instance.
type Tracker struct {
	mu sync.RWMutex

	cfg        Config
	tracks     []*Track
	nextID     int64
	frameCount int64
	metrics    Metrics
}

// NewTracker creates a tracker with an empty track set and the id
// counter at 1.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:    cfg,
		nextID: 1,
	}
}

// Update runs one frame through the tracker: predict, associate,
// update, create, report, prune. Malformed detections are rejected
// individually; the frame always yields a best-effort report list.
// The returned boxes are the tracks confirmed by a detection this
// frame that pass the reporting rule.
func (t *Tracker) Update(detections []Detection) []TrackedBox {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.frameCount++
	t.metrics.FramesProcessed++

	// Boundary validation: drop malformed boxes, keep the frame.
	detBoxes := make([]Box, 0, len(detections))
	for _, d := range detections {
		if err := d.Box.Validate(); err != nil {
			t.metrics.InvalidDetections++
			monitoring.Logf("track: rejected detection: %v", err)
			continue
		}
		detBoxes = append(detBoxes, d.Box)
	}

	// Predict phase. Tracks with a degenerate predicted state are
	// unrecoverable and excluded from matching.
	alive := make([]*Track, 0, len(t.tracks))
	predicted := make([]Box, 0, len(t.tracks))
	for _, trk := range t.tracks {
		box, ok := trk.Predict()
		if !ok {
			t.metrics.DegenerateTracks++
			t.metrics.TracksRemoved++
			monitoring.Logf("track: dropping track %d with degenerate predicted state", trk.ID)
			continue
		}
		alive = append(alive, trk)
		predicted = append(predicted, box)
	}
	t.tracks = alive

	// Associate and update.
	matches, _, unmatchedDets := associate(predicted, detBoxes, t.cfg.MinIoU)
	for _, m := range matches {
		if !t.tracks[m[0]].Update(detBoxes[m[1]]) {
			t.metrics.SkippedUpdates++
			monitoring.Logf("track: singular innovation covariance on track %d, kept prediction", t.tracks[m[0]].ID)
		}
	}

	// Every unmatched detection spawns a new track.
	for _, j := range unmatchedDets {
		t.tracks = append(t.tracks, newTrack(t.nextID, t.cfg.Kalman, detBoxes[j]))
		t.nextID++
		t.metrics.TracksCreated++
	}

	// Reporting: only tracks confirmed this frame, once the streak is
	// established or while the whole session is inside the startup
	// grace window.
	reported := make([]TrackedBox, 0, len(matches))
	for _, trk := range t.tracks {
		if trk.TimeSinceUpdate != 0 {
			continue
		}
		if trk.HitStreak >= t.cfg.MinHits || t.frameCount <= int64(t.cfg.MinHits) {
			reported = append(reported, TrackedBox{Box: trk.State(), TrackID: trk.ID})
		}
	}

	// Pruning: rebuild the slice in one pass rather than removing
	// entries mid-iteration.
	kept := make([]*Track, 0, len(t.tracks))
	for _, trk := range t.tracks {
		if trk.TimeSinceUpdate > t.cfg.MaxAge {
			t.metrics.TracksRemoved++
			continue
		}
		kept = append(kept, trk)
	}
	t.tracks = kept

	return reported
}

// ActiveTracks returns a snapshot of the current track set.
func (t *Tracker) ActiveTracks() []TrackSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]TrackSnapshot, 0, len(t.tracks))
	for _, trk := range t.tracks {
		box := trk.State()
		if last, ok := trk.LastPredicted(); ok && trk.TimeSinceUpdate > 0 {
			box = last
		}
		out = append(out, TrackSnapshot{
			ID:              trk.ID,
			Box:             box,
			Age:             trk.Age,
			HitStreak:       trk.HitStreak,
			TimeSinceUpdate: trk.TimeSinceUpdate,
		})
	}
	return out
}

// Metrics returns a copy of the aggregate counters.
func (t *Tracker) Metrics() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.metrics
}

// Config returns the current configuration.
func (t *Tracker) Config() Config {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cfg
}

// SetConfig replaces the lifecycle parameters. Noise configuration
// only affects tracks created after the change; live filters keep the
// covariances they were built with.
func (t *Tracker) SetConfig(cfg Config) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg = cfg
}

// FrameCount returns the number of frames processed so far.
func (t *Tracker) FrameCount() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frameCount
}
