package track

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/platewatch/platewatch/internal/monitoring"
)

func muteLogs(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })
}

func det(x1, y1, x2, y2 float64) Detection {
	return Detection{Box: Box{X1: x1, Y1: y1, X2: x2, Y2: y2}}
}

func TestNewTracker(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	if tr == nil {
		t.Fatal("expected non-nil tracker")
	}
	if tr.nextID != 1 {
		t.Errorf("id counter must start at 1, got %d", tr.nextID)
	}
	if len(tr.ActiveTracks()) != 0 {
		t.Error("fresh tracker must have no active tracks")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxAge < 1 {
		t.Errorf("MaxAge must be >= 1, got %d", cfg.MaxAge)
	}
	if cfg.MinHits < 1 {
		t.Errorf("MinHits must be >= 1, got %d", cfg.MinHits)
	}
	if cfg.MinIoU <= 0 || cfg.MinIoU >= 1 {
		t.Errorf("MinIoU must be in (0,1), got %v", cfg.MinIoU)
	}
}

// TestTrackerScenario follows the canonical four-frame script: create,
// match, occlude, re-acquire.
func TestTrackerScenario(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	// Frame 1: one detection, no tracks. A track spawns and reports
	// immediately inside the startup grace window.
	reported := tr.Update([]Detection{det(10, 10, 50, 50)})
	if len(reported) != 1 {
		t.Fatalf("frame 1: expected 1 reported box, got %d", len(reported))
	}
	if reported[0].TrackID != 1 {
		t.Errorf("frame 1: expected id 1, got %d", reported[0].TrackID)
	}

	// Frame 2: a shifted detection matches and reports the same id.
	reported = tr.Update([]Detection{det(12, 11, 52, 51)})
	if len(reported) != 1 || reported[0].TrackID != 1 {
		t.Fatalf("frame 2: expected id 1 reported, got %v", reported)
	}

	// Frame 3: no detections. Nothing reports; the track coasts.
	reported = tr.Update(nil)
	if len(reported) != 0 {
		t.Errorf("frame 3: stale prediction must not be reported, got %v", reported)
	}
	snaps := tr.ActiveTracks()
	if len(snaps) != 1 {
		t.Fatalf("frame 3: track must survive a single miss, got %d tracks", len(snaps))
	}
	if snaps[0].TimeSinceUpdate != 1 {
		t.Errorf("frame 3: expected TimeSinceUpdate 1, got %d", snaps[0].TimeSinceUpdate)
	}
	// The coast prediction continues the learned motion rather than
	// jumping: the center must have advanced past the last update.
	cx := (snaps[0].Box.X1 + snaps[0].Box.X2) / 2
	if cx <= 32 {
		t.Errorf("frame 3: coast prediction did not advance, center x=%v", cx)
	}

	// Frame 4: the object reappears and re-associates to id 1.
	tr.Update([]Detection{det(16, 13, 56, 53)})
	snaps = tr.ActiveTracks()
	if len(snaps) != 1 || snaps[0].ID != 1 {
		t.Fatalf("frame 4: expected only track 1, got %+v", snaps)
	}
	if snaps[0].TimeSinceUpdate != 0 {
		t.Errorf("frame 4: match must reset TimeSinceUpdate, got %d", snaps[0].TimeSinceUpdate)
	}
	if created := tr.Metrics().TracksCreated; created != 1 {
		t.Errorf("frame 4: no new track should have spawned, created=%d", created)
	}
}

func TestTrackerReportingRule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinHits = 2
	tr := NewTracker(cfg)

	// Burn through the startup grace window with an unrelated object.
	for i := 0; i < 3; i++ {
		tr.Update([]Detection{det(500, 500, 540, 540)})
	}

	// A new object now needs MinHits consecutive matches to report.
	reported := tr.Update([]Detection{det(500, 500, 540, 540), det(10, 10, 50, 50)})
	for _, r := range reported {
		if r.TrackID != 1 {
			t.Errorf("unconfirmed track reported on first hit: %+v", r)
		}
	}

	reported = tr.Update([]Detection{det(500, 500, 540, 540), det(11, 10, 51, 50)})
	found := false
	for _, r := range reported {
		if r.TrackID == 2 {
			found = true
		}
	}
	if found {
		t.Error("track reported with streak 1 < MinHits 2")
	}

	reported = tr.Update([]Detection{det(500, 500, 540, 540), det(12, 10, 52, 50)})
	found = false
	for _, r := range reported {
		if r.TrackID == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("confirmed track not reported: %v", reported)
	}
}

func TestTrackerIDMonotonicity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAge = 1
	tr := NewTracker(cfg)

	// Spawn a track, let it die, spawn another at the same place. The
	// id must advance, never repeat.
	tr.Update([]Detection{det(10, 10, 50, 50)})
	for i := 0; i < 4; i++ {
		tr.Update(nil)
	}
	if len(tr.ActiveTracks()) != 0 {
		t.Fatal("expected track pruned")
	}

	reported := tr.Update([]Detection{det(10, 10, 50, 50)})
	if len(reported) != 0 {
		// Past the grace window with MinHits 3; nothing reports yet.
		t.Logf("unexpected report: %v", reported)
	}
	snaps := tr.ActiveTracks()
	if len(snaps) != 1 {
		t.Fatalf("expected 1 track, got %d", len(snaps))
	}
	if snaps[0].ID != 2 {
		t.Errorf("pruned id reused: got %d, want 2", snaps[0].ID)
	}
}

func TestTrackerPruning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAge = 2
	cfg.MinHits = 1
	tr := NewTracker(cfg)

	tr.Update([]Detection{det(10, 10, 50, 50)})
	tr.Update([]Detection{det(12, 10, 52, 50)})

	// Unmatched for MaxAge frames: retained.
	tr.Update(nil)
	tr.Update(nil)
	if len(tr.ActiveTracks()) != 1 {
		t.Fatal("track pruned before exceeding MaxAge")
	}

	// One more miss exceeds MaxAge: pruned for good.
	tr.Update(nil)
	if len(tr.ActiveTracks()) != 0 {
		t.Fatal("track not pruned after exceeding MaxAge")
	}

	// It never reappears in later reports.
	for i := 0; i < 5; i++ {
		for _, r := range tr.Update(nil) {
			if r.TrackID == 1 {
				t.Fatalf("pruned track reported on frame %d", i)
			}
		}
	}
}

func TestTrackerInvalidDetections(t *testing.T) {
	muteLogs(t)
	tr := NewTracker(DefaultConfig())

	// One malformed detection must not abort the frame.
	reported := tr.Update([]Detection{
		det(50, 10, 10, 50), // x1 > x2
		det(10, 10, 50, 50),
		{Box: Box{X1: math.NaN(), Y1: 0, X2: 10, Y2: 10}},
	})
	if len(reported) != 1 {
		t.Fatalf("expected the valid detection reported, got %v", reported)
	}

	m := tr.Metrics()
	if m.InvalidDetections != 2 {
		t.Errorf("expected 2 invalid detections counted, got %d", m.InvalidDetections)
	}
	if m.TracksCreated != 1 {
		t.Errorf("expected 1 track created, got %d", m.TracksCreated)
	}
}

func TestTrackerEmptyFrames(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	// Empty detection list on an empty tracker is valid input.
	if reported := tr.Update(nil); len(reported) != 0 {
		t.Errorf("expected empty report, got %v", reported)
	}

	// All detections become tracks when the track set is empty.
	tr.Update([]Detection{det(0, 0, 10, 10), det(100, 100, 120, 120)})
	if len(tr.ActiveTracks()) != 2 {
		t.Errorf("expected 2 tracks, got %d", len(tr.ActiveTracks()))
	}
}

func TestTrackerDeterminism(t *testing.T) {
	frames := [][]Detection{
		{det(10, 10, 50, 50), det(200, 200, 260, 240)},
		{det(14, 11, 54, 51), det(205, 202, 265, 242)},
		{det(18, 12, 58, 52)},
		nil,
		{det(26, 14, 66, 54), det(215, 206, 275, 246), det(400, 0, 440, 30)},
		{det(30, 15, 70, 55), det(404, 1, 444, 31)},
	}

	run := func() [][]TrackedBox {
		tr := NewTracker(DefaultConfig())
		var out [][]TrackedBox
		for _, f := range frames {
			out = append(out, tr.Update(f))
		}
		return out
	}

	first := run()
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, run()); diff != "" {
			t.Fatalf("run %d diverged (-first +again):\n%s", i, diff)
		}
	}
}

func TestTrackerActiveTracksSnapshot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinHits = 1
	tr := NewTracker(cfg)

	tr.Update([]Detection{det(10, 10, 50, 50)})
	snaps := tr.ActiveTracks()
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if snaps[0].Age != 0 {
		t.Errorf("new track age must be 0, got %d", snaps[0].Age)
	}
	if err := snaps[0].Box.Validate(); err != nil {
		t.Errorf("snapshot box invalid: %v", err)
	}
}
