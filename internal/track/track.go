package track

// maxHistoryLength bounds the coast history kept while a track goes
// unmatched. Only the most recent predicted box is ever consumed.
const maxHistoryLength = 64

// Track follows one physical object. It wraps a single filter instance
// plus the lifecycle bookkeeping the orchestrator drives once per
// frame: predict, then at most one update.
type Track struct {
	// ID is unique for the lifetime of the process, monotonically
	// assigned by the owning Tracker and never reused.
	ID int64

	// TimeSinceUpdate counts frames since the last matched detection.
	TimeSinceUpdate int
	// HitStreak counts consecutive frames with a match; any miss
	// resets it.
	HitStreak int
	// Hits counts total matched frames.
	Hits int
	// Age counts total frames since creation.
	Age int

	kf      *boxFilter
	history []Box
}

// newTrack starts a track at an unmatched detection. Counters start at
// zero; the first Predict call the following frame ages it to 1.
func newTrack(id int64, cfg KalmanConfig, det Box) *Track {
	return &Track{
		ID: id,
		kf: newBoxFilter(cfg, det),
	}
}

// Predict advances the filter one frame and updates the lifecycle
// counters. A miss on the previous frame resets the hit streak before
// TimeSinceUpdate is bumped. Returns ok=false when the predicted state
// is degenerate; the caller must treat the track as unrecoverable and
// remove it rather than report it.
func (t *Track) Predict() (Box, bool) {
	t.kf.predict()
	t.Age++
	if t.TimeSinceUpdate > 0 {
		t.HitStreak = 0
	}
	t.TimeSinceUpdate++

	box, ok := t.kf.currentBox()
	if !ok {
		return Box{}, false
	}

	t.history = append(t.history, box)
	if len(t.history) > maxHistoryLength {
		t.history = t.history[1:]
	}
	return box, true
}

// Update feeds the matched detection box into the filter, zeroes
// TimeSinceUpdate and extends the hit streak. The coast history is
// cleared: the track is observed again.
func (t *Track) Update(det Box) bool {
	t.TimeSinceUpdate = 0
	t.history = t.history[:0]
	t.Hits++
	t.HitStreak++
	return t.kf.update(det)
}

// State returns the current mean converted to box form without
// advancing anything. For a degenerate state it returns the zero Box;
// the orchestrator never reports such a track.
func (t *Track) State() Box {
	box, _ := t.kf.currentBox()
	return box
}

// LastPredicted returns the most recent predicted box produced while
// the track was unmatched, if any.
func (t *Track) LastPredicted() (Box, bool) {
	if len(t.history) == 0 {
		return Box{}, false
	}
	return t.history[len(t.history)-1], true
}
