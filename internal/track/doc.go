// Package track implements SORT-style multi-object tracking for
// detector output: one constant-velocity Kalman filter per tracked
// object, frame-wise optimal assignment on an IoU cost matrix, and a
// lifecycle policy for track creation, confirmation and pruning.
//
// Key types: Tracker, Track, Box, Detection.
//
// The package performs only bounded in-memory arithmetic per frame.
// Detection, OCR and any model invocation live outside; callers feed
// ordered per-frame detection lists and consume stable track ids.
package track
