package track

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store defines the persistence operations for tracking output. The
// store records what the tracker reported; it never feeds state back
// into a live tracker.
type Store interface {
	CreateSession(source string, cfg Config) (string, error)
	RecordFrame(sessionID string, frame int64, reported []TrackedBox) error
	Sessions() ([]Session, error)
	Tracks(sessionID string) ([]TrackSummary, error)
	Observations(sessionID string, trackID int64) ([]Observation, error)
	Close() error
}

// Session identifies one tracker run over one detection source.
type Session struct {
	ID             string
	Source         string
	StartUnixNanos int64
	TuningJSON     string
}

// TrackSummary aggregates one track's reported lifetime within a
// session.
type TrackSummary struct {
	SessionID        string
	TrackID          int64
	FirstFrame       int64
	LastFrame        int64
	ObservationCount int64
}

// Observation is one reported box for one track on one frame.
type Observation struct {
	SessionID string
	TrackID   int64
	Frame     int64
	Box       Box
	CenterX   float64
	CenterY   float64
}

// SQLiteStore persists sessions, track summaries and per-frame
// observations in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenStore opens (or creates) the store at path and ensures the
// schema exists.
func OpenStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS track_sessions (
			session_id TEXT PRIMARY KEY,
			source TEXT,
			start_unix_nanos BIGINT,
			tuning_json TEXT
		);
		CREATE TABLE IF NOT EXISTS tracks (
			session_id TEXT,
			track_id BIGINT,
			first_frame BIGINT,
			last_frame BIGINT,
			observation_count BIGINT,
			PRIMARY KEY (session_id, track_id),
			FOREIGN KEY (session_id) REFERENCES track_sessions(session_id)
		);
		CREATE TABLE IF NOT EXISTS track_observations (
			session_id TEXT,
			track_id BIGINT,
			frame BIGINT,
			x1 DOUBLE, y1 DOUBLE, x2 DOUBLE, y2 DOUBLE,
			cx DOUBLE, cy DOUBLE,
			PRIMARY KEY (session_id, track_id, frame)
		);
		CREATE INDEX IF NOT EXISTS idx_track_obs_session
			ON track_observations(session_id, frame);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// CreateSession registers a new tracking run and returns its id. The
// tuning snapshot is stored alongside so a session's output can be
// interpreted later.
func (s *SQLiteStore) CreateSession(source string, cfg Config) (string, error) {
	tuning, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal tuning: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO track_sessions (session_id, source, start_unix_nanos, tuning_json) VALUES (?, ?, ?, ?)`,
		id, source, time.Now().UnixNano(), string(tuning),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// RecordFrame persists one frame's reported boxes and rolls them into
// the per-track summaries. A frame with nothing reported is a no-op.
func (s *SQLiteStore) RecordFrame(sessionID string, frame int64, reported []TrackedBox) error {
	if len(reported) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin frame tx: %w", err)
	}
	defer tx.Rollback()

	for _, tb := range reported {
		cx := (tb.Box.X1 + tb.Box.X2) / 2
		cy := (tb.Box.Y1 + tb.Box.Y2) / 2

		_, err = tx.Exec(
			`INSERT INTO track_observations (session_id, track_id, frame, x1, y1, x2, y2, cx, cy)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, tb.TrackID, frame,
			tb.Box.X1, tb.Box.Y1, tb.Box.X2, tb.Box.Y2, cx, cy,
		)
		if err != nil {
			return fmt.Errorf("insert observation: %w", err)
		}

		_, err = tx.Exec(
			`INSERT INTO tracks (session_id, track_id, first_frame, last_frame, observation_count)
			 VALUES (?, ?, ?, ?, 1)
			 ON CONFLICT(session_id, track_id) DO UPDATE SET
				last_frame = excluded.last_frame,
				observation_count = observation_count + 1`,
			sessionID, tb.TrackID, frame, frame,
		)
		if err != nil {
			return fmt.Errorf("upsert track summary: %w", err)
		}
	}

	return tx.Commit()
}

// Sessions lists recorded sessions, newest first.
func (s *SQLiteStore) Sessions() ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT session_id, source, start_unix_nanos, tuning_json
		 FROM track_sessions ORDER BY start_unix_nanos DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Source, &sess.StartUnixNanos, &sess.TuningJSON); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Tracks lists the track summaries for a session in id order.
func (s *SQLiteStore) Tracks(sessionID string) ([]TrackSummary, error) {
	rows, err := s.db.Query(
		`SELECT session_id, track_id, first_frame, last_frame, observation_count
		 FROM tracks WHERE session_id = ? ORDER BY track_id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var out []TrackSummary
	for rows.Next() {
		var ts TrackSummary
		if err := rows.Scan(&ts.SessionID, &ts.TrackID, &ts.FirstFrame, &ts.LastFrame, &ts.ObservationCount); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// Observations lists a track's observations in frame order. With
// trackID <= 0 it returns every observation in the session.
func (s *SQLiteStore) Observations(sessionID string, trackID int64) ([]Observation, error) {
	query := `SELECT session_id, track_id, frame, x1, y1, x2, y2, cx, cy
		 FROM track_observations WHERE session_id = ?`
	args := []interface{}{sessionID}
	if trackID > 0 {
		query += ` AND track_id = ?`
		args = append(args, trackID)
	}
	query += ` ORDER BY track_id, frame`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var out []Observation
	for rows.Next() {
		var obs Observation
		if err := rows.Scan(
			&obs.SessionID, &obs.TrackID, &obs.Frame,
			&obs.Box.X1, &obs.Box.Y1, &obs.Box.X2, &obs.Box.Y2,
			&obs.CenterX, &obs.CenterY,
		); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
