// Package storage provides SQLite-based persistence for trial results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/slingshot-trial/internal/experiment"
	"github.com/vovakirdan/slingshot-trial/internal/trial"
)

// Store manages the SQLite database connection for result persistence.
type Store struct {
	db *sql.DB
}

// TrialRecord is one stored trial.
type TrialRecord struct {
	ID          int64
	TrialID     string
	SessionID   string
	Participant string
	Experiment  string
	TrialIndex  int
	Stimulus    string
	TotalTrials int
	TotalHits   int
	XLocTarget  float64
	XLocBall    float64
	YLocBall    float64
	EndReason   string // "completed", "timeout", "aborted"
	DurationMs  int64
	StartedAt   time.Time
	CreatedAt   time.Time
}

// Result returns the controller's result shape of the record.
func (r TrialRecord) Result() trial.Result {
	return trial.Result{
		TotalTrials: r.TotalTrials,
		TotalHits:   r.TotalHits,
		XLocTarget:  r.XLocTarget,
		XLocBall:    r.XLocBall,
		YLocBall:    r.YLocBall,
	}
}

// Earnings returns the reward in cents for the trial.
func (r TrialRecord) Earnings() int {
	return r.TotalHits * trial.RewardPerHit
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS trials (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			trial_id TEXT NOT NULL UNIQUE,
			session_id TEXT NOT NULL,
			participant TEXT NOT NULL DEFAULT '',
			experiment TEXT NOT NULL DEFAULT '',
			trial_index INTEGER NOT NULL,
			stimulus TEXT NOT NULL,
			total_trials INTEGER NOT NULL DEFAULT 0,
			total_hits INTEGER NOT NULL DEFAULT 0,
			x_loc_target REAL NOT NULL DEFAULT 0,
			x_loc_ball REAL NOT NULL DEFAULT 0,
			y_loc_ball REAL NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_trials_session ON trials(session_id, trial_index);
		CREATE INDEX IF NOT EXISTS idx_trials_participant ON trials(participant);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const trialColumns = `id, trial_id, session_id, participant, experiment, trial_index, stimulus,
	total_trials, total_hits, x_loc_target, x_loc_ball, y_loc_ball,
	end_reason, duration_ms, started_at, created_at`

// SaveTrial records a finished trial.
// Returns the ID of the inserted record.
func (s *Store) SaveTrial(rec TrialRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO trials
		 (trial_id, session_id, participant, experiment, trial_index, stimulus,
		  total_trials, total_hits, x_loc_target, x_loc_ball, y_loc_ball,
		  end_reason, duration_ms, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TrialID,
		rec.SessionID,
		rec.Participant,
		rec.Experiment,
		rec.TrialIndex,
		rec.Stimulus,
		rec.TotalTrials,
		rec.TotalHits,
		rec.XLocTarget,
		rec.XLocBall,
		rec.YLocBall,
		rec.EndReason,
		rec.DurationMs,
		rec.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save trial: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TrialByID retrieves a trial by its trial ID. Returns nil if not found.
func (s *Store) TrialByID(trialID string) (*TrialRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+trialColumns+`
		 FROM trials
		 WHERE trial_id = ?`,
		trialID,
	)

	rec, err := scanTrial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query trial: %w", err)
	}
	return rec, nil
}

// SessionTrials retrieves every trial of a session in experiment order.
func (s *Store) SessionTrials(sessionID string) ([]TrialRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+trialColumns+`
		 FROM trials
		 WHERE session_id = ?
		 ORDER BY trial_index`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session trials: %w", err)
	}
	return collectTrials(rows)
}

// RecentTrials retrieves the most recently stored trials.
func (s *Store) RecentTrials(limit int) ([]TrialRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+trialColumns+`
		 FROM trials
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query trials: %w", err)
	}
	return collectTrials(rows)
}

// SaveRecord implements experiment.RecordSaver.
// This adapter allows the runner to save trials without direct storage dependency.
func (s *Store) SaveRecord(rec experiment.Record) error {
	_, err := s.SaveTrial(TrialRecord{
		TrialID:     rec.TrialID,
		SessionID:   rec.SessionID,
		Participant: rec.Participant,
		Experiment:  rec.Experiment,
		TrialIndex:  rec.Index,
		Stimulus:    rec.Stimulus,
		TotalTrials: rec.Result.TotalTrials,
		TotalHits:   rec.Result.TotalHits,
		XLocTarget:  rec.Result.XLocTarget,
		XLocBall:    rec.Result.XLocBall,
		YLocBall:    rec.Result.YLocBall,
		EndReason:   string(rec.Reason),
		DurationMs:  rec.Duration.Milliseconds(),
		StartedAt:   rec.StartedAt,
	})
	return err
}

// Ensure Store implements RecordSaver
var _ experiment.RecordSaver = (*Store)(nil)

// SessionStats contains aggregated statistics for one session.
type SessionStats struct {
	SessionID   string
	Participant string
	Experiment  string
	Trials      int
	Shots       int
	Hits        int
	LastPlayed  time.Time
}

// Earnings returns the session's total reward in cents.
func (s SessionStats) Earnings() int {
	return s.Hits * trial.RewardPerHit
}

// Sessions retrieves per-session statistics, most recent first.
func (s *Store) Sessions(limit int) ([]SessionStats, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT session_id, MAX(participant), MAX(experiment), COUNT(*),
		        SUM(total_trials), SUM(total_hits), MAX(created_at)
		 FROM trials
		 GROUP BY session_id
		 ORDER BY MAX(id) DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get session stats: %w", err)
	}
	defer rows.Close()

	var stats []SessionStats
	for rows.Next() {
		var st SessionStats
		var lastPlayed any
		if err := rows.Scan(&st.SessionID, &st.Participant, &st.Experiment, &st.Trials,
			&st.Shots, &st.Hits, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats = append(stats, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

const timeLayout = "2006-01-02 15:04:05"

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrial(sc scanner) (*TrialRecord, error) {
	var rec TrialRecord
	var startedAt, createdAt any
	if err := sc.Scan(
		&rec.ID,
		&rec.TrialID,
		&rec.SessionID,
		&rec.Participant,
		&rec.Experiment,
		&rec.TrialIndex,
		&rec.Stimulus,
		&rec.TotalTrials,
		&rec.TotalHits,
		&rec.XLocTarget,
		&rec.XLocBall,
		&rec.YLocBall,
		&rec.EndReason,
		&rec.DurationMs,
		&startedAt,
		&createdAt,
	); err != nil {
		return nil, err
	}
	rec.StartedAt = parseTime(startedAt)
	rec.CreatedAt = parseTime(createdAt)
	return &rec, nil
}

func collectTrials(rows *sql.Rows) ([]TrialRecord, error) {
	defer rows.Close()

	var records []TrialRecord
	for rows.Next() {
		rec, err := scanTrial(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}
