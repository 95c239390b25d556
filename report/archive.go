package report

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import go-sqlite3 library
)

// ErrRunMissing is returned for run ids that are not in the archive.
var ErrRunMissing = errors.New("run not found")

// Archive keeps the outcome of every run in SQLite so runs over the same
// election can be compared later.
type Archive struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT NOT NULL PRIMARY KEY,   -- xid of the run
		period TEXT NOT NULL,
		root TEXT NOT NULL,
		version TEXT NOT NULL,
		started_at INTEGER NOT NULL,    -- unix timestamp in milliseconds
		duration_ms INTEGER NOT NULL,
		successful INTEGER NOT NULL,
		with_errors INTEGER NOT NULL,
		with_failures INTEGER NOT NULL,
		excluded INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS verifications (
		run_id TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		status TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		PRIMARY KEY (run_id, id)
	);`,
	`CREATE TABLE IF NOT EXISTS events (
		run_id TEXT NOT NULL,
		verification_id TEXT NOT NULL,
		seq INTEGER NOT NULL,           -- errors first, then failures
		kind TEXT NOT NULL,             -- error or failure
		message TEXT NOT NULL,
		PRIMARY KEY (run_id, verification_id, seq)
	);`,
}

// OpenArchive opens or creates the archive at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	for _, q := range schema {
		stmt, err := db.Prepare(q)
		if err != nil {
			db.Close()
			return nil, err
		}
		_, err = stmt.Exec()
		stmt.Close()
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Store saves a run with its verifications and events in one transaction.
func (a *Archive) Store(d *Data) (err error) {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	_, err = tx.Exec(`
		INSERT INTO runs (id, period, root, version, started_at, duration_ms, successful, with_errors, with_failures, excluded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.RunID, string(d.Period), d.Root, d.Version, d.Started.UnixNano()/int64(time.Millisecond), d.Duration.Milliseconds(),
		d.Counts.Successful, d.Counts.WithErrors, d.Counts.WithFailures, d.Counts.Excluded,
	)
	if err != nil {
		return fmt.Errorf("cannot store run %s: %w", d.RunID, err)
	}
	vstmt, err := tx.Prepare(`
		INSERT INTO verifications (run_id, id, name, category, status, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer vstmt.Close()
	estmt, err := tx.Prepare(`
		INSERT INTO events (run_id, verification_id, seq, kind, message) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer estmt.Close()

	for _, v := range d.Verifications {
		if _, err = vstmt.Exec(d.RunID, v.ID, v.Name, string(v.Category), v.Status, v.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("cannot store verification %s: %w", v.ID, err)
		}
		seq := 0
		for _, group := range []struct {
			kind     string
			messages []string
		}{{"error", v.Errors}, {"failure", v.Failures}} {
			for _, msg := range group.messages {
				if _, err = estmt.Exec(d.RunID, v.ID, seq, group.kind, msg); err != nil {
					return fmt.Errorf("cannot store events of %s: %w", v.ID, err)
				}
				seq++
			}
		}
	}
	return nil
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID           string
	Period       string
	Root         string
	Version      string
	Started      time.Time
	Duration     time.Duration
	Successful   int
	WithErrors   int
	WithFailures int
	Excluded     int
}

func scanRun(scan func(dest ...interface{}) error) (RunSummary, error) {
	var r RunSummary
	var started, duration int64
	err := scan(&r.ID, &r.Period, &r.Root, &r.Version, &started, &duration,
		&r.Successful, &r.WithErrors, &r.WithFailures, &r.Excluded)
	r.Started = time.Unix(0, started*int64(time.Millisecond))
	r.Duration = time.Duration(duration) * time.Millisecond
	return r, err
}

const runColumns = `id, period, root, version, started_at, duration_ms, successful, with_errors, with_failures, excluded`

// Runs lists the archived runs, most recent first.
func (a *Archive) Runs() ([]RunSummary, error) {
	rows, err := a.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunSummary
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Run fetches one run by id.
func (a *Archive) Run(id string) (RunSummary, error) {
	r, err := scanRun(a.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%w: %s", ErrRunMissing, id)
	}
	return r, err
}

// ArchivedEvent is one stored event of a run.
type ArchivedEvent struct {
	VerificationID string
	Kind           string
	Message        string
}

// Events lists the events of a run by verification id, errors first.
func (a *Archive) Events(runID string) ([]ArchivedEvent, error) {
	rows, err := a.db.Query(`
		SELECT verification_id, kind, message FROM events
		WHERE run_id = ?
		ORDER BY verification_id ASC, seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ArchivedEvent
	for rows.Next() {
		var e ArchivedEvent
		if err := rows.Scan(&e.VerificationID, &e.Kind, &e.Message); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
