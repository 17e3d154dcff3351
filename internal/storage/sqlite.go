package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested job doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate job
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// CreateJob inserts a new job record
func (s *SQLiteStorage) CreateJob(ctx context.Context, job *Job) error {
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = JobStatusPending
	}

	query := `
		INSERT INTO jobs (id, status, request_json, result_json, error, attempts, created_at, updated_at, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		job.ID, string(job.Status), job.RequestJSON,
		nullString(job.ResultJSON), nullString(job.Error), job.Attempts,
		job.CreatedAt, job.UpdatedAt, nullTime(job.StartedAt), nullTime(job.CompletedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("job %s: %w", job.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID
func (s *SQLiteStorage) GetJob(ctx context.Context, id string) (*Job, error) {
	query := `
		SELECT id, status, request_json, result_json, error, attempts, created_at, updated_at, started_at, completed_at
		FROM jobs WHERE id = ?
	`
	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// UpdateJob persists a job's current state
func (s *SQLiteStorage) UpdateJob(ctx context.Context, job *Job) error {
	job.UpdatedAt = time.Now()

	query := `
		UPDATE jobs
		SET status = ?, result_json = ?, error = ?, attempts = ?, updated_at = ?, started_at = ?, completed_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		string(job.Status), nullString(job.ResultJSON), nullString(job.Error), job.Attempts,
		job.UpdatedAt, nullTime(job.StartedAt), nullTime(job.CompletedAt), job.ID)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job %s: %w", job.ID, ErrNotFound)
	}
	return nil
}

// ListJobsByStatus returns up to limit jobs in the given state, oldest first
func (s *SQLiteStorage) ListJobsByStatus(ctx context.Context, status JobStatus, limit int) ([]*Job, error) {
	query := `
		SELECT id, status, request_json, result_json, error, attempts, created_at, updated_at, started_at, completed_at
		FROM jobs WHERE status = ? ORDER BY created_at ASC LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// CountJobs returns per-status job totals
func (s *SQLiteStorage) CountJobs(ctx context.Context) (*JobCounts, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := &JobCounts{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan job count: %w", err)
		}
		switch JobStatus(status) {
		case JobStatusPending:
			counts.Pending = n
		case JobStatusRunning:
			counts.Running = n
		case JobStatusDone:
			counts.Done = n
		case JobStatusFailed:
			counts.Failed = n
		}
	}
	return counts, rows.Err()
}

// DeleteJobsBefore removes terminal jobs older than cutoff
func (s *SQLiteStorage) DeleteJobsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM jobs WHERE status IN (?, ?) AND created_at < ?",
		string(JobStatusDone), string(JobStatusFailed), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete jobs: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}
	return int(rows), nil
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var status string
	var resultJSON, errMsg sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(&job.ID, &status, &job.RequestJSON, &resultJSON, &errMsg,
		&job.Attempts, &job.CreatedAt, &job.UpdatedAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	job.Status = JobStatus(status)
	if resultJSON.Valid {
		job.ResultJSON = &resultJSON.String
	}
	if errMsg.Valid {
		job.Error = &errMsg.String
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return &job, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Both drivers surface constraint violations only through the error text.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
