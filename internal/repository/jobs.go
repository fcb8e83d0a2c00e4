package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tradedocs/termsheet-extractor/constants"
)

// Job records one /process run for audit and reporting.
type Job struct {
	ID           uuid.UUID
	Filename     string
	FileExt      string
	Format       string
	Process      string
	Status       constants.JobStatus
	ResultJSON   string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// JobStore is what the router and exporter depend on. A nil store means
// persistence is disabled.
type JobStore interface {
	StartJob(ctx context.Context, job *Job) error
	FinishJob(ctx context.Context, id uuid.UUID, status constants.JobStatus, process, resultJSON, errMsg string) error
	ListJobs(ctx context.Context, since time.Time) ([]Job, error)
}

// SQLJobStore implements JobStore over database/sql. The SQL stays in
// the overlap of Postgres and SQLite; $N placeholders work in both.
type SQLJobStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewJobStore(db *sql.DB, logger *slog.Logger) *SQLJobStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLJobStore{db: db, logger: logger}
}

// Migrate creates the extraction_jobs table if it does not exist.
func (s *SQLJobStore) Migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS extraction_jobs (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	file_ext      TEXT NOT NULL,
	format        TEXT NOT NULL,
	process       TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	result_json   TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		s.logger.Error("repository.migrate.failed", "error", err)
		return err
	}
	return nil
}

func (s *SQLJobStore) StartJob(ctx context.Context, job *Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.StartedAt.IsZero() {
		job.StartedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = constants.JobStatusQueued
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extraction_jobs (id, filename, file_ext, format, process, status, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID.String(), job.Filename, job.FileExt, job.Format, job.Process, string(job.Status), job.StartedAt,
	)
	if err != nil {
		s.logger.Error("repository.start_job.failed", "job_id", job.ID, "error", err)
		return err
	}
	return nil
}

func (s *SQLJobStore) FinishJob(ctx context.Context, id uuid.UUID, status constants.JobStatus, process, resultJSON, errMsg string) error {
	finished := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE extraction_jobs
		 SET status = $1, process = $2, result_json = $3, error_message = $4, finished_at = $5
		 WHERE id = $6`,
		string(status), process, resultJSON, errMsg, finished, id.String(),
	)
	if err != nil {
		s.logger.Error("repository.finish_job.failed", "job_id", id, "error", err)
		return err
	}
	return nil
}

func (s *SQLJobStore) ListJobs(ctx context.Context, since time.Time) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, file_ext, format, process, status, result_json, error_message, started_at, finished_at
		 FROM extraction_jobs
		 WHERE started_at >= $1
		 ORDER BY started_at`,
		since,
	)
	if err != nil {
		s.logger.Error("repository.list_jobs.failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var (
			j        Job
			id       string
			status   string
			finished sql.NullTime
		)
		if err := rows.Scan(&id, &j.Filename, &j.FileExt, &j.Format, &j.Process, &status, &j.ResultJSON, &j.ErrorMessage, &j.StartedAt, &finished); err != nil {
			return nil, err
		}
		j.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		j.Status = constants.JobStatus(status)
		if finished.Valid {
			t := finished.Time
			j.FinishedAt = &t
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
